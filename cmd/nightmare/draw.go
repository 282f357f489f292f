package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/lawnchairsociety/nightmareinsilver/internal/dungeon"
	"github.com/lawnchairsociety/nightmareinsilver/internal/game"
	"github.com/lawnchairsociety/nightmareinsilver/internal/geom"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
)

var (
	styleText   = tcell.StyleDefault
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle  = tcell.StyleDefault.Foreground(tcell.ColorSilver).Bold(true)
	styleCursor = tcell.StyleDefault.Reverse(true)
	stylePlayer = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleBox    = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
)

type glyph struct {
	r     rune
	style tcell.Style
}

var tileGlyphs = map[dungeon.Kind]glyph{
	dungeon.Ground:           {'.', styleDim},
	dungeon.Path:             {'#', styleDim},
	dungeon.Wall:             {'█', tcell.StyleDefault.Foreground(tcell.ColorSilver)},
	dungeon.EnemySpawnMarker: {'.', styleDim},
	dungeon.LadderUp:         {'<', tcell.StyleDefault.Foreground(tcell.ColorAqua)},
	dungeon.LadderDown:       {'>', tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)},
	dungeon.Final:            {'*', tcell.StyleDefault.Foreground(tcell.ColorFuchsia)},
}

var enemyRunes = map[string]rune{
	"chicken":      'c',
	"cat":          'f',
	"dog":          'd',
	"young_or_old": 'o',
	"human":        'H',
	"money":        '$',
	"battery":      '+',
	"artifact":     '&',
}

var elementColors = map[string]tcell.Color{
	"basic": tcell.ColorWhite,
	"fire":  tcell.ColorRed,
	"water": tcell.ColorBlue,
	"grass": tcell.ColorGreen,
}

func (h *host) draw() {
	h.screen.Clear()
	switch h.mode {
	case modeShop:
		h.drawShop()
	default:
		h.drawPlay()
	}
	h.screen.Show()
}

func (h *host) drawShop() {
	s := h.session
	hud := game.NewHUD(&s.Save)
	y := 1
	drawText(h.screen, 2, y, styleTitle, "NIGHTMARE IN SILVER - shop")
	y += 2
	drawText(h.screen, 2, y, styleText, fmt.Sprintf("Profile %s   Money %d   Kills %d   Deaths %d",
		s.Profile, hud.Money, s.Save.EnemiesKilled, s.Save.Deaths))
	y += 2

	for i, u := range progress.AllUpgrades() {
		style := styleText
		if i == h.shopRow {
			style = styleCursor
		}
		price := "max"
		if p := s.Save.NextPrice(u); p >= 0 {
			price = fmt.Sprintf("%d", p)
		}
		drawText(h.screen, 4, y, style, fmt.Sprintf("%-8s level %-3d next %s", u, s.Save.UpgradeLevel(u), price))
		y++
	}
	y++
	if h.notice != "" {
		drawText(h.screen, 2, y, styleText, h.notice)
	}
	y += 2
	drawText(h.screen, 2, y, styleDim, "up/down select  enter buy  r refund  n new run  c continue  x quit")
}

// drawPlay renders the map centred on the player, the HUD above it and the
// cue messages below. Dialogs are drawn on top.
func (h *host) drawPlay() {
	s := h.session
	if !s.InRun() {
		return
	}
	h.cacheTiles()
	snap := s.Snapshot()
	w, ht := h.screen.Size()

	h.drawHUD(snap.HUD)

	viewTop, viewH := 1, ht-1-maxMessages
	center := geom.ToTile(snap.Player.World)
	origin := geom.V(center.X-w/2, center.Y-viewH/2)

	for pos, kind := range h.tiles {
		x, y := pos.X-origin.X, pos.Y-origin.Y
		if x < 0 || x >= w || y < 0 || y >= viewH {
			continue
		}
		g := tileGlyphs[kind]
		h.screen.SetContent(x, viewTop+y, g.r, nil, g.style)
	}
	for _, e := range snap.Enemies {
		pos := geom.ToTile(e.World)
		x, y := pos.X-origin.X, pos.Y-origin.Y
		if x < 0 || x >= w || y < 0 || y >= viewH {
			continue
		}
		r, ok := enemyRunes[e.Type]
		if !ok {
			r = '?'
		}
		h.screen.SetContent(x, viewTop+y, r, nil, tcell.StyleDefault.Foreground(elementColors[e.Element]))
	}
	h.screen.SetContent(center.X-origin.X, viewTop+center.Y-origin.Y, '@', nil, stylePlayer)

	for i, msg := range h.messages {
		drawText(h.screen, 1, ht-maxMessages+i, styleText, msg)
	}

	switch h.mode {
	case modeConfirm:
		h.drawBox(confirmText(h.confirm))
	case modePaused:
		h.drawBox("Paused. p to resume, x to save and quit")
	case modeResult:
		h.drawBox(h.result)
	}
}

func (h *host) drawHUD(hud game.HUD) {
	line := fmt.Sprintf("Lv %d  Battery %d/%d  $%d  Attack %s  F%d W%d G%d  Signal %s",
		hud.Depth, hud.Battery, hud.MaxBattery, hud.Money, hud.Selected,
		hud.FireUses, hud.WaterUses, hud.GrassUses, hud.Connection)
	drawText(h.screen, 0, 0, styleTitle, line)
}

// cacheTiles rebuilds the glyph map when the level changes.
func (h *host) cacheTiles() {
	l := h.session.Level
	if l == h.level {
		return
	}
	h.level = l
	h.tiles = make(map[geom.Vec]dungeon.Kind, l.Map.Len())
	for _, t := range l.Map.Tiles() {
		h.tiles[t.Pos] = t.Kind
	}
}

func (h *host) drawBox(text string) {
	w, ht := h.screen.Size()
	width := len([]rune(text)) + 4
	x0, y0 := (w-width)/2, ht/2-1
	for y := y0; y < y0+3; y++ {
		for x := x0; x < x0+width; x++ {
			h.screen.SetContent(x, y, ' ', nil, styleBox)
		}
	}
	drawText(h.screen, x0+2, y0+1, styleBox, text)
}

func confirmText(st game.State) string {
	switch st {
	case game.StateNextLevel:
		return "Climb down to the next level? (y/n)"
	case game.StateShop:
		return "Go back up to the shop? (y/n)"
	case game.StateGameOver:
		return "Your battery is empty. (enter)"
	case game.StateGameWon:
		return "The artifact is yours! (enter)"
	}
	return st.String()
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}
