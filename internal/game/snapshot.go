package game

import (
	"github.com/lawnchairsociety/nightmareinsilver/internal/geom"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
)

// EntityView is an entity as a renderer sees it.
type EntityView struct {
	ID      int        `json:"id"`
	Pos     geom.Vec   `json:"pos"`
	World   geom.World `json:"world"`
	Type    string     `json:"type,omitempty"`
	Element string     `json:"element,omitempty"`
	Health  float64    `json:"health,omitempty"`
	Sprite  int        `json:"sprite"`
}

// HUD is the progression readout shown during play and in the shop.
type HUD struct {
	Depth      int    `json:"depth"`
	Battery    int    `json:"battery"`
	MaxBattery int    `json:"max_battery"`
	Money      int    `json:"money"`
	Selected   string `json:"selected"`
	FireUses   int    `json:"fire_uses"`
	WaterUses  int    `json:"water_uses"`
	GrassUses  int    `json:"grass_uses"`
	Connection string `json:"connection"`
	Kills      int    `json:"kills"`
}

// Snapshot is the renderable state after a tick.
type Snapshot struct {
	InRun   bool         `json:"in_run"`
	Turn    string       `json:"turn,omitempty"`
	Pending string       `json:"pending,omitempty"`
	Player  EntityView   `json:"player"`
	Enemies []EntityView `json:"enemies,omitempty"`
	HUD     HUD          `json:"hud"`
}

// TileView is one tile of the level map.
type TileView struct {
	Pos    geom.Vec `json:"pos"`
	Kind   string   `json:"kind"`
	Sprite int      `json:"sprite"`
}

// playerSprite is the atlas cell of the player.
var playerSprite = geom.Sprite(0, 25)

// NewHUD summarises a save.
func NewHUD(save *progress.SaveData) HUD {
	return HUD{
		Depth:      save.Level,
		Battery:    save.Battery,
		MaxBattery: save.MaxBattery(),
		Money:      save.Money,
		Selected:   save.AttackSelected.String(),
		FireUses:   save.FireUses,
		WaterUses:  save.WaterUses,
		GrassUses:  save.GrassUses,
		Connection: save.Connection().String(),
		Kills:      save.EnemiesKilled,
	}
}

// Snapshot captures the session for rendering. Enemies are ordered by id.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{InRun: s.InRun(), HUD: NewHUD(&s.Save)}
	l := s.Level
	if l == nil {
		return snap
	}

	snap.Turn = l.Turn.State().String()
	if st, ok := l.Pending(); ok {
		snap.Pending = st.String()
	}
	snap.Player = EntityView{
		ID:     PlayerID,
		Pos:    l.Player.Pos,
		World:  worldOf(l, PlayerID, l.Player.Pos),
		Sprite: playerSprite,
	}
	for _, id := range l.EnemyIDs() {
		e := l.Enemies[id]
		snap.Enemies = append(snap.Enemies, EntityView{
			ID:      id,
			Pos:     e.Pos,
			World:   worldOf(l, id, e.Pos),
			Type:    e.Type.String(),
			Element: e.Element.String(),
			Health:  e.Health,
			Sprite:  e.Sprite,
		})
	}
	return snap
}

func worldOf(l *Level, id int, pos geom.Vec) geom.World {
	if w, ok := l.Anim.Position(id); ok {
		return w
	}
	return geom.ToWorld(pos)
}

// Tiles lists the level's tiles in coordinate order.
func (l *Level) Tiles() []TileView {
	tiles := l.Map.Tiles()
	out := make([]TileView, len(tiles))
	for i, t := range tiles {
		out[i] = TileView{Pos: t.Pos, Kind: t.Kind.String(), Sprite: t.Sprite}
	}
	return out
}
