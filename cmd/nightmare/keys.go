package main

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lawnchairsociety/nightmareinsilver/internal/game"
	"github.com/lawnchairsociety/nightmareinsilver/internal/geom"
)

var moveKeys = map[tcell.Key]geom.Direction{
	tcell.KeyUp:    geom.North,
	tcell.KeyRight: geom.East,
	tcell.KeyDown:  geom.South,
	tcell.KeyLeft:  geom.West,
}

var moveRunes = map[rune]geom.Direction{
	'w': geom.North, 'k': geom.North,
	'd': geom.East, 'l': geom.East,
	's': geom.South, 'j': geom.South,
	'a': geom.West, 'h': geom.West,
}

var actionRunes = map[rune]game.Action{
	'1': game.ActionAttackRegular,
	'2': game.ActionAttackFire,
	'3': game.ActionAttackWater,
	'4': game.ActionAttackGrass,
	'e': game.ActionNextAttack,
	'q': game.ActionPreviousAttack,
	'p': game.ActionPause,
}

// playCommand maps a key pressed during play onto a game command.
func playCommand(key tcell.Key, r rune) (game.Command, bool) {
	if dir, ok := moveKeys[key]; ok {
		return game.Command{Action: game.ActionMove, Dir: dir}, true
	}
	switch key {
	case tcell.KeyTab:
		return game.Command{Action: game.ActionNextAttack}, true
	case tcell.KeyBacktab:
		return game.Command{Action: game.ActionPreviousAttack}, true
	case tcell.KeyEscape:
		return game.Command{Action: game.ActionPause}, true
	case tcell.KeyRune:
	default:
		return game.Command{}, false
	}

	if dir, ok := moveRunes[r]; ok {
		return game.Command{Action: game.ActionMove, Dir: dir}, true
	}
	if a, ok := actionRunes[r]; ok {
		return game.Command{Action: a}, true
	}
	return game.Command{}, false
}

// isYes and isNo read answers in dialogs.
func isYes(key tcell.Key, r rune) bool {
	return key == tcell.KeyEnter || (key == tcell.KeyRune && (r == 'y' || r == 'Y'))
}

func isNo(key tcell.Key, r rune) bool {
	return key == tcell.KeyEscape || (key == tcell.KeyRune && (r == 'n' || r == 'N'))
}
