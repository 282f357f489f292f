package server

import (
	"github.com/lawnchairsociety/nightmareinsilver/internal/database"
	"github.com/lawnchairsociety/nightmareinsilver/internal/game"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
)

// Client message types.
const (
	MsgLogin   = "login"
	MsgAction  = "action"
	MsgStart   = "start"
	MsgResume  = "resume"
	MsgConfirm = "confirm"
	MsgCancel  = "cancel"
	MsgBuy     = "buy"
	MsgRefund  = "refund"
	MsgScores  = "scores"
)

// Server message types.
const (
	MsgError  = "error"
	MsgShop   = "shop"
	MsgTiles  = "tiles"
	MsgFrame  = "frame"
	MsgCues   = "cues"
	MsgState  = "state"
	MsgResult = "result"
)

// ClientMessage is every JSON message a client may send.
type ClientMessage struct {
	Type     string `json:"type"`
	Profile  string `json:"profile,omitempty"`
	Password string `json:"password,omitempty"`
	Action   string `json:"action,omitempty"`
	Dir      string `json:"dir,omitempty"`
	Upgrade  string `json:"upgrade,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// ShopRow is one purchasable upgrade. Price is -1 at the cap.
type ShopRow struct {
	Upgrade string `json:"upgrade"`
	Level   int    `json:"level"`
	Price   int    `json:"price"`
}

// ServerMessage is every JSON message the server sends.
type ServerMessage struct {
	Type    string               `json:"type"`
	Message string               `json:"message,omitempty"`
	Profile string               `json:"profile,omitempty"`
	HUD     *game.HUD            `json:"hud,omitempty"`
	Shop    []ShopRow            `json:"shop,omitempty"`
	Depth   int                  `json:"depth,omitempty"`
	Tiles   []game.TileView      `json:"tiles,omitempty"`
	Frame   *game.Snapshot       `json:"frame,omitempty"`
	Cues    []game.Cue           `json:"cues,omitempty"`
	State   string               `json:"state,omitempty"`
	Amount  int                  `json:"amount,omitempty"` // Money lost or final score
	Scores  []database.RunRecord `json:"scores,omitempty"`
}

func errorMessage(msg string) ServerMessage {
	return ServerMessage{Type: MsgError, Message: msg}
}

func shopMessage(profile string, save *progress.SaveData) ServerMessage {
	hud := game.NewHUD(save)
	rows := make([]ShopRow, 0, len(progress.AllUpgrades()))
	for _, u := range progress.AllUpgrades() {
		rows = append(rows, ShopRow{Upgrade: u.String(), Level: save.UpgradeLevel(u), Price: save.NextPrice(u)})
	}
	return ServerMessage{Type: MsgShop, Profile: profile, HUD: &hud, Shop: rows}
}

func tilesMessage(l *game.Level) ServerMessage {
	return ServerMessage{Type: MsgTiles, Depth: l.Depth, Tiles: l.Tiles()}
}
