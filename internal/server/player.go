package server

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/lawnchairsociety/nightmareinsilver/internal/antispam"
	"github.com/lawnchairsociety/nightmareinsilver/internal/database"
	"github.com/lawnchairsociety/nightmareinsilver/internal/game"
	"github.com/lawnchairsociety/nightmareinsilver/internal/geom"
	"github.com/lawnchairsociety/nightmareinsilver/internal/logger"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
)

// player is one logged-in connection and the session it drives. Everything
// but the reader goroutine runs on run's goroutine, so the session needs no
// locking.
type player struct {
	srv     *Server
	conn    *Conn
	session *game.Session

	queue    *game.InputQueue
	control  chan ClientMessage
	flood    *antispam.Tracker
	cues     *game.CueBuffer
	requests []game.State

	lastFrame []byte
}

func newPlayer(srv *Server, c *Conn, profile string, save progress.SaveData) *player {
	p := &player{
		srv:     srv,
		conn:    c,
		queue:   game.NewInputQueue(8),
		control: make(chan ClientMessage, 16),
		flood:   antispam.NewTracker(srv.cfg.Server.Flood),
		cues:    &game.CueBuffer{},
	}
	gen := srv.cfg.Generation
	p.session = game.NewSession(profile, save, game.Options{
		Rules:      &srv.rules,
		Generation: &gen,
		Table:      srv.table,
		Store:      srv.store,
		Cues:       p.cues,
		States:     game.StateFunc(func(st game.State) { p.requests = append(p.requests, st) }),
	})
	return p
}

// run plays until the client leaves or the server shuts down, then saves.
func (p *player) run() {
	done := make(chan struct{})
	go p.readLoop(done)

	defer p.persist()

	p.send(shopMessage(p.session.Profile, &p.session.Save))

	interval := p.srv.cfg.Server.TickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-done:
			return
		case <-p.srv.shutdown:
			return
		case msg := <-p.control:
			p.handle(msg)
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			p.tick(dt)
		}
	}
}

// readLoop turns client messages into queued input or control messages.
func (p *player) readLoop(done chan<- struct{}) {
	defer close(done)
	for {
		msg, err := p.conn.Read(0)
		if err != nil {
			return
		}
		switch p.flood.Check() {
		case antispam.Kick:
			logger.Warning("Disconnecting flooding client", "profile", p.session.Profile, "ip", p.conn.IP(), "dropped", p.flood.Dropped())
			p.conn.SendError("too many messages")
			return
		case antispam.Warn:
			p.conn.SendError("slow down")
			continue
		case antispam.Drop:
			continue
		}
		if msg.Type != MsgAction {
			select {
			case p.control <- msg:
			default:
				p.conn.SendError("too many requests")
			}
			continue
		}

		cmd, err := parseCommand(msg)
		if err != nil {
			p.conn.SendError(err.Error())
			continue
		}
		p.queue.Push(cmd)
	}
}

func parseCommand(msg ClientMessage) (game.Command, error) {
	a, err := game.ParseAction(msg.Action)
	if err != nil {
		return game.Command{}, err
	}
	cmd := game.Command{Action: a}
	if a == game.ActionMove {
		if cmd.Dir, err = geom.ParseDirection(msg.Dir); err != nil {
			return game.Command{}, err
		}
	}
	return cmd, nil
}

func (p *player) tick(dt float64) {
	s := p.session
	if !s.InRun() {
		return
	}
	s.Tick(dt, p.queue.Next(s.Level.PlayerReady()))

	if cues := p.cues.Drain(); len(cues) > 0 {
		p.send(ServerMessage{Type: MsgCues, Cues: cues})
	}
	p.sendFrame()

	for _, st := range p.requests {
		p.send(ServerMessage{Type: MsgState, State: st.String()})
	}
	p.requests = p.requests[:0]
}

// sendFrame sends the snapshot when it differs from the last one sent.
func (p *player) sendFrame() {
	snap := p.session.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		logger.Error("Failed to encode frame", "error", err)
		return
	}
	if bytes.Equal(data, p.lastFrame) {
		return
	}
	p.lastFrame = data
	p.send(ServerMessage{Type: MsgFrame, Frame: &snap})
}

func (p *player) handle(msg ClientMessage) {
	s := p.session
	switch msg.Type {
	case MsgStart, MsgResume:
		if s.InRun() {
			p.conn.SendError(game.ErrInRun.Error())
			return
		}
		if msg.Type == MsgStart {
			s.StartRun()
		} else {
			s.Resume()
		}
		p.enterLevel()

	case MsgConfirm:
		p.confirm()

	case MsgCancel:
		if !s.Cancel() {
			p.conn.SendError("nothing to cancel")
		}

	case MsgBuy, MsgRefund:
		u, err := progress.ParseUpgrade(msg.Upgrade)
		if err == nil {
			if msg.Type == MsgBuy {
				err = s.Buy(u)
			} else {
				err = s.Refund(u)
			}
		}
		if err != nil {
			p.conn.SendError(err.Error())
			return
		}
		p.send(shopMessage(s.Profile, &s.Save))

	case MsgScores:
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		scores, err := p.srv.highScores(ctx, msg.Limit)
		if err != nil {
			p.conn.SendError(err.Error())
			return
		}
		p.send(ServerMessage{Type: MsgScores, Scores: scores})

	default:
		p.conn.SendError("unknown message type " + msg.Type)
	}
}

// confirm carries out the pending level-ending request.
func (p *player) confirm() {
	s := p.session
	if !s.InRun() {
		p.conn.SendError("nothing to confirm")
		return
	}
	st, ok := s.Level.Pending()
	if !ok {
		p.conn.SendError("nothing to confirm")
		return
	}

	switch st {
	case game.StateNextLevel:
		s.NextLevel()
		p.enterLevel()
		return
	case game.StateShop:
		s.ReturnToShop()
	case game.StateGameOver:
		depth := s.Save.Level
		lost := s.GameOver()
		p.srv.recordRun(database.RunRecord{Profile: s.Profile, Score: s.Save.Score(), Depth: depth, Kills: s.Save.EnemiesKilled})
		p.send(ServerMessage{Type: MsgResult, State: st.String(), Amount: lost})
	case game.StateGameWon:
		depth := s.Save.Level
		score := s.Win()
		p.srv.recordRun(database.RunRecord{Profile: s.Profile, Score: score, Depth: depth, Kills: s.Save.EnemiesKilled, Won: true})
		p.send(ServerMessage{Type: MsgResult, State: st.String(), Amount: score})
	}
	p.queue.Clear()
	p.lastFrame = nil
	p.send(shopMessage(s.Profile, &s.Save))
}

// enterLevel sends the new map and its first frame.
func (p *player) enterLevel() {
	p.queue.Clear()
	p.lastFrame = nil
	if cues := p.cues.Drain(); len(cues) > 0 {
		defer p.send(ServerMessage{Type: MsgCues, Cues: cues})
	}
	p.send(tilesMessage(p.session.Level))
	p.sendFrame()
}

func (p *player) send(msg ServerMessage) {
	if err := p.conn.Send(msg); err != nil {
		logger.Debug("Send failed", "profile", p.session.Profile, "type", msg.Type, "error", err)
	}
}

func (p *player) persist() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.session.Persist(ctx); err != nil {
		logger.Error("Failed to save profile on disconnect", "profile", p.session.Profile, "error", err)
	}
}
