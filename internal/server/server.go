// Package server hosts game sessions over websockets. Each connection logs in
// to a profile and plays its own session, ticked on the server at a fixed
// rate; the client sends actions and receives level tiles, frames and cues as
// JSON.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/nightmareinsilver/internal/config"
	"github.com/lawnchairsociety/nightmareinsilver/internal/database"
	"github.com/lawnchairsociety/nightmareinsilver/internal/enemy"
	"github.com/lawnchairsociety/nightmareinsilver/internal/game"
	"github.com/lawnchairsociety/nightmareinsilver/internal/logger"
	"github.com/lawnchairsociety/nightmareinsilver/internal/namefilter"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
)

// loginTimeout bounds the wait for the first message on a new connection.
const loginTimeout = 30 * time.Second

var (
	errAlreadyPlaying = errors.New("profile is already playing")
	errNoScores       = errors.New("high scores need a database store")
)

type Server struct {
	cfg   *config.Config
	rules game.Rules
	table *enemy.Table
	store progress.Store
	db    *database.Database // nil with the memory store

	connLimiter  *ConnLimiter
	loginLimiter *LoginRateLimiter
	names        *namefilter.Filter

	mu     sync.Mutex
	active map[string]bool // Lower-cased profiles with a live connection

	httpServer   *http.Server
	shutdown     chan struct{}
	shutdownOnce sync.Once
	sessions     sync.WaitGroup
}

// NewServer creates a server over store. A database-backed store also
// enables passphrases and high scores.
func NewServer(cfg *config.Config, store progress.Store) *Server {
	s := &Server{
		cfg:          cfg,
		rules:        game.NewRules(cfg),
		table:        enemy.DefaultTable(),
		store:        store,
		connLimiter:  NewConnLimiter(cfg.Server),
		loginLimiter: NewLoginRateLimiter(cfg.Server.RateLimit),
		names:        namefilter.New(&cfg.Names),
		active:       make(map[string]bool),
		shutdown:     make(chan struct{}),
	}
	if ps, ok := store.(*database.ProfileStore); ok {
		s.db = ps.Database()
	}
	return s
}

// SetEnemyTable replaces the built-in spawn table.
func (s *Server) SetEnemyTable(t *enemy.Table) {
	if t != nil {
		s.table = t
	}
}

// Handler returns the HTTP routes: /ws for play and /scores for the board.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocketUpgrade)
	mux.HandleFunc("/scores", s.handleScores)
	return mux
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Server.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("WebSocket server listening", "address", s.cfg.Server.Address, "tick_hz", s.cfg.Server.TickHz)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections, ends every session (each saves its
// profile) and waits for them or for ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.shutdown)
		s.loginLimiter.Stop()
		if s.httpServer != nil {
			err = s.httpServer.Shutdown(ctx)
		}

		done := make(chan struct{})
		go func() {
			s.sessions.Wait()
			close(done)
		}()
		select {
		case <-done:
			logger.Info("Server shutdown complete, all profiles saved")
		case <-ctx.Done():
			err = errors.Join(err, ctx.Err())
		}
	})
	return err
}

// ActiveProfiles returns how many profiles are playing.
func (s *Server) ActiveProfiles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	clientIP := getRealIP(r)

	select {
	case <-s.shutdown:
		http.Error(w, "Server is shutting down.", http.StatusServiceUnavailable)
		return
	default:
	}

	if !s.connLimiter.TryAcquire(clientIP) {
		logger.Warning("WebSocket connection rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", clientIP)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.Server.WebSocket.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("WebSocket connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", "error", err)
		s.connLimiter.Release(clientIP)
		return
	}

	select {
	case <-s.shutdown:
		ws.Close()
		s.connLimiter.Release(clientIP)
		return
	default:
	}

	s.sessions.Add(1)
	go func() {
		defer s.sessions.Done()
		defer s.connLimiter.Release(clientIP)
		s.handleConnection(NewConn(ws, clientIP, s.cfg.Server.WebSocket.MaxMessageSize))
	}()
}

func (s *Server) handleConnection(c *Conn) {
	defer c.Close()
	logger.Info("Client connected", "ip", c.IP())

	msg, err := c.Read(loginTimeout)
	if err != nil {
		logger.Debug("Client left before login", "ip", c.IP(), "error", err)
		return
	}
	if msg.Type != MsgLogin {
		c.SendError("expected a login message")
		return
	}

	profile := msg.Profile
	save, err := s.login(c.IP(), msg)
	if err != nil {
		logger.Info("Login failed", "ip", c.IP(), "profile", profile, "error", err)
		c.SendError(err.Error())
		return
	}
	defer s.release(profile)

	logger.Info("Profile logged in", "profile", profile, "ip", c.IP())
	newPlayer(s, c, profile, save).run()
	logger.Info("Client disconnected", "profile", profile)
}

// login checks the passphrase, claims the profile for this connection and
// loads its progress.
func (s *Server) login(ip string, msg ClientMessage) (progress.SaveData, error) {
	if locked, left := s.loginLimiter.IsLocked(ip); locked {
		return progress.SaveData{}, fmt.Errorf("too many failed logins, try again in %d seconds", int(left.Seconds())+1)
	}
	if !database.ValidName(msg.Profile) {
		return progress.SaveData{}, database.ErrInvalidName
	}
	if err := s.names.Check(msg.Profile); err != nil {
		return progress.SaveData{}, err
	}

	if s.db != nil {
		exists, err := s.db.ProfileExists(msg.Profile)
		if err != nil {
			return progress.SaveData{}, err
		}
		if !exists && msg.Password != "" {
			if problem := s.cfg.Server.Password.ValidatePassword(msg.Password); problem != "" {
				return progress.SaveData{}, errors.New(problem)
			}
		}
		if err := s.db.Authenticate(msg.Profile, msg.Password); err != nil {
			if errors.Is(err, database.ErrBadPassword) {
				if locked, d := s.loginLimiter.RecordFailure(ip); locked {
					logger.Warning("Login locked out", "ip", ip, "seconds", int(d.Seconds()))
				}
			}
			return progress.SaveData{}, err
		}
	}
	s.loginLimiter.RecordSuccess(ip)

	if !s.claim(msg.Profile) {
		return progress.SaveData{}, errAlreadyPlaying
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	save, err := progress.LoadOrNew(ctx, s.store, msg.Profile)
	if err != nil {
		s.release(msg.Profile)
		return progress.SaveData{}, fmt.Errorf("failed to load profile: %w", err)
	}
	return save, nil
}

func (s *Server) claim(profile string) bool {
	key := strings.ToLower(profile)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[key] {
		return false
	}
	s.active[key] = true
	return true
}

func (s *Server) release(profile string) {
	s.mu.Lock()
	delete(s.active, strings.ToLower(profile))
	s.mu.Unlock()
}

// recordRun stores a finished run when scores are enabled.
func (s *Server) recordRun(r database.RunRecord) {
	if s.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.db.RecordRun(ctx, r); err != nil {
		logger.Error("Failed to record run", "profile", r.Profile, "error", err)
	}
}

func (s *Server) highScores(ctx context.Context, limit int) ([]database.RunRecord, error) {
	if s.db == nil {
		return nil, errNoScores
	}
	return s.db.HighScores(ctx, limit)
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	scores, err := s.highScores(r.Context(), limit)
	if errors.Is(err, errNoScores) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		logger.Error("Failed to read high scores", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if scores == nil {
		scores = []database.RunRecord{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(scores)
}

// getRealIP prefers the proxy headers over the socket address.
func getRealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return extractIP(r.RemoteAddr)
}
