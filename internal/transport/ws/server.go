// Package ws serves drop-merge over WebSocket. Every connection plays its own
// session; turn frames are streamed as JSON with the configured pacing.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/drop-merge/internal/config"
	"github.com/vovakirdan/drop-merge/internal/storage"
)

// DefaultPlayer keys sessions of connections without a player parameter.
const DefaultPlayer = "guest"

// Options configures a Server.
type Options struct {
	Variant string
	Config  config.GameConfig
	Store   *storage.Store // Optional
	Logger  *log.Logger
	// Seed for next values; 0 seeds every connection from the clock.
	Seed int64
	// CheckOrigin overrides the upgrader origin check. Nil allows all origins.
	CheckOrigin func(r *http.Request) bool
}

// Server is the HTTP and WebSocket front end.
type Server struct {
	opts     Options
	r        *chi.Mux
	upgrader websocket.Upgrader
	logger   *log.Logger
	clients  atomic.Int64
	httpSrv  *http.Server
}

// New creates a server and registers its routes.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	checkOrigin := opts.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}

	s := &Server{
		opts:   opts,
		r:      chi.NewRouter(),
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(s.requestLogger)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Use(jsonContentType)
		r.Get("/health", s.handleHealth)
		r.Get("/scores", s.handleScores)
	})
	s.r.Get("/ws", s.handleWS)

	return s
}

// Router exposes the router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting WebSocket server", "address", addr, "variant", s.opts.Variant)
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"variant": s.opts.Variant,
		"clients": s.clients.Load(),
	})
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no score storage"})
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be in [1, 100]"})
			return
		}
		limit = n
	}

	scores, err := s.opts.Store.TopScores(s.opts.Variant, limit)
	if err != nil {
		s.logger.Error("cannot load scores", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cannot load scores"})
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	player := r.URL.Query().Get("player")
	if player == "" {
		player = DefaultPlayer
	}

	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := newConn(s, wsConn, player)
	s.clients.Add(1)
	s.logger.Info("client connected", "player", player, "remote", r.RemoteAddr)

	go c.writePump()
	go func() {
		c.readPump()
		s.clients.Add(-1)
		s.logger.Info("client disconnected", "player", player, "remote", r.RemoteAddr)
	}()
}

// requestLogger logs each request with the charm logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
