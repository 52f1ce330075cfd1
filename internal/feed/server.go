// Package feed serves sector render records to renderers over WebSocket.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/wavefield/internal/config"
	"github.com/lawnchairsociety/wavefield/internal/logger"
	"github.com/lawnchairsociety/wavefield/internal/store"
	"github.com/lawnchairsociety/wavefield/internal/throttle"
	"github.com/lawnchairsociety/wavefield/internal/wfc"
)

// SectorStore persists collapsed sectors between runs.
type SectorStore interface {
	LoadSector(field *wfc.Field, x, y int32) (*wfc.Sector, error)
	SaveSector(catalog *wfc.Catalog, sector *wfc.Sector) error
}

// Server answers sector requests. Sectors that don't exist yet are loaded
// from the store if one is set, or generated and then saved.
type Server struct {
	config *config.FeedConfig

	// mu serialises all access to the generator and its field
	mu        sync.Mutex
	generator *wfc.Generator
	store     SectorStore

	httpServer   *http.Server
	connections  atomic.Int64
	conns        sync.Map // *websocket.Conn -> struct{}
	shutdownOnce sync.Once
}

// NewServer creates a feed server for the generator's field.
func NewServer(generator *wfc.Generator, cfg *config.FeedConfig) *Server {
	if cfg == nil {
		cfg = &config.DefaultConfig().Feed
	}
	return &Server{
		config:    cfg,
		generator: generator,
	}
}

// SetStore enables loading and saving sectors.
func (s *Server) SetStore(st SectorStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = st
}

// Connections returns the number of open feed connections.
func (s *Server) Connections() int64 {
	return s.connections.Load()
}

// Handler returns the HTTP handler serving the feed at /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleUpgrade)
	return mux
}

// Start listens on address until Shutdown is called.
func (s *Server) Start(address string) error {
	s.mu.Lock()
	s.httpServer = &http.Server{Addr: address, Handler: s.Handler()}
	srv := s.httpServer
	s.mu.Unlock()

	logger.Info("Render feed listening", "address", address)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and closes the open ones.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		srv := s.httpServer
		s.mu.Unlock()

		if srv != nil {
			err = srv.Shutdown(ctx)
		}
		s.conns.Range(func(key, _ any) bool {
			key.(*websocket.Conn).Close()
			return true
		})
		logger.Info("Render feed stopped")
	})
	return err
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.config.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("Feed connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Feed upgrade failed", "error", err)
		return
	}

	go s.handleConnection(newClient(conn, s.config.MaxMessageSize))
}

func (s *Server) handleConnection(c *client) {
	s.conns.Store(c.conn, struct{}{})
	count := s.connections.Add(1)
	logger.Info("Feed client connected", "remote_addr", c.remoteAddr(), "connections", count)

	defer func() {
		s.conns.Delete(c.conn)
		count := s.connections.Add(-1)
		c.close()
		logger.Info("Feed client disconnected", "remote_addr", c.remoteAddr(), "connections", count)
	}()

	rl := s.config.RateLimit
	limiter := throttle.NewTracker(throttle.Config{
		Enabled:     rl.Enabled,
		MaxRequests: rl.MaxRequests,
		Window:      rl.Window,
	})

	for {
		req, err := c.readRequest()
		var bad *badRequestError
		switch {
		case errors.As(err, &bad):
			if err := c.writeResponse(Response{Error: bad.Error()}); err != nil {
				return
			}
			continue
		case err != nil:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("Feed read failed", "remote_addr", c.remoteAddr(), "error", err)
			}
			return
		}

		if check := limiter.Check(); !check.Allowed {
			logger.Debug("Feed request throttled", "remote_addr", c.remoteAddr(), "wait", check.Wait)
			resp := Response{
				X:       req.X,
				Y:       req.Y,
				Records: []Record{},
				Error:   fmt.Sprintf("rate limited, retry in %v", check.Wait.Round(time.Millisecond)),
			}
			if err := c.writeResponse(resp); err != nil {
				return
			}
			continue
		}

		if err := c.writeResponse(s.Sector(req.X, req.Y)); err != nil {
			logger.Debug("Feed write failed", "remote_addr", c.remoteAddr(), "error", err)
			return
		}
	}
}

// Sector returns the render records of a sector, making it available first
// if needed. Failures are reported in the response's Error field.
func (s *Server) Sector(x, y int32) Response {
	resp := Response{X: x, Y: y, Records: []Record{}}

	s.mu.Lock()
	defer s.mu.Unlock()

	sector, err := s.ensureSector(x, y)
	if err != nil {
		logger.Warning("Feed sector unavailable", "x", x, "y", y, "error", err)
		resp.Error = err.Error()
		return resp
	}

	field := s.generator.Field()
	resp.Width = sector.Width()
	resp.Height = sector.Height()
	for rec := range field.RenderRecords(x, y) {
		resp.Records = append(resp.Records, newRecord(rec))
	}
	return resp
}

// ensureSector must be called with mu held
func (s *Server) ensureSector(x, y int32) (*wfc.Sector, error) {
	field := s.generator.Field()
	if sector, ok := field.Sector(x, y); ok && sector.Collapsed() {
		return sector, nil
	}

	if s.store != nil {
		if _, exists := field.Sector(x, y); !exists {
			sector, err := s.store.LoadSector(field, x, y)
			if err == nil {
				return sector, nil
			}
			if !errors.Is(err, store.ErrSectorNotFound) {
				logger.Warning("Stored sector unusable, generating", "x", x, "y", y, "error", err)
			}
		}
	}

	sector, err := s.generator.Generate(x, y)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.SaveSector(field.Catalog(), sector); err != nil {
			logger.Error("Failed to save sector", "x", x, "y", y, "error", err)
		}
	}
	return sector, nil
}
