// Package server hosts one authoritative race over websockets. The first
// client to connect controls the race; everyone else spectates.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/selvatuple/thumb-race-rally/internal/config"
	"github.com/selvatuple/thumb-race-rally/internal/shared/logger"
	"github.com/selvatuple/thumb-race-rally/internal/shared/types"
	"github.com/selvatuple/thumb-race-rally/internal/simulation"
	"github.com/selvatuple/thumb-race-rally/internal/telemetry"
	"github.com/selvatuple/thumb-race-rally/internal/wire"
)

const (
	RoleController = "controller"
	RoleSpectator  = "spectator"

	readTimeout  = 90 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 20 * time.Second
	sendBuffer   = 64
)

type client struct {
	id    string
	seq   uint64
	conn  *websocket.Conn
	codec wire.Codec
	send  chan outbound
}

type outbound struct {
	kind    int
	payload []byte
}

type Server struct {
	log       *logger.Logger
	race      *simulation.Race
	telemetry *telemetry.Store
	cfg       config.Server
	codec     wire.Codec
	upgrader  websocket.Upgrader

	mu         sync.RWMutex
	clients    map[string]*client
	nextSeq    uint64
	controller string

	lastDigest uint64
	lastPhase  types.PhaseState
}

// New wires a race host. The race's event sink is pointed at store.
func New(cfg config.Config, race *simulation.Race, store *telemetry.Store, log *logger.Logger) (*Server, error) {
	codec, err := wire.ForName(cfg.Server.Codec)
	if err != nil {
		return nil, err
	}
	race.SetEventSink(store)
	return &Server{
		log:       log,
		race:      race,
		telemetry: store,
		cfg:       cfg.Server,
		codec:     codec,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients:   make(map[string]*client),
		lastPhase: race.Phase(),
	}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWS)
	s.telemetry.Register(mux)
	return withCORS(mux)
}

// Run serves HTTP on the configured address and drives the race until ctx
// is cancelled.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Infow("race host listening", "addr", s.cfg.Addr, "codec", s.codec.Name())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.Loop(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Loop runs the simulation and replication loops until ctx is cancelled.
func (s *Server) Loop(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.runSimulationLoop(ctx)
		return nil
	})
	g.Go(func() error {
		s.runReplicationLoop(ctx)
		return nil
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	telemetry.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"phase":   s.race.Phase().Phase,
		"clients": s.clientCount(),
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	codec := s.codec
	if name := r.URL.Query().Get("codec"); name != "" {
		c, err := wire.ForName(name)
		if err != nil {
			telemetry.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown_codec"})
			return
		}
		codec = c
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnw("websocket upgrade failed", "err", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, codec: codec, send: make(chan outbound, sendBuffer)}
	role := s.register(c)
	s.log.Infow("client connected", "client", c.id, "role", role, "codec", codec.Name(), "remote", r.RemoteAddr)

	state := s.race.Snapshot()
	views := s.race.Views(state)
	s.sendEnvelope(c, types.ServerEnvelope{
		Type:     "welcome",
		Role:     role,
		State:    &state,
		Views:    views[:],
		ServerMS: time.Now().UTC().UnixMilli(),
		Message:  "connected",
	})

	go s.writePump(c)
	s.readPump(c)
}

func (s *Server) readPump(c *client) {
	defer func() {
		s.unregister(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Infow("client disconnected", "client", c.id)
				return
			}
			s.log.Debugw("read error", "client", c.id, "err", err)
			return
		}

		var in types.ClientEnvelope
		if err := c.codec.Unmarshal(msg, &in); err != nil {
			s.sendError(c, "bad_payload")
			continue
		}
		s.handleMessage(c, in)
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(msg.kind, msg.payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				return
			}
		}
	}
}

// register adds c and returns its role.
func (s *Server) register(c *client) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	c.seq = s.nextSeq
	s.clients[c.id] = c
	if s.controller == "" {
		s.controller = c.id
		return RoleController
	}
	return RoleSpectator
}

// unregister drops c. If c held control, the longest connected spectator
// takes over.
func (s *Server) unregister(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c.id]; !ok {
		s.mu.Unlock()
		return
	}
	close(c.send)
	delete(s.clients, c.id)

	var promoted *client
	if s.controller == c.id {
		s.controller = ""
		for _, other := range s.clients {
			if promoted == nil || other.seq < promoted.seq {
				promoted = other
			}
		}
		if promoted != nil {
			s.controller = promoted.id
		}
	}
	s.mu.Unlock()

	if promoted != nil {
		s.log.Infow("controller handed over", "from", c.id, "to", promoted.id)
		s.sendEnvelope(promoted, types.ServerEnvelope{Type: "role", Role: RoleController})
	}
}

func (s *Server) isController(c *client) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.controller == c.id
}

func (s *Server) clientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) sendEnvelope(c *client, env types.ServerEnvelope) {
	payload, err := c.codec.Marshal(env)
	if err != nil {
		s.log.Errorw("marshal envelope failed", "type", env.Type, "err", err)
		return
	}
	s.enqueue(c, outbound{kind: c.codec.MessageType(), payload: payload})
}

// enqueue drops the message if the client is not keeping up.
func (s *Server) enqueue(c *client, msg outbound) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.clients[c.id]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

func (s *Server) sendError(c *client, message string) {
	s.sendEnvelope(c, types.ServerEnvelope{Type: "error", Message: message})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
