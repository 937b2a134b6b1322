package server

import (
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/caarlos0/env/v11"
	"github.com/tliron/commonlog"

	"github.com/chazu/mosaic/store"
	"github.com/chazu/mosaic/world"
)

var log = commonlog.GetLogger("mosaic.server")

// Config holds server settings read from the environment.
type Config struct {
	Addr          string        `env:"MOSAIC_ADDR" envDefault:":8450"`
	HandleTTL     time.Duration `env:"MOSAIC_HANDLE_TTL" envDefault:"30m"`
	SweepInterval time.Duration `env:"MOSAIC_SWEEP_INTERVAL" envDefault:"5m"`
}

// ConfigFromEnv reads server configuration from MOSAIC_* variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MosaicServer is the host server wrapping a running world. It serves
// Connect (HTTP/JSON) endpoints.
type MosaicServer struct {
	worker   *WorldWorker
	handles  *HandleStore
	sessions *SessionStore
	mux      *http.ServeMux

	stopSweeper func()
}

// ServerOption configures a MosaicServer.
type ServerOption func(*serverConfig)

type serverConfig struct {
	store         *store.Store
	handleTTL     time.Duration
	sweepInterval time.Duration
}

// WithStore enables the snapshot endpoints against the given store.
func WithStore(st *store.Store) ServerOption {
	return func(c *serverConfig) { c.store = st }
}

// WithHandleTTL overrides the handle TTL and sweep interval.
func WithHandleTTL(ttl, interval time.Duration) ServerOption {
	return func(c *serverConfig) {
		c.handleTTL = ttl
		c.sweepInterval = interval
	}
}

// New creates a MosaicServer wrapping the given world.
func New(w *world.World, opts ...ServerOption) *MosaicServer {
	cfg := &serverConfig{
		handleTTL:     30 * time.Minute,
		sweepInterval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	worker := NewWorldWorker(w)
	handles := NewHandleStore()
	sessions := NewSessionStore(handles)

	s := &MosaicServer{
		worker:   worker,
		handles:  handles,
		sessions: sessions,
		mux:      http.NewServeMux(),
	}

	svc := NewHostService(worker, handles, sessions, cfg.store)
	codec := connect.WithCodec(jsonCodec{})

	s.mux.Handle(procOpenSession, connect.NewUnaryHandler(procOpenSession, svc.OpenSession, codec))
	s.mux.Handle(procCloseSession, connect.NewUnaryHandler(procCloseSession, svc.CloseSession, codec))
	s.mux.Handle(procCreateBuffer, connect.NewUnaryHandler(procCreateBuffer, svc.CreateBuffer, codec))
	s.mux.Handle(procCreateBlock, connect.NewUnaryHandler(procCreateBlock, svc.CreateBlock, codec))
	s.mux.Handle(procEvaluate, connect.NewUnaryHandler(procEvaluate, svc.Evaluate, codec))
	s.mux.Handle(procInspect, connect.NewUnaryHandler(procInspect, svc.Inspect, codec))
	s.mux.Handle(procTick, connect.NewUnaryHandler(procTick, svc.Tick, codec))
	s.mux.Handle(procSaveSnapshot, connect.NewUnaryHandler(procSaveSnapshot, svc.SaveSnapshot, codec))
	s.mux.Handle(procLoadSnapshot, connect.NewUnaryHandler(procLoadSnapshot, svc.LoadSnapshot, codec))

	s.stopSweeper = handles.StartSweeper(cfg.sweepInterval, cfg.handleTTL)

	return s
}

// Handler returns the HTTP handler serving the Connect endpoints.
func (s *MosaicServer) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the HTTP server on the given address.
// The address should be in the form "host:port" or ":port".
func (s *MosaicServer) ListenAndServe(addr string) error {
	log.Noticef("mosaic host listening on %s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// Stop shuts down the server.
func (s *MosaicServer) Stop() {
	if s.stopSweeper != nil {
		s.stopSweeper()
	}
	s.worker.Stop()
}
