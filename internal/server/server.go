// Package server runs a fasthttp request handler on one or more worker
// event loops bound to the same port.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/reuseport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pedia/picoroute/internal/logging"
)

// ListenFunc opens the listener of one worker.
type ListenFunc func(network, addr string) (net.Listener, error)

// Config holds the server settings.
type Config struct {
	Addr    string
	Workers int

	// ReusePort gives every worker its own SO_REUSEPORT listener so the
	// kernel spreads connections across them. Without it a single listener
	// is shared by the fasthttp worker pool.
	ReusePort bool

	Name               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	MaxRequestBodySize int
}

// Server is a multi worker fasthttp server.
type Server struct {
	cfg    Config
	srv    *fasthttp.Server
	logger *zap.Logger
	listen ListenFunc

	mu        sync.Mutex
	listeners []net.Listener
	group     *errgroup.Group
}

// Option configures a Server.
type Option func(*Server)

// WithListenFunc replaces the function used to open listeners.
func WithListenFunc(fn ListenFunc) Option {
	return func(s *Server) {
		if fn != nil {
			s.listen = fn
		}
	}
}

// New returns a server for handler.
func New(cfg Config, handler fasthttp.RequestHandler, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		listen: net.Listen,
		srv: &fasthttp.Server{
			Handler:               handler,
			Name:                  cfg.Name,
			ReadTimeout:           cfg.ReadTimeout,
			WriteTimeout:          cfg.WriteTimeout,
			IdleTimeout:           cfg.IdleTimeout,
			MaxRequestBodySize:    cfg.MaxRequestBodySize,
			NoDefaultServerHeader: cfg.Name == "",
			Logger:                logging.Printf{Logger: logger.Named("fasthttp")},
		},
	}

	if cfg.ReusePort {
		s.listen = reuseport.Listen
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the listeners and starts one event loop per worker. It
// returns once every listener is open; serving errors are reported by Wait.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.group != nil {
		return errors.New("server already started")
	}

	count := 1
	if s.cfg.ReusePort {
		count = s.cfg.Workers
	}

	listeners := make([]net.Listener, 0, count)
	for i := 0; i < count; i++ {
		ln, err := s.listen("tcp4", s.cfg.Addr)
		if err != nil {
			for _, l := range listeners {
				_ = l.Close()
			}
			return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
		}
		listeners = append(listeners, ln)
	}

	s.listeners = listeners
	s.group = &errgroup.Group{}

	for i, ln := range listeners {
		s.group.Go(func() error {
			s.logger.Info("event loop started", zap.Int("worker", i), zap.Stringer("addr", ln.Addr()))
			err := s.srv.Serve(ln)
			s.logger.Info("event loop stopped", zap.Int("worker", i))
			return err
		})
	}

	s.logger.Info("server running",
		zap.String("addr", s.cfg.Addr),
		zap.Int("workers", len(listeners)),
		zap.Bool("reuse_port", s.cfg.ReusePort),
	)

	return nil
}

// Addrs returns the addresses of the open listeners.
func (s *Server) Addrs() []net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	addrs := make([]net.Addr, len(s.listeners))
	for i, ln := range s.listeners {
		addrs[i] = ln.Addr()
	}
	return addrs
}

// Wait blocks until every event loop has returned and reports the first
// serving error.
func (s *Server) Wait() error {
	s.mu.Lock()
	group := s.group
	s.mu.Unlock()

	if group == nil {
		return nil
	}
	return group.Wait()
}

// Shutdown stops accepting connections and waits for open ones to finish
// or for ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server stopping")

	err := s.srv.ShutdownWithContext(ctx)

	// a worker that has not entered Serve yet is unknown to fasthttp
	s.mu.Lock()
	for _, ln := range s.listeners {
		_ = ln.Close()
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return s.Wait()
}
