package redisserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/yndnr/rudis-go/internal/infra/shutdown"
	"github.com/yndnr/rudis-go/internal/storage/memory"
	"github.com/yndnr/rudis-go/internal/telemetry/logger"
	"github.com/yndnr/rudis-go/internal/telemetry/metric"
)

const (
	// DefaultPort is the port the server listens on unless configured.
	DefaultPort = 6379
	// DefaultMaxConnections bounds concurrently served connections.
	DefaultMaxConnections = 256
)

// ErrAcceptBackoffExceeded is returned by Run when accepting keeps
// failing after the longest backoff.
var ErrAcceptBackoffExceeded = errors.New("redisserver: accept backoff exceeded")

// errListenerClosed ends the accept loop during shutdown.
var errListenerClosed = errors.New("redisserver: listener closed")

// Config holds the Redis server configuration.
type Config struct {
	// Addr is the listen address (default: 127.0.0.1:6379).
	Addr string
	// MaxConnections is the admission limit (default: 256).
	MaxConnections int
	// RateLimit is the maximum commands per second per connection.
	// Zero disables rate limiting.
	RateLimit int
	// WriteTimeout bounds each reply write. Zero disables it.
	WriteTimeout time.Duration
	// InitialBackoff is the first pause after a failed accept (default: 1s).
	InitialBackoff time.Duration
	// MaxBackoff is the longest pause before accept errors become fatal
	// (default: 32s).
	MaxBackoff time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:           "127.0.0.1:" + strconv.Itoa(DefaultPort),
		MaxConnections: DefaultMaxConnections,
		WriteTimeout:   30 * time.Second,
		InitialBackoff: time.Second,
		MaxBackoff:     32 * time.Second,
	}
}

// Server accepts Redis-protocol connections and serves them from a
// shared store.
//
// A Server runs once: Run shuts it down before returning.
type Server struct {
	cfg     *Config
	db      *memory.Store
	logger  logger.Logger
	metrics *metric.Registry

	limit  *semaphore.Weighted
	notify *shutdown.Notifier
	drain  *shutdown.Drain
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics attaches a metrics registry.
func WithMetrics(m *metric.Registry) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New creates a server backed by db.
func New(cfg *Config, db *memory.Store, opts ...Option) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	def := DefaultConfig()
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = def.MaxConnections
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}

	s := &Server{
		cfg:    cfg,
		db:     db,
		logger: logger.Default(),
		limit:  semaphore.NewWeighted(int64(cfg.MaxConnections)),
		notify: shutdown.NewNotifier(),
		drain:  shutdown.NewDrain(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Listen opens the configured TCP address.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return ln, nil
}

// Run serves connections from ln until ctx is done or accepting fails
// fatally. Either way it stops accepting, tells every handler to stop,
// and returns only once all handlers have exited. The listener is
// closed on return.
//
// A nil error means shutdown was requested through ctx.
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	s.logger.Info("accepting inbound connections",
		"address", ln.Addr().String(),
		"max_connections", s.cfg.MaxConnections,
	)

	// Held until draining starts so Wait cannot return early.
	coordinator := s.drain.Token()

	acceptCtx, cancelAccept := context.WithCancel(context.Background())
	defer cancelAccept()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.acceptLoop(acceptCtx, ln)
	}()

	var runErr error
	select {
	case err := <-errCh:
		if err != nil {
			s.logger.Error("failed to accept", "error", err)
			runErr = err
		}
		errCh = nil
	case <-ctx.Done():
		s.logger.Info("shutting down")
	}

	cancelAccept()
	_ = ln.Close()
	if errCh != nil {
		<-errCh
	}

	s.notify.Close()
	coordinator.Release()
	_ = s.drain.Wait(context.Background())
	s.logger.Info("all connections drained")

	return runErr
}

// acceptLoop admits connections until ctx is done or accept fails
// fatally. A nil return means the loop was stopped.
func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		// Wait for a free slot before accepting.
		if err := s.limit.Acquire(ctx, 1); err != nil {
			return nil
		}

		c, err := s.accept(ctx, ln)
		if err != nil {
			s.limit.Release(1)
			if errors.Is(err, errListenerClosed) {
				return nil
			}
			return err
		}

		h := s.newHandler(c)
		go h.serve()
	}
}

// accept returns the next connection, retrying transient errors with
// exponential backoff.
func (s *Server) accept(ctx context.Context, ln net.Listener) (net.Conn, error) {
	backoff := s.cfg.InitialBackoff

	for {
		c, err := ln.Accept()
		if err == nil {
			return c, nil
		}
		if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
			return nil, errListenerClosed
		}
		if backoff > s.cfg.MaxBackoff {
			return nil, fmt.Errorf("%w: %w", ErrAcceptBackoffExceeded, err)
		}

		s.logger.Warn("accept failed, retrying", "error", err, "backoff", backoff)
		s.metrics.AcceptRetried()

		t := time.NewTimer(backoff)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return nil, errListenerClosed
		}
		backoff *= 2
	}
}
