package redisserver

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/rudis-go/internal/infra/shutdown"
	"github.com/yndnr/rudis-go/internal/storage/memory"
	"github.com/yndnr/rudis-go/internal/telemetry/logger"
	"github.com/yndnr/rudis-go/internal/telemetry/metric"
	"github.com/yndnr/rudis-go/pkg/frame"
)

// handler serves one connection.
type handler struct {
	id       string
	db       *memory.Store
	conn     *Conn
	shutdown *shutdown.Signal
	token    *shutdown.Token
	release  func()
	limiter  *rate.Limiter
	logger   logger.Logger
	metrics  *metric.Registry
}

func (s *Server) newHandler(c net.Conn) *handler {
	id := ulid.Make().String()

	h := &handler{
		id:       id,
		db:       s.db,
		conn:     newConn(c, s.cfg.WriteTimeout),
		shutdown: s.notify.Subscribe(),
		token:    s.drain.Token(),
		release:  func() { s.limit.Release(1) },
		logger:   logger.ForConn(s.logger, id, c.RemoteAddr()),
		metrics:  s.metrics,
	}
	if s.cfg.RateLimit > 0 {
		h.limiter = rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateLimit)
	}
	return h
}

// serve runs the handler and releases its admission slot and drain
// token on every exit path.
func (h *handler) serve() {
	h.metrics.ConnOpened()
	defer func() {
		_ = h.conn.Close()
		h.metrics.ConnClosed()
		h.release()
		h.token.Release()
	}()

	h.logger.Debug("connection accepted")
	if err := h.run(); err != nil {
		h.logger.Warn("connection error", "error", err)
		return
	}
	h.logger.Debug("connection closed")
}

// run reads and executes requests until the peer disconnects, a fatal
// error occurs, or shutdown is signalled.
func (h *handler) run() error {
	frames := h.conn.Frames()

	for !h.shutdown.IsShutdown() {
		var res readResult
		var ok bool
		select {
		case res, ok = <-frames:
			if !ok {
				return nil
			}
		case <-h.shutdown.Done():
			return nil
		}

		if res.err != nil {
			if errors.Is(res.err, io.EOF) {
				return nil
			}
			if errors.Is(res.err, frame.ErrProtocol) || errors.Is(res.err, frame.ErrLimitExceeded) {
				_ = h.conn.WriteFrame(frame.Error("ERR protocol error: " + res.err.Error()))
			}
			return res.err
		}

		cmd, err := FromFrame(res.frame)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				h.logger.Debug("invalid command", "error", err)
				if err := h.conn.WriteFrame(frame.Error(pe.Reply())); err != nil {
					return err
				}
				continue
			}
			return err
		}

		if h.limiter != nil && !h.limiter.Allow() {
			if err := h.conn.WriteFrame(frame.Error("ERR rate limit exceeded")); err != nil {
				return err
			}
			continue
		}

		start := time.Now()
		err = apply(cmd, h.db, h.conn, h.shutdown)
		h.metrics.ObserveCommand(metricName(cmd), err, time.Since(start))
		if err != nil {
			h.logger.Debug("command aborted connection", logger.KeyCommand, metricName(cmd))
			return err
		}
	}
	return nil
}

// metricName bounds the command label to the known verbs.
func metricName(cmd Command) string {
	if _, ok := cmd.(*Unknown); ok {
		return "unknown"
	}
	return cmd.Name()
}
