package redisserver

import (
	"net"
	"sync"
	"time"

	"github.com/yndnr/rudis-go/pkg/frame"
)

// readResult is one outcome of reading from the peer.
type readResult struct {
	frame frame.Frame
	err   error
}

// Conn is one client connection at the frame level.
//
// A single reader goroutine decodes frames into Frames() so the handler
// can select between the next request and other events. Writes happen
// only on the handler goroutine.
type Conn struct {
	netConn      net.Conn
	r            *frame.Reader
	w            *frame.Writer
	writeTimeout time.Duration

	frames    chan readResult
	stop      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

func newConn(c net.Conn, writeTimeout time.Duration) *Conn {
	return &Conn{
		netConn:      c,
		r:            frame.NewReader(c),
		w:            frame.NewWriter(c),
		writeTimeout: writeTimeout,
		frames:       make(chan readResult),
		stop:         make(chan struct{}),
	}
}

// Frames returns the stream of decoded frames. The last value carries
// the read error (io.EOF on a clean close), after which the channel
// is closed.
//
// The reader runs one frame ahead of the consumer. A request that was
// already decoded when shutdown is observed is dropped unanswered.
func (c *Conn) Frames() <-chan readResult {
	c.startOnce.Do(func() {
		go c.readLoop()
	})
	return c.frames
}

func (c *Conn) readLoop() {
	defer close(c.frames)
	for {
		f, err := c.r.ReadFrame()
		select {
		case c.frames <- readResult{frame: f, err: err}:
		case <-c.stop:
			return
		}
		if err != nil {
			return
		}
	}
}

// WriteFrame writes f and flushes it to the peer.
func (c *Conn) WriteFrame(f frame.Frame) error {
	if c.writeTimeout > 0 {
		if err := c.netConn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	if err := c.w.WriteFrame(f); err != nil {
		return err
	}
	return c.w.Flush()
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// Close closes the socket and stops the reader goroutine.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stop)
		err = c.netConn.Close()
	})
	return err
}
