package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/yndnr/rudis-go/pkg/frame"
)

// ErrConnectionReset is returned when the server closes the connection
// before sending a reply.
var ErrConnectionReset = errors.New("connection reset by server")

// ServerError is an error reply sent by the server.
type ServerError struct {
	Msg string
}

func (e *ServerError) Error() string {
	return e.Msg
}

// UnexpectedReplyError is a well-formed reply of the wrong shape.
type UnexpectedReplyError struct {
	Command string
	Reply   frame.Frame
}

func (e *UnexpectedReplyError) Error() string {
	return fmt.Sprintf("unexpected %s reply: %s", e.Command, e.Reply)
}

// Client is a connection to a server.
type Client struct {
	conn net.Conn
	r    *frame.Reader
	w    *frame.Writer
}

// Connect dials addr over TCP.
func Connect(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return newClient(conn), nil
}

func newClient(conn net.Conn) *Client {
	return &Client{
		conn: conn,
		r:    frame.NewReader(conn),
		w:    frame.NewWriter(conn),
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Get returns the value stored at key. found is false when the key
// does not exist.
func (c *Client) Get(ctx context.Context, key string) (value []byte, found bool, err error) {
	reply, err := c.do(ctx, command("GET", []byte(key)))
	if err != nil {
		return nil, false, err
	}

	switch reply.Kind {
	case frame.KindBulk:
		return reply.Bulk, true, nil
	case frame.KindSimple:
		return []byte(reply.Str), true, nil
	case frame.KindNull:
		return nil, false, nil
	default:
		return nil, false, &UnexpectedReplyError{Command: "GET", Reply: reply}
	}
}

// Set stores value at key with no expiration.
func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	return c.set(ctx, command("SET", []byte(key), value))
}

// SetExpires stores value at key for ttl. The TTL is sent in
// milliseconds and must be at least one.
func (c *Client) SetExpires(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ms := ttl.Milliseconds()
	if ms <= 0 {
		return fmt.Errorf("invalid ttl %v: must be at least 1ms", ttl)
	}
	return c.set(ctx, command("SET", []byte(key), value, []byte("PX"), []byte(strconv.FormatInt(ms, 10))))
}

func (c *Client) set(ctx context.Context, req frame.Frame) error {
	reply, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if reply.Kind != frame.KindSimple || reply.Str != "OK" {
		return &UnexpectedReplyError{Command: "SET", Reply: reply}
	}
	return nil
}

// Publish posts message to channel and returns the number of
// subscribers it was offered to.
func (c *Client) Publish(ctx context.Context, channel string, message []byte) (int64, error) {
	reply, err := c.do(ctx, command("PUBLISH", []byte(channel), message))
	if err != nil {
		return 0, err
	}
	if reply.Kind != frame.KindInteger {
		return 0, &UnexpectedReplyError{Command: "PUBLISH", Reply: reply}
	}
	return reply.Int, nil
}

// Subscribe subscribes to channels and hands the connection over to
// the returned Subscriber. The Client must not be used afterwards.
func (c *Client) Subscribe(ctx context.Context, channels ...string) (*Subscriber, error) {
	if len(channels) == 0 {
		return nil, errors.New("subscribe: no channels")
	}
	s := &Subscriber{client: c}
	if err := s.Subscribe(ctx, channels...); err != nil {
		return nil, err
	}
	return s, nil
}

// do sends req and reads one reply. Error replies become *ServerError.
func (c *Client) do(ctx context.Context, req frame.Frame) (frame.Frame, error) {
	if err := c.send(ctx, req); err != nil {
		return frame.Frame{}, err
	}
	reply, err := c.read(ctx)
	if err != nil {
		return frame.Frame{}, err
	}
	if reply.IsError() {
		return frame.Frame{}, &ServerError{Msg: reply.Str}
	}
	return reply, nil
}

func (c *Client) send(ctx context.Context, req frame.Frame) error {
	stop := c.bind(ctx)
	defer stop()

	if err := c.w.WriteFrame(req); err != nil {
		return c.wrap(ctx, err)
	}
	if err := c.w.Flush(); err != nil {
		return c.wrap(ctx, err)
	}
	return nil
}

func (c *Client) read(ctx context.Context) (frame.Frame, error) {
	stop := c.bind(ctx)
	defer stop()

	f, err := c.r.ReadFrame()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return frame.Frame{}, ErrConnectionReset
		}
		return frame.Frame{}, c.wrap(ctx, err)
	}
	return f, nil
}

// bind applies ctx's deadline and cancellation to the connection for
// one operation.
func (c *Client) bind(ctx context.Context) (stop func() bool) {
	deadline, _ := ctx.Deadline()
	_ = c.conn.SetDeadline(deadline)
	return context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Unix(1, 0))
	})
}

// wrap reports ctx's error in place of the timeout it caused. Deadlines
// on the connection only ever come from ctx.
func (c *Client) wrap(ctx context.Context, err error) error {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		<-ctx.Done()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func command(name string, args ...[]byte) frame.Frame {
	f := frame.Array(frame.BulkString(name))
	for _, a := range args {
		f.Push(frame.Bulk(a))
	}
	return f
}
