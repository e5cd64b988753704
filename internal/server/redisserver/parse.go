package redisserver

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/yndnr/rudis-go/pkg/frame"
)

var (
	// errEndOfStream means a command asked for more arguments than sent.
	errEndOfStream = errors.New("protocol error; unexpected end of stream")
	// errTrailing means arguments were left after a command's fields.
	errTrailing = errors.New("protocol error; expected end of frame")
)

// ParseError is a malformed request. It is answered with an error frame
// and the connection stays open.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	return e.Msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Reply renders the error as a RESP error message.
func (e *ParseError) Reply() string {
	return "ERR " + e.Msg
}

func parseErrorf(format string, args ...any) *ParseError {
	return &ParseError{Msg: fmt.Sprintf(format, args...)}
}

func wrongArgs(name string, cause error) *ParseError {
	return &ParseError{
		Msg: fmt.Sprintf("wrong number of arguments for '%s' command", name),
		Err: cause,
	}
}

// parse is a cursor over the elements of a request array.
type parse struct {
	parts []frame.Frame
	pos   int
}

func newParse(f frame.Frame) (*parse, error) {
	if f.Kind != frame.KindArray {
		return nil, parseErrorf("protocol error; expected array, got %s", f.Kind)
	}
	return &parse{parts: f.Items}, nil
}

func (p *parse) next() (frame.Frame, error) {
	if p.pos >= len(p.parts) {
		return frame.Frame{}, errEndOfStream
	}
	f := p.parts[p.pos]
	p.pos++
	return f, nil
}

// nextString returns the next element as a string. Simple and bulk
// strings are accepted.
func (p *parse) nextString() (string, error) {
	f, err := p.next()
	if err != nil {
		return "", err
	}
	switch f.Kind {
	case frame.KindSimple:
		return f.Str, nil
	case frame.KindBulk:
		return string(f.Bulk), nil
	default:
		return "", parseErrorf("protocol error; expected simple or bulk string, got %s", f.Kind)
	}
}

// nextBytes returns the next element as raw bytes.
func (p *parse) nextBytes() ([]byte, error) {
	f, err := p.next()
	if err != nil {
		return nil, err
	}
	switch f.Kind {
	case frame.KindSimple:
		return []byte(f.Str), nil
	case frame.KindBulk:
		return f.Bulk, nil
	default:
		return nil, parseErrorf("protocol error; expected simple or bulk string, got %s", f.Kind)
	}
}

// nextInt returns the next element as an integer. Integer frames and
// strings holding a decimal number are accepted.
func (p *parse) nextInt() (int64, error) {
	f, err := p.next()
	if err != nil {
		return 0, err
	}

	var s string
	switch f.Kind {
	case frame.KindInteger:
		return f.Int, nil
	case frame.KindSimple:
		s = f.Str
	case frame.KindBulk:
		s = string(f.Bulk)
	default:
		return 0, parseErrorf("protocol error; expected integer, got %s", f.Kind)
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &ParseError{Msg: "value is not an integer or out of range", Err: err}
	}
	return n, nil
}

// finish fails when elements remain unconsumed.
func (p *parse) finish() error {
	if p.pos < len(p.parts) {
		return errTrailing
	}
	return nil
}

// remaining reports how many elements are left.
func (p *parse) remaining() int {
	return len(p.parts) - p.pos
}
