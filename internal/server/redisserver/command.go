package redisserver

import (
	"errors"
	"strings"

	"github.com/yndnr/rudis-go/internal/infra/shutdown"
	"github.com/yndnr/rudis-go/internal/storage/memory"
	"github.com/yndnr/rudis-go/pkg/frame"
)

// ErrNotSubscribed aborts a connection that sends UNSUBSCRIBE outside
// subscribe mode.
var ErrNotSubscribed = errors.New("UNSUBSCRIBE is only valid in subscribe mode")

// Command is a parsed client request. The set of commands is closed:
// every implementation lives in this package.
type Command interface {
	// Name returns the lowercased command verb.
	Name() string

	command()
}

// FromFrame parses a request frame into a Command.
//
// Verbs are matched case-insensitively. An unrecognized verb yields
// *Unknown rather than an error. Malformed arguments yield *ParseError.
func FromFrame(f frame.Frame) (Command, error) {
	p, err := newParse(f)
	if err != nil {
		return nil, err
	}

	verb, err := p.nextString()
	if err != nil {
		if err == errEndOfStream {
			return nil, parseErrorf("empty command")
		}
		return nil, err
	}
	name := strings.ToLower(verb)

	var cmd Command
	switch name {
	case "get":
		cmd, err = parseGet(p)
	case "set":
		cmd, err = parseSet(p)
	case "publish":
		cmd, err = parsePublish(p)
	case "subscribe":
		cmd, err = parseSubscribe(p)
	case "unsubscribe":
		cmd, err = parseUnsubscribe(p)
	default:
		// Remaining arguments are ignored.
		return &Unknown{Verb: name}, nil
	}
	if err != nil {
		return nil, asParseError(name, err)
	}

	if err := p.finish(); err != nil {
		return nil, wrongArgs(name, err)
	}
	return cmd, nil
}

// asParseError maps cursor errors onto the reply a client sees.
func asParseError(name string, err error) error {
	if err == errEndOfStream || err == errTrailing {
		return wrongArgs(name, err)
	}
	return err
}

// apply executes cmd against db, writing replies to dst.
//
// A returned error is fatal to the connection. Errors the client should
// see are written as error frames and are not returned.
func apply(cmd Command, db *memory.Store, dst *Conn, sig *shutdown.Signal) error {
	switch cmd := cmd.(type) {
	case *Get:
		return cmd.apply(db, dst)
	case *Set:
		return cmd.apply(db, dst)
	case *Publish:
		return cmd.apply(db, dst)
	case *Subscribe:
		return cmd.apply(db, dst, sig)
	case *Unsubscribe:
		if err := dst.WriteFrame(frame.Error("ERR " + ErrNotSubscribed.Error())); err != nil {
			return err
		}
		return ErrNotSubscribed
	case *Unknown:
		return cmd.apply(dst)
	default:
		panic("redisserver: unhandled command type")
	}
}

// Unknown is a command with an unrecognized verb.
type Unknown struct {
	Verb string
}

func (c *Unknown) Name() string { return c.Verb }

func (*Unknown) command() {}

func (c *Unknown) apply(dst *Conn) error {
	return dst.WriteFrame(frame.Error("ERR unknown command '" + c.Verb + "'"))
}
