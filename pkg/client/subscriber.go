package client

import (
	"context"
	"errors"
	"io"
	"slices"

	"github.com/yndnr/rudis-go/pkg/frame"
)

// Message is one published message.
type Message struct {
	Channel string
	Content []byte
}

// Subscriber is a client in subscribe mode.
type Subscriber struct {
	client   *Client
	channels []string
	// pending holds messages that arrived while waiting for a
	// subscribe or unsubscribe confirmation.
	pending []Message
}

// Channels returns the channels currently subscribed to.
func (s *Subscriber) Channels() []string {
	out := make([]string, len(s.channels))
	copy(out, s.channels)
	return out
}

// NextMessage blocks until a message arrives. It returns io.EOF once
// the server closes the connection.
func (s *Subscriber) NextMessage(ctx context.Context) (Message, error) {
	if len(s.pending) > 0 {
		msg := s.pending[0]
		s.pending = s.pending[1:]
		return msg, nil
	}

	f, err := s.client.read(ctx)
	if err != nil {
		if errors.Is(err, ErrConnectionReset) {
			return Message{}, io.EOF
		}
		return Message{}, err
	}
	if msg, ok := asMessage(f); ok {
		return msg, nil
	}
	if f.IsError() {
		return Message{}, &ServerError{Msg: f.Str}
	}
	return Message{}, &UnexpectedReplyError{Command: "SUBSCRIBE", Reply: f}
}

// Subscribe adds channels to the subscription.
func (s *Subscriber) Subscribe(ctx context.Context, channels ...string) error {
	if len(channels) == 0 {
		return nil
	}
	if err := s.client.send(ctx, command("SUBSCRIBE", toBytes(channels)...)); err != nil {
		return err
	}

	for _, want := range channels {
		ch, _, err := s.confirm(ctx, "subscribe")
		if err != nil {
			return err
		}
		if ch != want {
			return &UnexpectedReplyError{Command: "SUBSCRIBE", Reply: frame.BulkString(ch)}
		}
		if !slices.Contains(s.channels, ch) {
			s.channels = append(s.channels, ch)
		}
	}
	return nil
}

// Unsubscribe drops channels from the subscription, or every channel
// when none are given.
func (s *Subscriber) Unsubscribe(ctx context.Context, channels ...string) error {
	if err := s.client.send(ctx, command("UNSUBSCRIBE", toBytes(channels)...)); err != nil {
		return err
	}

	replies := len(channels)
	if replies == 0 {
		// The server confirms at least once even with no channels.
		replies = max(len(s.channels), 1)
	}

	for range replies {
		ch, _, err := s.confirm(ctx, "unsubscribe")
		if err != nil {
			return err
		}
		s.channels = slices.DeleteFunc(s.channels, func(v string) bool { return v == ch })
	}
	return nil
}

// Close closes the connection.
func (s *Subscriber) Close() error {
	return s.client.Close()
}

// confirm reads until a [kind, channel, count] confirmation, queueing
// any messages received first.
func (s *Subscriber) confirm(ctx context.Context, kind string) (string, int64, error) {
	for {
		f, err := s.client.read(ctx)
		if err != nil {
			return "", 0, err
		}
		if msg, ok := asMessage(f); ok {
			s.pending = append(s.pending, msg)
			continue
		}
		if f.IsError() {
			return "", 0, &ServerError{Msg: f.Str}
		}

		if f.Kind == frame.KindArray && len(f.Items) == 3 &&
			bulkText(f.Items[0]) == kind && f.Items[2].Kind == frame.KindInteger {
			return bulkText(f.Items[1]), f.Items[2].Int, nil
		}
		return "", 0, &UnexpectedReplyError{Command: kind, Reply: f}
	}
}

// asMessage matches a ["message", channel, payload] push.
func asMessage(f frame.Frame) (Message, bool) {
	if f.Kind != frame.KindArray || len(f.Items) != 3 || bulkText(f.Items[0]) != "message" {
		return Message{}, false
	}
	payload := f.Items[2]
	if payload.Kind != frame.KindBulk {
		return Message{}, false
	}
	return Message{Channel: bulkText(f.Items[1]), Content: payload.Bulk}, true
}

func bulkText(f frame.Frame) string {
	switch f.Kind {
	case frame.KindBulk:
		return string(f.Bulk)
	case frame.KindSimple:
		return f.Str
	default:
		return ""
	}
}

func toBytes(ss []string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}
