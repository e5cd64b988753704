package redisserver

import (
	"errors"
	"io"
	"sort"

	"github.com/yndnr/rudis-go/internal/infra/shutdown"
	"github.com/yndnr/rudis-go/internal/storage/memory"
	"github.com/yndnr/rudis-go/pkg/frame"
)

// Subscribe is SUBSCRIBE channel [channel ...].
//
// It puts the connection in subscribe mode: published messages are
// pushed to the client, and only SUBSCRIBE and UNSUBSCRIBE are accepted
// until the last channel is dropped or the connection ends.
type Subscribe struct {
	Channels []string
}

func parseSubscribe(p *parse) (*Subscribe, error) {
	first, err := p.nextString()
	if err != nil {
		return nil, err
	}
	channels := []string{first}
	for p.remaining() > 0 {
		ch, err := p.nextString()
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return &Subscribe{Channels: channels}, nil
}

func (*Subscribe) Name() string { return "subscribe" }

func (*Subscribe) command() {}

// Unsubscribe is UNSUBSCRIBE [channel ...]. With no channels it drops
// every subscription of the connection.
type Unsubscribe struct {
	Channels []string
}

func parseUnsubscribe(p *parse) (*Unsubscribe, error) {
	var channels []string
	for p.remaining() > 0 {
		ch, err := p.nextString()
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return &Unsubscribe{Channels: channels}, nil
}

func (*Unsubscribe) Name() string { return "unsubscribe" }

func (*Unsubscribe) command() {}

// subscription is one channel the connection listens on. The forwarder
// goroutine moves messages into the connection's merged stream.
type subscription struct {
	sub  *memory.Subscription
	stop chan struct{}
}

func (s *subscription) forward(out chan<- memory.Message) {
	for msg := range s.sub.C() {
		select {
		case out <- msg:
		case <-s.stop:
			return
		}
	}
}

func (s *subscription) close() {
	close(s.stop)
	s.sub.Close()
}

// subscriber is the per-connection subscribe-mode state.
type subscriber struct {
	db       *memory.Store
	dst      *Conn
	subs     map[string]*subscription
	messages chan memory.Message
}

func (s *subscriber) add(channel string) error {
	if _, ok := s.subs[channel]; !ok {
		sub := &subscription{
			sub:  s.db.Subscribe(channel),
			stop: make(chan struct{}),
		}
		s.subs[channel] = sub
		go sub.forward(s.messages)
	}

	return s.dst.WriteFrame(frame.Array(
		frame.BulkString("subscribe"),
		frame.BulkString(channel),
		frame.Integer(int64(len(s.subs))),
	))
}

func (s *subscriber) remove(channels []string) error {
	if len(channels) == 0 {
		channels = make([]string, 0, len(s.subs))
		for ch := range s.subs {
			channels = append(channels, ch)
		}
		sort.Strings(channels)

		if len(channels) == 0 {
			return s.dst.WriteFrame(frame.Array(
				frame.BulkString("unsubscribe"),
				frame.Null(),
				frame.Integer(0),
			))
		}
	}

	for _, ch := range channels {
		if sub, ok := s.subs[ch]; ok {
			sub.close()
			delete(s.subs, ch)
		}
		err := s.dst.WriteFrame(frame.Array(
			frame.BulkString("unsubscribe"),
			frame.BulkString(ch),
			frame.Integer(int64(len(s.subs))),
		))
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *subscriber) closeAll() {
	for ch, sub := range s.subs {
		sub.close()
		delete(s.subs, ch)
	}
}

// apply runs the subscribe-mode loop. It returns when the client drops
// its last channel, the connection closes, or the server shuts down.
func (c *Subscribe) apply(db *memory.Store, dst *Conn, sig *shutdown.Signal) error {
	s := &subscriber{
		db:       db,
		dst:      dst,
		subs:     make(map[string]*subscription),
		messages: make(chan memory.Message),
	}
	defer s.closeAll()

	for _, ch := range c.Channels {
		if err := s.add(ch); err != nil {
			return err
		}
	}

	frames := dst.Frames()
	for len(s.subs) > 0 {
		select {
		case msg := <-s.messages:
			err := dst.WriteFrame(frame.Array(
				frame.BulkString("message"),
				frame.BulkString(msg.Channel),
				frame.Bulk(msg.Payload),
			))
			if err != nil {
				return err
			}

		case res, ok := <-frames:
			if !ok {
				return nil
			}
			if res.err != nil {
				if errors.Is(res.err, io.EOF) {
					return nil
				}
				return res.err
			}
			if err := s.handle(res.frame); err != nil {
				return err
			}

		case <-sig.Done():
			return nil
		}
	}
	return nil
}

// handle processes one request received in subscribe mode.
func (s *subscriber) handle(f frame.Frame) error {
	cmd, err := FromFrame(f)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return s.dst.WriteFrame(frame.Error(pe.Reply()))
		}
		return err
	}

	switch cmd := cmd.(type) {
	case *Subscribe:
		for _, ch := range cmd.Channels {
			if err := s.add(ch); err != nil {
				return err
			}
		}
		return nil
	case *Unsubscribe:
		return s.remove(cmd.Channels)
	default:
		unknown := &Unknown{Verb: cmd.Name()}
		return unknown.apply(s.dst)
	}
}
