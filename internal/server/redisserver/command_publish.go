package redisserver

import (
	"github.com/yndnr/rudis-go/internal/storage/memory"
	"github.com/yndnr/rudis-go/pkg/frame"
)

// Publish is PUBLISH channel message.
type Publish struct {
	Channel string
	Message []byte
}

func parsePublish(p *parse) (*Publish, error) {
	channel, err := p.nextString()
	if err != nil {
		return nil, err
	}
	msg, err := p.nextBytes()
	if err != nil {
		return nil, err
	}
	return &Publish{Channel: channel, Message: msg}, nil
}

func (*Publish) Name() string { return "publish" }

func (*Publish) command() {}

// apply replies with the number of subscribers the message was offered
// to at publish time.
func (c *Publish) apply(db *memory.Store, dst *Conn) error {
	n := db.Publish(c.Channel, c.Message)
	return dst.WriteFrame(frame.Integer(int64(n)))
}
