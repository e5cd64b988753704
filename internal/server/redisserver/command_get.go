package redisserver

import (
	"github.com/yndnr/rudis-go/internal/storage/memory"
	"github.com/yndnr/rudis-go/pkg/frame"
)

// Get is GET key.
type Get struct {
	Key string
}

func parseGet(p *parse) (*Get, error) {
	key, err := p.nextString()
	if err != nil {
		return nil, err
	}
	return &Get{Key: key}, nil
}

func (*Get) Name() string { return "get" }

func (*Get) command() {}

// apply replies with the value as a bulk string, or null when absent.
func (c *Get) apply(db *memory.Store, dst *Conn) error {
	value, ok := db.Get(c.Key)
	if !ok {
		return dst.WriteFrame(frame.Null())
	}
	return dst.WriteFrame(frame.Bulk(value))
}
