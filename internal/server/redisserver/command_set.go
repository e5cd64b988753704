package redisserver

import (
	"strings"
	"time"

	"github.com/yndnr/rudis-go/internal/storage/memory"
	"github.com/yndnr/rudis-go/pkg/frame"
)

// Set is SET key value [EX seconds | PX milliseconds].
type Set struct {
	Key   string
	Value []byte
	// Expire is zero when the key never expires.
	Expire time.Duration
}

func parseSet(p *parse) (*Set, error) {
	key, err := p.nextString()
	if err != nil {
		return nil, err
	}
	value, err := p.nextBytes()
	if err != nil {
		return nil, err
	}
	cmd := &Set{Key: key, Value: value}

	if p.remaining() == 0 {
		return cmd, nil
	}

	opt, err := p.nextString()
	if err != nil {
		return nil, err
	}

	var unit time.Duration
	switch strings.ToUpper(opt) {
	case "EX":
		unit = time.Second
	case "PX":
		unit = time.Millisecond
	default:
		return nil, parseErrorf("syntax error")
	}

	n, err := p.nextInt()
	if err != nil {
		if err == errEndOfStream {
			return nil, parseErrorf("syntax error")
		}
		return nil, err
	}
	if n <= 0 || n > int64(maxExpire/unit) {
		return nil, parseErrorf("invalid expire time in 'set' command")
	}
	cmd.Expire = time.Duration(n) * unit
	return cmd, nil
}

// maxExpire keeps now+ttl from overflowing.
const maxExpire = 100 * 365 * 24 * time.Hour

func (*Set) Name() string { return "set" }

func (*Set) command() {}

func (c *Set) apply(db *memory.Store, dst *Conn) error {
	db.Set(c.Key, c.Value, c.Expire)
	return dst.WriteFrame(frame.Simple("OK"))
}
