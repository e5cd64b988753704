package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/rudis-go/internal/cli/config"
	"github.com/yndnr/rudis-go/internal/cli/output"
	"github.com/yndnr/rudis-go/pkg/client"
)

// runner executes commands against one server, reusing its connection
// across calls.
type runner struct {
	cfg    *config.CLIConfig
	out    io.Writer
	format output.Formatter
	client *client.Client
}

func newRunner(cfg *config.CLIConfig, out io.Writer) (*runner, error) {
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}
	return &runner{
		cfg:    cfg,
		out:    out,
		format: output.NewFormatter(format),
	}, nil
}

// Close closes the connection if one is open.
func (r *runner) Close() error {
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

func (r *runner) conn(ctx context.Context) (*client.Client, error) {
	if r.client != nil {
		return r.client, nil
	}
	cl, err := client.Connect(ctx, r.cfg.Addr())
	if err != nil {
		return nil, err
	}
	r.client = cl
	return cl, nil
}

// check drops the connection after any error other than an error reply,
// so the next call redials.
func (r *runner) check(err error) error {
	var serverErr *client.ServerError
	if err != nil && !errors.As(err, &serverErr) {
		r.Close()
	}
	return err
}

func (r *runner) get(ctx context.Context, key string) error {
	cl, err := r.conn(ctx)
	if err != nil {
		return err
	}
	val, found, err := cl.Get(ctx, key)
	if err := r.check(err); err != nil {
		return err
	}

	res := output.Value{Key: key}
	if found {
		s := string(val)
		res.Value = &s
	}
	return r.format.Format(r.out, res)
}

func (r *runner) set(ctx context.Context, key, value string, ttl time.Duration) error {
	cl, err := r.conn(ctx)
	if err != nil {
		return err
	}
	if ttl > 0 {
		err = cl.SetExpires(ctx, key, []byte(value), ttl)
	} else {
		err = cl.Set(ctx, key, []byte(value))
	}
	if err := r.check(err); err != nil {
		return err
	}
	return r.format.Format(r.out, output.Status{Status: "OK"})
}

func (r *runner) publish(ctx context.Context, channel, message string) error {
	cl, err := r.conn(ctx)
	if err != nil {
		return err
	}
	n, err := cl.Publish(ctx, channel, []byte(message))
	if err := r.check(err); err != nil {
		return err
	}
	return r.format.Format(r.out, output.Published{Channel: channel, Receivers: n})
}

// subscribe prints messages until limit messages arrived (limit <= 0
// means no limit), ctx ends or the server closes the connection. It uses
// a dedicated connection since subscribe mode takes over the stream.
func (r *runner) subscribe(ctx context.Context, channels []string, limit int) error {
	cl, err := client.Connect(ctx, r.cfg.Addr())
	if err != nil {
		return err
	}
	sub, err := cl.Subscribe(ctx, channels...)
	if err != nil {
		cl.Close()
		return err
	}
	defer sub.Close()

	for n := 0; limit <= 0 || n < limit; n++ {
		msg, err := sub.NextMessage(ctx)
		switch {
		case errors.Is(err, io.EOF), ctx.Err() != nil:
			return nil
		case err != nil:
			return err
		}
		if err := r.format.Format(r.out, output.Message{Channel: msg.Channel, Content: string(msg.Content)}); err != nil {
			return err
		}
	}
	return nil
}

// exec runs one interactive command line.
func (r *runner) exec(ctx context.Context, args []string) error {
	verb := strings.ToLower(args[0])
	args = args[1:]

	switch verb {
	case "get":
		if len(args) != 1 {
			return wrongArgs(verb)
		}
		return r.get(ctx, args[0])
	case "set":
		key, value, ttl, err := parseSetArgs(args)
		if err != nil {
			return err
		}
		return r.set(ctx, key, value, ttl)
	case "publish":
		if len(args) != 2 {
			return wrongArgs(verb)
		}
		return r.publish(ctx, args[0], args[1])
	case "subscribe":
		if len(args) == 0 {
			return wrongArgs(verb)
		}
		return r.subscribe(ctx, args, 0)
	case "config":
		if len(args) != 1 || strings.ToLower(args[0]) != "show" {
			return errors.New("usage: config show")
		}
		return r.format.Format(r.out, r.cfg)
	default:
		return fmt.Errorf("unknown command '%s'", verb)
	}
}

func wrongArgs(verb string) error {
	return fmt.Errorf("wrong number of arguments for '%s'", verb)
}

// parseSetArgs parses KEY VALUE [EX seconds|PX milliseconds].
func parseSetArgs(args []string) (key, value string, ttl time.Duration, err error) {
	switch len(args) {
	case 2:
		return args[0], args[1], 0, nil
	case 4:
	default:
		return "", "", 0, wrongArgs("set")
	}

	n, err := strconv.ParseInt(args[3], 10, 64)
	if err != nil || n <= 0 {
		return "", "", 0, fmt.Errorf("invalid expire time %q", args[3])
	}
	switch strings.ToUpper(args[2]) {
	case "EX":
		ttl = time.Duration(n) * time.Second
	case "PX":
		ttl = time.Duration(n) * time.Millisecond
	default:
		return "", "", 0, fmt.Errorf("syntax error near %q", args[2])
	}
	return args[0], args[1], ttl, nil
}
