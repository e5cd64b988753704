package command

import (
	"errors"

	"github.com/urfave/cli/v2"
)

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the value of a key",
		ArgsUsage: "KEY",
		Action: withRunner(func(c *cli.Context, r *runner) error {
			if err := requireArgs(c, 1, 1); err != nil {
				return err
			}
			return r.get(c.Context, c.Args().First())
		}),
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Set a key to a value",
		ArgsUsage: "KEY VALUE",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "expires",
				Aliases: []string{"e"},
				Usage:   "expire the key after this duration (e.g. 60s)",
			},
		},
		Action: withRunner(func(c *cli.Context, r *runner) error {
			if err := requireArgs(c, 2, 2); err != nil {
				return err
			}
			if c.IsSet("expires") && c.Duration("expires") <= 0 {
				return errors.New("expires must be positive")
			}
			return r.set(c.Context, c.Args().Get(0), c.Args().Get(1), c.Duration("expires"))
		}),
	}
}

// PublishCommand returns the publish command.
func PublishCommand() *cli.Command {
	return &cli.Command{
		Name:      "publish",
		Usage:     "Publish a message to a channel",
		ArgsUsage: "CHANNEL MESSAGE",
		Action: withRunner(func(c *cli.Context, r *runner) error {
			if err := requireArgs(c, 2, 2); err != nil {
				return err
			}
			return r.publish(c.Context, c.Args().Get(0), c.Args().Get(1))
		}),
	}
}

// SubscribeCommand returns the subscribe command.
func SubscribeCommand() *cli.Command {
	return &cli.Command{
		Name:      "subscribe",
		Usage:     "Print messages published to channels",
		ArgsUsage: "CHANNEL...",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "exit after this many messages (0 = run until interrupted)",
			},
		},
		Action: withRunner(func(c *cli.Context, r *runner) error {
			if err := requireArgs(c, 1, -1); err != nil {
				return err
			}
			return r.subscribe(c.Context, c.Args().Slice(), c.Int("count"))
		}),
	}
}
