package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rudis-go/internal/cli/repl"
)

// ReplCommand returns the interactive mode command.
func ReplCommand() *cli.Command {
	return &cli.Command{
		Name:   "repl",
		Usage:  "Start interactive mode",
		Action: runREPL,
	}
}

func runREPL(c *cli.Context) error {
	if c.NArg() > 0 {
		return fmt.Errorf("unknown command %q", c.Args().First())
	}

	cfg := settings(c)
	r, err := newRunner(cfg, c.App.Writer)
	if err != nil {
		return err
	}
	defer r.Close()

	history := repl.NewHistory()
	if path := c.String("history"); path != "" {
		history = repl.NewHistoryFile(path)
	}

	fmt.Fprintf(c.App.Writer, "rudis-cli %s, server %s\n", c.App.Version, cfg.Addr())
	return repl.NewWithIO(r.exec, c.App.Reader, c.App.Writer, history).Run(c.Context)
}
