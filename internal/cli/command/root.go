package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rudis-go/internal/cli/config"
	"github.com/yndnr/rudis-go/internal/cli/output"
	"github.com/yndnr/rudis-go/internal/infra/buildinfo"
)

const settingsKey = "settings"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "rudis-cli",
		Usage:   "rudis command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			GetCommand(),
			SetCommand(),
			PublishCommand(),
			SubscribeCommand(),
			ConfigCommand(),
			ReplCommand(),
		},
		Before:   before,
		Action:   runREPL,
		Metadata: make(map[string]any),
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "CLI config file (default ~/.rudis/cli.yaml)",
			EnvVars: []string{"RUDIS_CLI_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "host",
			Aliases: []string{"H"},
			Usage:   "server host",
			EnvVars: []string{"RUDIS_HOST"},
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "server port",
			EnvVars: []string{"RUDIS_PORT"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: text, json, yaml",
		},
		&cli.StringFlag{
			Name:    "history",
			Usage:   "interactive history file (default ~/.rudis/history)",
			EnvVars: []string{"RUDIS_HISTORY"},
		},
	}
}

// before loads the CLI config file and applies flag overrides.
func before(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	if c.IsSet("host") {
		cfg.Host = c.String("host")
	}
	if c.IsSet("port") {
		cfg.Port = c.Int("port")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d", cfg.Port)
	}
	if _, err := output.ParseFormat(cfg.Output); err != nil {
		return err
	}

	c.App.Metadata[settingsKey] = cfg
	return nil
}

// settings returns the configuration resolved by before.
func settings(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[settingsKey].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

// requireArgs checks the positional argument count.
func requireArgs(c *cli.Context, minArgs, maxArgs int) error {
	n := c.NArg()
	if n < minArgs || (maxArgs >= 0 && n > maxArgs) {
		return fmt.Errorf("usage: %s %s", c.Command.Name, c.Command.ArgsUsage)
	}
	return nil
}

// withRunner wraps an action with a runner bound to the resolved config.
func withRunner(fn func(c *cli.Context, r *runner) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		r, err := newRunner(settings(c), c.App.Writer)
		if err != nil {
			return err
		}
		defer r.Close()
		return fn(c, r)
	}
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
