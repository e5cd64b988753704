package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rudis-go/internal/cli/config"
	"github.com/yndnr/rudis-go/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:   "save",
				Usage:  "Save the effective configuration to the config file",
				Action: configSave,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	cfg := settings(c)
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(c.App.Writer, cfg)
}

func configSave(c *cli.Context) error {
	path := c.String("config")
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if err := config.Save(settings(c), path); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "saved %s\n", path)
	return nil
}
