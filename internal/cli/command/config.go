package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hyperlocal-go/internal/cli/config"
	"github.com/yndnr/hyperlocal-go/internal/cli/output"
	"github.com/yndnr/hyperlocal-go/internal/telemetry/logger"
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
				Name:   "validate",
				Usage:  "Validate the configuration",
				Action: configValidate,
			},
			{
				Name:  "init",
				Usage: "Write a default configuration file",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Overwrite an existing file"},
				},
				Action: configInit,
			},
			{
				Name:   "path",
				Usage:  "Print the configuration file path",
				Action: configPath,
			},
		},
	}
}

func configFile(c *cli.Context) string {
	if p := ParseGlobalFlags(c).ConfigFile; p != "" {
		return config.ExpandPath(p)
	}
	return config.DefaultConfigPath()
}

func loadConfig(c *cli.Context) (*config.CLIConfig, error) {
	flags := ParseGlobalFlags(c)
	return config.Load(flags.ConfigFile, flags.overrides())
}

func configShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	shown := *cfg
	if shown.Session.EncryptionKey != "" {
		shown.Session.EncryptionKey = logger.RedactedValue
	}

	format, err := output.ParseFormat(ParseGlobalFlags(c).Output)
	if err != nil {
		return err
	}
	if format == output.FormatTable {
		format = output.FormatYAML
	}
	return output.NewFormatter(format, false).Format(c.App.Writer, shown)
}

func configValidate(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	printf(c, "Configuration is valid.\n")
	return nil
}

func configInit(c *cli.Context) error {
	path := configFile(c)
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	cfg := config.Default()
	if u := ParseGlobalFlags(c).APIURL; u != "" {
		cfg.API.BaseURL = u
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	printf(c, "Wrote %s\n", path)
	return nil
}

func configPath(c *cli.Context) error {
	printf(c, "%s\n", configFile(c))
	return nil
}
