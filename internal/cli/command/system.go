package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/hyperlocal-go/internal/infra/buildinfo"
)

// MetricsCommand returns the metrics command.
func MetricsCommand() *cli.Command {
	return &cli.Command{
		Name:   "metrics",
		Usage:  "Print client metrics in Prometheus text format",
		Action: metrics,
	}
}

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show build information",
		Action: version,
	}
}

func metrics(c *cli.Context) error {
	a, err := getApp(c)
	if err != nil {
		return err
	}
	return a.Metrics.WriteText(c.App.Writer)
}

func version(c *cli.Context) error {
	return render(c, buildinfo.Get())
}
