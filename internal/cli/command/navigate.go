package command

import (
	"context"
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hyperlocal-go/internal/cli/app"
	"github.com/yndnr/hyperlocal-go/internal/cli/guard"
	"github.com/yndnr/hyperlocal-go/internal/cli/output"
	"github.com/yndnr/hyperlocal-go/internal/core/domain"
)

// OpenCommand returns the open command.
func OpenCommand() *cli.Command {
	return &cli.Command{
		Name:      "open",
		Aliases:   []string{"go"},
		Usage:     "Navigate to a page, applying the login rules",
		ArgsUsage: "PATH",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "list", Aliases: []string{"l"}, Usage: "List the known pages"},
		},
		Action: open,
	}
}

// BackCommand returns the back command.
func BackCommand() *cli.Command {
	return &cli.Command{
		Name:   "back",
		Usage:  "Return to the previous page",
		Action: back,
	}
}

// DashboardCommand returns the dashboard command.
func DashboardCommand() *cli.Command {
	return &cli.Command{
		Name:   "dashboard",
		Usage:  "Show booking statistics and recent bookings",
		Action: dashboard,
	}
}

// pageView describes one route for `open --list`.
type pageView struct {
	Path   string `json:"path" yaml:"path"`
	Access string `json:"access" yaml:"access"`
	Title  string `json:"title" yaml:"title"`
}

func open(c *cli.Context) error {
	a, err := getApp(c)
	if err != nil {
		return err
	}

	if c.Bool("list") {
		routes := a.Guard.Routes()
		pages := make([]pageView, len(routes))
		for i, r := range routes {
			pages[i] = pageView{Path: r.Path, Access: r.Access.String(), Title: r.Title}
		}
		return render(c, pages)
	}

	if c.NArg() != 1 {
		return errors.New("usage: open PATH")
	}
	d := a.Navigator.Navigate(c.Args().First())
	reportMove(c, d)
	return nil
}

func back(c *cli.Context) error {
	a, err := getApp(c)
	if err != nil {
		return err
	}
	reportMove(c, a.Navigator.Back())
	return nil
}

func reportMove(c *cli.Context, d guard.Decision) {
	if d.Allowed {
		printf(c, "%s\n", d.Target)
		return
	}
	printf(c, "%s (redirected: %s)\n", d.Target, d.Reason)
}

func dashboard(c *cli.Context) error {
	a, err := getApp(c)
	if err != nil {
		return err
	}

	var dash *app.Dashboard
	err = withSpinner(c, "Loading dashboard", func(ctx context.Context) error {
		var err error
		dash, err = a.LoadDashboard(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if !isTable(c) {
		return render(c, dash)
	}

	printf(c, "Welcome back, %s!\n\n", displayName(dash.User))
	chart := &output.BarChart{Total: dash.Stats.Total, Width: output.DefaultBarWidth}
	chart.Add("Active", dash.Stats.Active)
	chart.Add("Completed", dash.Stats.Completed)
	chart.Add("Cancelled", dash.Stats.Cancelled)
	printf(c, "Total bookings: %d\n", dash.Stats.Total)
	if err := chart.Table().RenderWithOptions(c.App.Writer, true); err != nil {
		return err
	}

	if len(dash.Recent) == 0 {
		printf(c, "\nNo bookings yet. Create one with `booking create`.\n")
		return nil
	}
	printf(c, "\nRecent bookings:\n")
	return render(c, dash.Recent)
}

// require runs the guard for a protected page.
func require(c *cli.Context, a *app.App, page string) error {
	if _, err := a.Require(page); err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) && inREPL(c) {
			return errors.New("login required (you are now on /login)")
		}
		return err
	}
	return nil
}
