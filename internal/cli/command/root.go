package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hyperlocal-go/internal/cli/app"
	"github.com/yndnr/hyperlocal-go/internal/cli/config"
	"github.com/yndnr/hyperlocal-go/internal/cli/connection"
	"github.com/yndnr/hyperlocal-go/internal/cli/output"
	"github.com/yndnr/hyperlocal-go/internal/core/domain"
	"github.com/yndnr/hyperlocal-go/internal/infra/buildinfo"
	"github.com/yndnr/hyperlocal-go/internal/storage"
)

// spinnerDelay hides the spinner for requests that answer quickly.
const spinnerDelay = 300 * time.Millisecond

// Metadata keys on cli.App.
const (
	metaApp   = "hyperlocal.app"
	metaOwned = "hyperlocal.owned"
	metaREPL  = "hyperlocal.repl"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:                 "hyperlocal-cli",
		Usage:                "Book local service providers from the terminal",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			LoginCommand(),
			RegisterCommand(),
			LogoutCommand(),
			WhoamiCommand(),
			OpenCommand(),
			BackCommand(),
			DashboardCommand(),
			ProfileCommand(),
			ProviderCommand(),
			BookingCommand(),
			ConfigCommand(),
			MetricsCommand(),
			VersionCommand(),
			REPLCommand(),
		},
		Before: before,
		After:  after,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (default ~/.hyperlocal/cli.yaml)",
			EnvVars: []string{"HYPERLOCAL_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "api-url",
			Aliases: []string{"u"},
			Usage:   "Backend base URL",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
		&cli.StringFlag{
			Name:  "session-backend",
			Usage: "Session storage: file, badger, memory, memory-kv",
		},
		&cli.StringFlag{
			Name:  "session-path",
			Usage: "Session file or database directory",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	ConfigFile     string
	APIURL         string
	Output         string
	Wide           bool
	Verbose        bool
	SessionBackend string
	SessionPath    string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		ConfigFile:     c.String("config"),
		APIURL:         c.String("api-url"),
		Output:         c.String("output"),
		Wide:           c.Bool("wide"),
		Verbose:        c.Bool("verbose"),
		SessionBackend: c.String("session-backend"),
		SessionPath:    c.String("session-path"),
	}
}

// overrides maps set flags onto config keys.
func (f *GlobalFlags) overrides() map[string]any {
	m := make(map[string]any)
	if f.APIURL != "" {
		m["api.base_url"] = f.APIURL
	}
	if f.Output != "" {
		m["output"] = f.Output
	}
	if f.Verbose {
		m["log.level"] = "debug"
	}
	if f.SessionBackend != "" {
		m["session.backend"] = f.SessionBackend
	}
	if f.SessionPath != "" {
		m["session.path"] = f.SessionPath
	}
	return m
}

// before builds the application unless one was handed in by the REPL.
func before(c *cli.Context) error {
	if _, ok := c.App.Metadata[metaApp].(*app.App); ok {
		return nil
	}
	if !needsApp(c) {
		return nil
	}

	flags := ParseGlobalFlags(c)
	cfg, err := config.Load(flags.ConfigFile, flags.overrides())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a, err := app.New(c.Context, cfg, app.WithLogOutput(c.App.ErrWriter))
	if err != nil {
		return err
	}
	c.App.Metadata[metaApp] = a
	c.App.Metadata[metaOwned] = true
	return nil
}

// needsApp reports whether the invoked command talks to the session or
// backend. Config, version and help run without building the client.
func needsApp(c *cli.Context) bool {
	switch c.Args().First() {
	case "", "help", "h", "config", "version":
		return false
	}
	return true
}

func after(c *cli.Context) error {
	if owned, _ := c.App.Metadata[metaOwned].(bool); !owned {
		return nil
	}
	a, ok := c.App.Metadata[metaApp].(*app.App)
	if !ok {
		return nil
	}
	delete(c.App.Metadata, metaApp)
	delete(c.App.Metadata, metaOwned)
	return a.Close()
}

// getApp retrieves the application from context.
func getApp(c *cli.Context) (*app.App, error) {
	if a, ok := c.App.Metadata[metaApp].(*app.App); ok {
		return a, nil
	}
	return nil, errors.New("client not initialised")
}

// inREPL reports whether the command runs inside the interactive shell.
func inREPL(c *cli.Context) bool {
	v, _ := c.App.Metadata[metaREPL].(bool)
	return v
}

// render writes data in the selected output format.
func render(c *cli.Context, data any) error {
	flags := ParseGlobalFlags(c)
	name := flags.Output
	if name == "" {
		if a, err := getApp(c); err == nil {
			name = a.Config.Output
		}
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return err
	}
	return output.NewFormatter(format, flags.Wide).Format(c.App.Writer, data)
}

// isTable reports whether output goes to a human-readable table.
func isTable(c *cli.Context) bool {
	name := ParseGlobalFlags(c).Output
	if name == "" {
		if a, err := getApp(c); err == nil {
			name = a.Config.Output
		}
	}
	f, err := output.ParseFormat(name)
	return err == nil && f == output.FormatTable
}

// printf writes a human-readable line to the app's writer.
func printf(c *cli.Context, format string, args ...any) {
	fmt.Fprintf(c.App.Writer, format, args...)
}

// withSpinner runs fn while showing a spinner on an interactive stderr.
func withSpinner(c *cli.Context, message string, fn func(ctx context.Context) error) error {
	if !output.IsTerminal(c.App.ErrWriter) {
		return fn(c.Context)
	}
	s := output.NewSpinner(c.App.ErrWriter, message).WithDelay(spinnerDelay)
	s.Start()
	err := fn(c.Context)
	s.Stop()
	return err
}

// Describe turns an error into the message shown to the user.
func Describe(err error) string {
	var verr *domain.ValidationError
	var apiErr *connection.APIError
	var derr *domain.Error
	switch {
	case errors.As(err, &verr):
		fields := make([]string, 0, len(verr.Fields))
		for field := range verr.Fields {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		msgs := make([]string, len(fields))
		for i, field := range fields {
			msgs[i] = verr.Fields[field]
		}
		return strings.Join(msgs, "; ")
	case errors.Is(err, connection.ErrUnauthorized):
		return "session expired, please log in again"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "not logged in (run `hyperlocal-cli login`)"
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, connection.ErrNetwork):
		return "cannot reach the server: " + err.Error()
	case errors.Is(err, storage.ErrLocked):
		return "the session database is open in another hyperlocal-cli process; use the file backend to share a session"
	case errors.As(err, &derr):
		if derr.Details != "" {
			return derr.Message + ": " + derr.Details
		}
		return derr.Message
	default:
		return err.Error()
	}
}

// PrintError prints an error message.
func PrintError(w io.Writer, err error) {
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "error: %s\n", Describe(err))
}
