package command

import (
	"context"
	"errors"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hyperlocal-go/internal/cli/app"
	"github.com/yndnr/hyperlocal-go/internal/cli/config"
	"github.com/yndnr/hyperlocal-go/internal/cli/repl"
	"github.com/yndnr/hyperlocal-go/internal/infra/confloader"
)

// REPLCommand returns the interactive shell command.
func REPLCommand() *cli.Command {
	return &cli.Command{
		Name:    "repl",
		Aliases: []string{"shell"},
		Usage:   "Start an interactive session",
		Action:  runREPL,
	}
}

// shell runs REPL lines through a fresh command tree bound to one App.
type shell struct {
	app     *app.App
	out     io.Writer
	errOut  io.Writer
	globals []string
}

func (s *shell) Execute(ctx context.Context, args []string) error {
	sub := App()
	sub.Writer = s.out
	sub.ErrWriter = s.errOut
	sub.Metadata = map[string]any{metaApp: s.app, metaREPL: true}
	sub.ExitErrHandler = func(*cli.Context, error) {}

	argv := append([]string{sub.Name}, s.globals...)
	argv = append(argv, args...)
	if err := sub.RunContext(ctx, argv); err != nil {
		return &shellError{err: err}
	}
	return nil
}

func (s *shell) Location() string {
	return s.app.Navigator.Current()
}

// shellError prints as the user-facing description of err.
type shellError struct{ err error }

func (e *shellError) Error() string { return Describe(e.err) }
func (e *shellError) Unwrap() error { return e.err }

// commandPaths lists "cmd" and "cmd sub" for completion.
func commandPaths(cmds []*cli.Command) []string {
	var paths []string
	for _, cmd := range cmds {
		names := append([]string{cmd.Name}, cmd.Aliases...)
		for _, name := range names {
			paths = append(paths, name)
			for _, sub := range cmd.Subcommands {
				paths = append(paths, name+" "+sub.Name)
			}
		}
	}
	return append(paths, "help")
}

func runREPL(c *cli.Context) error {
	if inREPL(c) {
		return errors.New("already in interactive mode")
	}
	a, err := getApp(c)
	if err != nil {
		return err
	}

	var globals []string
	flags := ParseGlobalFlags(c)
	if flags.Output != "" {
		globals = append(globals, "--output", flags.Output)
	}
	if flags.Wide {
		globals = append(globals, "--wide")
	}

	sh := &shell{app: a, out: c.App.Writer, errOut: c.App.ErrWriter, globals: globals}
	history := repl.NewHistory(a.Config.HistoryPath())
	if err := history.Load(); err != nil {
		a.Logger.Warn("failed to load history", "error", err)
	}

	r := repl.New(sh,
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithHistory(history),
		repl.WithCompleter(repl.NewCompleter(commandPaths(App().Commands))),
	)

	if a.Config.REPL.WatchSession && a.Config.Session.Backend == config.BackendFile {
		stop, err := watchSession(c.Context, a, r)
		if err != nil {
			a.Logger.Warn("session watcher disabled", "error", err)
		} else {
			defer stop()
		}
	}

	printf(c, "Hyperlocal interactive mode. Type `help` for commands, `exit` to quit.\n")
	runErr := r.Run(c.Context)
	if err := history.Save(); err != nil {
		a.Logger.Warn("failed to save history", "error", err)
	}
	return runErr
}

// watchSession reloads the session when another process logs in or out.
func watchSession(ctx context.Context, a *app.App, r *repl.REPL) (func(), error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(a.Logger))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(a.Config.SessionPath()); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		before := a.Session.IsAuthenticated()
		d, err := a.Reload(ctx)
		if err != nil {
			a.Logger.Warn("session reload failed", "error", err)
			return
		}
		if after := a.Session.IsAuthenticated(); after != before {
			state := "signed out"
			if after {
				state = "signed in"
			}
			r.Notify("session changed in another terminal: " + state + ", now at " + d.Target)
		}
	})
	w.StartAsync()
	return func() { _ = w.Stop() }, nil
}
