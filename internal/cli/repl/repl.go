package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Shell executes commands on behalf of the REPL.
type Shell interface {
	// Execute runs one command line, already split into words.
	Execute(ctx context.Context, args []string) error
	// Location is the current page, shown in the prompt.
	Location() string
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	shell     Shell
	input     io.Reader
	output    io.Writer
	completer *Completer
	history   *History

	outMu sync.Mutex
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithHistory sets the command history.
func WithHistory(h *History) Option {
	return func(r *REPL) { r.history = h }
}

// WithCompleter sets the completer.
func WithCompleter(c *Completer) Option {
	return func(r *REPL) { r.completer = c }
}

// New creates a new REPL instance.
func New(shell Shell, opts ...Option) *REPL {
	r := &REPL{
		shell:     shell,
		input:     os.Stdin,
		output:    os.Stdout,
		completer: NewCompleter(nil),
		history:   NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads and executes lines until exit, EOF or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		reader := bufio.NewReader(r.input)
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				case <-stop:
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		r.prompt()

		var line string
		select {
		case <-ctx.Done():
			r.println("")
			return nil
		case err := <-readErr:
			r.println("")
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case line = <-lines:
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.history.Add(line)

		if done := r.dispatch(ctx, line); done {
			return nil
		}
	}
}

// dispatch handles one line and reports whether the loop should end.
func (r *REPL) dispatch(ctx context.Context, line string) bool {
	args, err := SplitArgs(line)
	if err != nil {
		r.printf("error: %v\n", err)
		return false
	}

	switch args[0] {
	case "exit", "quit":
		return true
	case "history":
		r.showHistory(args[1:])
		return false
	case "complete":
		for _, s := range r.completer.Complete(strings.Join(args[1:], " ")) {
			r.println(s)
		}
		return false
	}

	if !r.completer.Known(args[0]) {
		r.printf("unknown command %q\n", args[0])
		if s := r.completer.Suggest(args[0]); len(s) > 0 {
			r.printf("did you mean: %s\n", strings.Join(s, ", "))
		}
		return false
	}

	if err := r.shell.Execute(ctx, args); err != nil {
		r.printf("error: %v\n", err)
	}
	return false
}

func (r *REPL) showHistory(args []string) {
	n := 20
	if len(args) > 0 {
		if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
			n = v
		}
	}
	entries := r.history.Last(n)
	start := r.history.Len() - len(entries)
	for i, e := range entries {
		r.printf("%5d  %s\n", start+i+1, e)
	}
}

// Notify prints a message between prompts, e.g. when the session changed
// in another process.
func (r *REPL) Notify(msg string) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprintf(r.output, "\n%s\n%s", msg, r.promptText())
}

// History returns the REPL's command history.
func (r *REPL) History() *History {
	return r.history
}

func (r *REPL) promptText() string {
	return "hyperlocal:" + r.shell.Location() + "> "
}

func (r *REPL) prompt() {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprint(r.output, r.promptText())
}

func (r *REPL) printf(format string, args ...any) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprintf(r.output, format, args...)
}

func (r *REPL) println(s string) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprintln(r.output, s)
}
