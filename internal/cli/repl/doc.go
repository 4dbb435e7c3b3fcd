// Package repl implements the interactive mode of hyperlocal-cli.
//
//   - repl.go: read loop, prompt showing the current location, built-ins
//   - args.go: shell-style splitting of input lines
//   - completer.go: command completion and suggestions
//   - history.go: persisted command history with secrets scrubbed
//
// Commands are executed by a Shell, normally the same command tree the
// one-shot CLI uses, so every command is available in both modes.
package repl
