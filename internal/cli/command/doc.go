// Package command defines the hyperlocal-cli command tree.
//
// It uses urfave/cli/v2 and serves both single-command mode and the
// interactive REPL, which runs every line through a fresh command tree
// sharing one application instance.
//
// Forms are validated locally before any request is sent. Commands that
// open a protected page run the route guard first, so a signed-out user
// is told to log in instead of hitting the backend.
package command
