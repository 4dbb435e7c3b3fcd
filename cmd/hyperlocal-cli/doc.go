// Package main provides the entry point for hyperlocal-cli.
//
// The CLI is a terminal client for the Hyperlocal services marketplace:
//
//   - Sign in, register and sign out; the session survives between runs
//   - Browse service providers and register as one
//   - Create, list and cancel bookings
//   - Dashboard statistics and profile management
//
// Usage:
//
//	hyperlocal-cli login --email you@example.com
//	hyperlocal-cli booking list --status pending
//	hyperlocal-cli -o json provider list --service Plumbing
//	hyperlocal-cli repl
//
// The CLI supports both single-command mode and interactive REPL mode.
package main
