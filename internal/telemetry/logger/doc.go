// Package logger provides structured logging for the Hyperlocal client.
//
// Loggers wrap log/slog and mask tokens, passwords and Authorization
// values before they are written (see redact.go).
//
// The CLI logs to stderr in text form at warn level unless --verbose or
// the log.level setting asks for more, so command output on stdout stays
// clean for piping.
package logger
