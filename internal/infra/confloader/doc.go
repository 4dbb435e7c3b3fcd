// Package confloader loads configuration from layered sources.
//
// It uses koanf for the merge and supports:
//
//   - YAML files
//   - HYPERLOCAL_* environment variables
//   - .env files (loaded into the environment first)
//   - in-memory maps for flag overrides and defaults
//   - fsnotify-based file watching
//
// Priority (highest to lowest):
//
//  1. Command-line flags (Override after Load)
//  2. Environment variables, including those from .env
//  3. Configuration file
//  4. Values already present in the target struct
package confloader
