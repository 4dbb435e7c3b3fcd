// Package config provides the CLI configuration.
//
//   - spec.go: CLIConfig struct (~/.hyperlocal/cli.yaml)
//   - loader.go: loading, merging, validation and saving
//
// Sources, highest priority first: command-line flags, HYPERLOCAL_*
// environment variables (including a .env file in the working directory),
// the YAML file, built-in defaults.
package config
