// Package output renders command results for hyperlocal-cli.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: column tables built from struct tags
//   - json.go, yaml.go: machine-readable output
//   - bar.go: proportion bars for the dashboard
//   - spinner.go: activity indicator while a request is in flight
//
// Table columns come from the json tag of each exported field. A field
// tagged `table:"-"` is never shown; `table:"wide"` only with --wide.
package output
