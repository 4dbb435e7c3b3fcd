// Package buildinfo exposes version information of the CLI binary.
//
// Values are injected with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/hyperlocal-go/internal/infra/buildinfo.Version=1.2.0 \
//	  -X github.com/yndnr/hyperlocal-go/internal/infra/buildinfo.Commit=abc123"
//
// Binaries installed with `go install` fall back to the module version
// and VCS data recorded by the Go toolchain.
package buildinfo
