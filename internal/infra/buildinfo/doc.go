// Package buildinfo exposes version information for retire-go binaries.
//
// Values are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/retire-go/internal/infra/buildinfo.Version=v1.0.0"
//
// Anything left unset falls back to the module and VCS data embedded by the
// Go toolchain.
package buildinfo
