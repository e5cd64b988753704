// Package buildinfo reports version information for the rudis binaries.
//
// Version, Commit and BuildTime are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/rudis-go/internal/infra/buildinfo.Version=v1.0.0"
//
// When they are left at their defaults, Get falls back to the module
// and VCS data embedded by the Go toolchain.
package buildinfo
