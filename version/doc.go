// Package version reports the build version of restkit binaries and the
// User-Agent string adapters send by default.
//
// Version, commit and build time are stamped at link time:
//
//	go build -ldflags "-X github.com/kbukum/restkit/version.Version=1.2.0" ./cmd/restdemo
//
// When a field is not stamped it falls back to the VCS settings recorded by
// the Go toolchain, if any.
package version
