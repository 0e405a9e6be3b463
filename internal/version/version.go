// Package version exposes the build version injected at link time.
package version

// version is set via -ldflags at build time.
var version = "v0.0.0-dev"

// Value returns the version string for this build.
func Value() string {
	return version
}
