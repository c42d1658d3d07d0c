// Package version provides build-time version information.
//
// Variables are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/rickgao/kalshi-quotes/internal/version.Version=1.0.0 \
//	                   -X github.com/rickgao/kalshi-quotes/internal/version.Commit=$(git rev-parse --short HEAD)" \
//	    ./cmd/kalshi-quotes
package version

import "log/slog"

var (
	// Version is the semantic version (e.g., "1.0.0")
	Version = "dev"

	// Commit is the git commit hash (short form)
	Commit = "unknown"
)

// String returns a formatted version string.
func String() string {
	return "kalshi-quotes " + Version + " (" + Commit + ")"
}

// Attr returns the build info as a slog group.
func Attr() slog.Attr {
	return slog.Group("build",
		slog.String("version", Version),
		slog.String("commit", Commit),
	)
}
