package app

import "fmt"

// Build metadata, overridden through ldflags, e.g.
// -X github.com/leblango/leblango-backend/internal/app.Version=1.2.0
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion renders the build metadata for startup logs and the
// health endpoints.
func BuildVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime)
}
