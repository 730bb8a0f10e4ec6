package build_info

import "fmt"

const (
	DefaultDevVersion = "0.0.0-localdev"
)

// Build information variables - set via ldflags during build
var (
	Version = DefaultDevVersion
	Commit  = "unknown"
	Date    = "unknown"
)

// IsDevBuild reports whether the binary was built without release ldflags.
func IsDevBuild() bool {
	return Version == DefaultDevVersion
}

// Summary returns a single-line description suitable for report stamping.
func Summary() string {
	return fmt.Sprintf("ncp %s (commit: %s, built: %s)", Version, Commit, Date)
}
