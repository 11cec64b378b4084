// Package version holds build-time identification values, overridden via
// -ldflags at release build time.
package version

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)
