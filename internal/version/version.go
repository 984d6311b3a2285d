// Package version holds build version information for monosplit.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X monosplit/internal/version.Version=1.0.0 -X monosplit/internal/version.Commit=<sha>".
var (
	Version   = "0.4.0"
	Commit    = ""
	BuildDate = ""
)

// revision returns Commit, or the vcs.revision stamped by the go tool when
// the binary was built from a checkout without ldflags.
func revision() string {
	if Commit != "" {
		return Commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}

// Info returns the version, followed by the abbreviated commit when one is known.
func Info() string {
	if rev := revision(); len(rev) > 7 {
		return fmt.Sprintf("%s (%s)", Version, rev[:7])
	}
	return Version
}

// Full is the multi-line form printed by `monosplit version`.
func Full() string {
	rev, built := revision(), BuildDate
	if rev == "" {
		rev = "unknown"
	}
	if built == "" {
		built = "unknown"
	}
	return fmt.Sprintf("monosplit %s\ncommit: %s\nbuilt:  %s", Version, rev, built)
}
