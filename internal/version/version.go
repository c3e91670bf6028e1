// Package version carries build metadata stamped in by the linker.
package version

import (
	"fmt"
	"runtime"
)

// Set with -ldflags "-X github.com/soyeahso/lively/internal/version.Version=..."
// (likewise Commit and Date).
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info returns the one-line build description printed by "lively version".
func Info() string {
	return fmt.Sprintf("lively %s (%s, %s, %s/%s)",
		Version, short(Commit), Date, runtime.GOOS, runtime.GOARCH)
}

// UserAgent identifies the client to the backend.
func UserAgent() string {
	return "lively/" + Version
}

func short(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
