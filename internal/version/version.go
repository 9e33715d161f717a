// Package version carries build metadata stamped in by the linker:
//
//	go build -ldflags "-X github.com/dkoosis/tapmonkey/internal/version.Version=v1.2.0"
package version

import "fmt"

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	return fmt.Sprintf("tapmonkey %s (%s, %s)", Version, CommitHash, BuildDate)
}
