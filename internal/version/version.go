// Package version holds build metadata injected with -ldflags:
//
//	go build -ldflags "-X git.home.luguber.info/inful/modelgen/internal/version.Version=v1.0.0" ./cmd/modelgen
package version

import "fmt"

var (
	Version   = "unknown"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	return fmt.Sprintf("modelgen %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
