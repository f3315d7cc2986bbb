// Package version holds build-time version information.
package version

import "runtime"

// Set via ldflags at build time:
//
//	go build -ldflags "-X github.com/invoxhq/invox/version.GitRelease=v0.1.0 ..."
var (
	// GitRelease is the release tag or branch the binary was built from.
	GitRelease = "dev"
	// GitCommit is the commit hash the binary was built from.
	GitCommit = "unknown"
	// GitCommitDate is the commit date.
	GitCommitDate = "unknown"
)

// GoInfo reports the Go toolchain the binary was built with.
var GoInfo = runtime.Version()
