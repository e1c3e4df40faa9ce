// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the release version.
	Version = "0.1.0-dev"
)

// Info returns the version line printed by --version and logged at
// startup. When the commit was not injected it is taken from the VCS
// stamp Go embeds in the binary.
func Info() string {
	commit, buildTime, dirty := GitCommit, BuildTime, false
	if commit == "unknown" {
		commit, buildTime, dirty = fromBuildInfo(buildTime)
	}
	suffix := ""
	if dirty {
		suffix = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, commit, suffix, buildTime)
}

// Full returns Info plus the Go version and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func fromBuildInfo(buildTime string) (commit, stamped string, dirty bool) {
	commit, stamped = "unknown", buildTime
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return commit, stamped, false
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			commit = setting.Value
			if len(commit) > 12 {
				commit = commit[:12]
			}
		case "vcs.time":
			if stamped == "unknown" {
				stamped = setting.Value
			}
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return commit, stamped, dirty
}
