// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"strings"
	"testing"
)

func TestInfo_Injected(t *testing.T) {
	defer func(commit, buildTime string) { GitCommit, BuildTime = commit, buildTime }(GitCommit, BuildTime)
	GitCommit, BuildTime = "abc1234", "2026-03-01T20:00:00Z"

	if got, want := Info(), Version+" (abc1234, 2026-03-01T20:00:00Z)"; got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}
	if full := Full(); !strings.HasPrefix(full, Info()) || !strings.Contains(full, "Go: go") {
		t.Errorf("Full() = %q", full)
	}
}

func TestInfo_Default(t *testing.T) {
	if info := Info(); !strings.HasPrefix(info, Version+" (") {
		t.Errorf("Info() = %q, want it to start with the version", info)
	}
}
