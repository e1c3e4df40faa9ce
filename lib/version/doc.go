// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports the build version of the partycrusher
// binary.
//
// [GitCommit], [BuildTime], and [Version] may be injected with
// -ldflags -X:
//
//	go build -ldflags "-X github.com/partycrusher/partycrusher/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Without injection the commit comes from the VCS information the Go
// toolchain stamps into module builds, and is "unknown" in tests.
package version
