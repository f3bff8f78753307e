// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version carries the build identity stamped into the binary.
package version

// Info holds the values injected through ldflags at build time. They surface
// in the health endpoints and the -version flag.
type Info struct {
	Version   string // release tag, "dev" for local builds
	GitCommit string // short commit hash
	BuildTime string // RFC3339 build timestamp
}
