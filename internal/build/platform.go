/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package build packages the credential helper for each target platform.
// Each platform is built with whichever strategy the host can support:
// the native toolchain, a container cross-build, or submission to the
// remote build project.
package build

import (
	"fmt"
	"strings"
)

// Platform is a packaging target for the credential helper
type Platform string

const (
	PlatformMacOSARM64 Platform = "macos-arm64"
	PlatformMacOSIntel Platform = "macos-intel"
	PlatformLinuxX64   Platform = "linux-x64"
	PlatformLinuxARM64 Platform = "linux-arm64"
	PlatformWindows    Platform = "windows"
)

// AllPlatforms lists every supported target in build order
var AllPlatforms = []Platform{
	PlatformMacOSARM64,
	PlatformMacOSIntel,
	PlatformLinuxX64,
	PlatformLinuxARM64,
	PlatformWindows,
}

// ParsePlatform validates a platform name from user input
func ParsePlatform(name string) (Platform, error) {
	for _, p := range AllPlatforms {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q (supported: %s)", name, platformNames())
}

func platformNames() string {
	names := make([]string, len(AllPlatforms))
	for i, p := range AllPlatforms {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// Target identifies one binary the pipeline compiles. Every platform gets
// the credential helper; platforms built for a monitoring-enabled profile
// also get the telemetry helper that ships usage metrics.
type Target string

const (
	TargetCredentialHelper Target = "credential-helper"
	TargetTelemetryHelper  Target = "otel-helper"
)

// BinaryName returns the artifact filename for the target on a platform
func (t Target) BinaryName(p Platform) string {
	name := fmt.Sprintf("%s-%s", t, p)
	if p == PlatformWindows {
		name += ".exe"
	}
	return name
}

// BinaryName returns the credential-helper artifact filename for the platform
func (p Platform) BinaryName() string {
	return TargetCredentialHelper.BinaryName(p)
}

// ContainerPlatform returns the container runtime platform string, or ""
// when the target cannot be cross-built in a container
func (p Platform) ContainerPlatform() string {
	switch p {
	case PlatformLinuxX64:
		return "linux/amd64"
	case PlatformLinuxARM64:
		return "linux/arm64"
	default:
		return ""
	}
}
