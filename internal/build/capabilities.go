/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package build

import (
	"context"
	"os"
	"os/exec"
	"runtime"
)

// Capabilities describes what the host can build. The function fields are
// injectable so strategy selection can be tested without a real host.
type Capabilities struct {
	HostOS   string
	HostArch string

	// LookPath reports whether an executable is on PATH
	LookPath func(name string) (string, error)
	// FileExists reports whether a path exists
	FileExists func(path string) bool
	// ProbeDocker checks that a container runtime is installed and its
	// daemon is reachable. A non-empty reason explains unavailability.
	ProbeDocker func(ctx context.Context, runner CommandRunner) (ok bool, reason string)
}

// HostCapabilities probes the machine the command runs on
func HostCapabilities() Capabilities {
	return Capabilities{
		HostOS:      runtime.GOOS,
		HostArch:    runtime.GOARCH,
		LookPath:    exec.LookPath,
		FileExists:  fileExists,
		ProbeDocker: probeDocker,
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// probeDocker distinguishes "docker not installed" from "daemon not
// running" so skip reasons tell the operator what to fix
func probeDocker(ctx context.Context, runner CommandRunner) (bool, string) {
	if _, err := exec.LookPath("docker"); err != nil {
		return false, "docker is not installed"
	}
	if err := runner.Run(ctx, "", "docker", "--version"); err != nil {
		return false, "docker is not installed"
	}
	if err := runner.Run(ctx, "", "docker", "info"); err != nil {
		return false, "docker daemon is not running"
	}
	return true, ""
}
