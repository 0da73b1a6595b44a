/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/halcyonops/authstack/internal/config"
)

// NativeBuilder packages the credential helper with the host toolchain
type NativeBuilder struct {
	settings *config.BuildSettings
	runner   CommandRunner
	caps     Capabilities
}

// NewNativeBuilder creates a builder that runs the compiler directly
func NewNativeBuilder(settings *config.BuildSettings, runner CommandRunner, caps Capabilities) *NativeBuilder {
	return &NativeBuilder{settings: settings, runner: runner, caps: caps}
}

// Build produces a single-file artifact for the target on the platform and
// returns its path
func (b *NativeBuilder) Build(ctx context.Context, platform Platform, target Target) (string, error) {
	outDir := b.settings.ArtifactDir()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	binary := target.BinaryName(platform)
	entry := filepath.Join(targetSource(b.settings, target), "__main__.py")
	// Platforms and targets build concurrently, so each gets its own work
	// directory.
	args := []string{
		"--onefile",
		"--clean",
		"--noconfirm",
		"--name", binary,
		"--distpath", outDir,
		"--workpath", filepath.Join(outDir, ".work", binary),
		entry,
	}

	name := b.settings.BuilderCommand()
	if platform == PlatformMacOSIntel && b.caps.HostArch == "arm64" {
		// Rosetta runs the x86_64 toolchain from the Intel virtualenv so
		// an Apple Silicon host can emit an Intel binary.
		intelCompiler := filepath.Join(b.settings.IntelVenv, "bin", name)
		args = append([]string{"-x86_64", intelCompiler}, args...)
		name = "arch"
	}

	if err := b.runner.Run(ctx, "", name, args...); err != nil {
		return "", fmt.Errorf("native build for %s failed: %w", binary, err)
	}
	return filepath.Join(outDir, binary), nil
}

// targetSource returns the source tree to compile for a target
func targetSource(settings *config.BuildSettings, target Target) string {
	if target == TargetTelemetryHelper {
		return settings.TelemetrySource()
	}
	return settings.SourceDir
}
