/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package build

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/halcyonops/authstack/internal/config"
)

func testProfile() *config.Profile {
	return &config.Profile{
		Name:             "test",
		PoolName:         "acme",
		CodeBuildEnabled: true,
		Build: config.BuildSettings{
			SourceDir: "helper",
			IntelVenv: "/opt/venv-intel",
		},
	}
}

// capsFor builds a Capabilities fixture for a synthetic host
func capsFor(hostOS, hostArch string, compilerInstalled, venvPresent, dockerOK bool) Capabilities {
	return Capabilities{
		HostOS:   hostOS,
		HostArch: hostArch,
		LookPath: func(string) (string, error) {
			if compilerInstalled {
				return "/usr/bin/pyinstaller", nil
			}
			return "", errors.New("not found")
		},
		FileExists: func(string) bool { return venvPresent },
		ProbeDocker: func(context.Context, CommandRunner) (bool, string) {
			if dockerOK {
				return true, ""
			}
			return false, "docker daemon is not running"
		},
	}
}

func newTestCoordinator(profile *config.Profile, caps Capabilities) (*Coordinator, *MockBuilder, *MockBuilder, *MockSubmitter) {
	native := &MockBuilder{}
	container := &MockBuilder{}
	submitter := &MockSubmitter{}

	c := NewCoordinator(profile, nil, nil, nil)
	c.SetCapabilities(caps)
	c.SetBuilders(native, container, submitter)
	return c, native, container, submitter
}

func TestBuildAll_AppleSiliconHost_AllStrategies(t *testing.T) {
	// On an Apple Silicon host with docker and the Intel venv, every
	// platform builds: two native, two in containers, windows remotely
	c, native, container, submitter := newTestCoordinator(testProfile(),
		capsFor("darwin", "arm64", true, true, true))

	native.On("Build", mock.Anything, PlatformMacOSARM64, TargetCredentialHelper).Return("dist/credential-helper-macos-arm64", nil)
	native.On("Build", mock.Anything, PlatformMacOSIntel, TargetCredentialHelper).Return("dist/credential-helper-macos-intel", nil)
	container.On("Build", mock.Anything, PlatformLinuxX64, TargetCredentialHelper).Return("dist/credential-helper-linux-x64", nil)
	container.On("Build", mock.Anything, PlatformLinuxARM64, TargetCredentialHelper).Return("dist/credential-helper-linux-arm64", nil)
	submitter.On("Submit", mock.Anything).Return("acme-build:uuid-1", nil)

	results, err := c.BuildAll(context.Background(), AllPlatforms)
	require.NoError(t, err)
	require.Len(t, results, 5)

	byPlatform := make(map[Platform]Result, len(results))
	for _, r := range results {
		byPlatform[r.Platform] = r
	}
	assert.Equal(t, StatusBuilt, byPlatform[PlatformMacOSARM64].Status)
	assert.Equal(t, StrategyNative, byPlatform[PlatformMacOSARM64].Strategy)
	assert.Equal(t, StrategyContainer, byPlatform[PlatformLinuxX64].Strategy)
	assert.Equal(t, StatusSubmitted, byPlatform[PlatformWindows].Status)
	assert.Equal(t, "acme-build:uuid-1", byPlatform[PlatformWindows].RemoteBuildID)

	native.AssertExpectations(t)
	container.AssertExpectations(t)
	submitter.AssertExpectations(t)
}

func TestBuildAll_ResultsInRequestOrder(t *testing.T) {
	// Builds run concurrently but results come back in request order
	c, native, container, submitter := newTestCoordinator(testProfile(),
		capsFor("darwin", "arm64", true, true, true))
	native.On("Build", mock.Anything, mock.Anything, mock.Anything).Return("artifact", nil)
	container.On("Build", mock.Anything, mock.Anything, mock.Anything).Return("artifact", nil)
	submitter.On("Submit", mock.Anything).Return("id", nil)

	requested := []Platform{PlatformWindows, PlatformLinuxX64, PlatformMacOSARM64}
	results, err := c.BuildAll(context.Background(), requested)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, platform := range requested {
		assert.Equal(t, platform, results[i].Platform)
	}
}

func TestBuildAll_MissingIntelToolchainSkipsOnlyThatPlatform(t *testing.T) {
	// Without the Intel venv, macos-intel is skipped while the others
	// still build; the run succeeds
	c, native, container, submitter := newTestCoordinator(testProfile(),
		capsFor("darwin", "arm64", true, false, true))
	native.On("Build", mock.Anything, PlatformMacOSARM64, TargetCredentialHelper).Return("artifact", nil)
	container.On("Build", mock.Anything, mock.Anything, mock.Anything).Return("artifact", nil)
	submitter.On("Submit", mock.Anything).Return("id", nil)

	results, err := c.BuildAll(context.Background(), AllPlatforms)
	require.NoError(t, err)

	byPlatform := make(map[Platform]Result, len(results))
	for _, r := range results {
		byPlatform[r.Platform] = r
	}
	assert.Equal(t, StatusSkipped, byPlatform[PlatformMacOSIntel].Status)
	assert.Contains(t, byPlatform[PlatformMacOSIntel].SkipReason, "intel_venv")
	assert.Equal(t, StatusBuilt, byPlatform[PlatformMacOSARM64].Status)
	native.AssertNotCalled(t, "Build", mock.Anything, PlatformMacOSIntel, mock.Anything)
}

func TestBuildAll_WindowsSkippedWhenRemoteBuildsDisabled(t *testing.T) {
	profile := testProfile()
	profile.CodeBuildEnabled = false
	c, native, _, submitter := newTestCoordinator(profile,
		capsFor("darwin", "arm64", true, true, true))
	native.On("Build", mock.Anything, PlatformMacOSARM64, TargetCredentialHelper).Return("artifact", nil)

	results, err := c.BuildAll(context.Background(), []Platform{PlatformMacOSARM64, PlatformWindows})
	require.NoError(t, err)

	assert.Equal(t, StatusSkipped, results[1].Status)
	assert.Contains(t, results[1].SkipReason, "not enabled")
	submitter.AssertNotCalled(t, "Submit", mock.Anything)
}

func TestBuildAll_LinuxHostBuildsNativeMatchingArch(t *testing.T) {
	// A linux/amd64 host with the toolchain builds linux-x64 natively and
	// falls back to a container for linux-arm64
	c, native, container, _ := newTestCoordinator(testProfile(),
		capsFor("linux", "amd64", true, false, true))
	native.On("Build", mock.Anything, PlatformLinuxX64, TargetCredentialHelper).Return("artifact", nil)
	container.On("Build", mock.Anything, PlatformLinuxARM64, TargetCredentialHelper).Return("artifact", nil)

	results, err := c.BuildAll(context.Background(), []Platform{PlatformLinuxX64, PlatformLinuxARM64})
	require.NoError(t, err)

	assert.Equal(t, StrategyNative, results[0].Strategy)
	assert.Equal(t, StrategyContainer, results[1].Strategy)
	native.AssertExpectations(t)
	container.AssertExpectations(t)
}

func TestBuildAll_NoPlatformBuilt(t *testing.T) {
	// When every platform is skipped the run fails with a per-platform
	// breakdown
	profile := testProfile()
	profile.CodeBuildEnabled = false
	c, _, _, _ := newTestCoordinator(profile,
		capsFor("linux", "amd64", false, false, false))

	results, err := c.BuildAll(context.Background(),
		[]Platform{PlatformMacOSARM64, PlatformLinuxARM64, PlatformWindows})

	var noneBuilt *NoPlatformBuiltError
	require.True(t, errors.As(err, &noneBuilt))
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, StatusSkipped, r.Status)
	}
	assert.Contains(t, err.Error(), "no platform produced an artifact")
	assert.Contains(t, err.Error(), "docker daemon is not running")
}

func TestBuildAll_FailedBuildReported(t *testing.T) {
	// A failed build is reported per platform; the run still succeeds when
	// another platform built
	c, native, _, _ := newTestCoordinator(testProfile(),
		capsFor("darwin", "arm64", true, true, false))
	native.On("Build", mock.Anything, PlatformMacOSARM64, TargetCredentialHelper).Return("artifact", nil)
	native.On("Build", mock.Anything, PlatformMacOSIntel, TargetCredentialHelper).Return("", errors.New("compile error"))

	results, err := c.BuildAll(context.Background(), []Platform{PlatformMacOSARM64, PlatformMacOSIntel})
	require.NoError(t, err)

	assert.Equal(t, StatusBuilt, results[0].Status)
	assert.Equal(t, StatusFailed, results[1].Status)
	assert.ErrorContains(t, results[1].Err, "compile error")
	require.Len(t, results.Failed(), 1)
}

func TestBuildAll_MonitoringBuildsTelemetryHelper(t *testing.T) {
	// A monitoring-enabled profile gets the companion telemetry helper for
	// each locally built platform, from the same builder
	profile := testProfile()
	profile.MonitoringEnabled = true
	c, native, _, _ := newTestCoordinator(profile,
		capsFor("darwin", "arm64", true, true, false))
	native.On("Build", mock.Anything, PlatformMacOSARM64, TargetCredentialHelper).
		Return("dist/credential-helper-macos-arm64", nil)
	native.On("Build", mock.Anything, PlatformMacOSARM64, TargetTelemetryHelper).
		Return("dist/otel-helper-macos-arm64", nil)

	results, err := c.BuildAll(context.Background(), []Platform{PlatformMacOSARM64})
	require.NoError(t, err)

	assert.Equal(t, StatusBuilt, results[0].Status)
	assert.Equal(t, "dist/otel-helper-macos-arm64", results[0].TelemetryArtifact)
	assert.Empty(t, results[0].Warnings)
	native.AssertExpectations(t)
}

func TestBuildAll_TelemetryFailureIsWarningNotFailure(t *testing.T) {
	// A telemetry helper failure leaves the platform built; the credential
	// helper is the artifact that decides the status
	profile := testProfile()
	profile.MonitoringEnabled = true
	c, native, _, _ := newTestCoordinator(profile,
		capsFor("darwin", "arm64", true, true, false))
	native.On("Build", mock.Anything, PlatformMacOSARM64, TargetCredentialHelper).
		Return("artifact", nil)
	native.On("Build", mock.Anything, PlatformMacOSARM64, TargetTelemetryHelper).
		Return("", errors.New("otel_helper source not found"))

	results, err := c.BuildAll(context.Background(), []Platform{PlatformMacOSARM64})
	require.NoError(t, err)

	assert.Equal(t, StatusBuilt, results[0].Status)
	assert.Empty(t, results[0].TelemetryArtifact)
	require.Len(t, results[0].Warnings, 1)
	assert.Contains(t, results[0].Warnings[0], "telemetry helper")
}

func TestBuildAll_MonitoringDisabledSkipsTelemetryHelper(t *testing.T) {
	c, native, _, _ := newTestCoordinator(testProfile(),
		capsFor("darwin", "arm64", true, true, false))
	native.On("Build", mock.Anything, PlatformMacOSARM64, TargetCredentialHelper).
		Return("artifact", nil)

	results, err := c.BuildAll(context.Background(), []Platform{PlatformMacOSARM64})
	require.NoError(t, err)

	assert.Empty(t, results[0].TelemetryArtifact)
	native.AssertNotCalled(t, "Build", mock.Anything, PlatformMacOSARM64, TargetTelemetryHelper)
}

func TestPlatforms_DefaultsToAll(t *testing.T) {
	c, _, _, _ := newTestCoordinator(testProfile(), capsFor("linux", "amd64", true, false, true))

	platforms, err := c.Platforms()

	require.NoError(t, err)
	assert.Equal(t, AllPlatforms, platforms)
}

func TestPlatforms_UsesProfileList(t *testing.T) {
	profile := testProfile()
	profile.Build.Platforms = []string{"linux-x64", "windows"}
	c, _, _, _ := newTestCoordinator(profile, capsFor("linux", "amd64", true, false, true))

	platforms, err := c.Platforms()

	require.NoError(t, err)
	assert.Equal(t, []Platform{PlatformLinuxX64, PlatformWindows}, platforms)
}

func TestPlatforms_RejectsUnknownName(t *testing.T) {
	profile := testProfile()
	profile.Build.Platforms = []string{"solaris"}
	c, _, _, _ := newTestCoordinator(profile, capsFor("linux", "amd64", true, false, true))

	_, err := c.Platforms()

	assert.ErrorContains(t, err, "unknown platform")
}

func TestParsePlatform(t *testing.T) {
	p, err := ParsePlatform("macos-arm64")
	require.NoError(t, err)
	assert.Equal(t, PlatformMacOSARM64, p)

	_, err = ParsePlatform("dos")
	assert.ErrorContains(t, err, "unknown platform")
}

func TestPlatform_BinaryName(t *testing.T) {
	assert.Equal(t, "credential-helper-linux-x64", PlatformLinuxX64.BinaryName())
	assert.Equal(t, "credential-helper-windows.exe", PlatformWindows.BinaryName())
	assert.Equal(t, "otel-helper-linux-x64", TargetTelemetryHelper.BinaryName(PlatformLinuxX64))
	assert.Equal(t, "otel-helper-windows.exe", TargetTelemetryHelper.BinaryName(PlatformWindows))
}
