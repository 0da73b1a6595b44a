/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package build

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/halcyonops/authstack/internal/aws"
	"github.com/halcyonops/authstack/internal/config"
	"github.com/halcyonops/authstack/internal/driver"
)

// Builder produces a local artifact for one target on one platform
type Builder interface {
	Build(ctx context.Context, platform Platform, target Target) (string, error)
}

// Submitter starts an asynchronous remote build and returns its id
type Submitter interface {
	Submit(ctx context.Context) (string, error)
}

// Coordinator picks a strategy per platform and runs the builds
// concurrently. A platform the host cannot build is skipped, never
// failed; the overall run fails only when nothing was built or submitted.
type Coordinator struct {
	profile   *config.Profile
	caps      Capabilities
	runner    CommandRunner
	native    Builder
	container Builder
	submitter Submitter

	dockerOnce   sync.Once
	dockerOK     bool
	dockerReason string
}

// NewCoordinator creates a coordinator with host probing and real builders
func NewCoordinator(profile *config.Profile, d driver.Driver, builds aws.CodeBuildOperations, uploader aws.ObjectUploader) *Coordinator {
	runner := NewCommandRunner()
	caps := HostCapabilities()
	return &Coordinator{
		profile:   profile,
		caps:      caps,
		runner:    runner,
		native:    NewNativeBuilder(&profile.Build, runner, caps),
		container: NewContainerBuilder(&profile.Build, runner),
		submitter: NewRemoteSubmitter(profile, d, builds, uploader),
	}
}

// SetCapabilities overrides host probing (for testing)
func (c *Coordinator) SetCapabilities(caps Capabilities) {
	c.caps = caps
}

// SetBuilders overrides the strategy implementations (for testing)
func (c *Coordinator) SetBuilders(native, container Builder, submitter Submitter) {
	c.native = native
	c.container = container
	c.submitter = submitter
}

// Platforms returns the targets to build: the profile's configured list,
// or every supported platform
func (c *Coordinator) Platforms() ([]Platform, error) {
	if len(c.profile.Build.Platforms) == 0 {
		return AllPlatforms, nil
	}
	platforms := make([]Platform, len(c.profile.Build.Platforms))
	for i, name := range c.profile.Build.Platforms {
		p, err := ParsePlatform(name)
		if err != nil {
			return nil, err
		}
		platforms[i] = p
	}
	return platforms, nil
}

// BuildAll builds every requested platform and returns per-platform
// outcomes in request order
func (c *Coordinator) BuildAll(ctx context.Context, platforms []Platform) (Results, error) {
	results := make(Results, len(platforms))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, platform := range platforms {
		group.Go(func() error {
			results[i] = c.buildOne(groupCtx, platform)
			return nil
		})
	}
	// Goroutines report their outcome through the results slice.
	_ = group.Wait()

	if !results.Succeeded() {
		return results, &NoPlatformBuiltError{Results: results}
	}
	return results, nil
}

// buildOne selects a strategy for the platform and runs it
func (c *Coordinator) buildOne(ctx context.Context, platform Platform) Result {
	strategy, skipReason := c.selectStrategy(ctx, platform)
	if skipReason != "" {
		return Result{Platform: platform, Strategy: strategy, Status: StatusSkipped, SkipReason: skipReason}
	}

	switch strategy {
	case StrategyNative:
		return c.buildLocal(ctx, c.native, StrategyNative, platform)
	case StrategyContainer:
		return c.buildLocal(ctx, c.container, StrategyContainer, platform)
	case StrategyRemote:
		// The remote project emits the telemetry helper alongside the
		// credential helper, so nothing extra is built here.
		buildID, err := c.submitter.Submit(ctx)
		if err != nil {
			return Result{Platform: platform, Strategy: strategy, Status: StatusFailed, Err: err}
		}
		return Result{Platform: platform, Strategy: strategy, Status: StatusSubmitted, RemoteBuildID: buildID}
	default:
		return Result{Platform: platform, Status: StatusFailed, Err: fmt.Errorf("no strategy for platform %s", platform)}
	}
}

// buildLocal builds the credential helper and, when the profile has
// monitoring enabled, the companion telemetry helper with the same builder.
// A telemetry failure is reported as a warning; the credential helper is
// the artifact that decides the platform's status.
func (c *Coordinator) buildLocal(ctx context.Context, b Builder, strategy Strategy, platform Platform) Result {
	artifact, err := b.Build(ctx, platform, TargetCredentialHelper)
	if err != nil {
		return Result{Platform: platform, Strategy: strategy, Status: StatusFailed, Err: err}
	}
	result := Result{Platform: platform, Strategy: strategy, Status: StatusBuilt, Artifact: artifact}

	if c.profile.MonitoringEnabled {
		telemetry, err := b.Build(ctx, platform, TargetTelemetryHelper)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("telemetry helper for %s not built: %v", platform, err))
		} else {
			result.TelemetryArtifact = telemetry
		}
	}
	return result
}

// selectStrategy decides how to build the platform on this host. A
// non-empty skip reason means the platform cannot be built here.
func (c *Coordinator) selectStrategy(ctx context.Context, platform Platform) (Strategy, string) {
	compiler := c.profile.Build.BuilderCommand()

	switch platform {
	case PlatformWindows:
		if !c.profile.CodeBuildEnabled {
			return StrategyRemote, "remote builds are not enabled for this profile"
		}
		return StrategyRemote, ""

	case PlatformMacOSARM64:
		if c.caps.HostOS != "darwin" || c.caps.HostArch != "arm64" {
			return StrategyNative, "requires an Apple Silicon macOS host"
		}
		if _, err := c.caps.LookPath(compiler); err != nil {
			return StrategyNative, fmt.Sprintf("%s is not installed", compiler)
		}
		return StrategyNative, ""

	case PlatformMacOSIntel:
		if c.caps.HostOS != "darwin" {
			return StrategyNative, "requires a macOS host"
		}
		if c.caps.HostArch == "arm64" {
			venv := c.profile.Build.IntelVenv
			if venv == "" || !c.caps.FileExists(venv) {
				return StrategyNative, "requires an x86_64 toolchain (configure build.intel_venv)"
			}
			return StrategyNative, ""
		}
		if _, err := c.caps.LookPath(compiler); err != nil {
			return StrategyNative, fmt.Sprintf("%s is not installed", compiler)
		}
		return StrategyNative, ""

	case PlatformLinuxX64, PlatformLinuxARM64:
		if c.hostMatchesLinux(platform) {
			if _, err := c.caps.LookPath(compiler); err == nil {
				return StrategyNative, ""
			}
		}
		if ok, reason := c.dockerAvailable(ctx); !ok {
			return StrategyContainer, reason
		}
		return StrategyContainer, ""

	default:
		return "", fmt.Sprintf("unknown platform %s", platform)
	}
}

// hostMatchesLinux reports whether the platform can be built without a
// container on this host
func (c *Coordinator) hostMatchesLinux(platform Platform) bool {
	if c.caps.HostOS != "linux" {
		return false
	}
	switch platform {
	case PlatformLinuxX64:
		return c.caps.HostArch == "amd64"
	case PlatformLinuxARM64:
		return c.caps.HostArch == "arm64"
	}
	return false
}

// dockerAvailable probes the container runtime once per run
func (c *Coordinator) dockerAvailable(ctx context.Context) (bool, string) {
	c.dockerOnce.Do(func() {
		c.dockerOK, c.dockerReason = c.caps.ProbeDocker(ctx, c.runner)
	})
	return c.dockerOK, c.dockerReason
}
