/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halcyonops/authstack/internal/build"
	"github.com/halcyonops/authstack/internal/config"
)

// Packager builds the credential helper for a set of platforms
type Packager interface {
	Platforms() ([]build.Platform, error)
	BuildAll(ctx context.Context, platforms []build.Platform) (build.Results, error)
}

var (
	// packager can be injected for testing
	packager Packager
)

// packageCmd represents the package command
var packageCmd = &cobra.Command{
	Use:   "package",
	Short: "Package the credential helper for each target platform",
	Long: `Package the credential helper binary for every target platform.

Each platform is built with whichever strategy the host supports: the
native toolchain for the host platform, a container cross-build for Linux
targets, or submission to the remote build project for Windows. Platforms
the host cannot build are skipped and reported, not failed. When the
profile has monitoring enabled, each platform also gets the companion
telemetry helper binary.

The Windows build runs remotely and produces no local artifact; use
'authstack builds' to watch it complete.

Examples:
  authstack package                                  # Build all platforms
  authstack package --target-platform linux-x64      # Build one platform
  authstack package --target-platform macos-arm64 --target-platform windows`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		targets, _ := cmd.Flags().GetStringSlice("target-platform")

		ctx := context.Background()
		profile, err := loadProfile(cmd)
		if err != nil {
			return err
		}

		coordinator, err := getPackager(ctx, profile)
		if err != nil {
			return err
		}

		platforms, err := resolvePlatforms(coordinator, targets)
		if err != nil {
			return err
		}

		results, err := coordinator.BuildAll(ctx, platforms)
		if results != nil {
			fmt.Print(newRenderer().RenderBuildResults(results))
		}
		if err != nil {
			return fmt.Errorf("packaging failed: %w", err)
		}
		return nil
	},
}

// resolvePlatforms parses --target-platform values, defaulting to the
// profile's configured platform list
func resolvePlatforms(coordinator Packager, targets []string) ([]build.Platform, error) {
	if len(targets) == 0 {
		return coordinator.Platforms()
	}
	platforms := make([]build.Platform, len(targets))
	for i, target := range targets {
		p, err := build.ParsePlatform(target)
		if err != nil {
			return nil, err
		}
		platforms[i] = p
	}
	return platforms, nil
}

// getPackager returns the packager instance, creating a default one if none is set
func getPackager(ctx context.Context, profile *config.Profile) (Packager, error) {
	if packager != nil {
		return packager, nil
	}

	factory, err := getClientFactory()
	if err != nil {
		return nil, err
	}
	d, err := createDriver(ctx, profile)
	if err != nil {
		return nil, err
	}
	builds, err := factory.GetCodeBuildOperations(ctx, profile.Region)
	if err != nil {
		return nil, err
	}
	uploader, err := factory.GetUploader(ctx, profile.Region)
	if err != nil {
		return nil, err
	}
	return build.NewCoordinator(profile, d, builds, uploader), nil
}

// SetPackager allows injection of a packager (for testing)
func SetPackager(p Packager) {
	packager = p
}

func init() {
	rootCmd.AddCommand(packageCmd)

	packageCmd.Flags().StringSlice("target-platform", nil, "platform to build (repeatable; defaults to the profile's list)")
}
