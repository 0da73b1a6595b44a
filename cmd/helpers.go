/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/halcyonops/authstack/internal/aws"
	"github.com/halcyonops/authstack/internal/config"
	"github.com/halcyonops/authstack/internal/config/file"
	"github.com/halcyonops/authstack/internal/driver"
	"github.com/halcyonops/authstack/internal/ui"
)

var (
	// clientFactory can be injected for testing
	clientFactory aws.ClientFactory

	// stackDriver can be injected for testing
	stackDriver driver.Driver
)

// SetClientFactory allows injection of a client factory (for testing)
func SetClientFactory(f aws.ClientFactory) {
	clientFactory = f
}

// SetDriver allows injection of a stack driver (for testing)
func SetDriver(d driver.Driver) {
	stackDriver = d
}

// getClientFactory returns the factory instance, creating a default one if none is set
func getClientFactory() (aws.ClientFactory, error) {
	if clientFactory != nil {
		return clientFactory, nil
	}

	factory, err := aws.NewClientFactory(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to initialise cloud clients: %w", err)
	}
	clientFactory = factory
	return clientFactory, nil
}

// loadProfile reads the active profile from the config file, applying any
// region override from the command line
func loadProfile(cmd *cobra.Command) (*config.Profile, error) {
	configFile, _ := cmd.Root().PersistentFlags().GetString("config")
	profileName, _ := cmd.Root().PersistentFlags().GetString("profile")
	region, _ := cmd.Root().PersistentFlags().GetString("region")

	provider := file.NewProvider(configFile)
	profile, err := provider.LoadProfile(cmd.Context(), profileName)
	if err != nil {
		return nil, err
	}
	if region != "" {
		profile.Region = region
	}
	return profile, nil
}

// createDriver returns the stack driver for the profile's region
func createDriver(ctx context.Context, profile *config.Profile) (driver.Driver, error) {
	if stackDriver != nil {
		return stackDriver, nil
	}

	factory, err := getClientFactory()
	if err != nil {
		return nil, err
	}
	ops, err := factory.GetCloudFormationOperations(ctx, profile.Region)
	if err != nil {
		return nil, err
	}
	return driver.NewCloudFormationDriver(ops), nil
}

// newRenderer creates a terminal renderer, with colour when stdout is a TTY
func newRenderer() *ui.Renderer {
	info, err := os.Stdout.Stat()
	useColour := err == nil && info.Mode()&os.ModeCharDevice != 0
	return ui.NewRenderer(useColour)
}

// reportResults prints the run outcome and returns an error when any
// stack failed, so the process exits non-zero
func reportResults(results driver.Results) error {
	fmt.Print(newRenderer().RenderStackResults(results))

	if failed := results.Failed(); len(failed) > 0 {
		names := make([]string, len(failed))
		for i, r := range failed {
			names[i] = r.Stack
		}
		return fmt.Errorf("%d stack(s) failed: %v", len(failed), names)
	}
	return nil
}
