/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halcyonops/authstack/internal/config"
	"github.com/halcyonops/authstack/internal/deploy"
	"github.com/halcyonops/authstack/internal/graph"
)

var (
	// deployer can be injected for testing
	deployer deploy.Deployer
)

// deployCmd represents the deploy command
var deployCmd = &cobra.Command{
	Use:   "deploy [stack]",
	Short: "Deploy the infrastructure stacks for a profile",
	Long: `Deploy the profile's enabled stacks in dependency order.

Each stack is deployed only after the stacks it depends on have completed.
Outputs from earlier stacks flow into the parameters of later ones. When a
stack fails, stacks that depend on it are skipped and reported.

With a stack name, only that stack is deployed; its dependencies must
already be deployed or enabled. Without one, every enabled stack deploys.

Examples:
  authstack deploy                   # Deploy all enabled stacks
  authstack deploy auth              # Deploy the identity stack only
  authstack deploy --dry-run         # Preview changes without applying
  authstack deploy --show-commands   # Print equivalent CLI invocations
  authstack deploy --yes             # Skip the confirmation prompt`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope := graph.ScopeAll
		if len(args) > 0 {
			scope = args[0]
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		showCommands, _ := cmd.Flags().GetBool("show-commands")
		yes, _ := cmd.Flags().GetBool("yes")

		ctx := context.Background()
		profile, err := loadProfile(cmd)
		if err != nil {
			return err
		}

		d, err := getDeployer(ctx, profile)
		if err != nil {
			return err
		}

		results, err := d.Deploy(ctx, deploy.Request{
			Scope:        scope,
			DryRun:       dryRun,
			ShowCommands: showCommands,
			Yes:          yes,
		})
		if err != nil {
			return fmt.Errorf("deployment failed: %w", err)
		}
		if results == nil {
			// Confirmation declined
			return nil
		}
		return reportResults(results)
	},
}

// getDeployer returns the deployer instance, creating a default one if none is set
func getDeployer(ctx context.Context, profile *config.Profile) (deploy.Deployer, error) {
	if deployer != nil {
		return deployer, nil
	}

	d, err := createDriver(ctx, profile)
	if err != nil {
		return nil, err
	}
	return deploy.NewOrchestrator(profile, graph.New(), d), nil
}

// SetDeployer allows injection of a deployer (for testing)
func SetDeployer(d deploy.Deployer) {
	deployer = d
}

func init() {
	rootCmd.AddCommand(deployCmd)

	deployCmd.Flags().Bool("dry-run", false, "preview changes without applying them")
	deployCmd.Flags().Bool("show-commands", false, "print equivalent CLI commands without executing")
	deployCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
}
