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
	"github.com/halcyonops/authstack/internal/destroy"
	"github.com/halcyonops/authstack/internal/graph"
)

var (
	// destroyer can be injected for testing
	destroyer destroy.Destroyer
)

// destroyCmd represents the destroy command
var destroyCmd = &cobra.Command{
	Use:   "destroy [stack]",
	Short: "Tear down deployed infrastructure stacks",
	Long: `Tear down deployed stacks in reverse dependency order.

Stacks are destroyed in the opposite order to deployment so that no stack
is removed while another still depends on it. Teardown is best-effort: a
stack that fails to delete is reported, and the remaining stacks are still
attempted.

With a stack name, only that stack is destroyed; it is refused while
deployed stacks still depend on it unless --force is given. Without one,
every deployed stack in the profile is destroyed.

Examples:
  authstack destroy                  # Destroy all deployed stacks
  authstack destroy dashboard        # Destroy a single stack
  authstack destroy auth --force     # Destroy even with dependents deployed

CAUTION: Destruction is destructive and cannot be undone. Always verify
what will be destroyed before confirming.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope := graph.ScopeAll
		if len(args) > 0 {
			scope = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")

		ctx := context.Background()
		profile, err := loadProfile(cmd)
		if err != nil {
			return err
		}

		d, err := getDestroyer(ctx, profile)
		if err != nil {
			return err
		}

		results, err := d.Destroy(ctx, destroy.Request{Scope: scope, Force: force})
		if err != nil {
			return fmt.Errorf("destruction failed: %w", err)
		}
		if results == nil {
			// Confirmation declined or nothing deployed
			return nil
		}
		return reportResults(results)
	},
}

// getDestroyer returns the destroyer instance, creating a default one if none is set
func getDestroyer(ctx context.Context, profile *config.Profile) (destroy.Destroyer, error) {
	if destroyer != nil {
		return destroyer, nil
	}

	d, err := createDriver(ctx, profile)
	if err != nil {
		return nil, err
	}
	return destroy.NewOrchestrator(profile, graph.New(), d), nil
}

// SetDestroyer allows injection of a destroyer (for testing)
func SetDestroyer(d destroy.Destroyer) {
	destroyer = d
}

func init() {
	rootCmd.AddCommand(destroyCmd)

	destroyCmd.Flags().Bool("force", false, "skip confirmation and dependent checks")
}
