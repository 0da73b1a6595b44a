/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halcyonops/authstack/internal/graph"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status [stack]",
	Short: "Show the deployment state of the profile's stacks",
	Long: `Show each stack's deployment state without changing anything.

For every stack the profile knows about, reports whether it is enabled,
whether it is deployed, and its current provider status. With a stack
name, also prints that stack's outputs.

Examples:
  authstack status                   # All stacks
  authstack status auth              # One stack, with outputs`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		profile, err := loadProfile(cmd)
		if err != nil {
			return err
		}

		d, err := createDriver(ctx, profile)
		if err != nil {
			return err
		}

		g := graph.New()
		names := g.Names()
		if len(args) > 0 {
			name := args[0]
			found := false
			for _, known := range names {
				if known == name {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("unknown stack %q (known: %v)", name, names)
			}
			names = []string{name}
		}

		enabled := g.EnabledSet(profile)
		renderer := newRenderer()
		for _, name := range names {
			stackName := profile.StackName(name)
			stack, err := d.Describe(ctx, stackName)
			if err != nil {
				return fmt.Errorf("failed to describe stack %s: %w", stackName, err)
			}

			state := "not deployed"
			if stack != nil {
				state = string(stack.Status)
			}
			flag := ""
			if !enabled[name] {
				flag = " (disabled)"
			}
			fmt.Printf("%-12s %-40s %s%s\n", name, stackName, state, flag)

			if len(args) > 0 && stack != nil {
				fmt.Print(renderer.RenderOutputs(name, stack.Outputs))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
