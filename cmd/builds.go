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
	"github.com/halcyonops/authstack/internal/graph"
	"github.com/halcyonops/authstack/internal/remote"
)

// BuildMonitor reads remote build state
type BuildMonitor interface {
	List(ctx context.Context, limit int) ([]*remote.Record, error)
	StatusOf(ctx context.Context, buildID string) (*remote.Record, error)
}

var (
	// buildMonitor can be injected for testing
	buildMonitor BuildMonitor
)

// buildsCmd represents the builds command
var buildsCmd = &cobra.Command{
	Use:   "builds [build-id]",
	Short: "Show remote credential helper builds",
	Long: `Show builds submitted to the remote build project.

Without arguments, lists recent builds with their status, elapsed time and
a console log link. With a build id, shows that build; the id "latest"
refers to the most recently submitted build from this machine.

Examples:
  authstack builds                   # List recent remote builds
  authstack builds --limit 20        # List more history
  authstack builds latest            # Status of the last submitted build
  authstack builds --status my-project:uuid   # Status of a specific build`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		buildID, _ := cmd.Flags().GetString("status")
		if buildID == "" && len(args) > 0 {
			buildID = args[0]
		}

		ctx := context.Background()
		profile, err := loadProfile(cmd)
		if err != nil {
			return err
		}

		monitor, err := getBuildMonitor(ctx, profile)
		if err != nil {
			return err
		}

		if buildID != "" {
			record, err := monitor.StatusOf(ctx, buildID)
			if err != nil {
				return err
			}
			fmt.Print(newRenderer().RenderBuildRecords([]*remote.Record{record}))
			return nil
		}

		records, err := monitor.List(ctx, limit)
		if err != nil {
			return err
		}
		fmt.Print(newRenderer().RenderBuildRecords(records))
		return nil
	},
}

// getBuildMonitor returns the monitor instance, creating a default one if none is set
func getBuildMonitor(ctx context.Context, profile *config.Profile) (BuildMonitor, error) {
	if buildMonitor != nil {
		return buildMonitor, nil
	}

	factory, err := getClientFactory()
	if err != nil {
		return nil, err
	}
	ops, err := factory.GetCodeBuildOperations(ctx, profile.Region)
	if err != nil {
		return nil, err
	}
	d, err := createDriver(ctx, profile)
	if err != nil {
		return nil, err
	}

	// The project name lives in the build-infrastructure stack's outputs.
	lookup := func(ctx context.Context) (string, error) {
		stack, err := d.Describe(ctx, profile.StackName(graph.StackCodeBuild))
		if err != nil {
			return "", err
		}
		if stack == nil || stack.Outputs["ProjectName"] == "" {
			return "", &remote.ProjectNotConfiguredError{Profile: profile.Name}
		}
		return stack.Outputs["ProjectName"], nil
	}
	return remote.NewMonitor(profile, ops, lookup), nil
}

// SetBuildMonitor allows injection of a monitor (for testing)
func SetBuildMonitor(m BuildMonitor) {
	buildMonitor = m
}

func init() {
	rootCmd.AddCommand(buildsCmd)

	buildsCmd.Flags().Int("limit", 10, "maximum number of builds to list")
	buildsCmd.Flags().String("status", "", "show a single build by id instead of listing")
}
