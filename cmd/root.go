/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/halcyonops/authstack/internal/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "authstack",
	Short: "A command-line tool for deploying identity-aware access infrastructure",
	Long: `Authstack deploys and operates the cloud infrastructure behind
identity-federated tool access:

• Declarative profile configuration in YAML
• Dependency-ordered multi-stack deployment with change previews
• Safe teardown in reverse dependency order
• Multi-platform packaging of the credential helper binary
• Remote build submission and monitoring for platforms the host cannot build

Use authstack to deploy the stacks for a profile, package the credential
helper for distribution, and watch remote builds complete.`,
	Version: version.Short(),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// RootCommand exposes the root command for documentation generation
func RootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.SetVersionTemplate(version.Info() + "\n")

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "authstack.yaml", "config file (default is authstack.yaml)")
	rootCmd.PersistentFlags().StringP("profile", "p", "default", "configuration profile to operate on")
	rootCmd.PersistentFlags().String("region", "", "cloud region (overrides the profile)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}
