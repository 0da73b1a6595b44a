/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package destroy sequences multi-stack teardown in reverse dependency
// order. Unlike deploy, destruction is best-effort per stack: one failure
// does not block the teardown of independent remaining stacks.
package destroy

import (
	"context"
	"fmt"

	"github.com/halcyonops/authstack/internal/config"
	"github.com/halcyonops/authstack/internal/driver"
	"github.com/halcyonops/authstack/internal/graph"
	"github.com/halcyonops/authstack/internal/prompt"
)

// Request describes one destroy invocation
type Request struct {
	// Scope is graph.ScopeAll or a single logical stack name
	Scope string

	// Force skips the confirmation prompt and the deployed-dependent check
	Force bool
}

// residualWarnings lists known resources that survive stack deletion, per
// logical stack. They are reported as warnings, not failures.
var residualWarnings = map[string][]string{
	graph.StackMonitoring: {
		"CloudWatch log groups created by this stack are retained and must be deleted manually",
	},
}

// Destroyer tears down a scope of stacks for one profile
type Destroyer interface {
	Destroy(ctx context.Context, req Request) (driver.Results, error)
}

// Orchestrator sequences stack teardown for one profile
type Orchestrator struct {
	profile *config.Profile
	graph   *graph.Graph
	driver  driver.Driver
}

var _ Destroyer = (*Orchestrator)(nil)

// NewOrchestrator creates a destroy orchestrator
func NewOrchestrator(profile *config.Profile, g *graph.Graph, d driver.Driver) *Orchestrator {
	return &Orchestrator{profile: profile, graph: g, driver: d}
}

// Destroy tears down the requested scope and returns one result per plan
// entry, in teardown order.
func (o *Orchestrator) Destroy(ctx context.Context, req Request) (driver.Results, error) {
	deployed, err := o.describeDeployed(ctx)
	if err != nil {
		return nil, err
	}

	order, err := o.graph.ReverseOrder(req.Scope, deployed, req.Force)
	if err != nil {
		return nil, err
	}
	if len(order) == 0 {
		fmt.Println("No deployed stacks in scope, nothing to destroy")
		return nil, nil
	}

	if !req.Force {
		confirmed, err := prompt.Confirm(destroyPrompt(order))
		if err != nil {
			return nil, fmt.Errorf("failed to get user confirmation: %w", err)
		}
		if !confirmed {
			fmt.Println("Destruction cancelled")
			return nil, nil
		}
	}

	results := make(driver.Results, 0, len(order))
	for _, name := range order {
		result := &driver.Result{
			Stack:     name,
			StackName: o.profile.StackName(name),
		}
		results = append(results, result)

		if err := ctx.Err(); err != nil {
			result.Status = driver.StatusSkipped
			result.SkipReason = "destruction cancelled"
			continue
		}

		fmt.Printf("Destroying stack %s...\n", result.StackName)
		if err := o.driver.Destroy(ctx, result.StackName); err != nil {
			// Keep going: a partially completed teardown beats an
			// untouched one.
			result.Status = driver.StatusFailed
			result.Err = err
			fmt.Printf("Failed to destroy stack %s: %v\n", result.StackName, err)
			continue
		}

		result.Status = driver.StatusDestroyed
		result.Warnings = residualWarnings[name]
		fmt.Printf("Successfully destroyed stack %s\n", result.StackName)
	}

	return results, nil
}

// describeDeployed queries every known stack and returns the deployed set
func (o *Orchestrator) describeDeployed(ctx context.Context) (map[string]bool, error) {
	deployed := make(map[string]bool)
	for _, name := range o.graph.Names() {
		stack, err := o.driver.Describe(ctx, o.profile.StackName(name))
		if err != nil {
			return nil, fmt.Errorf("failed to query stack %s: %w", name, err)
		}
		if stack != nil {
			deployed[name] = true
		}
	}
	return deployed, nil
}

// destroyPrompt builds the confirmation message for a teardown plan
func destroyPrompt(order []string) string {
	if len(order) == 1 {
		return fmt.Sprintf("Destroy stack %s? This cannot be undone.", order[0])
	}
	return fmt.Sprintf("Destroy %d stacks in order %v? This cannot be undone.", len(order), order)
}
