/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package deploy sequences multi-stack deployments: it computes the
// dependency-ordered plan, runs one provider apply per stack, threads stack
// outputs into later stacks' parameters, and aggregates per-stack results.
package deploy

import (
	"context"
	"fmt"
	"time"

	"github.com/halcyonops/authstack/internal/aws"
	"github.com/halcyonops/authstack/internal/config"
	"github.com/halcyonops/authstack/internal/driver"
	"github.com/halcyonops/authstack/internal/graph"
	"github.com/halcyonops/authstack/internal/prompt"
	"github.com/halcyonops/authstack/internal/resolve"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 2 * time.Second
)

// Request describes one deploy invocation
type Request struct {
	// Scope is graph.ScopeAll or a single logical stack name
	Scope string

	// DryRun computes change previews without applying anything
	DryRun bool

	// ShowCommands renders provider invocations without executing anything
	ShowCommands bool

	// Yes skips the confirmation prompt
	Yes bool
}

// Mutating reports whether the request will change provider state
func (r Request) Mutating() bool {
	return !r.DryRun && !r.ShowCommands
}

// Deployer deploys a scope of stacks for one profile
type Deployer interface {
	Deploy(ctx context.Context, req Request) (driver.Results, error)
}

// Orchestrator sequences stack deployments for one profile
type Orchestrator struct {
	profile  *config.Profile
	graph    *graph.Graph
	driver   driver.Driver
	resolver *resolve.StackResolver

	maxAttempts int
	baseDelay   time.Duration
}

var _ Deployer = (*Orchestrator)(nil)

// NewOrchestrator creates a deploy orchestrator
func NewOrchestrator(profile *config.Profile, g *graph.Graph, d driver.Driver) *Orchestrator {
	return &Orchestrator{
		profile:     profile,
		graph:       g,
		driver:      d,
		resolver:    resolve.NewStackResolver(profile),
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
	}
}

// SetResolver injects a custom resolver (for testing)
func (o *Orchestrator) SetResolver(r *resolve.StackResolver) {
	o.resolver = r
}

// SetBackoff overrides retry tuning (for testing)
func (o *Orchestrator) SetBackoff(maxAttempts int, baseDelay time.Duration) {
	o.maxAttempts = maxAttempts
	o.baseDelay = baseDelay
}

// Deploy executes the requested scope and returns one result per plan entry,
// in plan order. Execution halts at the first terminal failure; the
// remaining stacks are reported as skipped, never silently dropped.
func (o *Orchestrator) Deploy(ctx context.Context, req Request) (driver.Results, error) {
	enabled := o.graph.EnabledSet(o.profile)

	plan, err := o.graph.ResolveOrder(req.Scope, enabled, o.isDeployed(ctx))
	if err != nil {
		return nil, err
	}
	if len(plan) == 0 {
		return nil, nil
	}

	if req.Mutating() && !req.Yes {
		confirmed, err := prompt.Confirm(deployPrompt(plan))
		if err != nil {
			return nil, fmt.Errorf("failed to get user confirmation: %w", err)
		}
		if !confirmed {
			fmt.Println("Deployment cancelled")
			return nil, nil
		}
	}

	results := make(driver.Results, 0, len(plan))
	outputs := make(map[string]map[string]string)
	lookup := o.outputLookup(outputs)

	halted := false
	haltReason := ""

	for _, name := range plan {
		result := &driver.Result{
			Stack:     name,
			StackName: o.profile.StackName(name),
		}
		results = append(results, result)

		if halted {
			result.Status = driver.StatusSkipped
			result.SkipReason = haltReason
			continue
		}

		// Stop issuing new provider calls once the run is cancelled; the
		// in-flight call (if any) already completed or returned. A later
		// invocation re-describes current state and resumes from there.
		if err := ctx.Err(); err != nil {
			halted = true
			haltReason = "deployment cancelled"
			result.Status = driver.StatusSkipped
			result.SkipReason = haltReason
			continue
		}

		resolved, err := o.resolver.Resolve(ctx, name, lookup)
		if err != nil {
			result.Status = driver.StatusFailed
			result.Err = err
			halted = true
			haltReason = fmt.Sprintf("halted after %s failed", name)
			continue
		}

		switch {
		case req.ShowCommands:
			result.Status = driver.StatusPlanned
			result.Commands = o.driver.RenderCommands(resolved, o.profile.Region)

		case req.DryRun:
			changes, err := o.driver.Plan(ctx, resolved)
			if err != nil {
				result.Status = driver.StatusFailed
				result.Err = err
				halted = true
				haltReason = fmt.Sprintf("halted after %s failed", name)
				continue
			}
			result.Status = driver.StatusPlanned
			result.Changes = changes

		default:
			fmt.Printf("Deploying stack %s...\n", result.StackName)
			stack, err := o.applyWithRetry(ctx, resolved)
			if err != nil {
				result.Status = driver.StatusFailed
				result.Err = err
				halted = true
				haltReason = fmt.Sprintf("halted after %s failed", name)
				continue
			}
			result.Status = driver.StatusApplied
			result.Outputs = stack.Outputs
			outputs[name] = stack.Outputs
			fmt.Printf("Successfully deployed stack %s\n", result.StackName)
		}
	}

	return results, nil
}

// applyWithRetry retries transient provider failures with exponential
// backoff; terminal failures surface immediately.
func (o *Orchestrator) applyWithRetry(ctx context.Context, resolved *resolve.ResolvedStack) (*aws.Stack, error) {
	var lastErr error
	delay := o.baseDelay

	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		stack, err := o.driver.Apply(ctx, resolved)
		if err == nil {
			return stack, nil
		}
		if !aws.IsTransient(err) {
			return nil, err
		}

		lastErr = err
		if attempt == o.maxAttempts {
			break
		}

		fmt.Printf("Provider unavailable for stack %s (attempt %d/%d), retrying in %s...\n",
			resolved.StackName, attempt, o.maxAttempts, delay)
		select {
		case <-ctx.Done():
			return nil, lastErr
		case <-time.After(delay):
		}
		delay *= 2
	}

	return nil, lastErr
}

// isDeployed returns the deployed-stack predicate used for dependency checks
func (o *Orchestrator) isDeployed(ctx context.Context) graph.DeployedFunc {
	return func(name string) bool {
		stack, err := o.driver.Describe(ctx, o.profile.StackName(name))
		return err == nil && stack != nil
	}
}

// outputLookup resolves output references from this run's captured outputs,
// falling back to a describe call for stacks deployed earlier.
func (o *Orchestrator) outputLookup(captured map[string]map[string]string) resolve.OutputLookup {
	return func(ctx context.Context, stackName, key string) (string, error) {
		if outputs, ok := captured[stackName]; ok {
			if value, ok := outputs[key]; ok {
				return value, nil
			}
		}

		stack, err := o.driver.Describe(ctx, o.profile.StackName(stackName))
		if err != nil {
			return "", err
		}
		if stack == nil {
			return "", fmt.Errorf("stack %s is not deployed", stackName)
		}
		value, ok := stack.Outputs[key]
		if !ok {
			return "", fmt.Errorf("stack %s has no output %s", stackName, key)
		}
		return value, nil
	}
}

// deployPrompt builds the confirmation message for a plan
func deployPrompt(plan []string) string {
	if len(plan) == 1 {
		return fmt.Sprintf("Deploy stack %s?", plan[0])
	}
	return fmt.Sprintf("Deploy %d stacks in order %v?", len(plan), plan)
}
