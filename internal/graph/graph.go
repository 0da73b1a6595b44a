/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package graph models the fixed set of deployment stacks, their dependency
// relation, and the order in which create and destroy operations must run.
package graph

import (
	"fmt"

	"github.com/halcyonops/authstack/internal/config"
)

// ScopeAll requests an operation over every enabled stack
const ScopeAll = "all"

// Stack logical names
const (
	StackAuth       = "auth"
	StackNetworking = "networking"
	StackMonitoring = "monitoring"
	StackDashboard  = "dashboard"
	StackAnalytics  = "analytics"
	StackQuota      = "quota"
	StackCodeBuild  = "codebuild"
)

// Stack describes one entry in the static stack table
type Stack struct {
	Name        string
	Required    bool
	DependsOn   []string
	EnabledWhen func(*config.Profile) bool
}

// stackTable is the authoritative stack set in declared priority order.
// Ties during topological sorting are broken by position in this table,
// which keeps plan output deterministic across runs.
var stackTable = []Stack{
	{
		Name:        StackAuth,
		Required:    true,
		EnabledWhen: func(*config.Profile) bool { return true },
	},
	{
		Name:        StackNetworking,
		EnabledWhen: func(p *config.Profile) bool { return p.MonitoringEnabled },
	},
	{
		Name:        StackMonitoring,
		DependsOn:   []string{StackNetworking},
		EnabledWhen: func(p *config.Profile) bool { return p.MonitoringEnabled },
	},
	{
		Name:        StackDashboard,
		DependsOn:   []string{StackNetworking},
		EnabledWhen: func(p *config.Profile) bool { return p.MonitoringEnabled },
	},
	{
		Name:        StackAnalytics,
		DependsOn:   []string{StackNetworking},
		EnabledWhen: func(p *config.Profile) bool { return p.MonitoringEnabled && p.AnalyticsEnabled },
	},
	{
		Name:        StackQuota,
		DependsOn:   []string{StackDashboard},
		EnabledWhen: func(p *config.Profile) bool { return p.MonitoringEnabled && p.QuotaEnabled },
	},
	{
		Name:        StackCodeBuild,
		EnabledWhen: func(p *config.Profile) bool { return p.CodeBuildEnabled },
	},
}

// DeployedFunc reports whether a stack is currently deployed
type DeployedFunc func(name string) bool

// Graph holds a stack table and answers ordering questions about it
type Graph struct {
	stacks []Stack
	byName map[string]*Stack
	index  map[string]int // priority position
}

// New returns a Graph over the authoritative stack table
func New() *Graph {
	return NewWithStacks(stackTable)
}

// NewWithStacks returns a Graph over a caller-supplied table (for testing
// the ordering algorithm against synthetic graphs)
func NewWithStacks(stacks []Stack) *Graph {
	g := &Graph{
		stacks: stacks,
		byName: make(map[string]*Stack, len(stacks)),
		index:  make(map[string]int, len(stacks)),
	}
	for i := range stacks {
		g.byName[stacks[i].Name] = &stacks[i]
		g.index[stacks[i].Name] = i
	}
	return g
}

// Stacks returns the stack table in declared priority order
func (g *Graph) Stacks() []Stack {
	return g.stacks
}

// Names returns every stack name in declared priority order
func (g *Graph) Names() []string {
	names := make([]string, len(g.stacks))
	for i, s := range g.stacks {
		names[i] = s.Name
	}
	return names
}

// EnabledSet derives the set of stacks enabled by the profile
func (g *Graph) EnabledSet(profile *config.Profile) map[string]bool {
	enabled := make(map[string]bool, len(g.stacks))
	for _, s := range g.stacks {
		if s.Required || s.EnabledWhen == nil || s.EnabledWhen(profile) {
			enabled[s.Name] = true
		}
	}
	return enabled
}

// ResolveOrder computes the ordered deployment plan for the requested scope.
//
// For ScopeAll the plan contains every enabled stack, dependency-first. For a
// single stack the plan contains only that stack; each of its dependencies
// must be enabled or already deployed, otherwise an
// UnsatisfiedDependencyError is returned.
func (g *Graph) ResolveOrder(scope string, enabled map[string]bool, deployed DeployedFunc) ([]string, error) {
	if scope != ScopeAll && scope != "" {
		stack, ok := g.byName[scope]
		if !ok {
			return nil, fmt.Errorf("unknown stack %q", scope)
		}
		if !enabled[scope] {
			return nil, fmt.Errorf("stack %s is not enabled by the current profile", scope)
		}
		for _, dep := range stack.DependsOn {
			if enabled[dep] || (deployed != nil && deployed(dep)) {
				continue
			}
			return nil, &UnsatisfiedDependencyError{Stack: scope, Dependency: dep}
		}
		return []string{scope}, nil
	}

	return g.topoSort(enabled)
}

// ReverseOrder computes the teardown plan for the requested scope, restricted
// to stacks in deployedSet. Dependents are destroyed before their
// dependencies. Unless force is set, a DependentsStillDeployedError is
// returned when a stack in scope has a deployed dependent outside the scope.
func (g *Graph) ReverseOrder(scope string, deployed map[string]bool, force bool) ([]string, error) {
	inScope := make(map[string]bool, len(deployed))
	if scope == ScopeAll || scope == "" {
		for name := range deployed {
			inScope[name] = true
		}
	} else {
		if _, ok := g.byName[scope]; !ok {
			return nil, fmt.Errorf("unknown stack %q", scope)
		}
		if !deployed[scope] {
			return nil, nil // nothing to destroy
		}
		inScope[scope] = true
	}

	if !force {
		for name := range inScope {
			dependents := g.deployedDependents(name, deployed)
			var orphaned []string
			for _, dep := range dependents {
				if !inScope[dep] {
					orphaned = append(orphaned, dep)
				}
			}
			if len(orphaned) > 0 {
				return nil, &DependentsStillDeployedError{Stack: name, Dependents: orphaned}
			}
		}
	}

	// Order is the exact reverse of the deploy order over the same set.
	forward, err := g.topoSort(inScope)
	if err != nil {
		return nil, err
	}
	reversed := make([]string, len(forward))
	for i, name := range forward {
		reversed[len(forward)-1-i] = name
	}
	return reversed, nil
}

// deployedDependents returns deployed stacks that depend on the named stack
func (g *Graph) deployedDependents(name string, deployed map[string]bool) []string {
	var dependents []string
	for _, s := range g.stacks {
		if !deployed[s.Name] {
			continue
		}
		for _, dep := range s.DependsOn {
			if dep == name {
				dependents = append(dependents, s.Name)
			}
		}
	}
	return dependents
}

// topoSort orders the given stack set dependency-first using Kahn's
// algorithm. Among stacks with no remaining unmet dependency the declared
// table order decides, so results are stable across runs.
func (g *Graph) topoSort(include map[string]bool) ([]string, error) {
	inDegree := make(map[string]int, len(include))
	dependents := make(map[string][]string, len(include))

	for _, s := range g.stacks {
		if !include[s.Name] {
			continue
		}
		if _, ok := inDegree[s.Name]; !ok {
			inDegree[s.Name] = 0
		}
		for _, dep := range s.DependsOn {
			if !include[dep] {
				continue // dependency satisfied outside this plan
			}
			dependents[dep] = append(dependents[dep], s.Name)
			inDegree[s.Name]++
		}
	}

	var ready []string
	for name, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, name)
		}
	}

	var result []string
	for len(ready) > 0 {
		// Pick the ready stack earliest in the declared table order
		best := 0
		for i := 1; i < len(ready); i++ {
			if g.index[ready[i]] < g.index[ready[best]] {
				best = i
			}
		}
		current := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		result = append(result, current)

		for _, next := range dependents[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(result) != len(inDegree) {
		var remaining []string
		seen := make(map[string]bool, len(result))
		for _, name := range result {
			seen[name] = true
		}
		for _, s := range g.stacks {
			if include[s.Name] && !seen[s.Name] {
				remaining = append(remaining, s.Name)
			}
		}
		return nil, &CyclicDependencyError{Stacks: remaining}
	}

	return result, nil
}
