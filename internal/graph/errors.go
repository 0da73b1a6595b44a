/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package graph

import (
	"fmt"
	"strings"
)

// CyclicDependencyError indicates a cycle in the static stack graph.
// This is a programming error in the stack table, not user input.
type CyclicDependencyError struct {
	Stacks []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected among stacks: %s", strings.Join(e.Stacks, ", "))
}

// UnsatisfiedDependencyError indicates a requested stack depends on a stack
// that is neither enabled by the profile nor already deployed.
type UnsatisfiedDependencyError struct {
	Stack      string
	Dependency string
}

func (e *UnsatisfiedDependencyError) Error() string {
	return fmt.Sprintf("stack %s requires %s, which is not enabled and not deployed", e.Stack, e.Dependency)
}

// DependentsStillDeployedError indicates destroying a stack would orphan
// deployed stacks that depend on it and are not in the destroy scope.
type DependentsStillDeployedError struct {
	Stack      string
	Dependents []string
}

func (e *DependentsStillDeployedError) Error() string {
	return fmt.Sprintf("stack %s still has deployed dependents: %s", e.Stack, strings.Join(e.Dependents, ", "))
}
