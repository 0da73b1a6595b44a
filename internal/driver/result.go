/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package driver

import "github.com/halcyonops/authstack/internal/aws"

// Status is the per-stack outcome of an orchestrated operation
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusApplied   Status = "applied"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
	StatusDestroyed Status = "destroyed"
)

// Result is the outcome of one stack operation. Orchestrators return one
// Result per plan entry, in plan order, even when execution halts early.
type Result struct {
	Stack     string // logical name
	StackName string // physical name
	Status    Status

	// Outputs captured after a successful apply
	Outputs map[string]string

	// Changes captured by a dry-run plan
	Changes *aws.ChangeSetInfo

	// Commands rendered in show-commands mode
	Commands []string

	// Warnings for conditions that did not fail the operation
	Warnings []string

	// SkipReason explains a skipped status
	SkipReason string

	// Err holds the failure for a failed status
	Err error
}

// Results is an ordered sequence of per-stack outcomes
type Results []*Result

// Failed returns the subset of results that failed, in plan order
func (rs Results) Failed() Results {
	var failed Results
	for _, r := range rs {
		if r.Status == StatusFailed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Outputs merges captured outputs across the sequence, keyed by logical
// stack name
func (rs Results) Outputs() map[string]map[string]string {
	merged := make(map[string]map[string]string)
	for _, r := range rs {
		if len(r.Outputs) > 0 {
			merged[r.Stack] = r.Outputs
		}
	}
	return merged
}
