/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package driver adapts provider stack operations to the shape the
// orchestrators work with: one plan/apply/destroy/describe call per stack.
package driver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/halcyonops/authstack/internal/aws"
	"github.com/halcyonops/authstack/internal/resolve"
)

// Driver executes provider operations for a single stack
type Driver interface {
	// Plan computes the changes a deployment would make without applying them
	Plan(ctx context.Context, stack *resolve.ResolvedStack) (*aws.ChangeSetInfo, error)

	// Apply creates or updates the stack and waits for completion
	Apply(ctx context.Context, stack *resolve.ResolvedStack) (*aws.Stack, error)

	// Destroy deletes the stack and waits for completion
	Destroy(ctx context.Context, stackName string) error

	// Describe returns the stack's current state, or nil when not deployed.
	// Describe is read-only and never mutates provider state.
	Describe(ctx context.Context, stackName string) (*aws.Stack, error)

	// RenderCommands returns the equivalent provider CLI invocations without
	// executing anything
	RenderCommands(stack *resolve.ResolvedStack, region string) []string
}

// CloudFormationDriver implements Driver over CloudFormation operations
type CloudFormationDriver struct {
	ops aws.CloudFormationOperations
}

// NewCloudFormationDriver creates a driver over the given operations
func NewCloudFormationDriver(ops aws.CloudFormationOperations) *CloudFormationDriver {
	return &CloudFormationDriver{ops: ops}
}

// Plan computes a change preview via a throwaway changeset
func (d *CloudFormationDriver) Plan(ctx context.Context, stack *resolve.ResolvedStack) (*aws.ChangeSetInfo, error) {
	return d.ops.PreviewChanges(ctx, applyInput(stack))
}

// Apply creates or updates the stack and waits for the terminal state
func (d *CloudFormationDriver) Apply(ctx context.Context, stack *resolve.ResolvedStack) (*aws.Stack, error) {
	return d.ops.ApplyStack(ctx, applyInput(stack))
}

// Destroy deletes the stack and waits for completion
func (d *CloudFormationDriver) Destroy(ctx context.Context, stackName string) error {
	return d.ops.DeleteStack(ctx, aws.DeleteStackInput{StackName: stackName})
}

// Describe returns current stack state, or nil when the stack is not deployed
func (d *CloudFormationDriver) Describe(ctx context.Context, stackName string) (*aws.Stack, error) {
	exists, err := d.ops.StackExists(ctx, stackName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	stack, err := d.ops.GetStack(ctx, stackName)
	if err != nil {
		return nil, err
	}
	if !stack.Status.IsDeployed() {
		return nil, nil
	}
	return stack, nil
}

// RenderCommands returns the aws CLI invocations equivalent to Apply
func (d *CloudFormationDriver) RenderCommands(stack *resolve.ResolvedStack, region string) []string {
	var b strings.Builder
	b.WriteString("aws cloudformation deploy")
	fmt.Fprintf(&b, " --stack-name %s", stack.StackName)
	fmt.Fprintf(&b, " --template-file %s", stack.TemplatePath)
	b.WriteString(" --capabilities CAPABILITY_NAMED_IAM")
	if region != "" {
		fmt.Fprintf(&b, " --region %s", region)
	}

	if len(stack.Parameters) > 0 {
		keys := make([]string, 0, len(stack.Parameters))
		for k := range stack.Parameters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" --parameter-overrides")
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%s", k, stack.Parameters[k])
		}
	}

	return []string{b.String()}
}

// applyInput converts a resolved stack to the provider input shape
func applyInput(stack *resolve.ResolvedStack) aws.ApplyStackInput {
	params := make([]aws.Parameter, 0, len(stack.Parameters))
	keys := make([]string, 0, len(stack.Parameters))
	for k := range stack.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		params = append(params, aws.Parameter{Key: k, Value: stack.Parameters[k]})
	}

	return aws.ApplyStackInput{
		StackName:    stack.StackName,
		TemplateBody: stack.TemplateBody,
		Parameters:   params,
		Tags:         stack.Tags,
	}
}
