/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package aws

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
)

// StackStatus represents the status of a CloudFormation stack
type StackStatus string

const (
	StackStatusCreateInProgress StackStatus = "CREATE_IN_PROGRESS"
	StackStatusCreateComplete   StackStatus = "CREATE_COMPLETE"
	StackStatusCreateFailed     StackStatus = "CREATE_FAILED"
	StackStatusUpdateInProgress StackStatus = "UPDATE_IN_PROGRESS"
	StackStatusUpdateComplete   StackStatus = "UPDATE_COMPLETE"
	StackStatusUpdateFailed     StackStatus = "UPDATE_FAILED"
	StackStatusDeleteInProgress StackStatus = "DELETE_IN_PROGRESS"
	StackStatusDeleteComplete   StackStatus = "DELETE_COMPLETE"
	StackStatusDeleteFailed     StackStatus = "DELETE_FAILED"
	StackStatusRollbackComplete StackStatus = "ROLLBACK_COMPLETE"
	StackStatusRollbackFailed   StackStatus = "ROLLBACK_FAILED"
)

// IsInProgress reports whether the status describes an in-flight operation
func (s StackStatus) IsInProgress() bool {
	return strings.HasSuffix(string(s), "_IN_PROGRESS")
}

// IsFailure reports whether the status describes a failed or rolled-back
// operation
func (s StackStatus) IsFailure() bool {
	return strings.HasSuffix(string(s), "_FAILED") || strings.HasPrefix(string(s), "ROLLBACK_") ||
		strings.HasPrefix(string(s), "UPDATE_ROLLBACK_")
}

// IsDeployed reports whether the stack counts as currently deployed
func (s StackStatus) IsDeployed() bool {
	return s != StackStatusDeleteComplete && s != ""
}

// Stack represents a CloudFormation stack with the information authstack needs
type Stack struct {
	Name        string
	Status      StackStatus
	CreatedTime *time.Time
	UpdatedTime *time.Time
	Description string
	Parameters  map[string]string
	Outputs     map[string]string
	Tags        map[string]string
}

// Parameter represents a CloudFormation stack parameter
type Parameter struct {
	Key   string
	Value string
}

// ApplyStackInput contains parameters for creating or updating a stack
type ApplyStackInput struct {
	StackName    string
	TemplateBody string
	Parameters   []Parameter
	Tags         map[string]string
	Capabilities []string
}

// DeleteStackInput contains parameters for deleting a stack
type DeleteStackInput struct {
	StackName string
}

// ChangeSetInfo summarises the changes a deployment would make
type ChangeSetInfo struct {
	ChangeSetID string
	Status      string
	NoChanges   bool
	Changes     []ResourceChange
}

// ResourceChange represents a change to a single CloudFormation resource
type ResourceChange struct {
	Action       string // Add, Modify, Remove
	ResourceType string
	LogicalID    string
	PhysicalID   string
	Replacement  string
}

// defaultPollInterval is how often stack operations are polled for completion
const defaultPollInterval = 5 * time.Second

// DefaultCloudFormationOperations provides CloudFormation-specific operations
type DefaultCloudFormationOperations struct {
	client       CloudFormationClient
	pollInterval time.Duration
}

// NewCloudFormationOperationsWithClient creates operations with a custom
// client (for testing)
func NewCloudFormationOperationsWithClient(client CloudFormationClient) *DefaultCloudFormationOperations {
	return &DefaultCloudFormationOperations{
		client:       client,
		pollInterval: defaultPollInterval,
	}
}

// SetPollInterval overrides the completion polling interval (for testing)
func (cf *DefaultCloudFormationOperations) SetPollInterval(d time.Duration) {
	cf.pollInterval = d
}

// ApplyStack creates the stack if absent, updates it otherwise, and waits for
// the operation to reach a terminal state. A successful no-op update returns
// the current stack unchanged.
func (cf *DefaultCloudFormationOperations) ApplyStack(ctx context.Context, input ApplyStackInput) (*Stack, error) {
	exists, err := cf.StackExists(ctx, input.StackName)
	if err != nil {
		return nil, err
	}

	params := toSDKParameters(input.Parameters)
	tags := toSDKTags(input.Tags)
	capabilities := toSDKCapabilities(input.Capabilities)

	if exists {
		_, err = cf.client.UpdateStack(ctx, &cloudformation.UpdateStackInput{
			StackName:    aws.String(input.StackName),
			TemplateBody: aws.String(input.TemplateBody),
			Parameters:   params,
			Tags:         tags,
			Capabilities: capabilities,
		})
		if err != nil {
			if isNoUpdatesError(err) {
				return cf.GetStack(ctx, input.StackName)
			}
			return nil, classifyError(fmt.Sprintf("update stack %s", input.StackName), err)
		}
	} else {
		_, err = cf.client.CreateStack(ctx, &cloudformation.CreateStackInput{
			StackName:    aws.String(input.StackName),
			TemplateBody: aws.String(input.TemplateBody),
			Parameters:   params,
			Tags:         tags,
			Capabilities: capabilities,
		})
		if err != nil {
			return nil, classifyError(fmt.Sprintf("create stack %s", input.StackName), err)
		}
	}

	return cf.WaitForStackOperation(ctx, input.StackName, 0)
}

// DeleteStack deletes a CloudFormation stack and waits for completion
func (cf *DefaultCloudFormationOperations) DeleteStack(ctx context.Context, input DeleteStackInput) error {
	_, err := cf.client.DeleteStack(ctx, &cloudformation.DeleteStackInput{
		StackName: aws.String(input.StackName),
	})
	if err != nil {
		return classifyError(fmt.Sprintf("delete stack %s", input.StackName), err)
	}

	_, err = cf.WaitForStackOperation(ctx, input.StackName, 0)
	if err != nil {
		// A vanished stack is a successful delete
		if isStackNotFoundError(err) {
			return nil
		}
		return err
	}
	return nil
}

// GetStack retrieves information about a specific stack
func (cf *DefaultCloudFormationOperations) GetStack(ctx context.Context, stackName string) (*Stack, error) {
	result, err := cf.client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return nil, classifyError(fmt.Sprintf("describe stack %s", stackName), err)
	}

	if len(result.Stacks) == 0 {
		return nil, &ProviderRejectedError{
			Operation: fmt.Sprintf("describe stack %s", stackName),
			Reason:    "stack not found",
		}
	}

	cfnStack := result.Stacks[0]
	stack := &Stack{
		Name:        aws.ToString(cfnStack.StackName),
		Status:      StackStatus(cfnStack.StackStatus),
		CreatedTime: cfnStack.CreationTime,
		UpdatedTime: cfnStack.LastUpdatedTime,
		Description: aws.ToString(cfnStack.Description),
		Parameters:  make(map[string]string),
		Outputs:     make(map[string]string),
		Tags:        make(map[string]string),
	}

	for _, param := range cfnStack.Parameters {
		stack.Parameters[aws.ToString(param.ParameterKey)] = aws.ToString(param.ParameterValue)
	}
	for _, output := range cfnStack.Outputs {
		stack.Outputs[aws.ToString(output.OutputKey)] = aws.ToString(output.OutputValue)
	}
	for _, tag := range cfnStack.Tags {
		stack.Tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}

	return stack, nil
}

// StackExists checks if a stack exists
func (cf *DefaultCloudFormationOperations) StackExists(ctx context.Context, stackName string) (bool, error) {
	_, err := cf.client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		if isStackNotFoundError(err) {
			return false, nil
		}
		return false, classifyError(fmt.Sprintf("describe stack %s", stackName), err)
	}
	return true, nil
}

// PreviewChanges creates a changeset for the would-be deployment, reads the
// resulting change summary, and deletes the changeset again. It never mutates
// the stack.
func (cf *DefaultCloudFormationOperations) PreviewChanges(ctx context.Context, input ApplyStackInput) (*ChangeSetInfo, error) {
	exists, err := cf.StackExists(ctx, input.StackName)
	if err != nil {
		return nil, err
	}

	changeSetType := types.ChangeSetTypeUpdate
	if !exists {
		changeSetType = types.ChangeSetTypeCreate
	}

	changeSetName := fmt.Sprintf("authstack-preview-%d", time.Now().Unix())
	createOutput, err := cf.client.CreateChangeSet(ctx, &cloudformation.CreateChangeSetInput{
		StackName:     aws.String(input.StackName),
		ChangeSetName: aws.String(changeSetName),
		TemplateBody:  aws.String(input.TemplateBody),
		Parameters:    toSDKParameters(input.Parameters),
		Tags:          toSDKTags(input.Tags),
		Capabilities:  toSDKCapabilities(input.Capabilities),
		ChangeSetType: changeSetType,
	})
	if err != nil {
		return nil, classifyError(fmt.Sprintf("create changeset for %s", input.StackName), err)
	}

	changeSetID := aws.ToString(createOutput.Id)
	defer func() {
		// Best-effort cleanup; the changeset is never executed
		_, _ = cf.client.DeleteChangeSet(context.WithoutCancel(ctx), &cloudformation.DeleteChangeSetInput{
			ChangeSetName: aws.String(changeSetID),
		})
	}()

	info, err := cf.waitForChangeSet(ctx, changeSetID)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// waitForChangeSet polls until the changeset reaches a terminal state
func (cf *DefaultCloudFormationOperations) waitForChangeSet(ctx context.Context, changeSetID string) (*ChangeSetInfo, error) {
	for {
		describeOutput, err := cf.client.DescribeChangeSet(ctx, &cloudformation.DescribeChangeSetInput{
			ChangeSetName: aws.String(changeSetID),
		})
		if err != nil {
			return nil, classifyError("describe changeset", err)
		}

		switch describeOutput.Status {
		case types.ChangeSetStatusCreateComplete:
			return changeSetInfoFromOutput(describeOutput), nil

		case types.ChangeSetStatusFailed:
			reason := aws.ToString(describeOutput.StatusReason)
			// CloudFormation reports an empty diff as a failed changeset
			if strings.Contains(reason, "didn't contain changes") ||
				strings.Contains(reason, "No updates are to be performed") {
				return &ChangeSetInfo{
					ChangeSetID: changeSetID,
					Status:      string(describeOutput.Status),
					NoChanges:   true,
				}, nil
			}
			return nil, &ProviderRejectedError{Operation: "create changeset", Reason: reason}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cf.pollInterval):
		}
	}
}

// WaitForStackOperation polls the stack until the in-flight operation reaches
// a terminal state. A zero deadline waits indefinitely (bounded by ctx).
func (cf *DefaultCloudFormationOperations) WaitForStackOperation(ctx context.Context, stackName string, deadline time.Duration) (*Stack, error) {
	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	for {
		stack, err := cf.GetStack(ctx, stackName)
		if err != nil {
			return nil, err
		}

		if !stack.Status.IsInProgress() {
			if stack.Status.IsFailure() {
				return stack, &ProviderRejectedError{
					Operation: fmt.Sprintf("stack operation on %s", stackName),
					Reason:    fmt.Sprintf("stack entered status %s", stack.Status),
				}
			}
			return stack, nil
		}

		select {
		case <-ctx.Done():
			return nil, classifyError(fmt.Sprintf("wait for stack %s", stackName), ctx.Err())
		case <-time.After(cf.pollInterval):
		}
	}
}

// changeSetInfoFromOutput converts an SDK changeset description
func changeSetInfoFromOutput(output *cloudformation.DescribeChangeSetOutput) *ChangeSetInfo {
	info := &ChangeSetInfo{
		ChangeSetID: aws.ToString(output.ChangeSetId),
		Status:      string(output.Status),
	}
	for _, change := range output.Changes {
		if change.ResourceChange == nil {
			continue
		}
		rc := change.ResourceChange
		info.Changes = append(info.Changes, ResourceChange{
			Action:       string(rc.Action),
			ResourceType: aws.ToString(rc.ResourceType),
			LogicalID:    aws.ToString(rc.LogicalResourceId),
			PhysicalID:   aws.ToString(rc.PhysicalResourceId),
			Replacement:  string(rc.Replacement),
		})
	}
	info.NoChanges = len(info.Changes) == 0
	return info
}

// toSDKParameters converts parameters to the SDK representation
func toSDKParameters(params []Parameter) []types.Parameter {
	result := make([]types.Parameter, len(params))
	for i, p := range params {
		result[i] = types.Parameter{
			ParameterKey:   aws.String(p.Key),
			ParameterValue: aws.String(p.Value),
		}
	}
	return result
}

// toSDKTags converts tags to the SDK representation
func toSDKTags(tags map[string]string) []types.Tag {
	result := make([]types.Tag, 0, len(tags))
	for k, v := range tags {
		result = append(result, types.Tag{
			Key:   aws.String(k),
			Value: aws.String(v),
		})
	}
	return result
}

// toSDKCapabilities converts capability names to the SDK representation
func toSDKCapabilities(capabilities []string) []types.Capability {
	if len(capabilities) == 0 {
		capabilities = []string{"CAPABILITY_NAMED_IAM"}
	}
	result := make([]types.Capability, len(capabilities))
	for i, c := range capabilities {
		result[i] = types.Capability(c)
	}
	return result
}

// isNoUpdatesError detects CloudFormation's "no updates" rejection
func isNoUpdatesError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "No updates are to be performed")
}

// isStackNotFoundError checks if the error indicates the stack doesn't exist
func isStackNotFoundError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "does not exist")
}
