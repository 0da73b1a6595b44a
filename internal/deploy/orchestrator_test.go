/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package deploy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/halcyonops/authstack/internal/aws"
	"github.com/halcyonops/authstack/internal/config"
	"github.com/halcyonops/authstack/internal/driver"
	"github.com/halcyonops/authstack/internal/graph"
	"github.com/halcyonops/authstack/internal/prompt"
	"github.com/halcyonops/authstack/internal/resolve"
)

// stubReader serves the same empty template for every stack
type stubReader struct{}

func (stubReader) Read(path string) (string, error) {
	return "Resources: {}\n", nil
}

func testProfile() *config.Profile {
	return &config.Profile{
		Name:              "test",
		Region:            "us-east-1",
		PoolName:          "acme",
		FederationType:    "cognito",
		MonitoringEnabled: true,
		AnalyticsEnabled:  true,
		QuotaEnabled:      true,
		CodeBuildEnabled:  true,
		TemplateDir:       "templates",
	}
}

func newTestOrchestrator(profile *config.Profile, d driver.Driver) *Orchestrator {
	o := NewOrchestrator(profile, graph.New(), d)
	resolver := resolve.NewStackResolver(profile)
	resolver.SetTemplateReader(stubReader{})
	o.SetResolver(resolver)
	o.SetBackoff(3, time.Millisecond)
	return o
}

func stackMatcher(name string) interface{} {
	return mock.MatchedBy(func(s *resolve.ResolvedStack) bool {
		return s.Name == name
	})
}

func TestDeploy_AllStacks_AppliesInDependencyOrder(t *testing.T) {
	// Every enabled stack is applied once, dependencies first
	mockDriver := &driver.MockDriver{}
	mockDriver.On("Apply", mock.Anything, mock.Anything).
		Return(&aws.Stack{Status: aws.StackStatusCreateComplete, Outputs: map[string]string{}}, nil)

	o := newTestOrchestrator(testProfile(), mockDriver)

	results, err := o.Deploy(context.Background(), Request{Scope: graph.ScopeAll, Yes: true})
	require.NoError(t, err)
	require.Len(t, results, 7)

	position := make(map[string]int, len(results))
	for i, result := range results {
		assert.Equal(t, driver.StatusApplied, result.Status)
		position[result.Stack] = i
	}
	assert.Less(t, position[graph.StackNetworking], position[graph.StackMonitoring])
	assert.Less(t, position[graph.StackDashboard], position[graph.StackQuota])

	mockDriver.AssertNumberOfCalls(t, "Apply", 7)
}

func TestDeploy_FailureSkipsDependents(t *testing.T) {
	// A terminal failure halts the run; the remaining stacks are reported
	// as skipped with a reason that does not claim a dependency edge the
	// graph never had
	mockDriver := &driver.MockDriver{}
	mockDriver.On("Apply", mock.Anything, stackMatcher(graph.StackAuth)).
		Return(&aws.Stack{Outputs: map[string]string{}}, nil)
	mockDriver.On("Apply", mock.Anything, stackMatcher(graph.StackNetworking)).
		Return(nil, &aws.ProviderRejectedError{Operation: "ApplyStack", Reason: "template invalid"})

	o := newTestOrchestrator(testProfile(), mockDriver)

	results, err := o.Deploy(context.Background(), Request{Scope: graph.ScopeAll, Yes: true})
	require.NoError(t, err)
	require.Len(t, results, 7)

	assert.Equal(t, driver.StatusApplied, results[0].Status)
	assert.Equal(t, driver.StatusFailed, results[1].Status)
	for _, result := range results[2:] {
		assert.Equal(t, driver.StatusSkipped, result.Status)
		assert.Equal(t, "halted after networking failed", result.SkipReason)
	}

	mockDriver.AssertNumberOfCalls(t, "Apply", 2)
}

func TestDeploy_DryRun_NeverMutates(t *testing.T) {
	// A dry run plans every stack and issues no apply calls and no prompt
	mockDriver := &driver.MockDriver{}
	mockDriver.On("Plan", mock.Anything, mock.Anything).
		Return(&aws.ChangeSetInfo{Status: "CREATE_COMPLETE"}, nil)

	o := newTestOrchestrator(testProfile(), mockDriver)

	results, err := o.Deploy(context.Background(), Request{Scope: graph.ScopeAll, DryRun: true})
	require.NoError(t, err)
	require.Len(t, results, 7)

	for _, result := range results {
		assert.Equal(t, driver.StatusPlanned, result.Status)
		assert.NotNil(t, result.Changes)
	}
	mockDriver.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
	mockDriver.AssertNotCalled(t, "Destroy", mock.Anything, mock.Anything)
}

func TestDeploy_ShowCommands_NeverMutates(t *testing.T) {
	// Command rendering touches neither the provider nor the prompt
	mockDriver := &driver.MockDriver{}
	mockDriver.On("RenderCommands", mock.Anything, "us-east-1").
		Return([]string{"aws cloudformation deploy"})

	o := newTestOrchestrator(testProfile(), mockDriver)

	results, err := o.Deploy(context.Background(), Request{Scope: graph.ScopeAll, ShowCommands: true})
	require.NoError(t, err)

	for _, result := range results {
		assert.Equal(t, driver.StatusPlanned, result.Status)
		assert.NotEmpty(t, result.Commands)
	}
	mockDriver.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
	mockDriver.AssertNotCalled(t, "Plan", mock.Anything, mock.Anything)
}

func TestDeploy_ConfirmationDeclined(t *testing.T) {
	// Declining the prompt aborts the run before any provider call
	mockPrompter := &prompt.MockPrompter{}
	mockPrompter.On("Confirm", mock.Anything).Return(false, nil)
	original := prompt.GetDefaultPrompter()
	prompt.SetPrompter(mockPrompter)
	defer prompt.SetPrompter(original)

	mockDriver := &driver.MockDriver{}
	o := newTestOrchestrator(testProfile(), mockDriver)

	results, err := o.Deploy(context.Background(), Request{Scope: graph.ScopeAll})
	require.NoError(t, err)

	assert.Nil(t, results)
	mockDriver.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
	mockPrompter.AssertExpectations(t)
}

func TestDeploy_RetriesTransientFailures(t *testing.T) {
	// Throttling failures are retried with backoff until they succeed
	mockDriver := &driver.MockDriver{}
	transient := &aws.ProviderUnavailableError{Operation: "ApplyStack", Err: errors.New("throttled")}
	mockDriver.On("Apply", mock.Anything, stackMatcher(graph.StackAuth)).
		Return(nil, transient).Twice()
	mockDriver.On("Apply", mock.Anything, stackMatcher(graph.StackAuth)).
		Return(&aws.Stack{Outputs: map[string]string{}}, nil).Once()

	o := newTestOrchestrator(&config.Profile{Name: "test", PoolName: "acme", TemplateDir: "templates"}, mockDriver)

	results, err := o.Deploy(context.Background(), Request{Scope: graph.ScopeAll, Yes: true})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, driver.StatusApplied, results[0].Status)
	mockDriver.AssertNumberOfCalls(t, "Apply", 3)
}

func TestDeploy_TerminalFailureIsNotRetried(t *testing.T) {
	mockDriver := &driver.MockDriver{}
	mockDriver.On("Apply", mock.Anything, mock.Anything).
		Return(nil, &aws.ProviderRejectedError{Operation: "ApplyStack", Reason: "bad template"})

	o := newTestOrchestrator(&config.Profile{Name: "test", PoolName: "acme", TemplateDir: "templates"}, mockDriver)

	results, err := o.Deploy(context.Background(), Request{Scope: graph.ScopeAll, Yes: true})
	require.NoError(t, err)

	assert.Equal(t, driver.StatusFailed, results[0].Status)
	mockDriver.AssertNumberOfCalls(t, "Apply", 1)
}

func TestDeploy_ThreadsOutputsIntoLaterParameters(t *testing.T) {
	// A later stack's output-reference parameter receives the value the
	// earlier stack produced in this same run
	profile := testProfile()
	profile.Parameters = map[string]map[string]*config.ParameterValue{
		graph.StackMonitoring: {
			"IdentityPool": {
				Output: &config.OutputRef{Stack: graph.StackAuth, Key: "IdentityPoolId"},
			},
		},
	}

	mockDriver := &driver.MockDriver{}
	mockDriver.On("Apply", mock.Anything, stackMatcher(graph.StackAuth)).
		Return(&aws.Stack{Outputs: map[string]string{"IdentityPoolId": "us-east-1:pool-123"}}, nil)
	mockDriver.On("Apply", mock.Anything, mock.MatchedBy(func(s *resolve.ResolvedStack) bool {
		return s.Name == graph.StackMonitoring && s.Parameters["IdentityPool"] == "us-east-1:pool-123"
	})).Return(&aws.Stack{Outputs: map[string]string{}}, nil)
	mockDriver.On("Apply", mock.Anything, mock.Anything).
		Return(&aws.Stack{Outputs: map[string]string{}}, nil)

	o := newTestOrchestrator(profile, mockDriver)

	results, err := o.Deploy(context.Background(), Request{Scope: graph.ScopeAll, Yes: true})
	require.NoError(t, err)

	for _, result := range results {
		assert.Equal(t, driver.StatusApplied, result.Status, "stack %s", result.Stack)
	}
}

func TestDeploy_SingleStack(t *testing.T) {
	// A single-stack scope applies exactly one stack
	mockDriver := &driver.MockDriver{}
	mockDriver.On("Apply", mock.Anything, stackMatcher(graph.StackAuth)).
		Return(&aws.Stack{Outputs: map[string]string{"IdentityPoolId": "pool"}}, nil)

	o := newTestOrchestrator(testProfile(), mockDriver)

	results, err := o.Deploy(context.Background(), Request{Scope: graph.StackAuth, Yes: true})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, graph.StackAuth, results[0].Stack)
	assert.Equal(t, "acme-auth", results[0].StackName)
	mockDriver.AssertNumberOfCalls(t, "Apply", 1)
}

func TestDeploy_CancelledContextSkipsRemainingStacks(t *testing.T) {
	// Cancellation between stacks marks the tail of the plan as skipped
	ctx, cancel := context.WithCancel(context.Background())

	mockDriver := &driver.MockDriver{}
	mockDriver.On("Apply", mock.Anything, stackMatcher(graph.StackAuth)).
		Run(func(mock.Arguments) { cancel() }).
		Return(&aws.Stack{Outputs: map[string]string{}}, nil)

	o := newTestOrchestrator(testProfile(), mockDriver)

	results, err := o.Deploy(ctx, Request{Scope: graph.ScopeAll, Yes: true})
	require.NoError(t, err)
	require.Len(t, results, 7)

	assert.Equal(t, driver.StatusApplied, results[0].Status)
	for _, result := range results[1:] {
		assert.Equal(t, driver.StatusSkipped, result.Status)
		assert.Equal(t, "deployment cancelled", result.SkipReason)
	}
	mockDriver.AssertNumberOfCalls(t, "Apply", 1)
}

func TestRequest_Mutating(t *testing.T) {
	assert.True(t, Request{}.Mutating())
	assert.False(t, Request{DryRun: true}.Mutating())
	assert.False(t, Request{ShowCommands: true}.Mutating())
}
