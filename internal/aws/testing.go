/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package aws

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockCloudFormationOperations is a testify mock for CloudFormationOperations
type MockCloudFormationOperations struct {
	mock.Mock
}

func (m *MockCloudFormationOperations) ApplyStack(ctx context.Context, input ApplyStackInput) (*Stack, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Stack), args.Error(1)
}

func (m *MockCloudFormationOperations) DeleteStack(ctx context.Context, input DeleteStackInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockCloudFormationOperations) GetStack(ctx context.Context, stackName string) (*Stack, error) {
	args := m.Called(ctx, stackName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Stack), args.Error(1)
}

func (m *MockCloudFormationOperations) StackExists(ctx context.Context, stackName string) (bool, error) {
	args := m.Called(ctx, stackName)
	return args.Bool(0), args.Error(1)
}

func (m *MockCloudFormationOperations) PreviewChanges(ctx context.Context, input ApplyStackInput) (*ChangeSetInfo, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ChangeSetInfo), args.Error(1)
}

func (m *MockCloudFormationOperations) WaitForStackOperation(ctx context.Context, stackName string, deadline time.Duration) (*Stack, error) {
	args := m.Called(ctx, stackName, deadline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Stack), args.Error(1)
}

var _ CloudFormationOperations = (*MockCloudFormationOperations)(nil)

// MockCodeBuildOperations is a testify mock for CodeBuildOperations
type MockCodeBuildOperations struct {
	mock.Mock
}

func (m *MockCodeBuildOperations) StartBuild(ctx context.Context, projectName string) (string, error) {
	args := m.Called(ctx, projectName)
	return args.String(0), args.Error(1)
}

func (m *MockCodeBuildOperations) GetBuild(ctx context.Context, buildID string) (*BuildDetail, error) {
	args := m.Called(ctx, buildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BuildDetail), args.Error(1)
}

func (m *MockCodeBuildOperations) ListRecentBuilds(ctx context.Context, projectName string, limit int) ([]*BuildDetail, error) {
	args := m.Called(ctx, projectName, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*BuildDetail), args.Error(1)
}

var _ CodeBuildOperations = (*MockCodeBuildOperations)(nil)

// MockUploader is a testify mock for ObjectUploader
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, bucket, key, filename string) error {
	args := m.Called(ctx, bucket, key, filename)
	return args.Error(0)
}

var _ ObjectUploader = (*MockUploader)(nil)

// MockClientFactory is a testify mock for ClientFactory
type MockClientFactory struct {
	mock.Mock
}

func (m *MockClientFactory) GetCloudFormationOperations(ctx context.Context, region string) (CloudFormationOperations, error) {
	args := m.Called(ctx, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(CloudFormationOperations), args.Error(1)
}

func (m *MockClientFactory) GetCodeBuildOperations(ctx context.Context, region string) (CodeBuildOperations, error) {
	args := m.Called(ctx, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(CodeBuildOperations), args.Error(1)
}

func (m *MockClientFactory) GetUploader(ctx context.Context, region string) (ObjectUploader, error) {
	args := m.Called(ctx, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ObjectUploader), args.Error(1)
}

var _ ClientFactory = (*MockClientFactory)(nil)
