/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package driver

import (
	"context"

	"github.com/halcyonops/authstack/internal/aws"
	"github.com/halcyonops/authstack/internal/resolve"
	"github.com/stretchr/testify/mock"
)

// MockDriver is a testify mock for Driver
type MockDriver struct {
	mock.Mock
}

func (m *MockDriver) Plan(ctx context.Context, stack *resolve.ResolvedStack) (*aws.ChangeSetInfo, error) {
	args := m.Called(ctx, stack)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aws.ChangeSetInfo), args.Error(1)
}

func (m *MockDriver) Apply(ctx context.Context, stack *resolve.ResolvedStack) (*aws.Stack, error) {
	args := m.Called(ctx, stack)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aws.Stack), args.Error(1)
}

func (m *MockDriver) Destroy(ctx context.Context, stackName string) error {
	args := m.Called(ctx, stackName)
	return args.Error(0)
}

func (m *MockDriver) Describe(ctx context.Context, stackName string) (*aws.Stack, error) {
	args := m.Called(ctx, stackName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aws.Stack), args.Error(1)
}

func (m *MockDriver) RenderCommands(stack *resolve.ResolvedStack, region string) []string {
	args := m.Called(stack, region)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

var _ Driver = (*MockDriver)(nil)
