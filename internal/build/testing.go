/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package build

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockBuilder is a testify mock for Builder
type MockBuilder struct {
	mock.Mock
}

func (m *MockBuilder) Build(ctx context.Context, platform Platform, target Target) (string, error) {
	args := m.Called(ctx, platform, target)
	return args.String(0), args.Error(1)
}

// MockSubmitter is a testify mock for Submitter
type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockCommandRunner is a testify mock for CommandRunner
type MockCommandRunner struct {
	mock.Mock
}

func (m *MockCommandRunner) Run(ctx context.Context, dir string, name string, cmdArgs ...string) error {
	args := m.Called(ctx, dir, name, cmdArgs)
	return args.Error(0)
}
