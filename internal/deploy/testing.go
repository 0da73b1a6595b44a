/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package deploy

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/halcyonops/authstack/internal/driver"
)

// MockDeployer is a testify mock for Deployer
type MockDeployer struct {
	mock.Mock
}

func (m *MockDeployer) Deploy(ctx context.Context, req Request) (driver.Results, error) {
	args := m.Called(ctx, req)
	if results := args.Get(0); results != nil {
		return results.(driver.Results), args.Error(1)
	}
	return nil, args.Error(1)
}
