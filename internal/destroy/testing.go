/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package destroy

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/halcyonops/authstack/internal/driver"
)

// MockDestroyer is a testify mock for Destroyer
type MockDestroyer struct {
	mock.Mock
}

func (m *MockDestroyer) Destroy(ctx context.Context, req Request) (driver.Results, error) {
	args := m.Called(ctx, req)
	if results := args.Get(0); results != nil {
		return results.(driver.Results), args.Error(1)
	}
	return nil, args.Error(1)
}
