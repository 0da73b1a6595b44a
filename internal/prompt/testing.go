/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package prompt

import "github.com/stretchr/testify/mock"

// MockPrompter is a testify mock for Prompter
type MockPrompter struct {
	mock.Mock
}

func (m *MockPrompter) Confirm(message string) (bool, error) {
	args := m.Called(message)
	return args.Bool(0), args.Error(1)
}

var _ Prompter = (*MockPrompter)(nil)
