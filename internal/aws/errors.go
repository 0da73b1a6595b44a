/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// ProviderUnavailableError indicates a transient provider failure
// (throttling, timeouts, service outage). Callers may retry with backoff.
type ProviderUnavailableError struct {
	Operation string
	Err       error
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("provider temporarily unavailable during %s: %v", e.Operation, e.Err)
}

func (e *ProviderUnavailableError) Unwrap() error { return e.Err }

// ProviderRejectedError indicates a terminal provider failure (invalid
// template or parameters, failed stack operation). Retrying will not help.
type ProviderRejectedError struct {
	Operation string
	Reason    string
	Err       error
}

func (e *ProviderRejectedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("provider rejected %s: %s", e.Operation, e.Reason)
	}
	return fmt.Sprintf("provider rejected %s: %v", e.Operation, e.Err)
}

func (e *ProviderRejectedError) Unwrap() error { return e.Err }

// transientErrorCodes are API error codes worth retrying
var transientErrorCodes = map[string]bool{
	"Throttling":                  true,
	"ThrottlingException":         true,
	"RequestLimitExceeded":        true,
	"TooManyRequestsException":    true,
	"ServiceUnavailable":          true,
	"ServiceUnavailableException": true,
	"InternalFailure":             true,
	"RequestTimeout":              true,
}

// classifyError wraps an SDK error into the authstack error taxonomy
func classifyError(operation string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderUnavailableError{Operation: operation, Err: err}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if transientErrorCodes[apiErr.ErrorCode()] {
			return &ProviderUnavailableError{Operation: operation, Err: err}
		}
		return &ProviderRejectedError{Operation: operation, Err: err}
	}

	// Network-level failures without an API error code are transient
	return &ProviderUnavailableError{Operation: operation, Err: err}
}

// IsTransient reports whether err may succeed on retry
func IsTransient(err error) bool {
	var unavailable *ProviderUnavailableError
	return errors.As(err, &unavailable)
}
