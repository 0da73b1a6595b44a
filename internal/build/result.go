/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package build

import (
	"fmt"
	"strings"
)

// Strategy is how a platform gets built
type Strategy string

const (
	StrategyNative    Strategy = "native"
	StrategyContainer Strategy = "container"
	StrategyRemote    Strategy = "remote"
)

// Status describes the outcome for one platform
type Status string

const (
	// StatusBuilt means a local artifact was produced
	StatusBuilt Status = "built"
	// StatusSubmitted means the build runs remotely and produces no
	// local artifact
	StatusSubmitted Status = "submitted"
	// StatusSkipped means the host lacks a prerequisite for the platform
	StatusSkipped Status = "skipped"
	// StatusFailed means the build was attempted and failed
	StatusFailed Status = "failed"
)

// Result is the outcome of building one platform
type Result struct {
	Platform      Platform
	Strategy      Strategy
	Status        Status
	Artifact      string
	RemoteBuildID string
	SkipReason    string
	Err           error

	// TelemetryArtifact is the companion telemetry-helper binary, built
	// only for monitoring-enabled profiles
	TelemetryArtifact string

	// Warnings for conditions that did not fail the platform
	Warnings []string
}

// Results collects per-platform outcomes in request order
type Results []Result

// Succeeded reports whether at least one platform was built or submitted
func (rs Results) Succeeded() bool {
	for _, r := range rs {
		if r.Status == StatusBuilt || r.Status == StatusSubmitted {
			return true
		}
	}
	return false
}

// Failed returns results for platforms whose build was attempted and failed
func (rs Results) Failed() Results {
	var failed Results
	for _, r := range rs {
		if r.Status == StatusFailed {
			failed = append(failed, r)
		}
	}
	return failed
}

// NoPlatformBuiltError indicates every requested platform was skipped or
// failed. It carries the per-platform breakdown for reporting.
type NoPlatformBuiltError struct {
	Results Results
}

func (e *NoPlatformBuiltError) Error() string {
	parts := make([]string, len(e.Results))
	for i, r := range e.Results {
		detail := string(r.Status)
		switch {
		case r.SkipReason != "":
			detail = r.SkipReason
		case r.Err != nil:
			detail = r.Err.Error()
		}
		parts[i] = fmt.Sprintf("%s: %s", r.Platform, detail)
	}
	return fmt.Sprintf("no platform produced an artifact (%s)", strings.Join(parts, "; "))
}
