/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package remote reads the state of managed-service builds: listing recent
// builds for the profile's build project and polling individual builds by
// id. It never mutates build state.
package remote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/halcyonops/authstack/internal/aws"
	"github.com/halcyonops/authstack/internal/config"
)

// BuildNotFoundError indicates the id is unknown to the remote service
type BuildNotFoundError struct {
	BuildID string
}

func (e *BuildNotFoundError) Error() string {
	return fmt.Sprintf("build not found: %s", e.BuildID)
}

// ProjectNotConfiguredError indicates the active profile has no remote
// build project
type ProjectNotConfiguredError struct {
	Profile string
}

func (e *ProjectNotConfiguredError) Error() string {
	return fmt.Sprintf("profile %s has no remote build project; enable codebuild and deploy the codebuild stack", e.Profile)
}

// Record is the read-only state of one remote build
type Record struct {
	ID        string // "project:uuid"
	Status    string
	Phase     string
	StartTime *time.Time
	Duration  time.Duration
	LogLink   string
}

// InProgress reports whether the build is still running
func (r *Record) InProgress() bool {
	return r.Status == "IN_PROGRESS"
}

// ProjectLookup resolves the remote build project name, typically from the
// outputs of the deployed build-infrastructure stack
type ProjectLookup func(ctx context.Context) (string, error)

// Monitor polls a remote build project
type Monitor struct {
	profile *config.Profile
	ops     aws.CodeBuildOperations
	lookup  ProjectLookup
}

// NewMonitor creates a monitor for the profile's build project
func NewMonitor(profile *config.Profile, ops aws.CodeBuildOperations, lookup ProjectLookup) *Monitor {
	return &Monitor{profile: profile, ops: ops, lookup: lookup}
}

// ProjectName returns the remote build project for the profile
func (m *Monitor) ProjectName(ctx context.Context) (string, error) {
	if !m.profile.CodeBuildEnabled {
		return "", &ProjectNotConfiguredError{Profile: m.profile.Name}
	}
	if m.lookup != nil {
		return m.lookup(ctx)
	}
	// Without stack access, fall back to the bookmark left by the most
	// recent submission.
	bookmark, err := LoadBookmark()
	if err != nil {
		return "", &ProjectNotConfiguredError{Profile: m.profile.Name}
	}
	return bookmark.Project, nil
}

// List returns up to limit builds for the project, most recent first
func (m *Monitor) List(ctx context.Context, limit int) ([]*Record, error) {
	project, err := m.ProjectName(ctx)
	if err != nil {
		return nil, err
	}

	details, err := m.ops.ListRecentBuilds(ctx, project, limit)
	if err != nil {
		return nil, err
	}

	records := make([]*Record, len(details))
	for i, detail := range details {
		records[i] = recordFromDetail(detail)
	}
	return records, nil
}

// StatusOf returns the state of one build. The id "latest" resolves through
// the local bookmark written when the build was submitted.
func (m *Monitor) StatusOf(ctx context.Context, buildID string) (*Record, error) {
	if !m.profile.CodeBuildEnabled {
		return nil, &ProjectNotConfiguredError{Profile: m.profile.Name}
	}

	if buildID == "" || buildID == "latest" {
		bookmark, err := LoadBookmark()
		if err != nil {
			return nil, err
		}
		buildID = bookmark.BuildID
	}

	detail, err := m.ops.GetBuild(ctx, buildID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, &BuildNotFoundError{BuildID: buildID}
	}
	return recordFromDetail(detail), nil
}

// recordFromDetail converts provider build state to a Record
func recordFromDetail(detail *aws.BuildDetail) *Record {
	return &Record{
		ID:        detail.ID,
		Status:    detail.Status,
		Phase:     detail.CurrentPhase,
		StartTime: detail.StartTime,
		Duration:  detail.Duration(),
		LogLink:   ConsoleLogLink(detail.ID),
	}
}

// ConsoleLogLink returns the web console URL for a build's logs
func ConsoleLogLink(buildID string) string {
	project, uuid, found := strings.Cut(buildID, ":")
	if !found {
		return ""
	}
	return fmt.Sprintf("https://console.aws.amazon.com/codesuite/codebuild/projects/%s/build/%s", project, uuid)
}
