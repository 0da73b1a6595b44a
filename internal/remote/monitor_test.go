/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package remote

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/halcyonops/authstack/internal/aws"
	"github.com/halcyonops/authstack/internal/config"
)

func testProfile() *config.Profile {
	return &config.Profile{Name: "test", PoolName: "acme", CodeBuildEnabled: true}
}

func staticLookup(project string) ProjectLookup {
	return func(context.Context) (string, error) { return project, nil }
}

// redirectBookmark sends bookmark reads and writes to a temp file
func redirectBookmark(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "latest-build.json")
	SetBookmarkPath(func() (string, error) { return path, nil })
	t.Cleanup(func() { SetBookmarkPath(defaultBookmarkPath) })
}

func TestMonitor_List_ReturnsRecordsWithLogLinks(t *testing.T) {
	started := time.Now().Add(-10 * time.Minute)
	ops := &aws.MockCodeBuildOperations{}
	ops.On("ListRecentBuilds", mock.Anything, "acme-build", 5).Return([]*aws.BuildDetail{
		{ID: "acme-build:uuid-2", Status: "IN_PROGRESS", CurrentPhase: "BUILD", StartTime: &started},
		{ID: "acme-build:uuid-1", Status: "SUCCEEDED", StartTime: &started},
	}, nil)

	m := NewMonitor(testProfile(), ops, staticLookup("acme-build"))

	records, err := m.List(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "acme-build:uuid-2", records[0].ID)
	assert.True(t, records[0].InProgress())
	assert.Equal(t, "BUILD", records[0].Phase)
	assert.Equal(t,
		"https://console.aws.amazon.com/codesuite/codebuild/projects/acme-build/build/uuid-2",
		records[0].LogLink)
	assert.False(t, records[1].InProgress())
}

func TestMonitor_List_ProjectNotConfigured(t *testing.T) {
	profile := testProfile()
	profile.CodeBuildEnabled = false

	m := NewMonitor(profile, &aws.MockCodeBuildOperations{}, staticLookup("acme-build"))

	_, err := m.List(context.Background(), 5)

	var notConfigured *ProjectNotConfiguredError
	require.True(t, errors.As(err, &notConfigured))
	assert.Equal(t, "test", notConfigured.Profile)
}

func TestMonitor_StatusOf_ExplicitID(t *testing.T) {
	ops := &aws.MockCodeBuildOperations{}
	ops.On("GetBuild", mock.Anything, "acme-build:uuid-7").
		Return(&aws.BuildDetail{ID: "acme-build:uuid-7", Status: "SUCCEEDED"}, nil)

	m := NewMonitor(testProfile(), ops, staticLookup("acme-build"))

	record, err := m.StatusOf(context.Background(), "acme-build:uuid-7")
	require.NoError(t, err)

	assert.Equal(t, "SUCCEEDED", record.Status)
}

func TestMonitor_StatusOf_LatestResolvesThroughBookmark(t *testing.T) {
	redirectBookmark(t)
	require.NoError(t, SaveBookmark(&Bookmark{
		BuildID:   "acme-build:uuid-9",
		StartedAt: time.Now().UTC(),
		Project:   "acme-build",
		Bucket:    "acme-bucket",
	}))

	ops := &aws.MockCodeBuildOperations{}
	ops.On("GetBuild", mock.Anything, "acme-build:uuid-9").
		Return(&aws.BuildDetail{ID: "acme-build:uuid-9", Status: "IN_PROGRESS"}, nil)

	m := NewMonitor(testProfile(), ops, staticLookup("acme-build"))

	record, err := m.StatusOf(context.Background(), "latest")
	require.NoError(t, err)

	assert.Equal(t, "acme-build:uuid-9", record.ID)
}

func TestMonitor_StatusOf_LatestWithoutBookmark(t *testing.T) {
	redirectBookmark(t)

	m := NewMonitor(testProfile(), &aws.MockCodeBuildOperations{}, staticLookup("acme-build"))

	_, err := m.StatusOf(context.Background(), "latest")

	assert.ErrorContains(t, err, "no remote build has been submitted")
}

func TestMonitor_StatusOf_BuildNotFound(t *testing.T) {
	ops := &aws.MockCodeBuildOperations{}
	ops.On("GetBuild", mock.Anything, "acme-build:gone").Return(nil, nil)

	m := NewMonitor(testProfile(), ops, staticLookup("acme-build"))

	_, err := m.StatusOf(context.Background(), "acme-build:gone")

	var notFound *BuildNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "acme-build:gone", notFound.BuildID)
}

func TestConsoleLogLink_MalformedID(t *testing.T) {
	assert.Empty(t, ConsoleLogLink("not-a-build-id"))
}

func TestBookmark_RoundTrip(t *testing.T) {
	redirectBookmark(t)
	in := &Bookmark{
		BuildID:   "acme-build:uuid-3",
		StartedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Project:   "acme-build",
		Bucket:    "acme-bucket",
	}
	require.NoError(t, SaveBookmark(in))

	out, err := LoadBookmark()
	require.NoError(t, err)

	assert.Equal(t, in, out)
}
