/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package build

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/halcyonops/authstack/internal/aws"
	"github.com/halcyonops/authstack/internal/config"
	"github.com/halcyonops/authstack/internal/driver"
	"github.com/halcyonops/authstack/internal/graph"
	"github.com/halcyonops/authstack/internal/remote"
)

const sourceArchiveKey = "source.zip"

// RemoteSubmitter hands Windows builds to the managed build project. The
// build runs asynchronously; no local artifact is produced.
type RemoteSubmitter struct {
	profile  *config.Profile
	driver   driver.Driver
	builds   aws.CodeBuildOperations
	uploader aws.ObjectUploader
}

// NewRemoteSubmitter creates a submitter for the profile's build project
func NewRemoteSubmitter(profile *config.Profile, d driver.Driver, builds aws.CodeBuildOperations, uploader aws.ObjectUploader) *RemoteSubmitter {
	return &RemoteSubmitter{profile: profile, driver: d, builds: builds, uploader: uploader}
}

// Submit uploads the helper source and starts a remote build, returning
// the build id. The submission is bookmarked so "latest" resolves to it.
func (s *RemoteSubmitter) Submit(ctx context.Context) (string, error) {
	stack, err := s.driver.Describe(ctx, s.profile.StackName(graph.StackCodeBuild))
	if err != nil {
		return "", fmt.Errorf("failed to inspect build infrastructure: %w", err)
	}
	if stack == nil {
		return "", fmt.Errorf("build infrastructure stack %s is not deployed; run deploy first", s.profile.StackName(graph.StackCodeBuild))
	}

	bucket := stack.Outputs["BuildBucket"]
	project := stack.Outputs["ProjectName"]
	if bucket == "" || project == "" {
		return "", fmt.Errorf("stack %s is missing BuildBucket or ProjectName outputs", stack.Name)
	}

	archive, err := archiveSource(s.sourceTrees()...)
	if err != nil {
		return "", err
	}
	defer os.Remove(archive)

	if err := s.uploader.Upload(ctx, bucket, sourceArchiveKey, archive); err != nil {
		return "", fmt.Errorf("failed to upload source archive: %w", err)
	}

	buildID, err := s.builds.StartBuild(ctx, project)
	if err != nil {
		return "", fmt.Errorf("failed to start remote build: %w", err)
	}

	bookmark := &remote.Bookmark{
		BuildID:   buildID,
		StartedAt: time.Now().UTC(),
		Project:   project,
		Bucket:    bucket,
	}
	if err := remote.SaveBookmark(bookmark); err != nil {
		// The build is already running; losing the bookmark only breaks
		// the "latest" shorthand.
		fmt.Printf("Warning: %v\n", err)
	}
	return buildID, nil
}

// sourceTree pairs a directory with its prefix inside the source archive
type sourceTree struct {
	prefix string
	dir    string
}

// sourceTrees lists the trees the remote project needs: the credential
// helper at the archive root and, for monitoring-enabled profiles, the
// telemetry helper under otel_helper/.
func (s *RemoteSubmitter) sourceTrees() []sourceTree {
	trees := []sourceTree{{dir: s.profile.Build.SourceDir}}
	if s.profile.MonitoringEnabled {
		trees = append(trees, sourceTree{prefix: "otel_helper", dir: s.profile.Build.TelemetrySource()})
	}
	return trees
}

// archiveSource zips the trees into a temp file
func archiveSource(trees ...sourceTree) (string, error) {
	tmp, err := os.CreateTemp("", "authstack-source-*.zip")
	if err != nil {
		return "", fmt.Errorf("failed to create source archive: %w", err)
	}
	defer tmp.Close()

	zw := zip.NewWriter(tmp)
	for _, tree := range trees {
		if err := archiveTree(zw, tree); err != nil {
			zw.Close()
			os.Remove(tmp.Name())
			return "", err
		}
	}
	if err := zw.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to finalize source archive: %w", err)
	}
	return tmp.Name(), nil
}

func archiveTree(zw *zip.Writer, tree sourceTree) error {
	err := filepath.WalkDir(tree.dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if entry.Name() == "__pycache__" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(tree.dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if tree.prefix != "" {
			name = tree.prefix + "/" + name
		}
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to archive source tree %s: %w", tree.dir, err)
	}
	return nil
}
