/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/halcyonops/authstack/internal/config"
)

const defaultBuildImage = "python:3.11-slim"

// ContainerBuilder cross-builds Linux artifacts inside a container, then
// copies the binary out of a stopped container created from the image
type ContainerBuilder struct {
	settings *config.BuildSettings
	runner   CommandRunner
}

// NewContainerBuilder creates a builder backed by the docker CLI
func NewContainerBuilder(settings *config.BuildSettings, runner CommandRunner) *ContainerBuilder {
	return &ContainerBuilder{settings: settings, runner: runner}
}

// Build emits the target's artifact for a Linux platform and returns its path
func (b *ContainerBuilder) Build(ctx context.Context, platform Platform, target Target) (string, error) {
	containerPlatform := platform.ContainerPlatform()
	if containerPlatform == "" {
		return "", fmt.Errorf("platform %s cannot be built in a container", platform)
	}

	outDir := b.settings.ArtifactDir()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	buildDir, err := b.prepareContext(platform, target)
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(buildDir)

	binary := target.BinaryName(platform)
	stamp := time.Now().Unix()
	tag := fmt.Sprintf("authstack-build-%s:%d", binary, stamp)
	container := fmt.Sprintf("authstack-extract-%s-%d", binary, stamp)

	if err := b.runner.Run(ctx, "", "docker", "buildx", "build",
		"--platform", containerPlatform, "--load", "-t", tag, buildDir); err != nil {
		return "", fmt.Errorf("container build for %s failed: %w", binary, err)
	}
	defer b.runner.Run(context.WithoutCancel(ctx), "", "docker", "rmi", "-f", tag)

	if err := b.runner.Run(ctx, "", "docker", "create", "--name", container, tag); err != nil {
		return "", fmt.Errorf("failed to create extraction container for %s: %w", binary, err)
	}
	defer b.runner.Run(context.WithoutCancel(ctx), "", "docker", "rm", "-f", container)

	artifact := filepath.Join(outDir, binary)
	source := fmt.Sprintf("%s:/build/dist/%s", container, binary)
	if err := b.runner.Run(ctx, "", "docker", "cp", source, artifact); err != nil {
		return "", fmt.Errorf("failed to extract artifact for %s: %w", binary, err)
	}
	return artifact, nil
}

// prepareContext stages the target's source and a generated Dockerfile into
// a temporary build context
func (b *ContainerBuilder) prepareContext(platform Platform, target Target) (string, error) {
	buildDir, err := os.MkdirTemp("", "authstack-build-")
	if err != nil {
		return "", fmt.Errorf("failed to create build context: %w", err)
	}

	if err := copyTree(targetSource(b.settings, target), filepath.Join(buildDir, "src")); err != nil {
		os.RemoveAll(buildDir)
		return "", fmt.Errorf("failed to stage %s source: %w", target, err)
	}

	image := b.settings.DockerImage
	if image == "" {
		image = defaultBuildImage
	}
	dockerfile := fmt.Sprintf(`FROM %s
WORKDIR /build
RUN apt-get update && apt-get install -y --no-install-recommends binutils && rm -rf /var/lib/apt/lists/*
RUN pip install --no-cache-dir %s
COPY src/ src/
RUN %s --onefile --clean --noconfirm --name %s --distpath dist src/__main__.py
`, image, b.settings.BuilderCommand(), b.settings.BuilderCommand(), target.BinaryName(platform))

	if err := os.WriteFile(filepath.Join(buildDir, "Dockerfile"), []byte(dockerfile), 0o644); err != nil {
		os.RemoveAll(buildDir)
		return "", fmt.Errorf("failed to write Dockerfile: %w", err)
	}
	return buildDir, nil
}

// copyTree copies a directory recursively, skipping caches
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() && entry.Name() == "__pycache__" {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if entry.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}
