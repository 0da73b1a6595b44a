/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package build

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes external build tooling. Implementations should
// return an error that includes enough command output to diagnose failures.
type CommandRunner interface {
	Run(ctx context.Context, dir string, name string, args ...string) error
}

// execRunner runs commands on the host
type execRunner struct{}

// NewCommandRunner returns a runner backed by the host's process execution
func NewCommandRunner() CommandRunner {
	return &execRunner{}
}

func (r *execRunner) Run(ctx context.Context, dir string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w\n%s", name, err, tail(output.String(), 20))
	}
	return nil
}

// tail returns the last n lines of command output
func tail(output string, n int) string {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
