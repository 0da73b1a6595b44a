/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package remote

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const bookmarkFile = "latest-build.json"

// Bookmark records the most recently submitted remote build so later
// commands can refer to it as "latest"
type Bookmark struct {
	BuildID   string    `json:"build_id"`
	StartedAt time.Time `json:"started_at"`
	Project   string    `json:"project"`
	Bucket    string    `json:"bucket"`
}

// bookmarkPath allows tests to redirect the bookmark location
var bookmarkPath = defaultBookmarkPath

func defaultBookmarkPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".authstack", bookmarkFile), nil
}

// SetBookmarkPath overrides where the bookmark is stored (for testing)
func SetBookmarkPath(fn func() (string, error)) {
	bookmarkPath = fn
}

// SaveBookmark writes the bookmark, creating the state directory if needed
func SaveBookmark(b *Bookmark) error {
	path, err := bookmarkPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode build bookmark: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write build bookmark: %w", err)
	}
	return nil
}

// LoadBookmark reads the bookmark written by the most recent submission
func LoadBookmark() (*Bookmark, error) {
	path, err := bookmarkPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no remote build has been submitted yet")
		}
		return nil, fmt.Errorf("failed to read build bookmark: %w", err)
	}
	var b Bookmark
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse build bookmark %s: %w", path, err)
	}
	return &b, nil
}
