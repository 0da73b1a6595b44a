/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/halcyonops/authstack/internal/build"
	"github.com/halcyonops/authstack/internal/driver"
	"github.com/halcyonops/authstack/internal/remote"
)

// Renderer formats command results for the terminal
type Renderer struct {
	styles *StyleSet
}

// NewRenderer creates a renderer. Colour is disabled when the output is
// not a terminal.
func NewRenderer(useColour bool) *Renderer {
	return &Renderer{styles: NewStyleSet(useColour)}
}

// RenderStackResults formats the outcome of a deploy or destroy run
func (r *Renderer) RenderStackResults(results driver.Results) string {
	var b strings.Builder

	for _, result := range results {
		b.WriteString(fmt.Sprintf("%s %s (%s)\n",
			r.statusBadge(result.Status), result.Stack, r.styles.Subtle.Render(result.StackName)))

		switch result.Status {
		case driver.StatusSkipped:
			b.WriteString(fmt.Sprintf("  %s\n", r.styles.Subtle.Render(result.SkipReason)))
		case driver.StatusFailed:
			if result.Err != nil {
				b.WriteString(fmt.Sprintf("  %s\n", r.styles.Error.Render(result.Err.Error())))
			}
		}

		if result.Changes != nil {
			if result.Changes.NoChanges {
				b.WriteString(fmt.Sprintf("  %s\n", r.styles.Subtle.Render("no changes")))
			}
			for _, change := range result.Changes.Changes {
				b.WriteString(fmt.Sprintf("  %s %s (%s)\n",
					r.styles.Key.Render(change.Action), change.LogicalID, change.ResourceType))
			}
		}
		for _, command := range result.Commands {
			b.WriteString(fmt.Sprintf("  %s\n", r.styles.Value.Render(command)))
		}
		for _, warning := range result.Warnings {
			b.WriteString(fmt.Sprintf("  %s\n", r.styles.Warning.Render("Warning: "+warning)))
		}
	}

	b.WriteString(r.renderStackSummary(results))
	return b.String()
}

func (r *Renderer) renderStackSummary(results driver.Results) string {
	counts := make(map[driver.Status]int)
	for _, result := range results {
		counts[result.Status]++
	}

	var parts []string
	for _, status := range []driver.Status{
		driver.StatusApplied, driver.StatusDestroyed, driver.StatusPlanned,
		driver.StatusSkipped, driver.StatusFailed,
	} {
		if counts[status] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[status], status))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("\n%s\n", r.styles.Title.Render(strings.Join(parts, ", ")))
}

// RenderOutputs formats stack outputs sorted by key
func (r *Renderer) RenderOutputs(stack string, outputs map[string]string) string {
	if len(outputs) == 0 {
		return ""
	}

	keys := make([]string, 0, len(outputs))
	for key := range outputs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s\n", r.styles.Title.Render("Outputs: "+stack)))
	for _, key := range keys {
		b.WriteString(fmt.Sprintf("  %s: %s\n",
			r.styles.Key.Render(key), r.styles.Value.Render(outputs[key])))
	}
	return b.String()
}

// RenderBuildResults formats the outcome of a packaging run
func (r *Renderer) RenderBuildResults(results build.Results) string {
	var b strings.Builder

	for _, result := range results {
		switch result.Status {
		case build.StatusBuilt:
			b.WriteString(fmt.Sprintf("%s %s (%s): %s\n",
				r.styles.Success.Render("built"), result.Platform, result.Strategy, result.Artifact))
			if result.TelemetryArtifact != "" {
				b.WriteString(fmt.Sprintf("  %s\n",
					r.styles.Subtle.Render("telemetry helper: "+result.TelemetryArtifact)))
			}
		case build.StatusSubmitted:
			b.WriteString(fmt.Sprintf("%s %s: build %s\n",
				r.styles.Success.Render("submitted"), result.Platform, result.RemoteBuildID))
			b.WriteString(fmt.Sprintf("  %s\n",
				r.styles.Subtle.Render(remote.ConsoleLogLink(result.RemoteBuildID))))
		case build.StatusSkipped:
			b.WriteString(fmt.Sprintf("%s %s: %s\n",
				r.styles.Subtle.Render("skipped"), result.Platform, result.SkipReason))
		case build.StatusFailed:
			b.WriteString(fmt.Sprintf("%s %s: %v\n",
				r.styles.Error.Render("failed"), result.Platform, result.Err))
		}
		for _, warning := range result.Warnings {
			b.WriteString(fmt.Sprintf("  %s\n", r.styles.Warning.Render("Warning: "+warning)))
		}
	}
	return b.String()
}

// RenderBuildRecords formats remote build history, most recent first
func (r *Renderer) RenderBuildRecords(records []*remote.Record) string {
	if len(records) == 0 {
		return "No remote builds found\n"
	}

	var b strings.Builder
	for _, record := range records {
		started := "unknown"
		if record.StartTime != nil {
			started = record.StartTime.Local().Format("2006-01-02 15:04:05")
		}
		b.WriteString(fmt.Sprintf("%s %s\n", r.buildBadge(record), r.styles.Value.Render(record.ID)))
		b.WriteString(fmt.Sprintf("  started %s, %.1f minutes",
			started, record.Duration.Minutes()))
		if record.Phase != "" {
			b.WriteString(fmt.Sprintf(", phase %s", record.Phase))
		}
		b.WriteString("\n")
		if link := record.LogLink; link != "" {
			b.WriteString(fmt.Sprintf("  %s\n", r.styles.Subtle.Render(link)))
		}
	}
	return b.String()
}

func (r *Renderer) buildBadge(record *remote.Record) string {
	switch record.Status {
	case "SUCCEEDED":
		return r.styles.Success.Render("succeeded")
	case "IN_PROGRESS":
		return r.styles.Warning.Render("running")
	case "FAILED", "FAULT", "TIMED_OUT", "STOPPED":
		return r.styles.Error.Render(strings.ToLower(record.Status))
	default:
		return r.styles.Subtle.Render(strings.ToLower(record.Status))
	}
}

func (r *Renderer) statusBadge(status driver.Status) string {
	switch status {
	case driver.StatusApplied, driver.StatusDestroyed:
		return r.styles.Success.Render(string(status))
	case driver.StatusPlanned:
		return r.styles.Warning.Render(string(status))
	case driver.StatusFailed:
		return r.styles.Error.Render(string(status))
	default:
		return r.styles.Subtle.Render(string(status))
	}
}
