/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package ui renders command results for the terminal
package ui

import (
	"os"

	"github.com/charmbracelet/fang"
	"charm.land/lipgloss/v2"
)

// StyleSet contains the styles shared by all command output
type StyleSet struct {
	Title   lipgloss.Style
	Key     lipgloss.Style
	Value   lipgloss.Style
	Subtle  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	useColour bool
}

// NewStyleSet creates a style set using Fang's color scheme for consistency
// with the rest of the application
func NewStyleSet(useColour bool) *StyleSet {
	s := &StyleSet{useColour: useColour}

	if useColour {
		hasDark := lipgloss.HasDarkBackground(os.Stdin, os.Stdout)
		lightDark := lipgloss.LightDark(hasDark)
		scheme := fang.DefaultColorScheme(lightDark)

		s.Title = lipgloss.NewStyle().Foreground(scheme.Title).Bold(true)
		s.Key = lipgloss.NewStyle().Foreground(scheme.Argument)
		s.Value = lipgloss.NewStyle().Foreground(scheme.Base)
		s.Subtle = lipgloss.NewStyle().Foreground(scheme.Comment)
		s.Success = lipgloss.NewStyle().Foreground(scheme.Flag)
		s.Warning = lipgloss.NewStyle().Foreground(scheme.Command)
		s.Error = lipgloss.NewStyle().Foreground(scheme.ErrorDetails)
	} else {
		plain := lipgloss.NewStyle()
		s.Title = plain
		s.Key = plain
		s.Value = plain
		s.Subtle = plain
		s.Success = plain
		s.Warning = plain
		s.Error = plain
	}

	return s
}
