/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package config

import (
	"context"
	"fmt"
	"path/filepath"
)

// Provider defines the interface for loading and managing deployment profiles
type Provider interface {
	// LoadProfile loads the resolved configuration for a named profile
	LoadProfile(ctx context.Context, name string) (*Profile, error)

	// ListProfiles returns all available profile names in the configuration
	ListProfiles() ([]string, error)

	// Validate checks the configuration for consistency and errors
	Validate() error
}

// Profile represents the resolved configuration for one deployment
type Profile struct {
	Name           string
	Region         string
	PoolName       string // base name for physical stack names
	FederationType string // "cognito" or "direct"

	MonitoringEnabled bool
	AnalyticsEnabled  bool
	QuotaEnabled      bool
	CodeBuildEnabled  bool

	TemplateDir string
	Tags        map[string]string

	// StackNames maps a logical stack name to a physical CloudFormation
	// stack name, overriding the default "<pool>-<stack>" convention.
	StackNames map[string]string

	// Parameters holds per-stack parameter values keyed by logical stack name.
	Parameters map[string]map[string]*ParameterValue

	Build BuildSettings
}

// BuildSettings configures the credential-helper packaging pipeline
type BuildSettings struct {
	SourceDir    string   // credential-helper source tree
	TelemetryDir string   // telemetry-helper source tree, default sibling "otel_helper"
	OutputDir    string   // artifact destination, default "dist"
	Compiler     string   // native builder command, default "pyinstaller"
	IntelVenv    string   // x86_64 toolchain root used for macos-intel builds
	DockerImage  string   // base image for containerised cross-builds
	Platforms    []string // default platform scope when none requested
}

// ParameterValue is either a literal string or a reference to another
// stack's output, resolved at deploy time.
type ParameterValue struct {
	Literal   string
	IsLiteral bool
	Output    *OutputRef
}

// OutputRef names an output of another stack in the same deployment
type OutputRef struct {
	Stack string
	Key   string
}

// StackName returns the physical CloudFormation stack name for a logical stack
func (p *Profile) StackName(logical string) string {
	if name, ok := p.StackNames[logical]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("%s-%s", p.PoolName, logical)
}

// StackParameters returns the configured parameters for a logical stack.
// The result may be nil when the stack has no parameters.
func (p *Profile) StackParameters(logical string) map[string]*ParameterValue {
	return p.Parameters[logical]
}

// ArtifactDir returns the artifact directory, applying the default
func (b BuildSettings) ArtifactDir() string {
	if b.OutputDir != "" {
		return b.OutputDir
	}
	return "dist"
}

// BuilderCommand returns the native builder command, applying the default
func (b BuildSettings) BuilderCommand() string {
	if b.Compiler != "" {
		return b.Compiler
	}
	return "pyinstaller"
}

// TelemetrySource returns the telemetry-helper source tree, applying the
// default of an "otel_helper" directory next to the credential-helper source
func (b BuildSettings) TelemetrySource() string {
	if b.TelemetryDir != "" {
		return b.TelemetryDir
	}
	return filepath.Join(filepath.Dir(b.SourceDir), "otel_helper")
}
