/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package file

import (
	"context"
	"fmt"
	"os"

	"github.com/halcyonops/authstack/internal/config"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file used when none is specified
const DefaultConfigFile = "authstack.yaml"

// Provider implements config.Provider by reading from a YAML file
type Provider struct {
	filename  string
	rawConfig *Config
}

// NewProvider creates a new file-based Provider for the given filename
func NewProvider(filename string) *Provider {
	return &Provider{filename: filename}
}

// NewDefaultProvider creates a Provider reading the default configuration file
func NewDefaultProvider() *Provider {
	return NewProvider(DefaultConfigFile)
}

// LoadProfile loads and resolves configuration for the named profile
func (fp *Provider) LoadProfile(ctx context.Context, name string) (*config.Profile, error) {
	if err := fp.ensureLoaded(); err != nil {
		return nil, err
	}

	rawProfile, exists := fp.rawConfig.Profiles[name]
	if !exists {
		return nil, fmt.Errorf("profile '%s' not found in configuration", name)
	}

	return fp.resolveProfile(name, rawProfile), nil
}

// ListProfiles returns all available profile names in the configuration
func (fp *Provider) ListProfiles() ([]string, error) {
	if err := fp.ensureLoaded(); err != nil {
		return nil, err
	}

	profiles := make([]string, 0, len(fp.rawConfig.Profiles))
	for name := range fp.rawConfig.Profiles {
		profiles = append(profiles, name)
	}

	return profiles, nil
}

// Validate checks the configuration for consistency and errors
func (fp *Provider) Validate() error {
	if err := fp.ensureLoaded(); err != nil {
		return err
	}

	if fp.rawConfig.PoolName == "" {
		return fmt.Errorf("configuration is missing required 'pool_name'")
	}

	for name, profile := range fp.rawConfig.Profiles {
		if profile.Region == "" && fp.rawConfig.Region == "" {
			return fmt.Errorf("profile '%s' has no region and no global default is set", name)
		}
	}

	return nil
}

// ensureLoaded loads the raw configuration file if not already loaded
func (fp *Provider) ensureLoaded() error {
	if fp.rawConfig != nil {
		return nil
	}

	data, err := os.ReadFile(fp.filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", fp.filename, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", fp.filename, err)
	}

	fp.rawConfig = &cfg
	return nil
}

// resolveProfile applies global defaults and converts the raw profile
func (fp *Provider) resolveProfile(name string, raw *Profile) *config.Profile {
	profile := &config.Profile{
		Name:              name,
		Region:            raw.Region,
		PoolName:          raw.PoolName,
		FederationType:    raw.FederationType,
		MonitoringEnabled: raw.Monitoring,
		AnalyticsEnabled:  raw.Analytics,
		QuotaEnabled:      raw.Quota,
		CodeBuildEnabled:  raw.CodeBuild,
		Tags:              fp.mergeTags(fp.rawConfig.Tags, raw.Tags),
		StackNames:        copyStringMap(raw.StackNames),
	}

	// Global defaults
	if profile.Region == "" {
		profile.Region = fp.rawConfig.Region
	}
	if profile.PoolName == "" {
		profile.PoolName = fp.rawConfig.PoolName
	}
	if profile.FederationType == "" {
		profile.FederationType = "cognito"
	}
	if fp.rawConfig.Templates != nil {
		profile.TemplateDir = fp.rawConfig.Templates.Directory
	}
	if profile.TemplateDir == "" {
		profile.TemplateDir = "templates"
	}

	// Parameters
	if len(raw.Parameters) > 0 {
		profile.Parameters = make(map[string]map[string]*config.ParameterValue, len(raw.Parameters))
		for stack, params := range raw.Parameters {
			resolved := make(map[string]*config.ParameterValue, len(params))
			for key, value := range params {
				resolved[key] = value.toConfig()
			}
			profile.Parameters[stack] = resolved
		}
	}

	// Build settings
	if raw.Build != nil {
		profile.Build = config.BuildSettings{
			SourceDir:    raw.Build.SourceDir,
			TelemetryDir: raw.Build.TelemetryDir,
			OutputDir:    raw.Build.OutputDir,
			Compiler:     raw.Build.Compiler,
			IntelVenv:    raw.Build.IntelVenv,
			DockerImage:  raw.Build.DockerImage,
			Platforms:    append([]string(nil), raw.Build.Platforms...),
		}
	}

	return profile
}

// mergeTags merges global and profile tags, profile values winning
func (fp *Provider) mergeTags(globalTags, profileTags map[string]string) map[string]string {
	result := make(map[string]string)
	for k, v := range globalTags {
		result[k] = v
	}
	for k, v := range profileTags {
		result[k] = v
	}
	return result
}

// copyStringMap returns a shallow copy of a string map
func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	result := make(map[string]string, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
