/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
pool_name: acme
region: us-east-1
tags:
  Team: platform
templates:
  directory: cfn
profiles:
  default:
    federation_type: cognito
    monitoring: true
    quota: true
    parameters:
      monitoring:
        IdentityPool:
          stack: auth
          output: IdentityPoolId
        RetentionDays: "30"
  production:
    region: eu-west-1
    pool_name: acme-prod
    codebuild: true
    tags:
      Team: sre
    stack_names:
      auth: legacy-identity
    build:
      source_dir: helper
      intel_venv: /opt/venv-intel
      platforms: [linux-x64, windows]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "authstack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadProfile_GlobalDefaultsApplied(t *testing.T) {
	provider := NewProvider(writeConfig(t, sampleConfig))

	profile, err := provider.LoadProfile(context.Background(), "default")
	require.NoError(t, err)

	assert.Equal(t, "default", profile.Name)
	assert.Equal(t, "us-east-1", profile.Region)
	assert.Equal(t, "acme", profile.PoolName)
	assert.Equal(t, "cognito", profile.FederationType)
	assert.Equal(t, "cfn", profile.TemplateDir)
	assert.True(t, profile.MonitoringEnabled)
	assert.True(t, profile.QuotaEnabled)
	assert.False(t, profile.AnalyticsEnabled)
	assert.Equal(t, map[string]string{"Team": "platform"}, profile.Tags)
}

func TestLoadProfile_ProfileOverridesWin(t *testing.T) {
	provider := NewProvider(writeConfig(t, sampleConfig))

	profile, err := provider.LoadProfile(context.Background(), "production")
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", profile.Region)
	assert.Equal(t, "acme-prod", profile.PoolName)
	assert.Equal(t, map[string]string{"Team": "sre"}, profile.Tags)
	assert.Equal(t, "legacy-identity", profile.StackName("auth"))
	assert.Equal(t, "acme-prod-networking", profile.StackName("networking"))
}

func TestLoadProfile_ParameterValues(t *testing.T) {
	// Scalar parameters are literals; mapping parameters are output refs
	provider := NewProvider(writeConfig(t, sampleConfig))

	profile, err := provider.LoadProfile(context.Background(), "default")
	require.NoError(t, err)

	params := profile.StackParameters("monitoring")
	require.Len(t, params, 2)

	retention := params["RetentionDays"]
	assert.True(t, retention.IsLiteral)
	assert.Equal(t, "30", retention.Literal)

	pool := params["IdentityPool"]
	assert.False(t, pool.IsLiteral)
	require.NotNil(t, pool.Output)
	assert.Equal(t, "auth", pool.Output.Stack)
	assert.Equal(t, "IdentityPoolId", pool.Output.Key)
}

func TestLoadProfile_BuildSettings(t *testing.T) {
	provider := NewProvider(writeConfig(t, sampleConfig))

	profile, err := provider.LoadProfile(context.Background(), "production")
	require.NoError(t, err)

	assert.Equal(t, "helper", profile.Build.SourceDir)
	assert.Equal(t, "/opt/venv-intel", profile.Build.IntelVenv)
	assert.Equal(t, []string{"linux-x64", "windows"}, profile.Build.Platforms)
	assert.Equal(t, "dist", profile.Build.ArtifactDir())
	assert.Equal(t, "pyinstaller", profile.Build.BuilderCommand())
	assert.Equal(t, "otel_helper", profile.Build.TelemetrySource())
}

func TestLoadProfile_UnknownProfile(t *testing.T) {
	provider := NewProvider(writeConfig(t, sampleConfig))

	_, err := provider.LoadProfile(context.Background(), "nonesuch")

	assert.ErrorContains(t, err, "profile 'nonesuch' not found")
}

func TestLoadProfile_MissingFile(t *testing.T) {
	provider := NewProvider(filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := provider.LoadProfile(context.Background(), "default")

	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadProfile_MalformedYAML(t *testing.T) {
	provider := NewProvider(writeConfig(t, "profiles: [not: a: map"))

	_, err := provider.LoadProfile(context.Background(), "default")

	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoadProfile_OutputRefRequiresBothKeys(t *testing.T) {
	broken := `
pool_name: acme
region: us-east-1
profiles:
  default:
    parameters:
      monitoring:
        IdentityPool:
          stack: auth
`
	provider := NewProvider(writeConfig(t, broken))

	_, err := provider.LoadProfile(context.Background(), "default")

	assert.ErrorContains(t, err, "requires both 'stack' and 'output'")
}

func TestListProfiles(t *testing.T) {
	provider := NewProvider(writeConfig(t, sampleConfig))

	profiles, err := provider.ListProfiles()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"default", "production"}, profiles)
}

func TestValidate_MissingPoolName(t *testing.T) {
	provider := NewProvider(writeConfig(t, "region: us-east-1\nprofiles:\n  default: {}\n"))

	err := provider.Validate()

	assert.ErrorContains(t, err, "pool_name")
}

func TestValidate_MissingRegion(t *testing.T) {
	provider := NewProvider(writeConfig(t, "pool_name: acme\nprofiles:\n  default: {}\n"))

	err := provider.Validate()

	assert.ErrorContains(t, err, "no region")
}

func TestValidate_OK(t *testing.T) {
	provider := NewProvider(writeConfig(t, sampleConfig))

	assert.NoError(t, provider.Validate())
}
