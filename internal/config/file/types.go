/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package file contains types specific to the file-based configuration
// provider. These types mirror the raw YAML structure before profile
// resolution and inheritance.
package file

import (
	"fmt"

	"github.com/halcyonops/authstack/internal/config"
	"gopkg.in/yaml.v3"
)

// Config represents the raw YAML configuration file structure
type Config struct {
	PoolName  string              `yaml:"pool_name"`
	Region    string              `yaml:"region"`
	Tags      map[string]string   `yaml:"tags"`
	Templates *Templates          `yaml:"templates"`
	Profiles  map[string]*Profile `yaml:"profiles"`
}

// Templates represents global template configuration
type Templates struct {
	Directory string `yaml:"directory"`
}

// Profile represents one deployment profile as it appears in YAML
type Profile struct {
	Region         string            `yaml:"region"`
	PoolName       string            `yaml:"pool_name"`
	FederationType string            `yaml:"federation_type"`
	Monitoring     bool              `yaml:"monitoring"`
	Analytics      bool              `yaml:"analytics"`
	Quota          bool              `yaml:"quota"`
	CodeBuild      bool              `yaml:"codebuild"`
	Tags           map[string]string `yaml:"tags"`

	StackNames map[string]string                          `yaml:"stack_names"`
	Parameters map[string]map[string]*yamlParameterValue  `yaml:"parameters"`

	Build *BuildSettings `yaml:"build"`
}

// BuildSettings represents packaging configuration as it appears in YAML
type BuildSettings struct {
	SourceDir    string   `yaml:"source_dir"`
	TelemetryDir string   `yaml:"telemetry_dir"`
	OutputDir    string   `yaml:"output_dir"`
	Compiler     string   `yaml:"compiler"`
	IntelVenv    string   `yaml:"intel_venv"`
	DockerImage  string   `yaml:"docker_image"`
	Platforms    []string `yaml:"platforms"`
}

// yamlParameterValue is either a literal scalar or an output-reference
// object ({stack: ..., output: ...}) in the YAML source.
type yamlParameterValue struct {
	Literal        string
	IsLiteralValue bool
	OutputRef      *yamlOutputRef
}

// yamlOutputRef references another stack's output value
type yamlOutputRef struct {
	Stack  string `yaml:"stack"`
	Output string `yaml:"output"`
}

// UnmarshalYAML implements custom YAML unmarshalling for yamlParameterValue
func (pv *yamlParameterValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		pv.Literal = node.Value
		pv.IsLiteralValue = true
		return nil

	case yaml.MappingNode:
		pv.OutputRef = &yamlOutputRef{}
		if err := node.Decode(pv.OutputRef); err != nil {
			return err
		}
		if pv.OutputRef.Stack == "" || pv.OutputRef.Output == "" {
			return fmt.Errorf("output reference requires both 'stack' and 'output' keys")
		}
		return nil

	default:
		return fmt.Errorf("parameter value must be a string literal or an output reference")
	}
}

// MarshalYAML implements custom YAML marshalling for yamlParameterValue
func (pv *yamlParameterValue) MarshalYAML() (interface{}, error) {
	if pv.IsLiteralValue {
		return pv.Literal, nil
	}
	return pv.OutputRef, nil
}

// toConfig converts a raw YAML parameter value to the resolved form
func (pv *yamlParameterValue) toConfig() *config.ParameterValue {
	if pv.IsLiteralValue {
		return &config.ParameterValue{Literal: pv.Literal, IsLiteral: true}
	}
	return &config.ParameterValue{
		Output: &config.OutputRef{Stack: pv.OutputRef.Stack, Key: pv.OutputRef.Output},
	}
}
