/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package resolve turns a logical stack name plus a deployment profile into
// the concrete inputs a provider call needs: physical stack name, rendered
// template body, resolved parameters, and merged tags.
package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/halcyonops/authstack/internal/config"
)

// ResolvedStack represents a fully resolved stack ready for a provider call
type ResolvedStack struct {
	Name         string // logical name
	StackName    string // physical CloudFormation stack name
	TemplateBody string
	TemplatePath string
	Parameters   map[string]string
	Tags         map[string]string
}

// OutputLookup supplies another stack's output value when a parameter
// references one. Implementations typically consult outputs captured earlier
// in the same run, falling back to a describe call.
type OutputLookup func(ctx context.Context, stack, key string) (string, error)

// TemplateReader reads template content by path (injectable for testing)
type TemplateReader interface {
	Read(path string) (string, error)
}

// fileTemplateReader reads templates from the local filesystem
type fileTemplateReader struct{}

func (fileTemplateReader) Read(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template file %s: %w", path, err)
	}
	return string(content), nil
}

// StackResolver resolves stack configuration into deployment-ready artifacts
type StackResolver struct {
	profile   *config.Profile
	reader    TemplateReader
	processor TemplateProcessor
}

// NewStackResolver creates a resolver for the given profile
func NewStackResolver(profile *config.Profile) *StackResolver {
	return &StackResolver{
		profile:   profile,
		reader:    fileTemplateReader{},
		processor: NewCfnTemplateProcessor(),
	}
}

// SetTemplateReader injects a custom template reader (for testing)
func (r *StackResolver) SetTemplateReader(reader TemplateReader) {
	r.reader = reader
}

// Resolve builds the provider inputs for one logical stack. Parameters that
// reference other stacks' outputs are resolved through lookup.
func (r *StackResolver) Resolve(ctx context.Context, logical string, lookup OutputLookup) (*ResolvedStack, error) {
	templatePath := filepath.Join(r.profile.TemplateDir, logical+".yaml")
	raw, err := r.reader.Read(templatePath)
	if err != nil {
		return nil, err
	}

	body, err := r.processor.Process(raw, r.templateVariables())
	if err != nil {
		return nil, fmt.Errorf("failed to render template for stack %s: %w", logical, err)
	}

	params, err := r.resolveParameters(ctx, logical, lookup)
	if err != nil {
		return nil, err
	}

	return &ResolvedStack{
		Name:         logical,
		StackName:    r.profile.StackName(logical),
		TemplateBody: body,
		TemplatePath: templatePath,
		Parameters:   params,
		Tags:         r.profile.Tags,
	}, nil
}

// resolveParameters flattens configured parameters, chasing output references
func (r *StackResolver) resolveParameters(ctx context.Context, logical string, lookup OutputLookup) (map[string]string, error) {
	configured := r.profile.StackParameters(logical)
	params := make(map[string]string, len(configured))

	for key, value := range configured {
		if value.IsLiteral {
			params[key] = value.Literal
			continue
		}
		if value.Output == nil {
			return nil, fmt.Errorf("parameter %s of stack %s has neither a literal value nor an output reference", key, logical)
		}
		if lookup == nil {
			return nil, fmt.Errorf("parameter %s of stack %s references an output but no lookup is available", key, logical)
		}
		resolved, err := lookup(ctx, value.Output.Stack, value.Output.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve parameter %s of stack %s: %w", key, logical, err)
		}
		params[key] = resolved
	}

	return params, nil
}

// templateVariables exposes profile settings to templates
func (r *StackResolver) templateVariables() map[string]interface{} {
	return map[string]interface{}{
		"Profile":        r.profile.Name,
		"PoolName":       r.profile.PoolName,
		"Region":         r.profile.Region,
		"FederationType": r.profile.FederationType,
		"Monitoring":     r.profile.MonitoringEnabled,
		"Analytics":      r.profile.AnalyticsEnabled,
		"Quota":          r.profile.QuotaEnabled,
		"CodeBuild":      r.profile.CodeBuildEnabled,
	}
}
