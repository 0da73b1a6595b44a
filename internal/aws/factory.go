/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package aws

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/codebuild"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultClientFactory implements ClientFactory with caching and shared
// authentication
type DefaultClientFactory struct {
	baseConfig aws.Config

	mutex          sync.RWMutex
	cfnCache       map[string]CloudFormationOperations
	codeBuildCache map[string]CodeBuildOperations
	uploaderCache  map[string]ObjectUploader
}

// NewClientFactory creates a client factory with shared authentication
func NewClientFactory(ctx context.Context) (*DefaultClientFactory, error) {
	baseConfig, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return &DefaultClientFactory{
		baseConfig:     baseConfig,
		cfnCache:       make(map[string]CloudFormationOperations),
		codeBuildCache: make(map[string]CodeBuildOperations),
		uploaderCache:  make(map[string]ObjectUploader),
	}, nil
}

// GetCloudFormationOperations returns CloudFormation operations for the region
func (f *DefaultClientFactory) GetCloudFormationOperations(ctx context.Context, region string) (CloudFormationOperations, error) {
	if region == "" {
		return nil, fmt.Errorf("region cannot be empty")
	}

	f.mutex.RLock()
	if ops, exists := f.cfnCache[region]; exists {
		f.mutex.RUnlock()
		return ops, nil
	}
	f.mutex.RUnlock()

	regionConfig := f.baseConfig.Copy()
	regionConfig.Region = region
	ops := NewCloudFormationOperationsWithClient(cloudformation.NewFromConfig(regionConfig))

	f.mutex.Lock()
	f.cfnCache[region] = ops
	f.mutex.Unlock()

	return ops, nil
}

// GetCodeBuildOperations returns CodeBuild operations for the region
func (f *DefaultClientFactory) GetCodeBuildOperations(ctx context.Context, region string) (CodeBuildOperations, error) {
	if region == "" {
		return nil, fmt.Errorf("region cannot be empty")
	}

	f.mutex.RLock()
	if ops, exists := f.codeBuildCache[region]; exists {
		f.mutex.RUnlock()
		return ops, nil
	}
	f.mutex.RUnlock()

	regionConfig := f.baseConfig.Copy()
	regionConfig.Region = region
	ops := NewCodeBuildOperationsWithClient(codebuild.NewFromConfig(regionConfig))

	f.mutex.Lock()
	f.codeBuildCache[region] = ops
	f.mutex.Unlock()

	return ops, nil
}

// GetUploader returns an S3 uploader for the region
func (f *DefaultClientFactory) GetUploader(ctx context.Context, region string) (ObjectUploader, error) {
	if region == "" {
		return nil, fmt.Errorf("region cannot be empty")
	}

	f.mutex.RLock()
	if uploader, exists := f.uploaderCache[region]; exists {
		f.mutex.RUnlock()
		return uploader, nil
	}
	f.mutex.RUnlock()

	regionConfig := f.baseConfig.Copy()
	regionConfig.Region = region
	uploader := NewS3Uploader(s3.NewFromConfig(regionConfig))

	f.mutex.Lock()
	f.uploaderCache[region] = uploader
	f.mutex.Unlock()

	return uploader, nil
}

// GetBaseConfig returns the shared AWS configuration (for debugging)
func (f *DefaultClientFactory) GetBaseConfig() aws.Config {
	return f.baseConfig
}
