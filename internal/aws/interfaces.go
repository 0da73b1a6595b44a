/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/codebuild"
)

// CloudFormationClient defines the subset of the CloudFormation API used by
// authstack. Narrowing the SDK surface keeps mock implementations small.
type CloudFormationClient interface {
	CreateStack(ctx context.Context, params *cloudformation.CreateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error)
	UpdateStack(ctx context.Context, params *cloudformation.UpdateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error)
	DeleteStack(ctx context.Context, params *cloudformation.DeleteStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error)
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
	CreateChangeSet(ctx context.Context, params *cloudformation.CreateChangeSetInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateChangeSetOutput, error)
	DescribeChangeSet(ctx context.Context, params *cloudformation.DescribeChangeSetInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeChangeSetOutput, error)
	DeleteChangeSet(ctx context.Context, params *cloudformation.DeleteChangeSetInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteChangeSetOutput, error)
}

// Ensure the real CloudFormation client satisfies our interface
var _ CloudFormationClient = (*cloudformation.Client)(nil)

// CloudFormationOperations defines the stack operations authstack performs
type CloudFormationOperations interface {
	ApplyStack(ctx context.Context, input ApplyStackInput) (*Stack, error)
	DeleteStack(ctx context.Context, input DeleteStackInput) error
	GetStack(ctx context.Context, stackName string) (*Stack, error)
	StackExists(ctx context.Context, stackName string) (bool, error)
	PreviewChanges(ctx context.Context, input ApplyStackInput) (*ChangeSetInfo, error)
	WaitForStackOperation(ctx context.Context, stackName string, deadline time.Duration) (*Stack, error)
}

var _ CloudFormationOperations = (*DefaultCloudFormationOperations)(nil)

// CodeBuildClient defines the subset of the CodeBuild API used by authstack
type CodeBuildClient interface {
	StartBuild(ctx context.Context, params *codebuild.StartBuildInput, optFns ...func(*codebuild.Options)) (*codebuild.StartBuildOutput, error)
	BatchGetBuilds(ctx context.Context, params *codebuild.BatchGetBuildsInput, optFns ...func(*codebuild.Options)) (*codebuild.BatchGetBuildsOutput, error)
	ListBuildsForProject(ctx context.Context, params *codebuild.ListBuildsForProjectInput, optFns ...func(*codebuild.Options)) (*codebuild.ListBuildsForProjectOutput, error)
}

var _ CodeBuildClient = (*codebuild.Client)(nil)

// CodeBuildOperations defines the remote build operations authstack performs
type CodeBuildOperations interface {
	StartBuild(ctx context.Context, projectName string) (string, error)
	GetBuild(ctx context.Context, buildID string) (*BuildDetail, error)
	ListRecentBuilds(ctx context.Context, projectName string, limit int) ([]*BuildDetail, error)
}

var _ CodeBuildOperations = (*DefaultCodeBuildOperations)(nil)

// ObjectUploader uploads local files to an S3 bucket
type ObjectUploader interface {
	Upload(ctx context.Context, bucket, key, filename string) error
}

var _ ObjectUploader = (*S3Uploader)(nil)

// ClientFactory creates service operations with shared authentication and
// per-region caching
type ClientFactory interface {
	GetCloudFormationOperations(ctx context.Context, region string) (CloudFormationOperations, error)
	GetCodeBuildOperations(ctx context.Context, region string) (CodeBuildOperations, error)
	GetUploader(ctx context.Context, region string) (ObjectUploader, error)
}

var _ ClientFactory = (*DefaultClientFactory)(nil)
