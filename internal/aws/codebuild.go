/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/codebuild"
	cbtypes "github.com/aws/aws-sdk-go-v2/service/codebuild/types"
)

// BuildDetail holds the state of one CodeBuild build
type BuildDetail struct {
	ID           string // "project:uuid"
	Status       string // SUCCEEDED, FAILED, IN_PROGRESS, STOPPED, ...
	CurrentPhase string
	StartTime    *time.Time
	EndTime      *time.Time
}

// Duration returns the build duration, or elapsed time for in-flight builds
func (b *BuildDetail) Duration() time.Duration {
	if b.StartTime == nil {
		return 0
	}
	end := time.Now()
	if b.EndTime != nil {
		end = *b.EndTime
	}
	return end.Sub(*b.StartTime)
}

// DefaultCodeBuildOperations provides CodeBuild-specific operations
type DefaultCodeBuildOperations struct {
	client CodeBuildClient
}

// NewCodeBuildOperationsWithClient creates operations with a custom client
// (for testing)
func NewCodeBuildOperationsWithClient(client CodeBuildClient) *DefaultCodeBuildOperations {
	return &DefaultCodeBuildOperations{client: client}
}

// StartBuild starts a build for the named project and returns the build id
func (cb *DefaultCodeBuildOperations) StartBuild(ctx context.Context, projectName string) (string, error) {
	output, err := cb.client.StartBuild(ctx, &codebuild.StartBuildInput{
		ProjectName: aws.String(projectName),
	})
	if err != nil {
		return "", classifyError(fmt.Sprintf("start build for project %s", projectName), err)
	}
	if output.Build == nil || output.Build.Id == nil {
		return "", &ProviderRejectedError{
			Operation: fmt.Sprintf("start build for project %s", projectName),
			Reason:    "service returned no build id",
		}
	}
	return aws.ToString(output.Build.Id), nil
}

// GetBuild retrieves the state of a single build by id
func (cb *DefaultCodeBuildOperations) GetBuild(ctx context.Context, buildID string) (*BuildDetail, error) {
	output, err := cb.client.BatchGetBuilds(ctx, &codebuild.BatchGetBuildsInput{
		Ids: []string{buildID},
	})
	if err != nil {
		return nil, classifyError(fmt.Sprintf("get build %s", buildID), err)
	}
	if len(output.Builds) == 0 {
		return nil, nil
	}

	detail := buildDetailFromSDK(&output.Builds[0])
	return detail, nil
}

// ListRecentBuilds returns up to limit builds for the project, newest first
func (cb *DefaultCodeBuildOperations) ListRecentBuilds(ctx context.Context, projectName string, limit int) ([]*BuildDetail, error) {
	listOutput, err := cb.client.ListBuildsForProject(ctx, &codebuild.ListBuildsForProjectInput{
		ProjectName: aws.String(projectName),
	})
	if err != nil {
		return nil, classifyError(fmt.Sprintf("list builds for project %s", projectName), err)
	}

	ids := listOutput.Ids
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	if len(ids) == 0 {
		return nil, nil
	}

	batchOutput, err := cb.client.BatchGetBuilds(ctx, &codebuild.BatchGetBuildsInput{Ids: ids})
	if err != nil {
		return nil, classifyError(fmt.Sprintf("get builds for project %s", projectName), err)
	}

	// BatchGetBuilds does not guarantee input order; restore newest-first
	byID := make(map[string]*BuildDetail, len(batchOutput.Builds))
	for i := range batchOutput.Builds {
		detail := buildDetailFromSDK(&batchOutput.Builds[i])
		byID[detail.ID] = detail
	}

	details := make([]*BuildDetail, 0, len(ids))
	for _, id := range ids {
		if detail, ok := byID[id]; ok {
			details = append(details, detail)
		}
	}
	return details, nil
}

// buildDetailFromSDK converts an SDK build to the internal representation
func buildDetailFromSDK(build *cbtypes.Build) *BuildDetail {
	return &BuildDetail{
		ID:           aws.ToString(build.Id),
		Status:       string(build.BuildStatus),
		CurrentPhase: aws.ToString(build.CurrentPhase),
		StartTime:    build.StartTime,
		EndTime:      build.EndTime,
	}
}
