/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package aws

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Uploader implements ObjectUploader using the SDK transfer manager
type S3Uploader struct {
	uploader *manager.Uploader
}

// NewS3Uploader creates an uploader backed by the given S3 client
func NewS3Uploader(client *s3.Client) *S3Uploader {
	return &S3Uploader{uploader: manager.NewUploader(client)}
}

// Upload streams a local file to s3://bucket/key
func (u *S3Uploader) Upload(ctx context.Context, bucket, key, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	_, err = u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return classifyError(fmt.Sprintf("upload s3://%s/%s", bucket, key), err)
	}
	return nil
}
