// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// s3.go provides an S3-compatible archive client for paid order folders.
// It wraps the AWS SDK v2 and is configured for path-style access
// (required by CEPH/Hetzner). Archiving is strictly best-effort: the
// order lifecycle never waits on or fails because of the archive.
package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ArchiveClient uploads order folders to an S3-compatible bucket so paid
// selections survive local disk cleanup.
type ArchiveClient struct {
	s3     *s3.Client
	bucket string
}

// NewArchive creates an S3 archive client with static credentials and
// path-style addressing. Returns (nil, nil) if endpoint or credentials
// are empty, allowing the app to run without an archive.
func NewArchive(endpoint, region, accessKey, secretKey, bucket string) (*ArchiveClient, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}

	endpoint = strings.TrimRight(endpoint, "/")

	client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &ArchiveClient{s3: client, bucket: bucket}, nil
}

// Upload stores a single object in the archive bucket.
func (c *ArchiveClient) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// ArchiveDir uploads every file under dir to the bucket, keyed as
// prefix/<path relative to dir>. Keys always use forward slashes.
func (c *ArchiveClient) ArchiveDir(ctx context.Context, dir, prefix string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		key := prefix + "/" + filepath.ToSlash(rel)

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("archive open %s: %w", path, err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("archive stat %s: %w", path, err)
		}

		contentType := mime.TypeByExtension(filepath.Ext(path))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		return c.Upload(ctx, key, contentType, f, info.Size())
	})
}
