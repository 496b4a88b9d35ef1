// Copyright (c) 2026 ComicZone. All rights reserved.

/*
Package objectstore provides blob storage for uploaded media.

It wraps a MinIO/S3-compatible bucket behind a minimal "store blob, get URL"
contract so that domain services never touch the storage SDK directly.

Core Responsibilities:

  - Persistence: Streams multipart uploads into the configured bucket.
  - Addressing: Returns the stable public URL for each stored object.
  - Safety: Validates connectivity at startup, like the other infra clients.
*/
package objectstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/comiczone/comiczone/internal/platform/config"
)

const startupTimeout = 10 * time.Second

// Store is the blob storage contract consumed by domain services.
type Store interface {
	// Put streams an object into the bucket under key and returns its public URL.
	Put(ctx context.Context, key, contentType string, reader io.Reader, size int64) (string, error)
}

// MinioStore implements [Store] against an S3-compatible endpoint.
type MinioStore struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

// New creates a MinioStore and verifies the target bucket exists.
//
// # Parameters
//   - ctx: Context for the startup existence check.
//   - cfg: Application configuration carrying the S3 settings.
//   - logger: Structured logger for connection events.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: failed to create client: %w", err)
	}

	checkCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	exists, err := client.BucketExists(checkCtx, cfg.S3Bucket)
	if err != nil {
		return nil, fmt.Errorf("objectstore: failed to check bucket %q: %w", cfg.S3Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("objectstore: bucket %q does not exist", cfg.S3Bucket)
	}

	logger.Info("objectstore connected",
		slog.String("endpoint", cfg.S3Endpoint),
		slog.String("bucket", cfg.S3Bucket),
	)

	return &MinioStore{
		client:        client,
		bucket:        cfg.S3Bucket,
		publicBaseURL: strings.TrimRight(cfg.S3PublicBaseURL, "/"),
	}, nil
}

// Put implements [Store].
func (store *MinioStore) Put(ctx context.Context, key, contentType string, reader io.Reader, size int64) (string, error) {
	_, err := store.client.PutObject(ctx, store.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("objectstore: failed to store %q: %w", key, err)
	}

	return store.publicBaseURL + "/" + key, nil
}
