// Package storage holds uploaded audio and cover art in MinIO.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"EchoWave/config"
	"EchoWave/logger"
)

var (
	minioClient *minio.Client
	bucket      string
)

// InitMinio connects to MinIO and makes sure the bucket exists. It is
// skipped entirely when no endpoint is configured; uploads then fail with a
// clear error instead of at startup.
func InitMinio(cfg *config.Config) error {
	if cfg.MinioEndpoint == "" {
		logger.Info("MinIO not configured, uploads disabled")
		return nil
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("Created bucket", logger.String("bucket", cfg.MinioBucket))
	}

	minioClient = client
	bucket = cfg.MinioBucket
	logger.Info("MinIO client initialized", logger.String("bucket", cfg.MinioBucket))
	return nil
}

// UploadAudio stores an audio payload under a fresh object key and returns
// the object URL path.
func UploadAudio(ctx context.Context, reader io.Reader, size int64, filename, contentType string) (string, error) {
	return upload(ctx, "audio", reader, size, filename, contentType)
}

// UploadCover stores a cover-art payload under a fresh object key and
// returns the object URL path.
func UploadCover(ctx context.Context, reader io.Reader, size int64, filename, contentType string) (string, error) {
	return upload(ctx, "covers", reader, size, filename, contentType)
}

func upload(ctx context.Context, prefix string, reader io.Reader, size int64, filename, contentType string) (string, error) {
	if minioClient == nil {
		return "", fmt.Errorf("object storage not configured")
	}

	objectName := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), path.Ext(filename))
	_, err := minioClient.PutObject(ctx, bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	logger.Info("Object uploaded", logger.String("object", objectName), logger.Int64("size", size))
	return fmt.Sprintf("/%s/%s", bucket, objectName), nil
}
