package sprites

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"speakup-api/internal/apperr"
	"speakup-api/internal/config"
	"speakup-api/internal/observability/logging"
)

// MinioStore implements ObjectStore against any S3-compatible endpoint.
type MinioStore struct {
	client *minio.Client
}

// NewMinioStore connects to the configured object storage endpoint.
func NewMinioStore(cfg config.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &MinioStore{client: client}, nil
}

// EnsureBuckets creates the given buckets when they do not exist yet.
// Best-effort at startup; the first upload surfaces any real storage problem.
func (s *MinioStore) EnsureBuckets(ctx context.Context, buckets ...string) error {
	log := logging.WithComponent("sprites")
	for _, bucket := range buckets {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("checking bucket %s: %w", bucket, err)
		}
		if exists {
			continue
		}
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("creating bucket %s: %w", bucket, err)
		}
		log.Info().Str("bucket", bucket).Msg("Created storage bucket")
	}
	return nil
}

func (s *MinioStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	return mapStorageErr(err, "uploading object")
}

func (s *MinioStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapStorageErr(err, "downloading object")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapStorageErr(err, "downloading object")
	}
	return data, nil
}

func (s *MinioStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	for obj := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, mapStorageErr(obj.Err, "listing objects")
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func (s *MinioStore) Remove(ctx context.Context, bucket, key string) error {
	return mapStorageErr(s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}),
		"removing object")
}

func (s *MinioStore) SignedURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	// Presigning is a local computation and would happily sign a URL for a
	// missing object, so existence is checked first.
	if _, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{}); err != nil {
		return "", mapStorageErr(err, "signing object URL")
	}
	url, err := s.client.PresignedGetObject(ctx, bucket, key, expiry, nil)
	if err != nil {
		return "", mapStorageErr(err, "signing object URL")
	}
	return url.String(), nil
}

// mapStorageErr translates storage failures into the taxonomy: missing
// objects are not_found, everything else is an upstream failure.
func mapStorageErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return apperr.Wrap(err, apperr.ReasonNotFound, msg)
	}
	return apperr.Wrap(err, apperr.ReasonUpstreamError, msg)
}
