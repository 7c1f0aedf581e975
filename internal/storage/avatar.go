// Package storage stores avatar images in a MinIO (S3-compatible) bucket.
// Object storage survives server restarts and is shared by every process,
// which a local uploads directory would not be.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// AvatarStore uploads and serves avatar objects from one bucket.
type AvatarStore struct {
	client *minio.Client
	bucket string
}

// NewAvatarStoreFromEnv connects to MinIO using environment variables
// (MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY, MINIO_BUCKET,
// MINIO_USE_SSL) and ensures the bucket exists. Returns an error when the
// store is unreachable; the caller decides whether avatars are optional
// for the deployment.
func NewAvatarStoreFromEnv(ctx context.Context) (*AvatarStore, error) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}
	bucket := os.Getenv("MINIO_BUCKET")
	if bucket == "" {
		bucket = "vicare-avatars"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true" || os.Getenv("MINIO_USE_SSL") == "1"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	s := &AvatarStore{client: client, bucket: bucket}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *AvatarStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

// Put stores an avatar object, overwriting any previous object with the
// same name. Object names are derived from the user id, so re-uploading
// replaces the old avatar in place.
func (s *AvatarStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put avatar: %w", err)
	}
	return nil
}

// Get opens an avatar object for streaming along with its content type.
func (s *AvatarStore) Get(ctx context.Context, name string) (io.ReadCloser, string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("get avatar: %w", err)
	}
	// Stat forces the first round trip and surfaces "no such object".
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, "", fmt.Errorf("stat avatar: %w", err)
	}
	return obj, info.ContentType, nil
}
