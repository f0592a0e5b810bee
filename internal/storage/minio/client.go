package minio

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"

	"github.com/minio/minio-go/v7"

	"github.com/dtroode/painel-admin/internal/model"
)

// objectAPI is the subset of *minio.Client the store needs; tests replace it.
type objectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

type clientAdapter struct{ c *minio.Client }

func (a clientAdapter) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return a.c.BucketExists(ctx, bucketName)
}

func (a clientAdapter) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return a.c.MakeBucket(ctx, bucketName, opts)
}

func (a clientAdapter) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return a.c.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}

func (a clientAdapter) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := a.c.GetObject(ctx, bucketName, objectName, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (a clientAdapter) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return a.c.RemoveObject(ctx, bucketName, objectName, opts)
}

func (a clientAdapter) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	return a.c.StatObject(ctx, bucketName, objectName, opts)
}

var _ model.Storage = (*Store)(nil)

// Store keeps files exchanged with the admin backend in a MinIO bucket.
type Store struct {
	api    objectAPI
	bucket string
}

// NewStore wraps a real *minio.Client and makes sure the bucket exists.
func NewStore(ctx context.Context, client *minio.Client, bucket string) (*Store, error) {
	return newStore(ctx, clientAdapter{c: client}, bucket)
}

func newStore(ctx context.Context, api objectAPI, bucket string) (*Store, error) {
	s := &Store{
		api:    api,
		bucket: bucket,
	}

	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return s, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	if err := s.api.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Upload stores the reader under key. The content type follows the key's
// extension.
func (s *Store) Upload(ctx context.Context, key string, reader io.Reader) error {
	opts := minio.PutObjectOptions{ContentType: contentTypeFor(key)}
	if _, err := s.api.PutObject(ctx, s.bucket, key, reader, -1, opts); err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

func (s *Store) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.api.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return obj, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.api.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if _, err := s.api.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object: %w", err)
	}
	return true, nil
}

func contentTypeFor(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
