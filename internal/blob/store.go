package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/retry"
)

// Store is the image storage contract used by the venue service. Upload
// returns the public URL of the stored object; Delete is a no-op for a blank
// URL or a missing object.
type Store interface {
	Upload(ctx context.Context, data io.Reader, size int64, contentType, fileName string) (string, error)
	Delete(ctx context.Context, publicURL string) error
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
	log       *zerolog.Logger
}

var uploadStrategy = retry.Strategy{Attempts: 3, Delay: 500 * time.Millisecond, Backoff: 2}

func NewMinioStore(ctx context.Context, cfg Config, log *zerolog.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to object storage: %w", err)
	}

	s := &MinioStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: cfg.PublicURL,
		log:       log,
	}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// ensureBucket creates the bucket when absent and opens it for anonymous
// blob-level reads so stored image URLs are directly servable.
func (s *MinioStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
	}

	policy := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [{
			"Effect": "Allow",
			"Principal": {"AWS": ["*"]},
			"Action": ["s3:GetObject"],
			"Resource": ["arn:aws:s3:::%s/*"]
		}]
	}`, s.bucket)
	if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}

	s.log.Info().Msgf("Object storage bucket %s ready", s.bucket)
	return nil
}

func (s *MinioStore) Upload(ctx context.Context, data io.Reader, size int64, contentType, fileName string) (string, error) {
	objectName := newObjectName(fileName)

	// buffer the payload so a retried attempt re-reads from the start
	buf, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("failed to read image payload: %w", err)
	}

	err = retry.Do(func() error {
		_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(buf), int64(len(buf)), minio.PutObjectOptions{
			ContentType: contentType,
		})
		return err
	}, uploadStrategy)
	if err != nil {
		return "", fmt.Errorf("failed to upload image %s: %w", objectName, err)
	}

	publicURL := fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectName)
	s.log.Debug().Str("object", objectName).Msg("image uploaded")
	return publicURL, nil
}

func (s *MinioStore) Delete(ctx context.Context, publicURL string) error {
	objectName := objectNameFromURL(publicURL)
	if objectName == "" {
		return nil
	}

	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete image %s: %w", objectName, err)
	}
	s.log.Debug().Str("object", objectName).Msg("image deleted")
	return nil
}

// newObjectName generates a unique object name preserving the original file
// extension.
func newObjectName(fileName string) string {
	return uuid.New().String() + path.Ext(fileName)
}

// objectNameFromURL extracts the object name from a stored public URL. It
// returns "" for a blank or unparseable reference.
func objectNameFromURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" || u.Path == "/" {
		return ""
	}
	return path.Base(u.Path)
}
