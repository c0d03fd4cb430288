package clients

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	Prefix          string
	URLTTL          time.Duration
}

// S3Storage stores report files in an S3-compatible bucket and hands out
// presigned download URLs.
type S3Storage struct {
	raw    *minio.Client
	bucket string
	prefix string
	urlTTL time.Duration
}

func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	ttl := cfg.URLTTL
	if ttl == 0 {
		ttl = 48 * time.Hour
	}

	return &S3Storage{
		raw:    client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		urlTTL: ttl,
	}, nil
}

func (s *S3Storage) Save(ctx context.Context, fileName string, data []byte) (string, error) {
	key := s.prefix + fileName

	_, err := s.raw.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	})
	if err != nil {
		return "", fmt.Errorf("put object %q failed: %w", key, err)
	}

	return key, nil
}

func (s *S3Storage) GetURL(ctx context.Context, fileName string) (string, error) {
	u, err := s.raw.PresignedGetObject(ctx, s.bucket, fileName, s.urlTTL, nil)
	if err != nil {
		return "", fmt.Errorf("presign get object %q failed: %w", fileName, err)
	}
	return u.String(), nil
}
