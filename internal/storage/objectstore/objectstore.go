package objectstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/openmun/delegation-api/internal/config"
	"github.com/openmun/delegation-api/internal/logger"
)

// Store wraps the S3-compatible bucket that holds community logos.
type Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
	log       *log.Logger
}

// New connects to the object store and makes sure the bucket exists.
func New(ctx context.Context, cfg config.ObjectStoreConfig) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	s := &Store{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		log:       logger.ObjectStore(),
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		s.log.Info("bucket created", "bucket", cfg.Bucket)
	}

	s.log.Info("object store ready", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return s, nil
}

// UploadLogo stores a community logo and returns its public URL. The
// object key is derived from the community so re-uploads replace the
// previous logo instead of piling up.
func (s *Store) UploadLogo(ctx context.Context, communityID string, r io.Reader, size int64, contentType string) (string, error) {
	ext := extensionFor(contentType)
	if ext == "" {
		return "", fmt.Errorf("unsupported logo content type: %s", contentType)
	}

	key := path.Join("logos", communityID+ext)

	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.log.Error("failed to upload logo", "community_id", communityID, "error", err)
		return "", fmt.Errorf("failed to upload logo: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key)
	s.log.Info("logo uploaded", "community_id", communityID, "key", key)
	return url, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/svg+xml":
		return ".svg"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
