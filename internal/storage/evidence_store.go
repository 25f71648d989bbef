package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/config"
)

// EvidenceStore keeps the files attached to cancellation requests in an
// S3-compatible bucket.
type EvidenceStore struct {
	client *minio.Client
	cfg    config.StorageConfig
}

func NewEvidenceStore(cfg config.StorageConfig) (*EvidenceStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &EvidenceStore{
		client: client,
		cfg:    cfg,
	}, nil
}

func (s *EvidenceStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.BucketEvidence)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.cfg.BucketEvidence, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.cfg.BucketEvidence, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.cfg.BucketEvidence, err)
		}
	}
	return nil
}

// Put stores one evidence object under the session's prefix and returns
// its public URL.
func (s *EvidenceStore) Put(ctx context.Context, sessionID string, name string, contentType string, r io.Reader, size int64) (string, error) {
	objectKey := path.Join(sessionID, fmt.Sprintf("%d-%s", time.Now().UTC().UnixNano(), name))

	_, err := s.client.PutObject(ctx, s.cfg.BucketEvidence, objectKey, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return s.publicURL(objectKey), nil
}

func (s *EvidenceStore) publicURL(objectKey string) string {
	base := strings.TrimSuffix(s.cfg.Endpoint, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return fmt.Sprintf("%s/%s/%s", base, s.cfg.BucketEvidence, objectKey)
}
