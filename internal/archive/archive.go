package archive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/essaypilot/essaypilot/internal/config"
)

// Store keeps prior essay revisions in object storage so an overwritten
// draft is never lost. One object per revision, keyed by essay id and
// timestamp.
type Store struct {
	client *minio.Client
	bucket string
}

// New creates the archive client and ensures the bucket exists.
func New(cfg config.ArchiveConfig) (*Store, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("archive endpoint missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &Store{client: mc, bucket: cfg.Bucket}
	// ensure bucket exists (idempotent)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

// Save stores one revision of an essay's content.
func (s *Store) Save(ctx context.Context, essayID, content string) error {
	key := fmt.Sprintf("essays/%s/%d.txt", essayID, time.Now().UnixNano())
	reader := strings.NewReader(content)
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(reader.Len()),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"})
	if err != nil {
		return fmt.Errorf("archive revision %s: %w", key, err)
	}
	return nil
}
