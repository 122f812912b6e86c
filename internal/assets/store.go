// Package assets moves images submitted inline as data: URIs into object
// storage so only a URL is stored and synchronized.
package assets

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/RubachokBoss/clubtrack/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// ImageStore resolves an image reference into the value that is persisted.
type ImageStore interface {
	// Resolve uploads data: URIs under prefix and returns their URL. Other
	// references are returned unchanged.
	Resolve(ctx context.Context, prefix, ref string) (string, error)
}

type passthroughStore struct{}

// NewPassthroughStore keeps every reference as-is, data URIs included.
func NewPassthroughStore() ImageStore {
	return passthroughStore{}
}

func (passthroughStore) Resolve(ctx context.Context, prefix, ref string) (string, error) {
	return ref, nil
}

type MinIOStore struct {
	client    *minio.Client
	bucket    string
	region    string
	publicURL string
	timeout   time.Duration
	logger    zerolog.Logger

	ensureMu      sync.Mutex
	bucketEnsured bool
}

// NewImageStore returns a MinIO backed store, or a passthrough store when
// assets are disabled.
func NewImageStore(cfg config.AssetsConfig, logger zerolog.Logger) (ImageStore, error) {
	if !cfg.Enabled {
		return NewPassthroughStore(), nil
	}
	return NewMinIOStore(cfg, logger)
}

func NewMinIOStore(cfg config.AssetsConfig, logger zerolog.Logger) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	publicURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = client.EndpointURL().String()
	}

	s := &MinIOStore{
		client:    client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		publicURL: publicURL,
		timeout:   cfg.Timeout,
		logger:    logger.With().Str("component", "assets").Logger(),
	}

	s.logger.Info().
		Str("endpoint", cfg.Endpoint).
		Str("bucket", cfg.Bucket).
		Bool("ssl", cfg.UseSSL).
		Msg("Image store configured")

	return s, nil
}

func (s *MinIOStore) ensureBucket(ctx context.Context) error {
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	if s.bucketEnsured {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("minio not ready: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		s.logger.Info().Str("bucket", s.bucket).Msg("Created new bucket")
	}

	s.bucketEnsured = true
	return nil
}

func (s *MinIOStore) Resolve(ctx context.Context, prefix, ref string) (string, error) {
	if !IsDataURI(ref) {
		return ref, nil
	}

	img, err := ParseDataURI(ref)
	if err != nil {
		return "", err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	key := ObjectKey(prefix, img)
	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(img.Data), int64(len(img.Data)), minio.PutObjectOptions{
		ContentType: img.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	s.logger.Debug().
		Str("bucket", s.bucket).
		Str("key", key).
		Str("etag", info.ETag).
		Int("size", len(img.Data)).
		Msg("Image uploaded")

	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key), nil
}

// ObjectKey names an image by its content so identical uploads share one object.
func ObjectKey(prefix string, img *DataURI) string {
	sum := sha256.Sum256(img.Data)
	return path.Join(prefix, hex.EncodeToString(sum[:16])+img.Extension())
}
