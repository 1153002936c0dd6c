package photos

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/erazemk/lostfound/internal/metrics"
	"github.com/erazemk/lostfound/internal/store"
)

// Store persists a processed photo and returns the URL it is served from.
// Delete takes a URL returned by Put.
type Store interface {
	Put(ctx context.Context, p *Photo) (string, error)
	Delete(ctx context.Context, url string) error
}

// URLPrefix is the path under which DBStore photos are served.
const URLPrefix = "/photos/"

func newKey() string {
	return uuid.NewString() + ".jpg"
}

// DBStore keeps photos in the photos table.
type DBStore struct {
	db *sql.DB
}

func NewDBStore(db *sql.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Put(ctx context.Context, p *Photo) (string, error) {
	key := newKey()
	if err := store.PutPhoto(ctx, s.db, key, p.Data, p.MIME); err != nil {
		return "", err
	}
	metrics.PhotosUploadedTotal.WithLabelValues("db").Inc()
	return URLPrefix + key, nil
}

func (s *DBStore) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, URLPrefix)
	if !ok {
		return fmt.Errorf("photo url %q is not served from %s", url, URLPrefix)
	}
	return store.DeletePhoto(ctx, s.db, key)
}

// MinioConfig configures the bucket backend.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base URL objects are reachable under. Defaults to
	// the endpoint followed by the bucket.
	PublicURL string
}

// MinioStore uploads photos to an S3-compatible bucket.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStore connects to the endpoint and creates the bucket if it does not exist.
func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("creating bucket %s: %w", cfg.Bucket, err)
		}
		// Photo URLs are linked from public pages, so objects must be readable
		// anonymously. Existing buckets keep whatever policy they have.
		if err := client.SetBucketPolicy(ctx, cfg.Bucket, publicReadPolicy(cfg.Bucket)); err != nil {
			return nil, fmt.Errorf("setting policy on bucket %s: %w", cfg.Bucket, err)
		}
		slog.Info("bucket created", "bucket", cfg.Bucket)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = client.EndpointURL().String() + "/" + cfg.Bucket
	}

	return &MinioStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// publicReadPolicy returns an S3 bucket policy that allows anyone to
// download objects from bucket.
func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow",`+
		`"Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}

func (s *MinioStore) Put(ctx context.Context, p *Photo) (string, error) {
	key := newKey()
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(p.Data), int64(len(p.Data)),
		minio.PutObjectOptions{ContentType: p.MIME})
	if err != nil {
		return "", fmt.Errorf("uploading photo: %w", err)
	}
	metrics.PhotosUploadedTotal.WithLabelValues("minio").Inc()
	return s.publicURL + "/" + key, nil
}

func (s *MinioStore) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.publicURL+"/")
	if !ok {
		return fmt.Errorf("photo url %q is not in bucket %s", url, s.bucket)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("removing photo: %w", err)
	}
	return nil
}
