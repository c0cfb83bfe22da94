package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/indieinfra/gallery/config"
	"github.com/indieinfra/gallery/storage/upload"
	storageutil "github.com/indieinfra/gallery/storage/util"
)

type s3Client interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

var newMinioClient = func(endpoint string, opts *minio.Options) (s3Client, error) {
	return minio.New(endpoint, opts)
}

var now = time.Now

// StoreImpl uploads images to S3 or any compatible service (R2, Backblaze, MinIO).
type StoreImpl struct {
	client         s3Client
	bucket         string
	pattern        *storageutil.PathPattern
	publicBase     string
	forcePathStyle bool
	endpointHost   string
	secure         bool
	region         string
}

func NewS3Uploader(cfg *config.S3UploadStrategy) (*StoreImpl, error) {
	if cfg == nil {
		return nil, fmt.Errorf("s3 upload config is nil")
	}

	region := strings.TrimSpace(cfg.Region)
	if strings.EqualFold(region, "auto") {
		region = ""
	}

	endpointHost := strings.TrimSpace(cfg.Endpoint)
	if endpointHost == "" {
		if region == "" {
			endpointHost = "s3.amazonaws.com"
		} else {
			endpointHost = fmt.Sprintf("s3.%s.amazonaws.com", region)
		}
	} else if parsed, err := url.Parse(endpointHost); err == nil && parsed.Host != "" {
		endpointHost = parsed.Host
	}

	lookup := minio.BucketLookupAuto
	if cfg.ForcePathStyle {
		lookup = minio.BucketLookupPath
	}

	client, err := newMinioClient(endpointHost, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKeyId, cfg.SecretKeyId, ""),
		Secure:       !cfg.DisableSSL,
		Region:       region,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to verify s3 bucket %q: %w", cfg.Bucket, err)
	}

	if !exists {
		return nil, fmt.Errorf("s3 bucket %q does not exist or is not accessible", cfg.Bucket)
	}

	return &StoreImpl{
		client:         client,
		bucket:         cfg.Bucket,
		pattern:        keyPattern(cfg.Prefix),
		publicBase:     strings.TrimSuffix(cfg.PublicUrl, "/"),
		forcePathStyle: cfg.ForcePathStyle,
		endpointHost:   endpointHost,
		secure:         !cfg.DisableSSL,
		region:         cfg.Region,
	}, nil
}

// keyPattern turns the configured prefix into an object key pattern. A plain
// prefix such as "gallery" places objects under gallery/{year}/{month}.
func keyPattern(prefix string) *storageutil.PathPattern {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return storageutil.DefaultUploadPattern()
	}

	if strings.Contains(prefix, "{filename}") || strings.Contains(prefix, "{name}") {
		return storageutil.NewPathPattern(prefix)
	}

	return storageutil.NewPathPattern(prefix + "/" + storageutil.DefaultUploadPattern().String())
}

func (s *StoreImpl) Put(ctx context.Context, p *upload.Payload) (string, error) {
	name, ext := storageutil.ObjectName(p.Filename, p.ContentType)

	key, err := s.pattern.Generate(name, now(), ext)
	if err != nil {
		return "", fmt.Errorf("failed to generate object key: %w", err)
	}

	size := p.Size
	if size <= 0 {
		size = -1
	}

	opts := minio.PutObjectOptions{ContentType: p.ContentType}
	if _, err := s.client.PutObject(ctx, s.bucket, key, p.Body, size, opts); err != nil {
		return "", fmt.Errorf("upload to s3 failed: %w", err)
	}

	return s.objectURL(key), nil
}

func (s *StoreImpl) objectURL(key string) string {
	if s.publicBase != "" {
		return s.publicBase + "/" + key
	}

	scheme := "https"
	if !s.secure {
		scheme = "http"
	}

	if s.forcePathStyle {
		return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpointHost, s.bucket, key)
	}

	return fmt.Sprintf("%s://%s.%s/%s", scheme, s.bucket, s.endpointHost, key)
}
