// Package s3 issues presigned object URLs and downloads stored documents.
package s3

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/archivist/internal/domain"
	"github.com/kailas-cloud/archivist/internal/metrics"
)

// DefaultURLTTL is how long a presigned URL stays valid.
const DefaultURLTTL = 2 * time.Minute

// DefaultDownloadTimeout bounds a whole object download.
const DefaultDownloadTimeout = 5 * time.Minute

// Config holds object storage settings.
type Config struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // optional, for S3-compatible stores; enables path-style URLs
	URLTTL          time.Duration
	DownloadTimeout time.Duration
	HTTPClient      *http.Client // optional, used for downloads
	Logger          *zap.Logger
}

// Store implements usecase/document.ObjectStore.
type Store struct {
	presigner  *awss3.PresignClient
	bucket     string
	ttl        time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// NewStore creates an object store for one bucket.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("region is required")
	}

	opts := awss3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	ttl := cfg.URLTTL
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.DownloadTimeout
		if timeout <= 0 {
			timeout = DefaultDownloadTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{
		presigner:  awss3.NewPresignClient(awss3.New(opts)),
		bucket:     cfg.Bucket,
		ttl:        ttl,
		httpClient: hc,
		logger:     logger.Named("s3"),
	}, nil
}

// PresignGet returns a time-limited GET URL for key.
func (s *Store) PresignGet(ctx context.Context, key string) (url string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstream(metrics.TargetStorage, "presign", start, err) }()

	req, err := s.presigner.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, awss3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}

// Fetch downloads the object behind a presigned URL. The caller closes the body.
func (s *Store) Fetch(ctx context.Context, url string) (body io.ReadCloser, err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstream(metrics.TargetStorage, "fetch", start, err) }()

	if url == "" {
		return nil, fmt.Errorf("fetch: empty url: %w", domain.ErrDocumentUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("fetch: %v: %w", err, domain.ErrDocumentUnavailable)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %v: %w", err, domain.ErrDocumentUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		s.logger.Warn("object fetch failed", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("fetch: status %d: %w", resp.StatusCode, domain.ErrDocumentUnavailable)
	}
	return resp.Body, nil
}
