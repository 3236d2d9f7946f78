// Package xtender is a client for the document repository's REST query API.
package xtender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/archivist/internal/domain"
	"github.com/kailas-cloud/archivist/internal/domain/query"
	"github.com/kailas-cloud/archivist/internal/domain/result"
	"github.com/kailas-cloud/archivist/internal/metrics"
	"github.com/kailas-cloud/archivist/internal/version"
)

// MediaType is the repository's JSON vendor media type.
const MediaType = "application/vnd.emc.ax+json"

// DefaultTimeout bounds a single repository call.
const DefaultTimeout = 30 * time.Second

const maxErrorBody = 512

// Operation names for metrics and logs.
const (
	opAdHocQuery  = "adhoc_query"
	opIndexLookup = "index_lookup"
)

// Config holds repository endpoint settings.
type Config struct {
	AdHocQueryPath  string // base URL; the category id is appended
	IndexLookupPath string // base URL; the category id is appended
	Credentials     string // sent verbatim after "Basic "
	Timeout         time.Duration
	HTTPClient      *http.Client // optional
	Logger          *zap.Logger
}

// Client issues search and index-lookup requests.
type Client struct {
	adHocPath   string
	lookupPath  string
	credentials string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a repository client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.AdHocQueryPath == "" || cfg.IndexLookupPath == "" {
		return nil, fmt.Errorf("repository query paths are required")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		adHocPath:   strings.TrimRight(cfg.AdHocQueryPath, "/"),
		lookupPath:  strings.TrimRight(cfg.IndexLookupPath, "/"),
		credentials: cfg.Credentials,
		httpClient:  hc,
		logger:      logger.Named("xtender"),
	}, nil
}

// Search runs a compiled ad-hoc query against a category. A nil request
// lists every document in the category through the index-lookup endpoint.
func (c *Client) Search(ctx context.Context, categoryID int, req *query.Request) (result.Result, error) {
	if req == nil {
		return c.post(ctx, opIndexLookup, c.lookupPath, categoryID, []query.Index{})
	}
	return c.post(ctx, opAdHocQuery, c.adHocPath, categoryID, req)
}

// LookupIndexes returns the category's documents whose index values equal
// every given pair.
func (c *Client) LookupIndexes(ctx context.Context, categoryID int, indexes []query.Index) (result.Result, error) {
	if indexes == nil {
		indexes = []query.Index{}
	}
	return c.post(ctx, opIndexLookup, c.lookupPath, categoryID, indexes)
}

func (c *Client) post(ctx context.Context, op, base string, categoryID int, payload any) (res result.Result, err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstream(metrics.TargetRepository, op, start, err) }()

	body, err := json.Marshal(payload)
	if err != nil {
		return result.Result{}, fmt.Errorf("encode %s request: %w", op, err)
	}

	endpoint := base + "/" + strconv.Itoa(categoryID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return result.Result{}, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Basic "+c.credentials)
	req.Header.Set("Accept", MediaType)
	req.Header.Set("Content-Type", MediaType+"; charset=utf-8")
	req.Header.Set("User-Agent", version.UserAgent())

	c.logger.Debug("repository request",
		zap.String("op", op),
		zap.Int("category_id", categoryID),
		zap.String("url", endpoint))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return result.Result{}, fmt.Errorf("%s category %d: %v: %w", op, categoryID, err, domain.ErrRepositoryUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return result.Result{}, fmt.Errorf("%s category %d: read response: %v: %w", op, categoryID, err, domain.ErrRepositoryUnavailable)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("repository returned error",
			zap.String("op", op),
			zap.Int("category_id", categoryID),
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(raw)))
		return result.Result{}, fmt.Errorf("%s category %d: status %d: %w",
			op, categoryID, resp.StatusCode, domain.ErrRepositoryUnavailable)
	}

	if err := json.Unmarshal(raw, &res); err != nil {
		return result.Result{}, fmt.Errorf("%s category %d: parse response: %v: %w", op, categoryID, err, domain.ErrRepositoryUnavailable)
	}
	return res, nil
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody]) + "..."
	}
	return string(b)
}
