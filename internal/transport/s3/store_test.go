package s3

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/kailas-cloud/archivist/internal/domain"
)

func newTestStore(t *testing.T, endpoint string) *Store {
	t.Helper()
	s, err := NewStore(Config{
		Bucket:          "archive",
		Region:          "us-east-1",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		Endpoint:        endpoint,
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestPresignGet(t *testing.T) {
	s := newTestStore(t, "http://storage.local:9000")

	raw, err := s.PresignGet(context.Background(), "4-1021.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("invalid url %q: %v", raw, err)
	}
	if u.Host != "storage.local:9000" {
		t.Errorf("host = %q", u.Host)
	}
	if u.Path != "/archive/4-1021.pdf" {
		t.Errorf("path = %q, want path-style /archive/4-1021.pdf", u.Path)
	}
	q := u.Query()
	if q.Get("X-Amz-Expires") != "120" {
		t.Errorf("X-Amz-Expires = %q, want 120", q.Get("X-Amz-Expires"))
	}
	if q.Get("X-Amz-Signature") == "" {
		t.Error("expected a signature")
	}
}

func TestPresignGet_CustomTTL(t *testing.T) {
	s, err := NewStore(Config{Bucket: "archive", Region: "us-east-1", URLTTL: 30 * time.Second,
		AccessKeyID: "a", SecretAccessKey: "b", Endpoint: "http://storage.local"})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	raw, err := s.PresignGet(context.Background(), "k.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, _ := url.Parse(raw)
	if u.Query().Get("X-Amz-Expires") != "30" {
		t.Errorf("X-Amz-Expires = %q, want 30", u.Query().Get("X-Amz-Expires"))
	}
}

func TestPresignThenFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/archive/4-7.pdf" || r.URL.Query().Get("X-Amz-Signature") == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte("%PDF-1.4 body"))
	}))
	defer srv.Close()

	s := newTestStore(t, srv.URL)
	ctx := context.Background()

	u, err := s.PresignGet(ctx, "4-7.pdf")
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	body, err := s.Fetch(ctx, u)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	defer body.Close()

	b, _ := io.ReadAll(body)
	if string(b) != "%PDF-1.4 body" {
		t.Errorf("body = %q", b)
	}
}

func TestFetch_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := newTestStore(t, srv.URL)

	tests := []struct {
		name string
		url  string
	}{
		{"empty url", ""},
		{"missing object", srv.URL + "/archive/4-9.pdf"},
		{"bad url", "://nope"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Fetch(context.Background(), tc.url)
			if !errors.Is(err, domain.ErrDocumentUnavailable) {
				t.Fatalf("expected ErrDocumentUnavailable, got %v", err)
			}
		})
	}
}

func TestNewStore_Validation(t *testing.T) {
	if _, err := NewStore(Config{Region: "us-east-1"}); err == nil {
		t.Error("expected error for missing bucket")
	}
	if _, err := NewStore(Config{Bucket: "b"}); err == nil {
		t.Error("expected error for missing region")
	}
}
