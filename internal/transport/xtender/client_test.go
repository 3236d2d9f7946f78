package xtender

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kailas-cloud/archivist/internal/domain"
	"github.com/kailas-cloud/archivist/internal/domain/query"
)

type captured struct {
	method string
	path   string
	auth   string
	accept string
	ctype  string
	agent  string
	body   string
}

func newServer(t *testing.T, status int, response string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got.method = r.Method
		got.path = r.URL.Path
		got.auth = r.Header.Get("Authorization")
		got.accept = r.Header.Get("Accept")
		got.ctype = r.Header.Get("Content-Type")
		got.agent = r.Header.Get("User-Agent")
		got.body = string(b)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func newTestClient(t *testing.T, base string) *Client {
	t.Helper()
	c, err := NewClient(Config{
		AdHocQueryPath:  base + "/AppXtender/Rest/api/adhocqueryresults/",
		IndexLookupPath: base + "/AppXtender/Rest/api/selectindexlookup",
		Credentials:     "dXNlcjpwYXNz",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

const twoEntries = `{"Columns":["BOX #","NOT PUBLIC"],"Entries":[
	{"Id":1,"PageCount":0,"IndexValues":["1","false"]},
	{"Id":2,"PageCount":0,"IndexValues":["2","true"]}]}`

func TestSearch_AdHoc(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, twoEntries)
	c := newTestClient(t, srv.URL)

	req := query.NewRequest()
	req.AddIndex("BOX #", "Expression: > 10")
	req.SetFullText("harbor")

	res, err := c.Search(context.Background(), 4, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.method != http.MethodPost {
		t.Errorf("method = %s, want POST", got.method)
	}
	if got.path != "/AppXtender/Rest/api/adhocqueryresults/4" {
		t.Errorf("path = %s", got.path)
	}
	if got.auth != "Basic dXNlcjpwYXNz" {
		t.Errorf("auth = %q", got.auth)
	}
	if got.accept != MediaType {
		t.Errorf("accept = %q", got.accept)
	}
	if got.ctype != MediaType+"; charset=utf-8" {
		t.Errorf("content-type = %q", got.ctype)
	}
	if got.agent != "archivist/dev" {
		t.Errorf("user-agent = %q", got.agent)
	}

	var sent query.Request
	if err := json.Unmarshal([]byte(got.body), &sent); err != nil {
		t.Fatalf("body is not a query request: %v (%s)", err, got.body)
	}
	if len(sent.Indexes) != 1 || sent.Indexes[0].Value != "Expression: > 10" {
		t.Errorf("indexes = %+v", sent.Indexes)
	}
	if sent.FullText == nil || sent.FullText.Value != "harbor" {
		t.Errorf("full text = %+v", sent.FullText)
	}

	if len(res.Entries) != 2 || res.Columns[1] != "NOT PUBLIC" {
		t.Errorf("result = %+v", res)
	}
}

func TestSearch_ListAll(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, twoEntries)
	c := newTestClient(t, srv.URL)

	if _, err := c.Search(context.Background(), 6, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.path != "/AppXtender/Rest/api/selectindexlookup/6" {
		t.Errorf("path = %s", got.path)
	}
	if got.body != "[]" {
		t.Errorf("body = %q, want []", got.body)
	}
}

func TestLookupIndexes(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, twoEntries)
	c := newTestClient(t, srv.URL)

	_, err := c.LookupIndexes(context.Background(), 4, []query.Index{{Name: "NOT PUBLIC", Value: "FALSE"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.path != "/AppXtender/Rest/api/selectindexlookup/4" {
		t.Errorf("path = %s", got.path)
	}
	if got.body != `[{"Name":"NOT PUBLIC","Value":"FALSE"}]` {
		t.Errorf("body = %s", got.body)
	}
}

func TestLookupIndexes_NilSendsEmptyArray(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{"Columns":[],"Entries":[]}`)
	c := newTestClient(t, srv.URL)

	if _, err := c.LookupIndexes(context.Background(), 4, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.body != "[]" {
		t.Errorf("body = %q, want []", got.body)
	}
}

func TestSearch_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response string
	}{
		{"server error", http.StatusInternalServerError, "boom"},
		{"unauthorized", http.StatusUnauthorized, ""},
		{"malformed json", http.StatusOK, "{not json"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newServer(t, tc.status, tc.response)
			c := newTestClient(t, srv.URL)

			_, err := c.Search(context.Background(), 4, query.NewRequest())
			if !errors.Is(err, domain.ErrRepositoryUnavailable) {
				t.Fatalf("expected ErrRepositoryUnavailable, got %v", err)
			}
		})
	}
}

func TestSearch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := newTestClient(t, base)
	_, err := c.Search(context.Background(), 4, nil)
	if !errors.Is(err, domain.ErrRepositoryUnavailable) {
		t.Fatalf("expected ErrRepositoryUnavailable, got %v", err)
	}
}

func TestNewClient_RequiresPaths(t *testing.T) {
	if _, err := NewClient(Config{AdHocQueryPath: "http://x"}); err == nil {
		t.Fatal("expected error for missing index lookup path")
	}
}
