package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestETagSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		w.Header().Set("ETag", `"v1"`)
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	etag, err := c.ETag(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ETag: %v", err)
	}
	if etag != `"v1"` {
		t.Errorf("etag = %q", etag)
	}
}

func TestETagMissingHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	if _, err := c.ETag(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for missing ETag header")
	}
}

func TestETagBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	if _, err := c.ETag(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestDownloadSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("ETag", `"v2"`)
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	etag, body, err := c.Download(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if etag != `"v2"` || string(body) != "payload" {
		t.Errorf("got (%q, %q)", etag, body)
	}
}

func TestDownloadMissingETag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	if _, _, err := c.Download(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for missing ETag header")
	}
}
