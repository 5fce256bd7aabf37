package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/jargo-build/jargo/internal/coordinate"
	"github.com/jargo-build/jargo/internal/jerr"
)

func TestFetchDownloadsAndVerifies(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("hello-jar-bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := New(dir)
	c.BaseURL = srv.URL

	coord := coordinate.Coordinate{Group: "org.example", Artifact: "widget", Version: "1.0"}
	data, err := c.Fetch(context.Background(), coord, KindJAR, "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "hello-jar-bytes" {
		t.Fatalf("unexpected data: %q", data)
	}

	// Second fetch through the same Cache is served from the first fetch's
	// coalesced in-process result, not the server.
	if _, err := c.Fetch(context.Background(), coord, KindJAR, ""); err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected 1 upstream hit (second serves from cache), got %d", hits)
	}

	if _, err := os.Stat(c.sidecarPath(c.path(coord, KindJAR))); err != nil {
		t.Fatalf("expected sha256 sidecar written: %v", err)
	}
}

func TestFetchMetadataCachesAcrossCalls(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`<metadata><versioning><versions><version>1.0</version></versions></versioning></metadata>`))
	}))
	defer srv.Close()

	c := New(t.TempDir())
	c.BaseURL = srv.URL
	module := coordinate.Module{Group: "org.example", Artifact: "widget"}

	data, err := c.FetchMetadata(context.Background(), module)
	if err != nil {
		t.Fatalf("FetchMetadata: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty metadata body")
	}
	if _, err := c.FetchMetadata(context.Background(), module); err != nil {
		t.Fatalf("second FetchMetadata: %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected 1 upstream hit (second serves from cache), got %d", hits)
	}
}

func TestFetchMetadataMissingArtifactOn404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(t.TempDir())
	c.BaseURL = srv.URL
	module := coordinate.Module{Group: "org.example", Artifact: "missing"}

	_, err := c.FetchMetadata(context.Background(), module)
	if _, ok := err.(*jerr.MissingArtifactError); !ok {
		t.Fatalf("expected MissingArtifactError, got %T (%v)", err, err)
	}
}

func TestFetchMissingArtifactOn404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(t.TempDir())
	c.BaseURL = srv.URL
	coord := coordinate.Coordinate{Group: "org.example", Artifact: "missing", Version: "1.0"}

	_, err := c.Fetch(context.Background(), coord, KindPOM, "")
	if _, ok := err.(*jerr.MissingArtifactError); !ok {
		t.Fatalf("expected MissingArtifactError, got %T (%v)", err, err)
	}
}

func TestFetchChecksumMismatchAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("actual-bytes"))
	}))
	defer srv.Close()

	c := New(t.TempDir())
	c.BaseURL = srv.URL
	coord := coordinate.Coordinate{Group: "org.example", Artifact: "widget", Version: "1.0"}

	_, err := c.Fetch(context.Background(), coord, KindJAR, "0000000000000000000000000000000000000000000000000000000000000000")
	if _, ok := err.(*jerr.ChecksumError); !ok {
		t.Fatalf("expected ChecksumError, got %T (%v)", err, err)
	}
	if _, statErr := os.Stat(c.path(coord, KindJAR)); statErr == nil {
		t.Fatal("expected no cache file written on checksum mismatch")
	}
}
