// Package cache implements jargo's content-addressed local mirror of Maven
// Central at ~/.jargo/cache, with per-coordinate advisory locking across
// processes and retrying network fetches.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gofrs/flock"

	"github.com/jargo-build/jargo/internal/coordinate"
	"github.com/jargo-build/jargo/internal/jerr"
)

const defaultBaseURL = "https://repo1.maven.org/maven2"

// Cache is a content-addressed local mirror rooted at Dir, mirroring Maven
// Central's own directory layout so cached files can be inspected directly.
type Cache struct {
	Dir     string
	BaseURL string
	Client  *http.Client

	inflight sync.Map // coordinate key -> *coalescedFetch, coalesces concurrent in-process fetches
}

// DefaultDir returns ~/.jargo/cache, creating nothing.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".jargo", "cache"), nil
}

// New builds a Cache rooted at dir, using Maven Central as its upstream.
func New(dir string) *Cache {
	return &Cache{
		Dir:     dir,
		BaseURL: defaultBaseURL,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Kind selects which artifact classifier/extension to fetch for a
// coordinate.
type Kind string

const (
	KindModule Kind = "module"
	KindPOM    Kind = "pom"
	KindJAR    Kind = "jar"
)

func (c *Cache) artifactDir(coord coordinate.Coordinate) string {
	return filepath.Join(c.Dir, coordinate.GroupPath(coord.Group), coord.Artifact, coord.Version)
}

func (c *Cache) filename(coord coordinate.Coordinate, kind Kind) string {
	return fmt.Sprintf("%s-%s.%s", coord.Artifact, coord.Version, kind)
}

func (c *Cache) path(coord coordinate.Coordinate, kind Kind) string {
	return filepath.Join(c.artifactDir(coord), c.filename(coord, kind))
}

func (c *Cache) sidecarPath(p string) string { return p + ".sha256" }

// Path returns the on-disk location Fetch writes coord's artifact of the
// given kind to, independent of whether it has been fetched yet. Used by
// callers (e.g. the formatter) that need a JAR's path after ensuring it is
// cached via Fetch.
func (c *Cache) Path(coord coordinate.Coordinate, kind Kind) string {
	return c.path(coord, kind)
}

func (c *Cache) upstreamURL(coord coordinate.Coordinate, kind Kind) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", c.BaseURL, coordinate.GroupPath(coord.Group), coord.Artifact, coord.Version, c.filename(coord, kind))
}

// Fetch returns the bytes for coord's artifact of the given kind, serving
// from the on-disk cache when the sidecar checksum matches, otherwise
// downloading from Maven Central (spec §4.3). wantSHA256, if non-empty, is
// the lock file's recorded checksum: a post-download mismatch against it
// aborts with ChecksumError without corrupting the cache entry.
func (c *Cache) Fetch(ctx context.Context, coord coordinate.Coordinate, kind Kind, wantSHA256 string) ([]byte, error) {
	key := fmt.Sprintf("%s:%s", coord.GAV(), kind)
	onceVal, _ := c.inflight.LoadOrStore(key, &coalescedFetch{})
	cf := onceVal.(*coalescedFetch)
	return cf.do(func() ([]byte, error) {
		return c.fetchLocked(ctx, coord, kind, wantSHA256)
	})
}

// coalescedFetch ensures at most one in-flight download per coordinate
// within this process; concurrent callers share the first caller's result.
type coalescedFetch struct {
	mu   sync.Mutex
	done bool
	data []byte
	err  error
}

func (cf *coalescedFetch) do(fn func() ([]byte, error)) ([]byte, error) {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	if cf.done {
		return cf.data, cf.err
	}
	cf.data, cf.err = fn()
	cf.done = true
	return cf.data, cf.err
}

func (c *Cache) fetchLocked(ctx context.Context, coord coordinate.Coordinate, kind Kind, wantSHA256 string) ([]byte, error) {
	dir := c.artifactDir(coord)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &jerr.NetworkError{Coordinate: coord.GAV(), Err: err}
	}

	// Cross-process advisory lock: at-most-one downloader per coordinate
	// across concurrent jargo invocations (spec §5).
	lockPath := filepath.Join(dir, fmt.Sprintf(".%s.lock", kind))
	fl := flock.New(lockPath)
	if err := fl.Lock(); err != nil {
		return nil, &jerr.NetworkError{Coordinate: coord.GAV(), Err: err}
	}
	defer fl.Unlock()

	target := c.path(coord, kind)
	if data, ok := c.readVerified(target); ok {
		return data, nil
	}

	data, err := c.download(ctx, coord, kind)
	if err != nil {
		return nil, err
	}

	sum := sha256sum(data)
	if wantSHA256 != "" && sum != wantSHA256 {
		return nil, &jerr.ChecksumError{Coordinate: coord.GAV(), Want: wantSHA256, Got: sum}
	}

	if err := writeAtomic(target, data); err != nil {
		return nil, &jerr.NetworkError{Coordinate: coord.GAV(), Err: err}
	}
	if err := os.WriteFile(c.sidecarPath(target), []byte(sum), 0644); err != nil {
		return nil, &jerr.NetworkError{Coordinate: coord.GAV(), Err: err}
	}
	return data, nil
}

// readVerified serves a cache hit only when the sidecar checksum matches
// the file content on disk (spec §4.3 step 1).
func (c *Cache) readVerified(path string) ([]byte, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	wantRaw, err := os.ReadFile(c.sidecarPath(path))
	if err != nil {
		return nil, false
	}
	if string(wantRaw) != sha256sum(data) {
		return nil, false
	}
	return data, true
}

// download fetches the artifact from Maven Central, retrying NetworkError
// conditions with exponential backoff (spec §4.1 Failure semantics).
func (c *Cache) download(ctx context.Context, coord coordinate.Coordinate, kind Kind) ([]byte, error) {
	body, notFound, err := c.downloadURL(ctx, c.upstreamURL(coord, kind))
	if err != nil {
		if notFound {
			return nil, &jerr.MissingArtifactError{Coordinate: coord.GAV()}
		}
		return nil, &jerr.NetworkError{Coordinate: coord.GAV(), Err: err}
	}
	return body, nil
}

// downloadURL performs the GET-with-retry shared by download and
// FetchMetadata, returning whether a terminal 404 was the failure cause so
// callers can map it to their own error type.
func (c *Cache) downloadURL(ctx context.Context, url string) (body []byte, notFound bool, err error) {
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.Client.Do(req)
		if err != nil {
			return err // transient: retry
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			notFound = true
			return backoff.Permanent(fmt.Errorf("404 from %s", url))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
		}
		b, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return readErr
		}
		body = b
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4)
	if retryErr := backoff.Retry(op, backoff.WithContext(policy, ctx)); retryErr != nil {
		return nil, notFound, retryErr
	}
	return body, false, nil
}

// FetchMetadata retrieves group/artifact's maven-metadata.xml, the
// group/artifact-level index of its known published versions, used to
// resolve a Maven version range to a concrete version (spec §4.1 Phase 3).
// It has no per-version sidecar: a cached copy on disk is served as-is, with
// no re-verification, since metadata.xml carries no checksum of its own.
func (c *Cache) FetchMetadata(ctx context.Context, module coordinate.Module) ([]byte, error) {
	dir := filepath.Join(c.Dir, coordinate.GroupPath(module.Group), module.Artifact)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &jerr.NetworkError{Coordinate: module.GA(), Err: err}
	}

	lockPath := filepath.Join(dir, ".maven-metadata.lock")
	fl := flock.New(lockPath)
	if err := fl.Lock(); err != nil {
		return nil, &jerr.NetworkError{Coordinate: module.GA(), Err: err}
	}
	defer fl.Unlock()

	target := filepath.Join(dir, "maven-metadata.xml")
	if data, err := os.ReadFile(target); err == nil {
		return data, nil
	}

	url := fmt.Sprintf("%s/%s/%s/maven-metadata.xml", c.BaseURL, coordinate.GroupPath(module.Group), module.Artifact)
	data, notFound, err := c.downloadURL(ctx, url)
	if err != nil {
		if notFound {
			return nil, &jerr.MissingArtifactError{Coordinate: module.GA()}
		}
		return nil, &jerr.NetworkError{Coordinate: module.GA(), Err: err}
	}
	if err := writeAtomic(target, data); err != nil {
		return nil, &jerr.NetworkError{Coordinate: module.GA(), Err: err}
	}
	return data, nil
}

func sha256sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// writeAtomic writes data to a temp file in dir, fsyncs it, then renames it
// into place (spec §4.3 step 3) so a crash mid-write never leaves a
// corrupt cache entry visible to concurrent readers.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
