package resolver

import (
	"context"
	"testing"

	"github.com/jargo-build/jargo/internal/cache"
	"github.com/jargo-build/jargo/internal/coordinate"
	"github.com/jargo-build/jargo/internal/manifest"
)

// fakeFetcher serves fixed POM bytes keyed by "group:artifact:version:kind"
// (no .module; every jar is synthetic bytes derived from its coordinate),
// letting tests exercise traversal and mediation without the network.
type fakeFetcher struct {
	poms map[string]string
}

func (f *fakeFetcher) Fetch(ctx context.Context, coord coordinate.Coordinate, kind cache.Kind, wantSHA256 string) ([]byte, error) {
	key := coord.GAV() + ":" + string(kind)
	if kind == cache.KindJAR {
		return []byte("jar-bytes-" + coord.GAV()), nil
	}
	if kind == cache.KindModule {
		return nil, errNotFound
	}
	if data, ok := f.poms[key]; ok {
		return []byte(data), nil
	}
	return nil, errNotFound
}

// metadataFetcher wraps fakeFetcher with FetchMetadata, satisfying the
// resolver's optional MetadataFetcher interface for version-range tests.
type metadataFetcher struct {
	*fakeFetcher
	metadata map[string]string // "group:artifact" -> maven-metadata.xml body
}

func (f *metadataFetcher) FetchMetadata(ctx context.Context, module coordinate.Module) ([]byte, error) {
	if data, ok := f.metadata[module.GA()]; ok {
		return []byte(data), nil
	}
	return nil, errNotFound
}

func metadataXML(versions ...string) string {
	out := "<metadata><versioning><versions>"
	for _, v := range versions {
		out += "<version>" + v + "</version>"
	}
	out += "</versions></versioning></metadata>"
	return out
}

type notFoundErr struct{}

func (notFoundErr) Error() string { return "not found" }

var errNotFound = notFoundErr{}

func pomXML(group, artifact, version string, deps ...string) string {
	out := `<project><groupId>` + group + `</groupId><artifactId>` + artifact + `</artifactId><version>` + version + `</version><dependencies>`
	for i := 0; i+3 <= len(deps); i += 3 {
		out += `<dependency><groupId>` + deps[i] + `</groupId><artifactId>` + deps[i+1] + `</artifactId><version>` + deps[i+2] + `</version></dependency>`
	}
	out += `</dependencies></project>`
	return out
}

func TestResolveSingleDependencyNoTransitives(t *testing.T) {
	f := &fakeFetcher{poms: map[string]string{
		"org.apache.commons:commons-lang3:3.14.0:pom": pomXML("org.apache.commons", "commons-lang3", "3.14.0"),
	}}
	m := &manifest.Manifest{
		Package: manifest.Package{Name: "demo"},
		Dependencies: []manifest.Dependency{
			{Group: "org.apache.commons", Artifact: "commons-lang3", Version: "3.14.0", Scope: manifest.ScopeCompile},
		},
	}
	res, err := New(f).Resolve(context.Background(), m, nil, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(res.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(res.Nodes))
	}
	node := res.Nodes[coordinate.Module{Group: "org.apache.commons", Artifact: "commons-lang3"}]
	if node == nil || node.Version != "3.14.0" || node.Scope != ScopeCompile {
		t.Fatalf("unexpected node: %+v", node)
	}
}

func TestResolveDiamondConflictPicksHighest(t *testing.T) {
	f := &fakeFetcher{poms: map[string]string{
		"g:a:1.0:pom": pomXML("g", "a", "1.0", "g", "c", "1.0"),
		"g:b:1.0:pom": pomXML("g", "b", "1.0", "g", "c", "2.0"),
		"g:c:1.0:pom": pomXML("g", "c", "1.0"),
		"g:c:2.0:pom": pomXML("g", "c", "2.0"),
	}}
	m := &manifest.Manifest{
		Package: manifest.Package{Name: "root"},
		Dependencies: []manifest.Dependency{
			{Group: "g", Artifact: "a", Version: "1.0", Scope: manifest.ScopeCompile},
			{Group: "g", Artifact: "b", Version: "1.0", Scope: manifest.ScopeCompile},
		},
	}
	res, err := New(f).Resolve(context.Background(), m, nil, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	c := res.Nodes[coordinate.Module{Group: "g", Artifact: "c"}]
	if c == nil || c.Version != "2.0" {
		t.Fatalf("expected c resolved to 2.0, got %+v", c)
	}
}

func TestResolveRuntimeScopeExcludedFromCompile(t *testing.T) {
	f := &fakeFetcher{poms: map[string]string{
		"org.postgresql:postgresql:42.7.1:pom": pomXML("org.postgresql", "postgresql", "42.7.1"),
	}}
	m := &manifest.Manifest{
		Package: manifest.Package{Name: "demo"},
		Dependencies: []manifest.Dependency{
			{Group: "org.postgresql", Artifact: "postgresql", Version: "42.7.1", Scope: manifest.ScopeRuntime},
		},
	}
	res, err := New(f).Resolve(context.Background(), m, nil, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	node := res.Nodes[coordinate.Module{Group: "org.postgresql", Artifact: "postgresql"}]
	if node.Scope != ScopeRuntime {
		t.Fatalf("expected runtime scope, got %s", node.Scope)
	}
}

func TestResolveCycleTerminates(t *testing.T) {
	f := &fakeFetcher{poms: map[string]string{
		"g:a:1.0:pom": pomXML("g", "a", "1.0", "g", "b", "1.0"),
		"g:b:1.0:pom": pomXML("g", "b", "1.0", "g", "a", "1.0"),
	}}
	m := &manifest.Manifest{
		Package: manifest.Package{Name: "root"},
		Dependencies: []manifest.Dependency{
			{Group: "g", Artifact: "a", Version: "1.0", Scope: manifest.ScopeCompile},
		},
	}
	res, err := New(f).Resolve(context.Background(), m, nil, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(res.Nodes) != 2 {
		t.Fatalf("expected both a and b pinned once, got %d nodes", len(res.Nodes))
	}
}

func TestResolveShortCircuitsToLock(t *testing.T) {
	// The pinned POM is still read (to recompute scope and edges without a
	// full re-resolution); no *other* coordinate or version is ever fetched.
	f := &fakeFetcher{poms: map[string]string{
		"g:a:1.0:pom": pomXML("g", "a", "1.0"),
	}}
	lock := &manifest.Lock{Dependencies: []manifest.LockEntry{
		{Group: "g", Artifact: "a", Version: "1.0", SHA256: "abc"},
	}}
	m := &manifest.Manifest{
		Package: manifest.Package{Name: "root"},
		Dependencies: []manifest.Dependency{
			{Group: "g", Artifact: "a", Version: "1.0", Scope: manifest.ScopeCompile},
		},
	}
	res, err := New(f).Resolve(context.Background(), m, lock, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(res.Nodes) != 1 || res.Nodes[coordinate.Module{Group: "g", Artifact: "a"}].SHA256 != "abc" {
		t.Fatalf("expected short-circuit to lock contents, got %+v", res.Nodes)
	}
}

// TestResolveShortCircuitPreservesEffectiveScope covers spec §8 scenario 4
// ("compile classpath does not contain postgresql") on the normal, repeated
// `jargo build` path: a runtime-scoped dependency must not be silently
// promoted to compile scope just because resolution short-circuited to the
// lock.
func TestResolveShortCircuitPreservesEffectiveScope(t *testing.T) {
	f := &fakeFetcher{poms: map[string]string{
		"org.postgresql:postgresql:42.7.1:pom": pomXML("org.postgresql", "postgresql", "42.7.1"),
	}}
	lock := &manifest.Lock{Dependencies: []manifest.LockEntry{
		{Group: "org.postgresql", Artifact: "postgresql", Version: "42.7.1", SHA256: "abc"},
	}}
	m := &manifest.Manifest{
		Package: manifest.Package{Name: "root"},
		Dependencies: []manifest.Dependency{
			{Group: "org.postgresql", Artifact: "postgresql", Version: "42.7.1", Scope: manifest.ScopeRuntime},
		},
	}
	res, err := New(f).Resolve(context.Background(), m, lock, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	node := res.Nodes[coordinate.Module{Group: "org.postgresql", Artifact: "postgresql"}]
	if node == nil || node.Scope != ScopeRuntime {
		t.Fatalf("expected runtime scope preserved through short-circuit, got %+v", node)
	}
}

// TestResolveShortCircuitPreservesDevDependencyTestScope covers the same
// promotion bug for dev-dependencies (always test scope, never compile).
func TestResolveShortCircuitPreservesDevDependencyTestScope(t *testing.T) {
	f := &fakeFetcher{poms: map[string]string{
		"org.assertj:assertj-core:3.25.1:pom": pomXML("org.assertj", "assertj-core", "3.25.1"),
	}}
	lock := &manifest.Lock{Dependencies: []manifest.LockEntry{
		{Group: "org.assertj", Artifact: "assertj-core", Version: "3.25.1", SHA256: "abc"},
	}}
	m := &manifest.Manifest{
		Package: manifest.Package{Name: "root"},
		DevDependencies: []manifest.Dependency{
			{Group: "org.assertj", Artifact: "assertj-core", Version: "3.25.1"},
		},
	}
	res, err := New(f).Resolve(context.Background(), m, lock, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	node := res.Nodes[coordinate.Module{Group: "org.assertj", Artifact: "assertj-core"}]
	if node == nil || node.Scope != ScopeTest {
		t.Fatalf("expected test scope preserved through short-circuit, got %+v", node)
	}
}

func TestResolveRecordsEdgesFromRootToDirectDependencies(t *testing.T) {
	f := &fakeFetcher{poms: map[string]string{
		"g:a:1.0:pom": pomXML("g", "a", "1.0", "g", "c", "1.0"),
		"g:b:1.0:pom": pomXML("g", "b", "1.0", "g", "c", "1.0"),
		"g:c:1.0:pom": pomXML("g", "c", "1.0"),
	}}
	m := &manifest.Manifest{
		Package: manifest.Package{Name: "root"},
		Dependencies: []manifest.Dependency{
			{Group: "g", Artifact: "a", Version: "1.0", Scope: manifest.ScopeCompile},
			{Group: "g", Artifact: "b", Version: "1.0", Scope: manifest.ScopeCompile},
		},
	}
	res, err := New(f).Resolve(context.Background(), m, nil, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	root := coordinate.Module{Artifact: "root"}
	var fromRoot []coordinate.Module
	for _, e := range res.Edges {
		if e.Parent == root {
			fromRoot = append(fromRoot, e.Child)
		}
	}
	if len(fromRoot) != 2 {
		t.Fatalf("expected 2 edges from the root project to its direct dependencies, got %v", fromRoot)
	}
}

func TestResolveVersionRangePicksHighestSatisfyingVersion(t *testing.T) {
	f := &metadataFetcher{
		fakeFetcher: &fakeFetcher{poms: map[string]string{
			"g:a:1.0:pom": pomXML("g", "a", "1.0", "g", "c", "[1.0,2.0]"),
			"g:c:1.5:pom": pomXML("g", "c", "1.5"),
		}},
		metadata: map[string]string{
			"g:c": metadataXML("1.0", "1.5", "2.5"),
		},
	}
	m := &manifest.Manifest{
		Package: manifest.Package{Name: "root"},
		Dependencies: []manifest.Dependency{
			{Group: "g", Artifact: "a", Version: "1.0", Scope: manifest.ScopeCompile},
		},
	}
	res, err := New(f).Resolve(context.Background(), m, nil, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	c := res.Nodes[coordinate.Module{Group: "g", Artifact: "c"}]
	if c == nil || c.Version != "1.5" {
		t.Fatalf("expected range [1.0,2.0] to resolve to the highest satisfying known version 1.5 (2.5 is out of range), got %+v", c)
	}
}

func TestResolveVersionRangeFailsWithoutMetadataFetcher(t *testing.T) {
	f := &fakeFetcher{poms: map[string]string{
		"g:a:1.0:pom": pomXML("g", "a", "1.0", "g", "c", "[1.0,2.0]"),
	}}
	m := &manifest.Manifest{
		Package: manifest.Package{Name: "root"},
		Dependencies: []manifest.Dependency{
			{Group: "g", Artifact: "a", Version: "1.0", Scope: manifest.ScopeCompile},
		},
	}
	_, err := New(f).Resolve(context.Background(), m, nil, false)
	if err == nil {
		t.Fatal("expected an error resolving a version range with a fetcher that can't list known versions")
	}
}

func TestResolveAppliesExclusions(t *testing.T) {
	pomWithExclusion := `<project><groupId>g</groupId><artifactId>a</artifactId><version>1.0</version><dependencies>` +
		`<dependency><groupId>g</groupId><artifactId>b</artifactId><version>1.0</version>` +
		`<exclusions><exclusion><groupId>g</groupId><artifactId>c</artifactId></exclusion></exclusions>` +
		`</dependency></dependencies></project>`
	f := &fakeFetcher{poms: map[string]string{
		"g:a:1.0:pom": pomWithExclusion,
		"g:b:1.0:pom": pomXML("g", "b", "1.0", "g", "c", "1.0"),
		"g:c:1.0:pom": pomXML("g", "c", "1.0"),
	}}
	m := &manifest.Manifest{
		Package: manifest.Package{Name: "root"},
		Dependencies: []manifest.Dependency{
			{Group: "g", Artifact: "a", Version: "1.0", Scope: manifest.ScopeCompile},
		},
	}
	res, err := New(f).Resolve(context.Background(), m, nil, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, ok := res.Nodes[coordinate.Module{Group: "g", Artifact: "c"}]; ok {
		t.Fatalf("expected g:c pruned by exclusion declared on g:b's edge, got %+v", res.Nodes)
	}
	if _, ok := res.Nodes[coordinate.Module{Group: "g", Artifact: "b"}]; !ok {
		t.Fatalf("expected g:b itself still resolved")
	}
}
