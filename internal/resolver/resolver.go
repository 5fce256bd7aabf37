// Package resolver implements jargo's transitive dependency resolution:
// breadth-first graph traversal from the manifest's direct dependencies,
// Maven scope mediation, highest-version-wins conflict resolution with
// dirty re-propagation, and lock file short-circuiting.
package resolver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/jargo-build/jargo/internal/cache"
	"github.com/jargo-build/jargo/internal/coordinate"
	"github.com/jargo-build/jargo/internal/jerr"
	"github.com/jargo-build/jargo/internal/manifest"
	"github.com/jargo-build/jargo/internal/mvnversion"
	"github.com/jargo-build/jargo/internal/pom"
)

// EffectiveScope is a resolved node's scope after mediation.
type EffectiveScope string

const (
	ScopeCompile EffectiveScope = "compile"
	ScopeRuntime EffectiveScope = "runtime"
	ScopeTest    EffectiveScope = "test"
)

// mediationTable implements spec §4.1 Phase 1 step 3. A missing entry means
// "drop" (provided, or any other combination not named by the spec).
var mediationTable = map[[2]string]EffectiveScope{
	{"compile", "compile"}: ScopeCompile,
	{"compile", "runtime"}: ScopeRuntime,
	{"runtime", "compile"}: ScopeRuntime,
	{"runtime", "runtime"}: ScopeRuntime,
	{"test", "compile"}:    ScopeTest,
	{"test", "runtime"}:    ScopeTest,
}

// Node is one resolved (group, artifact, pinned version) with its effective
// scope, checksum, and the chain of modules used to reach it for error
// reporting (spec §3 "Resolved node").
type Node struct {
	Group    string
	Artifact string
	Version  string
	SHA256   string
	Scope    EffectiveScope
	Origin   []string
}

func (n Node) Coordinate() coordinate.Coordinate {
	return coordinate.Coordinate{Group: n.Group, Artifact: n.Artifact, Version: n.Version}
}

func (n Node) Module() coordinate.Module {
	return coordinate.Module{Group: n.Group, Artifact: n.Artifact}
}

// Result is the resolver's output: the pinned resolution map plus an
// ordered dependency-edge record sufficient to render `tree`.
type Result struct {
	Nodes map[coordinate.Module]*Node
	Edges []Edge
}

// Edge records one parent->child dependency observed during traversal,
// retained for `jargo tree` rendering (spec §8 scenario 3).
type Edge struct {
	Parent coordinate.Module
	Child  coordinate.Module
	Scope  EffectiveScope
}

// Sorted returns nodes ordered lexicographically on (group, artifact), the
// canonical lock file order (spec §6).
func (r *Result) Sorted() []*Node {
	out := make([]*Node, 0, len(r.Nodes))
	for _, n := range r.Nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Artifact < out[j].Artifact
	})
	return out
}

// ToLock builds the persisted Jargo.lock representation of this result.
func (r *Result) ToLock() *manifest.Lock {
	l := &manifest.Lock{}
	for _, n := range r.Sorted() {
		l.Dependencies = append(l.Dependencies, manifest.LockEntry{
			Group: n.Group, Artifact: n.Artifact, Version: n.Version, SHA256: n.SHA256,
		})
	}
	return l
}

// Fetcher abstracts metadata and artifact retrieval so the resolver can be
// tested without the network; *cache.Cache implements it against Maven
// Central.
type Fetcher interface {
	Fetch(ctx context.Context, coord coordinate.Coordinate, kind cache.Kind, wantSHA256 string) ([]byte, error)
}

// MetadataFetcher is implemented by fetchers that can also list a
// group/artifact's known published versions (maven-metadata.xml), needed to
// resolve a version range (spec §4.1 Phase 3) to a concrete version.
// *cache.Cache implements this against Maven Central. It is deliberately
// optional (type-asserted, not part of Fetcher) so fakes used in tests that
// never exercise a range don't need to implement it.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, module coordinate.Module) ([]byte, error)
}

// Resolver runs one resolution over a manifest, optionally short-circuiting
// to an existing lock file (spec §4.1 "Lock file interaction").
type Resolver struct {
	Fetch       Fetcher
	Concurrency int64 // bounded worker pool size, default 8 (spec §5)
}

// New builds a Resolver backed by fetch, with the spec's default
// concurrency bound.
func New(fetch Fetcher) *Resolver {
	return &Resolver{Fetch: fetch, Concurrency: 8}
}

// ImplicitTestRoots are the JUnit launcher and runtime coordinates every
// test classpath carries regardless of manifest declarations. They are
// not part of the resolution graph (no transitive closure needed: the
// console-standalone artifact is a shaded uber-jar) — orchestrate.Resolve
// fetches them directly into the cache as flat JARs, and classpath.Build
// appends them to the test classpaths unconditionally.
var ImplicitTestRoots = []coordinate.Coordinate{
	{Group: "org.junit.jupiter", Artifact: "junit-jupiter", Version: "5.10.2"},
	{Group: "org.junit.platform", Artifact: "junit-platform-console-standalone", Version: "1.10.2"},
}

// frontierItem is one unit of traversal work: a module pinned at a
// specific version, reached via a specific edge scope and origin chain,
// carrying the exclusions inherited from every edge on the path that
// reached it (spec §4.1 Phase 3 "exclusions declared on parent edges").
type frontierItem struct {
	group, artifact, version string
	edgeScope                string // the scope of the edge that reached this module: compile/runtime/test
	origin                   []string
	exclusions               []pom.Exclusion
}

// rootModule is the pseudo-node `tree` and edge recording treat as the
// project itself, the parent of every direct dependency's edge.
func rootModule(m *manifest.Manifest) coordinate.Module {
	return coordinate.Module{Artifact: m.Package.Name}
}

// Resolve produces a pinned Result for m's dependency declarations. If
// lock is non-nil and m's direct declarations are a subset of it (spec
// §4.1), Resolve short-circuits to a traversal pinned to the lock's
// versions: no version conflicts to discover and no checksums to
// re-fetch, but scope is always recomputed by walking the same mediation
// logic as a full resolution, since Jargo.lock deliberately has no scope
// field (spec §3, §6) and cannot be trusted to carry it across runs.
// update forces full re-resolution regardless of lock.
func (r *Resolver) Resolve(ctx context.Context, m *manifest.Manifest, lock *manifest.Lock, update bool) (*Result, error) {
	allDirect := append(append([]manifest.Dependency{}, m.Dependencies...), m.DevDependencies...)
	if !update && lock != nil && lock.Subset(allDirect) {
		return r.traverse(ctx, m, lock.ByModule())
	}
	return r.traverse(ctx, m, nil)
}

// traverse runs the BFS described in spec §4.1 Phase 1, with
// bounded-parallelism metadata fetches (spec §5) and a single owner
// goroutine serializing resolution-map mutation. When pin is non-nil, every
// module's version is taken from pin instead of discovered by mediation
// (the lock-short-circuit path): no version range resolution, no JAR
// checksum re-fetch (the lock's own SHA256 is reused), and any child not
// present in pin is treated as already pruned by the run that produced the
// lock.
func (r *Resolver) traverse(ctx context.Context, m *manifest.Manifest, pin map[coordinate.Module]manifest.LockEntry) (*Result, error) {
	res := &Result{Nodes: map[coordinate.Module]*Node{}}
	var edges []Edge
	root := rootModule(m)

	pinnedVersion := func(mod coordinate.Module, declared string) string {
		if pin == nil {
			return declared
		}
		if entry, ok := pin[mod]; ok {
			return entry.Version
		}
		return declared
	}

	queue := make([]frontierItem, 0, len(m.Dependencies)+len(m.DevDependencies))
	for _, d := range m.Dependencies {
		scope := string(d.Scope)
		if scope == "" {
			scope = "compile"
		}
		mod := d.Module()
		version := pinnedVersion(mod, d.Version)
		queue = append(queue, frontierItem{group: d.Group, artifact: d.Artifact, version: version, edgeScope: scope, origin: []string{m.Package.Name}})
		edges = append(edges, Edge{Parent: root, Child: mod, Scope: mediate(scope)})
	}
	for _, d := range m.DevDependencies {
		mod := d.Module()
		version := pinnedVersion(mod, d.Version)
		queue = append(queue, frontierItem{group: d.Group, artifact: d.Artifact, version: version, edgeScope: "test", origin: []string{m.Package.Name}})
		edges = append(edges, Edge{Parent: root, Child: mod, Scope: ScopeTest})
	}

	var edgesMu sync.Mutex

	// Cycle guard (spec §4.1 step 5): a module already pinned at an equal
	// or higher version than a rediscovered candidate is never re-enqueued.
	for len(queue) > 0 {
		sort.Slice(queue, func(i, j int) bool {
			if queue[i].group != queue[j].group {
				return queue[i].group < queue[j].group
			}
			return queue[i].artifact < queue[j].artifact
		})

		group, gctx := errgroup.WithContext(ctx)
		sem := semaphore.NewWeighted(r.Concurrency)
		type fetched struct {
			item frontierItem
			deps []pom.Dependency
			sum  string
		}
		results := make([]fetched, len(queue))
		batch := queue
		queue = nil

		for i, item := range batch {
			i, item := i, item
			if err := sem.Acquire(gctx, 1); err != nil {
				return nil, err
			}
			group.Go(func() error {
				defer sem.Release(1)
				deps, sum, err := r.fetchOne(gctx, item, pin == nil)
				if err != nil {
					return err
				}
				results[i] = fetched{item: item, deps: deps, sum: sum}
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return nil, err
		}

		// Single owner: apply every fetch result to the resolution map
		// serially (spec §5 "Graph mutation ... is serialized").
		for _, f := range results {
			mod := coordinate.Module{Group: f.item.group, Artifact: f.item.artifact}
			existing, ok := res.Nodes[mod]
			if pin != nil {
				if ok {
					continue // pinned graph: first visit at the lock's version wins
				}
			} else if ok && mvnversion.Compare(mvnversion.Parse(existing.Version), mvnversion.Parse(f.item.version)) >= 0 {
				continue // present with equal or higher version: discard
			}

			sha := f.sum
			if pin != nil {
				if entry, ok := pin[mod]; ok {
					sha = entry.SHA256
				}
			}
			node := &Node{
				Group: f.item.group, Artifact: f.item.artifact, Version: f.item.version,
				SHA256: sha, Scope: mediate(f.item.edgeScope), Origin: f.item.origin,
			}
			res.Nodes[mod] = node

			for _, dep := range f.deps {
				if dep.Optional == "true" {
					continue
				}
				depScope := dep.Scope
				if depScope == "" {
					depScope = "compile"
				}
				if depScope == "test" || depScope == "provided" {
					continue
				}
				if excluded(f.item.exclusions, dep.GroupID, dep.ArtifactID) {
					continue // pruned by an exclusion declared on a parent edge
				}
				eff, ok := mediationTable[[2]string{f.item.edgeScope, depScope}]
				if !ok {
					continue
				}

				childMod := coordinate.Module{Group: dep.GroupID, Artifact: dep.ArtifactID}
				childVersion := dep.Version
				if pin != nil {
					entry, ok := pin[childMod]
					if !ok {
						continue // not present in the pinned graph: already pruned upstream
					}
					childVersion = entry.Version
				} else if mvnversion.IsRange(childVersion) {
					resolved, rerr := r.resolveRangeVersion(ctx, dep.GroupID, dep.ArtifactID, childVersion)
					if rerr != nil {
						return nil, rerr
					}
					childVersion = resolved
				}

				edgesMu.Lock()
				edges = append(edges, Edge{Parent: mod, Child: childMod, Scope: eff})
				edgesMu.Unlock()

				if child, ok := res.Nodes[childMod]; ok {
					if pin != nil || mvnversion.Compare(mvnversion.Parse(child.Version), mvnversion.Parse(childVersion)) >= 0 {
						continue
					}
				}
				childExclusions := append(append([]pom.Exclusion{}, f.item.exclusions...), dep.Exclusions.Exclusion...)
				queue = append(queue, frontierItem{
					group: dep.GroupID, artifact: dep.ArtifactID, version: childVersion,
					edgeScope: string(eff), origin: append(append([]string{}, f.item.origin...), mod.GA()),
					exclusions: childExclusions,
				})
			}
		}
	}

	res.Edges = edges
	return res, nil
}

// excluded reports whether (group, artifact) is pruned by any exclusion
// inherited from the edges traversed to reach the current module.
func excluded(exclusions []pom.Exclusion, group, artifact string) bool {
	for _, ex := range exclusions {
		if ex.Matches(group, artifact) {
			return true
		}
	}
	return false
}

// resolveRangeVersion resolves a Maven version range to the highest
// concrete version satisfying it (spec §4.1 Phase 3), by consulting the
// group/artifact's maven-metadata.xml via an optional MetadataFetcher. If
// the fetcher doesn't support metadata lookups, or no known version
// satisfies the range, resolution fails with a ResolutionError rather than
// guessing (spec: "if no concrete version is known, fail with an
// unresolved-version error").
func (r *Resolver) resolveRangeVersion(ctx context.Context, group, artifact, rangeExpr string) (string, error) {
	coordStr := group + ":" + artifact
	rng, err := mvnversion.ParseRange(rangeExpr)
	if err != nil {
		return "", &jerr.ResolutionError{Coordinate: coordStr, Msg: err.Error()}
	}
	mf, ok := r.Fetch.(MetadataFetcher)
	if !ok {
		return "", &jerr.ResolutionError{Coordinate: coordStr, Msg: fmt.Sprintf("version range %q requires a metadata-capable fetcher", rangeExpr)}
	}
	data, err := mf.FetchMetadata(ctx, coordinate.Module{Group: group, Artifact: artifact})
	if err != nil {
		return "", err
	}
	versions, err := pom.ParseMetadataVersions(data)
	if err != nil {
		return "", &jerr.ResolutionError{Coordinate: coordStr, Msg: err.Error()}
	}
	var best string
	for _, v := range versions {
		parsed := mvnversion.Parse(v)
		if !rng.Satisfies(parsed) {
			continue
		}
		if best == "" || mvnversion.Compare(parsed, mvnversion.Parse(best)) > 0 {
			best = v
		}
	}
	if best == "" {
		return "", &jerr.ResolutionError{Coordinate: coordStr, Msg: fmt.Sprintf("no concrete version satisfies range %q", rangeExpr)}
	}
	return best, nil
}

func mediate(edgeScope string) EffectiveScope {
	switch edgeScope {
	case "runtime":
		return ScopeRuntime
	case "test":
		return ScopeTest
	default:
		return ScopeCompile
	}
}

// fetchOne retrieves metadata for one frontier item and returns its
// declared transitive dependency list (traverse filters and mediates it)
// plus the artifact JAR's checksum (spec §4.1 Phase 1 steps 1-2). needSum is false on the
// lock-short-circuit path, where the checksum is already known from the
// lock and re-fetching (and re-verifying) the JAR would defeat the point
// of short-circuiting.
func (r *Resolver) fetchOne(ctx context.Context, item frontierItem, needSum bool) ([]pom.Dependency, string, error) {
	coord := coordinate.Coordinate{Group: item.group, Artifact: item.artifact, Version: item.version}

	if data, err := r.Fetch.Fetch(ctx, coord, cache.KindModule, ""); err == nil {
		gm, decErr := pom.DecodeGradleModule(data)
		if decErr == nil {
			deps := moduleDeps(gm)
			if !needSum {
				return deps, "", nil
			}
			sum, sumErr := r.jarChecksum(ctx, coord)
			if sumErr != nil {
				return nil, "", sumErr
			}
			return deps, sum, nil
		}
	}

	pomFetch := r.pomFetcher(ctx)
	pomData, err := r.Fetch.Fetch(ctx, coord, cache.KindPOM, "")
	if err != nil {
		return nil, "", err
	}
	p, err := pom.Load(pomData, item.group, item.artifact, item.version, pomFetch, item.origin)
	if err != nil {
		return nil, "", err
	}
	if !needSum {
		return p.Dependencies, "", nil
	}
	sum, err := r.jarChecksum(ctx, coord)
	if err != nil {
		return nil, "", err
	}
	return p.Dependencies, sum, nil
}

func (r *Resolver) jarChecksum(ctx context.Context, coord coordinate.Coordinate) (string, error) {
	// BOM / parent-only artifacts (packaging "pom") have no JAR; callers
	// that need one will surface MissingArtifactError naturally.
	data, err := r.Fetch.Fetch(ctx, coord, cache.KindJAR, "")
	if err != nil {
		if _, ok := err.(*jerr.MissingArtifactError); ok {
			return "", nil
		}
		return "", err
	}
	return sha256Hex(data), nil
}

func (r *Resolver) pomFetcher(ctx context.Context) pom.Fetcher {
	return func(group, artifact, version string) ([]byte, error) {
		coord := coordinate.Coordinate{Group: group, Artifact: artifact, Version: version}
		return r.Fetch.Fetch(ctx, coord, cache.KindPOM, "")
	}
}

func moduleDeps(gm *pom.GradleModule) []pom.Dependency {
	var out []pom.Dependency
	variants := []string{"apiElements", "runtimeElements"}
	seen := map[string]bool{}
	for _, vname := range variants {
		v, ok := gm.Variant(vname)
		if !ok {
			continue
		}
		scope := "compile"
		if vname == "runtimeElements" {
			scope = "runtime"
		}
		for _, d := range v.Dependencies {
			key := d.Group + ":" + d.Module + ":" + scope
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, pom.Dependency{GroupID: d.Group, ArtifactID: d.Module, Version: d.Version.Resolved(), Scope: scope})
		}
	}
	return out
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
