// Package classpath partitions a resolver result into jargo's four
// classpaths (compile, runtime, test-compile, test-runtime) per spec §4.2.
package classpath

import (
	"path/filepath"

	"github.com/jargo-build/jargo/internal/coordinate"
	"github.com/jargo-build/jargo/internal/manifest"
	"github.com/jargo-build/jargo/internal/resolver"
)

// implicit JUnit artifacts every test classpath carries regardless of
// manifest declarations (spec §4.2 "Test compile classpath").
// orchestrate.Resolve fetches these same coordinates directly into the
// cache so they are present on disk by the time Build runs.
var implicitTestDeps = resolver.ImplicitTestRoots

// Paths is the four ordered, deduplicated classpath entry lists, plus the
// project's own output directories that always lead each list.
type Paths struct {
	Compile     []string
	Runtime     []string
	TestCompile []string
	TestRuntime []string
}

// Locator maps a resolved node to its cached JAR path on disk.
type Locator func(n *resolver.Node) string

// DefaultLocator builds a Locator over a cache rooted at cacheDir, mirroring
// the on-disk layout the artifact cache writes to (spec §4.3).
func DefaultLocator(cacheDir string) Locator {
	return func(n *resolver.Node) string {
		return filepath.Join(cacheDir, coordinate.GroupPath(n.Group), n.Artifact, n.Version, n.Artifact+"-"+n.Version+".jar")
	}
}

// Build constructs the four classpaths for m given the fully resolved set
// res, using locate to turn a resolved node into a JAR path. classesDir and
// testClassesDir are the project's own compiled-output directories, which
// always lead their respective classpaths (spec §4.2 "Ordering").
func Build(m *manifest.Manifest, res *resolver.Result, locate Locator, classesDir, testClassesDir string) Paths {
	exposed := exposedModules(m)
	isLib := m.Package.Type == manifest.TypeLib

	var compile, runtime []string
	seenCompile := map[coordinate.Module]bool{}
	seenRuntime := map[coordinate.Module]bool{}

	for _, n := range orderedNodes(res) {
		mod := n.Module()
		jar := locate(n)

		switch n.Scope {
		case resolver.ScopeCompile:
			if !seenCompile[mod] {
				compile = append(compile, jar)
				seenCompile[mod] = true
			}
			if !seenRuntime[mod] {
				runtime = append(runtime, jar)
				seenRuntime[mod] = true
			}
		case resolver.ScopeRuntime:
			if !seenRuntime[mod] {
				runtime = append(runtime, jar)
				seenRuntime[mod] = true
			}
		}

		// A lib project's expose=true direct dependency is itself promoted
		// onto the compile classpath, even if mediation alone would have left
		// it runtime-only. Its transitive closure is added below.
		if isLib && exposed[mod] && n.Scope != resolver.ScopeCompile && !seenCompile[mod] {
			compile = append(compile, jar)
			seenCompile[mod] = true
		}
	}

	// d's own exposed transitives (spec §4.2): every node reachable from an
	// exposed direct dependency via a compile-scope edge path is itself part
	// of the surface this library exposes to its consumers' compile
	// classpath, not just d.
	if isLib {
		byParent := make(map[coordinate.Module][]resolver.Edge, len(res.Edges))
		for _, e := range res.Edges {
			byParent[e.Parent] = append(byParent[e.Parent], e)
		}
		for mod := range exposed {
			for _, childMod := range compileClosure(mod, byParent) {
				if seenCompile[childMod] {
					continue
				}
				child, ok := res.Nodes[childMod]
				if !ok {
					continue
				}
				compile = append(compile, locate(child))
				seenCompile[childMod] = true
			}
		}
	}

	testCompile := append(append([]string{}, compile...), devDependencyJars(m, res, locate)...)
	testCompile = append(testCompile, implicitJars(locate)...)
	testRuntime := append(append([]string{}, runtime...), devDependencyJars(m, res, locate)...)
	testRuntime = append(testRuntime, implicitJars(locate)...)

	return Paths{
		Compile:     prepend(classesDir, compile),
		Runtime:     prepend(classesDir, runtime),
		TestCompile: prepend(testClassesDir, prepend(classesDir, testCompile)),
		TestRuntime: prepend(testClassesDir, prepend(classesDir, testRuntime)),
	}
}

func prepend(dir string, rest []string) []string {
	if dir == "" {
		return rest
	}
	return append([]string{dir}, rest...)
}

// orderedNodes returns res's nodes in a stable order derived from
// lexicographic (group, artifact), matching the resolution map's iteration
// order described in spec §4.2 "Ordering".
func orderedNodes(res *resolver.Result) []*resolver.Node {
	return res.Sorted()
}

// compileClosure walks byParent from root over compile-scope edges only,
// returning every module reachable that way (root's own compile-scope
// transitive closure).
func compileClosure(root coordinate.Module, byParent map[coordinate.Module][]resolver.Edge) []coordinate.Module {
	var out []coordinate.Module
	seen := map[coordinate.Module]bool{}
	var walk func(coordinate.Module)
	walk = func(mod coordinate.Module) {
		for _, e := range byParent[mod] {
			if e.Scope != resolver.ScopeCompile || seen[e.Child] {
				continue
			}
			seen[e.Child] = true
			out = append(out, e.Child)
			walk(e.Child)
		}
	}
	walk(root)
	return out
}

func exposedModules(m *manifest.Manifest) map[coordinate.Module]bool {
	out := map[coordinate.Module]bool{}
	for _, d := range m.Dependencies {
		if d.Expose {
			out[d.Module()] = true
		}
	}
	return out
}

func devDependencyJars(m *manifest.Manifest, res *resolver.Result, locate Locator) []string {
	var out []string
	for _, d := range m.DevDependencies {
		if n, ok := res.Nodes[d.Module()]; ok {
			out = append(out, locate(n))
		}
	}
	return out
}

func implicitJars(locate Locator) []string {
	var out []string
	for _, c := range implicitTestDeps {
		out = append(out, locate(&resolver.Node{Group: c.Group, Artifact: c.Artifact, Version: c.Version}))
	}
	return out
}
