// Package orchestrate wires the manifest, resolver, artifact cache,
// classpath builder, and compiler orchestrator together into the handful
// of end-to-end operations the CLI commands invoke (spec §2 "System
// overview" data flow: Manifest + Lock -> Resolver -> Classpath Builder ->
// Compiler Orchestrator).
package orchestrate

import (
	"context"
	"os"
	"path/filepath"

	"github.com/jargo-build/jargo/internal/buildlog"
	"github.com/jargo-build/jargo/internal/cache"
	"github.com/jargo-build/jargo/internal/classpath"
	"github.com/jargo-build/jargo/internal/compiler"
	"github.com/jargo-build/jargo/internal/format"
	"github.com/jargo-build/jargo/internal/jartool"
	"github.com/jargo-build/jargo/internal/javatools"
	"github.com/jargo-build/jargo/internal/manifest"
	"github.com/jargo-build/jargo/internal/resolver"
	"github.com/jargo-build/jargo/internal/stage"
	"github.com/jargo-build/jargo/internal/testharness"
)

const TargetDir = "target"

// Project bundles a loaded manifest with the directory it lives in and
// the paths derived from it, giving every orchestrate operation a single
// receiver.
type Project struct {
	Manifest  *manifest.Manifest
	TargetDir string
	CacheDir  string
}

// Load parses Jargo.toml at dir and resolves the on-disk cache directory.
func Load(dir string) (*Project, error) {
	m, err := manifest.Load(dir)
	if err != nil {
		return nil, err
	}
	cacheDir, err := cache.DefaultDir()
	if err != nil {
		return nil, err
	}
	return &Project{
		Manifest:  m,
		TargetDir: filepath.Join(m.Dir(), TargetDir),
		CacheDir:  cacheDir,
	}, nil
}

// Resolve loads the existing lock (if any), runs the resolver (short-
// circuiting to the lock when possible), and persists the regenerated
// lock when a full resolution ran.
func (p *Project) Resolve(ctx context.Context, log *buildlog.Log, update bool) (*resolver.Result, error) {
	task := log.Start("resolve dependencies")

	existing, err := manifest.LoadLock(p.Manifest.Dir())
	if err != nil {
		task.Done(err)
		return nil, err
	}

	c := cache.New(p.CacheDir)
	res, err := resolver.New(c).Resolve(ctx, p.Manifest, existing, update)
	if err != nil {
		task.Done(err)
		return nil, err
	}

	for _, coord := range resolver.ImplicitTestRoots {
		if _, err := c.Fetch(ctx, coord, cache.KindJAR, ""); err != nil {
			task.Done(err)
			return nil, err
		}
	}

	allDirect := append(append([]manifest.Dependency{}, p.Manifest.Dependencies...), p.Manifest.DevDependencies...)
	if update || !existing.Subset(allDirect) {
		if err := manifest.Save(p.Manifest.Dir(), res.ToLock()); err != nil {
			task.Done(err)
			return nil, err
		}
	}

	task.Done(nil)
	return res, nil
}

// Classpaths builds the four classpaths for this project from a resolved
// set, anchoring JAR lookups at p.CacheDir.
func (p *Project) Classpaths(res *resolver.Result) classpath.Paths {
	locate := classpath.DefaultLocator(p.CacheDir)
	classesDir := filepath.Join(p.TargetDir, "classes")
	testClassesDir := filepath.Join(p.TargetDir, "test-classes")
	return classpath.Build(p.Manifest, res, locate, classesDir, testClassesDir)
}

// CompileMain stages and compiles src/ into target/classes.
func (p *Project) CompileMain(ctx context.Context, log *buildlog.Log, cp classpath.Paths) error {
	task := log.Start("compile")
	_, err := compiler.Compile(ctx, compiler.Options{
		TargetDir:   p.TargetDir,
		SrcDir:      filepath.Join(p.Manifest.Dir(), "src"),
		BasePackage: p.Manifest.Package.BasePackage,
		Release:     p.Manifest.Package.Java,
		Classpath:   cp.Compile,
		OutputDir:   filepath.Join(p.TargetDir, "classes"),
	})
	if err != nil {
		task.Done(err)
		return err
	}
	task.Done(nil)
	return nil
}

// CompileTests stages and compiles src/test into target/test-classes.
// A project with no src/test directory compiles zero files, which is not
// an error (spec §4.4: Compile returns successfully for an empty source
// tree).
func (p *Project) CompileTests(ctx context.Context, log *buildlog.Log, cp classpath.Paths) error {
	task := log.Start("compile tests")
	testSrc := filepath.Join(p.Manifest.Dir(), "src", "test")
	if _, err := os.Stat(testSrc); os.IsNotExist(err) {
		task.Done(nil)
		return nil
	}
	_, err := compiler.Compile(ctx, compiler.Options{
		TargetDir:   filepath.Join(p.TargetDir, "test"),
		SrcDir:      testSrc,
		BasePackage: p.Manifest.Package.BasePackage,
		Release:     p.Manifest.Package.Java,
		Classpath:   cp.TestCompile,
		OutputDir:   filepath.Join(p.TargetDir, "test-classes"),
	})
	if err != nil {
		task.Done(err)
		return err
	}
	task.Done(nil)
	return nil
}

// Package assembles target/<name>.jar from target/classes.
func (p *Project) Package(log *buildlog.Log, cp classpath.Paths) (string, error) {
	task := log.Start("package jar")
	jarPath := jartool.OutputPath(p.TargetDir, p.Manifest.Package)
	mainClass := ""
	if p.Manifest.Package.Type == manifest.TypeApp {
		mainClass = qualifiedMainClass(p.Manifest)
	}
	err := jartool.Create(jartool.Options{
		JarPath:    jarPath,
		ClassesDir: filepath.Join(p.TargetDir, "classes"),
		MainClass:  mainClass,
		ClassPath:  cp.Runtime,
	})
	if err != nil {
		task.Done(err)
		return "", err
	}
	task.Done(nil)
	return jarPath, nil
}

func qualifiedMainClass(m *manifest.Manifest) string {
	if m.Package.BasePackage == "" {
		return m.Package.MainClass
	}
	return m.Package.BasePackage + "." + m.Package.MainClass
}

// Build runs the full pipeline: resolve, compile, package.
func (p *Project) Build(ctx context.Context, log *buildlog.Log) (string, error) {
	res, err := p.Resolve(ctx, log, false)
	if err != nil {
		return "", err
	}
	cp := p.Classpaths(res)
	if err := p.CompileMain(ctx, log, cp); err != nil {
		return "", err
	}
	return p.Package(log, cp)
}

// Check resolves and compiles main and test sources without packaging a
// jar, for fast feedback on compile errors alone.
func (p *Project) Check(ctx context.Context, log *buildlog.Log) error {
	res, err := p.Resolve(ctx, log, false)
	if err != nil {
		return err
	}
	cp := p.Classpaths(res)
	if err := p.CompileMain(ctx, log, cp); err != nil {
		return err
	}
	return p.CompileTests(ctx, log, cp)
}

// Clean removes target/ wholesale (spec §6 "Deleted wholesale by clean").
func (p *Project) Clean() error {
	return os.RemoveAll(p.TargetDir)
}

// Run builds (resolve + compile, no jar needed) then launches the app's
// main class with `java`, forwarding progArgs.
func (p *Project) Run(ctx context.Context, log *buildlog.Log, progArgs []string) error {
	res, err := p.Resolve(ctx, log, false)
	if err != nil {
		return err
	}
	cp := p.Classpaths(res)
	if err := p.CompileMain(ctx, log, cp); err != nil {
		return err
	}
	runtimeCP := append([]string{filepath.Join(p.TargetDir, "classes")}, cp.Runtime...)
	return javatools.Run(ctx, javatools.RunOptions{
		Classpath: runtimeCP,
		MainClass: qualifiedMainClass(p.Manifest),
		JvmArgs:   p.Manifest.JvmArgs,
		Args:      progArgs,
	})
}

// Test builds test sources and runs them through the JUnit harness.
func (p *Project) Test(ctx context.Context, log *buildlog.Log) (testharness.Result, error) {
	res, err := p.Resolve(ctx, log, false)
	if err != nil {
		return testharness.Result{}, err
	}
	cp := p.Classpaths(res)
	if err := p.CompileMain(ctx, log, cp); err != nil {
		return testharness.Result{}, err
	}
	if err := p.CompileTests(ctx, log, cp); err != nil {
		return testharness.Result{}, err
	}

	task := log.Start("run tests")
	testClassesDir := filepath.Join(p.TargetDir, "test-classes")
	runtimeCP := append([]string{testClassesDir, filepath.Join(p.TargetDir, "classes")}, cp.TestRuntime...)
	result, err := testharness.Run(ctx, testharness.Options{
		Classpath:      runtimeCP,
		TestClassesDir: testClassesDir,
		JvmArgs:        p.Manifest.JvmArgs,
	})
	if err != nil {
		task.Done(err)
		return testharness.Result{}, err
	}
	if !result.Passed {
		task.Done(nil)
		task.Error("tests failed")
	} else {
		task.Done(nil)
	}
	return result, nil
}

// Doc generates Javadoc HTML for src/ into target/doc.
func (p *Project) Doc(ctx context.Context, log *buildlog.Log, cp classpath.Paths) (string, error) {
	task := log.Start("doc")
	files, err := stage.SourceFiles(filepath.Join(p.Manifest.Dir(), "src"))
	if err != nil {
		task.Done(err)
		return "", err
	}
	outDir := filepath.Join(p.TargetDir, "doc")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		task.Done(err)
		return "", err
	}
	err = javatools.RunDoc(ctx, javatools.DocOptions{
		SourceFiles: files,
		Classpath:   cp.Compile,
		OutputDir:   outDir,
	})
	task.Done(err)
	return outDir, err
}

// Format fetches the bundled formatter JAR (cached like any other Maven
// Central artifact) and runs it over src/, rewriting files in place unless
// check is set.
func (p *Project) Format(ctx context.Context, log *buildlog.Log, check bool) (string, error) {
	task := log.Start("format")
	c := cache.New(p.CacheDir)
	if _, err := c.Fetch(ctx, format.Coordinate, cache.KindJAR, ""); err != nil {
		task.Done(err)
		return "", err
	}
	out, err := format.Run(ctx, format.Options{
		FormatterJar: c.Path(format.Coordinate, cache.KindJAR),
		SrcDir:       filepath.Join(p.Manifest.Dir(), "src"),
		Indent:       p.Manifest.FormatIndent,
		Check:        check,
	})
	task.Done(err)
	return out, err
}
