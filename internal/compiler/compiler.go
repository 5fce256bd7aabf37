// Package compiler orchestrates javac: it assembles an argument file to
// avoid command-line length limits, invokes javac against the staged
// source tree, and rewrites diagnostics back to user-visible paths
// (spec §4.4 "Compiler Orchestrator").
package compiler

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jargo-build/jargo/internal/jerr"
	"github.com/jargo-build/jargo/internal/stage"
)

const ArgFile = "javac-args.txt"

// Options configures one javac invocation.
type Options struct {
	TargetDir   string   // project's target/ directory
	SrcDir      string   // flat source tree (src/ or src/test)
	BasePackage string   // dot-separated base package
	Release     string   // manifest's java field, passed as --release
	Classpath   []string // already-ordered, already-deduplicated classpath entries
	OutputDir   string   // target/classes or target/test-classes
}

// Compile stages sources, writes the javac argument file, invokes javac,
// and returns diagnostics rewritten to reference user-visible source
// paths. A non-zero javac exit is reported as *jerr.CompileError.
func Compile(ctx context.Context, opts Options) (string, error) {
	sourceRoot, err := stage.Stage(opts.TargetDir, opts.SrcDir, opts.BasePackage)
	if err != nil {
		return "", err
	}

	files, err := stage.SourceFiles(opts.SrcDir)
	if err != nil {
		return "", &jerr.StagingError{BasePackage: opts.BasePackage, Err: err}
	}
	if len(files) == 0 {
		return "", nil
	}

	stagedFiles := make([]string, 0, len(files))
	for _, f := range files {
		sp, err := stage.StagedPath(opts.TargetDir, opts.BasePackage, opts.SrcDir, f)
		if err != nil {
			return "", &jerr.StagingError{BasePackage: opts.BasePackage, Err: err}
		}
		stagedFiles = append(stagedFiles, sp)
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", opts.OutputDir, err)
	}

	argFilePath := filepath.Join(opts.TargetDir, ArgFile)
	if err := writeArgFile(argFilePath, opts, sourceRoot, stagedFiles); err != nil {
		return "", fmt.Errorf("writing javac argument file: %w", err)
	}

	cmd := exec.CommandContext(ctx, "javac", "@"+argFilePath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	rewritten := stage.RewritePaths(stderr.String(), opts.TargetDir, opts.BasePackage)
	if runErr != nil {
		return rewritten, &jerr.CompileError{Diagnostics: rewritten}
	}
	return rewritten, nil
}

// writeArgFile emits one token per line, quoting tokens containing
// whitespace, per spec §4.4 "Argument file".
func writeArgFile(path string, opts Options, sourceRoot string, files []string) error {
	var buf bytes.Buffer
	emit := func(tok string) {
		if strings.ContainsAny(tok, " \t") {
			fmt.Fprintf(&buf, "%q\n", tok)
		} else {
			buf.WriteString(tok)
			buf.WriteByte('\n')
		}
	}

	emit("--release")
	emit(opts.Release)
	if len(opts.Classpath) > 0 {
		emit("-classpath")
		emit(strings.Join(opts.Classpath, string(os.PathListSeparator)))
	}
	emit("-sourcepath")
	emit(sourceRoot)
	emit("-d")
	emit(opts.OutputDir)
	for _, f := range files {
		emit(f)
	}

	return os.WriteFile(path, buf.Bytes(), 0644)
}
