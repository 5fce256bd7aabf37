// Package testharness launches the JUnit Platform Console Standalone
// launcher against a project's compiled test classes (spec §1 "Out of
// scope as external collaborators": "Test harness ... reports structured
// results").
package testharness

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/jargo-build/jargo/internal/jerr"
)

// Options configures one test harness invocation.
type Options struct {
	Classpath      []string
	TestClassesDir string
	JvmArgs        []string
}

// Result is the harness outcome: Passed is derived from the launcher's exit
// code (the output is not parsed) and RawOutput is its combined output. A
// failing test case is reported here, distinct from a TestError per spec §7
// ("TestError ... distinct from test failures").
type Result struct {
	Passed    bool
	RawOutput string
}

// Run invokes the JUnit Platform Console Standalone launcher
// (org.junit.platform.console.ConsoleLauncher) via `java`, scanning
// TestClassesDir. A non-zero exit from the launcher itself (harness
// couldn't start, bad classpath) is a *jerr.TestError; a non-zero exit
// because tests failed is reported as Result.Passed = false with no error,
// since that is an expected build outcome, not a harness malfunction.
func Run(ctx context.Context, opts Options) (Result, error) {
	args := append([]string{}, opts.JvmArgs...)
	if len(opts.Classpath) > 0 {
		args = append(args, "-cp", joinClasspath(opts.Classpath))
	}
	args = append(args, "org.junit.platform.console.ConsoleLauncher",
		"--scan-classpath", opts.TestClassesDir, "--details=tree")

	cmd := exec.CommandContext(ctx, "java", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if err == nil {
		return Result{Passed: true, RawOutput: out.String()}, nil
	}
	if _, ok := err.(*exec.ExitError); ok {
		// Exit codes 1/2 from the console launcher mean "tests ran, some
		// failed"; anything else (launch failure, missing main class)
		// indicates the harness itself is broken.
		if isTestFailureExit(cmd) {
			return Result{Passed: false, RawOutput: out.String()}, nil
		}
	}
	return Result{RawOutput: out.String()}, &jerr.TestError{Err: fmt.Errorf("launching test harness: %w", err)}
}

func isTestFailureExit(cmd *exec.Cmd) bool {
	if cmd.ProcessState == nil {
		return false
	}
	code := cmd.ProcessState.ExitCode()
	return code == 1 || code == 2
}

func joinClasspath(cp []string) string {
	out := ""
	for i, c := range cp {
		if i > 0 {
			out += string(os.PathListSeparator)
		}
		out += c
	}
	return out
}
