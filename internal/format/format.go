// Package format invokes jargo's bundled formatter JAR against a project's
// source tree (spec §1 "Out of scope as external collaborators":
// "Formatter invocation (extraction of a bundled JAR; java -jar
// invocation)"). The formatter itself (google-java-format) is fetched and
// cached the same way any other Maven Central artifact is.
package format

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/jargo-build/jargo/internal/coordinate"
	"github.com/jargo-build/jargo/internal/jerr"
	"github.com/jargo-build/jargo/internal/stage"
)

// Coordinate is the bundled formatter's Maven Central artifact: a
// shaded, all-dependencies-included jar runnable standalone with `java -jar`.
var Coordinate = coordinate.Coordinate{
	Group:    "com.google.googlejavaformat",
	Artifact: "google-java-format",
	Version:  "1.22.0",
}

// Options configures one formatter invocation.
type Options struct {
	FormatterJar string // path to the cached formatter JAR
	SrcDir       string
	Indent       int  // manifest [format] indent, default 4
	Check        bool // `fmt --check`: report diffs without writing
}

// Run invokes `java -jar <formatter-jar> --indent <n> <mode> <files...>`
// over every .java file under SrcDir, where <mode> is
// `--dry-run --set-exit-if-changed` when Check is set and `--replace`
// otherwise. A non-zero exit is reported as
// *jerr.FormatError.
func Run(ctx context.Context, opts Options) (string, error) {
	files, err := stage.SourceFiles(opts.SrcDir)
	if err != nil {
		return "", &jerr.FormatError{Err: err}
	}
	if len(files) == 0 {
		return "", nil
	}

	args := []string{"-jar", opts.FormatterJar, "--indent", fmt.Sprint(opts.Indent)}
	if opts.Check {
		args = append(args, "--dry-run", "--set-exit-if-changed")
	} else {
		args = append(args, "--replace")
	}
	args = append(args, files...)

	cmd := exec.CommandContext(ctx, "java", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return out.String(), &jerr.FormatError{Err: fmt.Errorf("%w: %s", err, out.String())}
	}
	return out.String(), nil
}
