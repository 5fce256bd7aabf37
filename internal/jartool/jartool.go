// Package jartool assembles the project's output JAR by invoking the
// system `jar` binary, mirroring how javac is invoked elsewhere in jargo:
// jargo builds the manifest content itself and shells out for the archive
// format rather than reimplementing the ZIP/JAR container.
package jartool

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/jargo-build/jargo/internal/manifest"
)

// Options configures one `jar` invocation that assembles a project's
// output archive from its compiled classes directory.
type Options struct {
	JarPath    string // destination, e.g. target/demo.jar
	ClassesDir string // target/classes, used as the jar's base directory
	MainClass  string // manifest main-class, app projects only
	ClassPath  []string
}

// Create builds the output JAR via the system `jar` tool, embedding a
// Main-Class and Class-Path entry in its manifest when given.
func Create(opts Options) error {
	if _, err := exec.LookPath("jar"); err != nil {
		return fmt.Errorf("jar tool not found on PATH: %w", err)
	}

	args := []string{"-cf", opts.JarPath}

	var manifestPath string
	if opts.MainClass != "" || len(opts.ClassPath) > 0 {
		content := buildManifest(opts)
		tmp, err := os.CreateTemp("", "jargo-manifest-*.mf")
		if err != nil {
			return fmt.Errorf("writing jar manifest: %w", err)
		}
		manifestPath = tmp.Name()
		defer os.Remove(manifestPath)
		if _, err := tmp.WriteString(content); err != nil {
			tmp.Close()
			return fmt.Errorf("writing jar manifest: %w", err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("writing jar manifest: %w", err)
		}
		args = append(args, "-m", manifestPath)
	}

	args = append(args, "-C", opts.ClassesDir, ".")

	cmd := exec.Command("jar", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("jar assembly failed: %w\n%s", err, out)
	}
	return nil
}

func buildManifest(opts Options) string {
	content := "Manifest-Version: 1.0\n"
	if opts.MainClass != "" {
		content += "Main-Class: " + opts.MainClass + "\n"
	}
	if len(opts.ClassPath) > 0 {
		content += "Class-Path:"
		for i, cp := range opts.ClassPath {
			if i > 0 {
				content += "\n "
			} else {
				content += " "
			}
			content += filepath.Base(cp)
		}
		content += "\n"
	}
	return content
}

// OutputPath returns target/<package-name>.jar, jargo's default archive
// location (spec §6 "On-disk layout under target/").
func OutputPath(targetDir string, pkg manifest.Package) string {
	return filepath.Join(targetDir, pkg.Name+".jar")
}
