// Package scaffold creates new jargo projects: directory layout and
// template Jargo.toml/source files (spec §1 "Out of scope as external
// collaborators": "Project scaffolding (directory creation, template file
// generation)").
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jargo-build/jargo/internal/manifest"
)

// New creates a fresh project directory at path, named after its base
// name, with a default app-type Jargo.toml, a src/ tree, and a Main.java
// hello-world.
func New(path, javaVersion string) error {
	name := filepath.Base(filepath.Clean(path))
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}
	return Init(path, name, javaVersion)
}

// Init scaffolds a Jargo.toml and src/ tree into an existing directory,
// used both by `new` and by `init` on a pre-existing directory.
func Init(path, name, javaVersion string) error {
	if javaVersion == "" {
		javaVersion = "21"
	}
	manifestPath := filepath.Join(path, manifest.Filename)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("%s already exists", manifestPath)
	}

	toml := fmt.Sprintf(`[package]
name = "%s"
version = "0.1.0"
type = "app"
java = "%s"
`, name, javaVersion)
	if err := os.WriteFile(manifestPath, []byte(toml), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", manifest.Filename, err)
	}

	srcDir := filepath.Join(path, "src")
	if err := os.MkdirAll(srcDir, 0755); err != nil {
		return fmt.Errorf("creating src directory: %w", err)
	}

	mainJava := fmt.Sprintf(`package %s;

public class Main {
    public static void main(String[] args) {
        System.out.println("Hello, jargo!");
    }
}
`, name)
	if err := os.WriteFile(filepath.Join(srcDir, "Main.java"), []byte(mainJava), 0644); err != nil {
		return fmt.Errorf("writing Main.java: %w", err)
	}

	testDir := filepath.Join(path, "src", "test")
	return os.MkdirAll(testDir, 0755)
}
