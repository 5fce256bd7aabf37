// Package stage bridges jargo's flat src/ tree with javac's package-mirroring
// expectation via a single directory symlink, falling back to per-file
// symlinks and finally file copies when symlinks aren't available
// (spec §4.4 "Source staging").
package stage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jargo-build/jargo/internal/jerr"
)

// Root is target/src-root, the staging directory javac's -sourcepath
// points at.
const Root = "src-root"

// Stage ensures targetDir/src-root/<base-package-as-path> resolves (via
// whichever strategy succeeds) to srcDir, and returns the staging root to
// pass to javac as -sourcepath. basePackage is dot-separated (e.g. "a.b.c").
func Stage(targetDir, srcDir, basePackage string) (string, error) {
	root := filepath.Join(targetDir, Root)
	segments := strings.Split(basePackage, ".")
	leafParent := filepath.Join(append([]string{root}, segments[:len(segments)-1]...)...)
	leaf := filepath.Join(root, filepath.Join(segments...))

	if err := reconcileStagingTree(root, segments); err != nil {
		return "", &jerr.StagingError{BasePackage: basePackage, Err: err}
	}
	if err := os.MkdirAll(leafParent, 0755); err != nil {
		return "", &jerr.StagingError{BasePackage: basePackage, Err: err}
	}

	relSrc, err := filepath.Rel(leafParent, srcDir)
	if err != nil {
		return "", &jerr.StagingError{BasePackage: basePackage, Err: err}
	}

	if err := trySymlink(relSrc, leaf); err == nil {
		return root, nil
	}
	if err := fallbackPerFileSymlinks(srcDir, leaf); err == nil {
		return root, nil
	}
	if err := fallbackCopy(srcDir, leaf); err != nil {
		return "", &jerr.StagingError{BasePackage: basePackage, Err: err}
	}
	return root, nil
}

// reconcileStagingTree removes a prior staging tree if its base-package
// segments differ from the requested one (spec invariant: "If a prior
// staging tree exists with a different base-package, ... removes it"). It
// walks the full segment chain, not just the first element, so a
// base-package change that keeps the same leading segment (e.g. "a.b.c" ->
// "a.x.y") is still detected as a change.
func reconcileStagingTree(root string, segments []string) error {
	dir := root
	for _, seg := range segments {
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			return os.MkdirAll(root, 0755)
		}
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		if len(entries) != 1 || entries[0].Name() != seg {
			return os.RemoveAll(root)
		}
		dir = filepath.Join(dir, seg)
	}
	return nil
}

func trySymlink(relTarget, linkPath string) error {
	if _, err := os.Lstat(linkPath); err == nil {
		if err := os.Remove(linkPath); err != nil {
			return err
		}
	}
	return os.Symlink(relTarget, linkPath)
}

// fallbackPerFileSymlinks mirrors srcDir's files under linkPath with one
// symlink per file when a single directory symlink is rejected by the
// filesystem (spec §4.4 "Platform fallback").
func fallbackPerFileSymlinks(srcDir, linkPath string) error {
	return mirrorTree(srcDir, linkPath, func(src, dst string) error {
		rel, err := filepath.Rel(filepath.Dir(dst), src)
		if err != nil {
			return err
		}
		return os.Symlink(rel, dst)
	})
}

// fallbackCopy is the last resort: plain file copies, functionally
// identical to javac but slower to stage.
func fallbackCopy(srcDir, linkPath string) error {
	return mirrorTree(srcDir, linkPath, copyFile)
}

func mirrorTree(srcDir, dstDir string, place func(src, dst string) error) error {
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return err
	}
	return filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(dstDir, rel)
		if info.IsDir() {
			return os.MkdirAll(dst, 0755)
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return err
		}
		return place(path, dst)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

// RewritePaths replaces every occurrence of the staged prefix
// "<root>/<base-package-as-path>/" in stderr lines with "src/", so
// diagnostics never leak staging internals to the user (spec §4.4 "Path
// rewriting").
func RewritePaths(stderr, targetDir, basePackage string) string {
	staged := filepath.Join(targetDir, Root, filepath.Join(strings.Split(basePackage, ".")...)) + string(filepath.Separator)
	staged = filepath.ToSlash(staged)
	lines := strings.Split(stderr, "\n")
	for i, line := range lines {
		lines[i] = strings.ReplaceAll(filepath.ToSlash(line), staged, "src/")
	}
	return strings.Join(lines, "\n")
}

// StagedPath maps a real file under srcDir to the path javac will see it
// at through the staging root, for building the argument file's file list.
func StagedPath(targetDir, basePackage, srcDir, file string) (string, error) {
	rel, err := filepath.Rel(srcDir, file)
	if err != nil {
		return "", err
	}
	leaf := filepath.Join(targetDir, Root, filepath.Join(strings.Split(basePackage, ".")...))
	return filepath.Join(leaf, rel), nil
}

// SourceFiles walks srcDir for .java files, returning their real paths
// under srcDir (StagedPath maps each to the path javac sees through the
// staging root), in the deterministic order Walk yields (lexicographic).
func SourceFiles(srcDir string) ([]string, error) {
	var out []string
	err := filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".java") {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking source tree %s: %w", srcDir, err)
	}
	return out, nil
}
