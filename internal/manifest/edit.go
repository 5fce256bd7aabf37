package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jargo-build/jargo/internal/jerr"
)

// AddDependency inserts or updates a "group:artifact = "version"" line under
// the [dependencies] (or [dev-dependencies]) table in the Jargo.toml at dir,
// creating the table if it is missing. It edits the file's text directly
// rather than round-tripping through toml.Marshal, so hand-written
// formatting and comments elsewhere in the file survive (spec §6 "`add`
// mutates the manifest, then re-resolves").
func AddDependency(dir, group, artifact, version string, dev bool) error {
	path := filepath.Join(dir, Filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return &jerr.ManifestError{Path: path, Err: err}
	}

	header := "[dependencies]"
	if dev {
		header = "[dev-dependencies]"
	}
	key := group + ":" + artifact
	quotedKey := fmt.Sprintf("%q", key)
	line := fmt.Sprintf("%s = %q", quotedKey, version)

	lines := strings.Split(string(data), "\n")
	headerIdx := -1
	inSection := false
	for i, l := range lines {
		trimmed := strings.TrimSpace(l)
		if trimmed == header {
			headerIdx = i
			inSection = true
			continue
		}
		if inSection && strings.HasPrefix(trimmed, "[") {
			inSection = false
		}
		if inSection && (strings.HasPrefix(trimmed, quotedKey+" ") || strings.HasPrefix(trimmed, quotedKey+"=")) {
			lines[i] = line
			return writeManifestLines(path, lines)
		}
	}

	if headerIdx == -1 {
		out := strings.TrimRight(string(data), "\n") + "\n\n" + header + "\n" + line + "\n"
		return os.WriteFile(path, []byte(out), 0644)
	}

	insertAt := headerIdx + 1
	newLines := append([]string{}, lines[:insertAt]...)
	newLines = append(newLines, line)
	newLines = append(newLines, lines[insertAt:]...)
	return writeManifestLines(path, newLines)
}

func writeManifestLines(path string, lines []string) error {
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return &jerr.ManifestError{Path: path, Err: err}
	}
	return nil
}
