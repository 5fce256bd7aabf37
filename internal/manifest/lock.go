package manifest

import (
	"bytes"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/jargo-build/jargo/internal/coordinate"
	"github.com/jargo-build/jargo/internal/jerr"
)

const LockFilename = "Jargo.lock"

// LockEntry is one pinned (group, artifact, version) with its recorded
// SHA-256, as persisted in Jargo.lock.
type LockEntry struct {
	Group    string `toml:"group"`
	Artifact string `toml:"artifact"`
	Version  string `toml:"version"`
	SHA256   string `toml:"sha256"`
}

func (e LockEntry) Module() coordinate.Module {
	return coordinate.Module{Group: e.Group, Artifact: e.Artifact}
}

// Lock is the parsed Jargo.lock: a flat, deduplicated set of pinned
// dependencies. Uniqueness on (group, artifact) is enforced by the
// resolver before a Lock is constructed; Load does not itself dedupe.
type Lock struct {
	Dependencies []LockEntry `toml:"dependency"`
}

// ByModule returns a lookup from (group, artifact) to its pinned entry.
func (l *Lock) ByModule() map[coordinate.Module]LockEntry {
	out := make(map[coordinate.Module]LockEntry, len(l.Dependencies))
	for _, e := range l.Dependencies {
		out[e.Module()] = e
	}
	return out
}

// Sorted returns the lock's entries ordered lexicographically on
// (group, artifact), the canonical persisted order (spec §6).
func (l *Lock) Sorted() []LockEntry {
	out := make([]LockEntry, len(l.Dependencies))
	copy(out, l.Dependencies)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Artifact < out[j].Artifact
	})
	return out
}

// LoadLock reads Jargo.lock from dir. A missing lock file is not an error:
// it returns an empty Lock so callers can treat "no lock yet" the same as
// "empty lock".
func LoadLock(dir string) (*Lock, error) {
	path := lockPath(dir)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Lock{Dependencies: []LockEntry{}}, nil
	}
	if err != nil {
		return nil, &jerr.LockError{Path: path, Err: err}
	}
	var l Lock
	if err := toml.Unmarshal(data, &l); err != nil {
		return nil, &jerr.LockError{Path: path, Err: err}
	}
	if l.Dependencies == nil {
		l.Dependencies = []LockEntry{}
	}
	return &l, nil
}

// Save writes the lock in its canonical sorted order. Resolution runs only
// ever call Save after resolution has fully quiesced (spec §5): partial
// resolution state is never persisted.
func Save(dir string, l *Lock) error {
	sorted := &Lock{Dependencies: l.Sorted()}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(sorted); err != nil {
		return &jerr.LockError{Path: lockPath(dir), Err: err}
	}
	if err := os.WriteFile(lockPath(dir), buf.Bytes(), 0644); err != nil {
		return &jerr.LockError{Path: lockPath(dir), Err: err}
	}
	return nil
}

func lockPath(dir string) string {
	if dir == "" {
		return LockFilename
	}
	return dir + string(os.PathSeparator) + LockFilename
}

// Subset reports whether every (group, artifact) declared directly in deps
// appears in the lock at exactly the declared version. Per spec §4.1, this
// governs whether resolution can short-circuit to the existing lock: any
// mismatch (missing module, or same module at a different version) forces a
// full re-resolution of the whole graph.
func (l *Lock) Subset(deps []Dependency) bool {
	byModule := l.ByModule()
	for _, d := range deps {
		entry, ok := byModule[d.Module()]
		if !ok || entry.Version != d.Version {
			return false
		}
	}
	return true
}
