// Package manifest parses and validates Jargo.toml, exposing the typed
// project, dependency, and config records the rest of jargo builds on.
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"

	"github.com/jargo-build/jargo/internal/coordinate"
	"github.com/jargo-build/jargo/internal/jerr"
)

const Filename = "Jargo.toml"

// ProjectType distinguishes an application (produces an executable jar,
// dependencies are private) from a library (dependencies may be exposed to
// consumers via the `expose` flag).
type ProjectType string

const (
	TypeApp ProjectType = "app"
	TypeLib ProjectType = "lib"
)

// Scope is the declared scope of a direct dependency. Dev-dependencies
// ignore this field; their effective scope is always Test.
type Scope string

const (
	ScopeCompile Scope = "compile"
	ScopeRuntime Scope = "runtime"
)

// Package holds the manifest's [package] section.
type Package struct {
	Name        string
	Version     string
	Type        ProjectType
	Java        string
	BasePackage string
	MainClass   string
}

// Dependency is one resolved entry from [dependencies] or
// [dev-dependencies]: a coordinate (group:artifact implied by the map key,
// version from the TOML value), its declared scope, and whether a lib
// project exposes it to consumers.
type Dependency struct {
	Group    string
	Artifact string
	Version  string
	Scope    Scope
	Expose   bool
}

func (d Dependency) Module() coordinate.Module {
	return coordinate.Module{Group: d.Group, Artifact: d.Artifact}
}

func (d Dependency) Coordinate() coordinate.Coordinate {
	return coordinate.Coordinate{Group: d.Group, Artifact: d.Artifact, Version: d.Version}
}

// Manifest is the fully parsed, validated, and defaulted Jargo.toml. Once
// built it is treated as immutable for the remainder of a command
// invocation.
type Manifest struct {
	Package         Package
	Dependencies    []Dependency
	DevDependencies []Dependency
	JvmArgs         []string
	FormatIndent    int

	dir string // directory containing Jargo.toml, for resolving relative paths
}

// Dir returns the directory containing the manifest file.
func (m *Manifest) Dir() string { return m.dir }

// rawDependencyValue is either a bare version string or a table with
// version/scope/expose fields. BurntSushi/toml dispatches to UnmarshalTOML
// for either representation.
type rawDependencyValue struct {
	Version string
	Scope   string
	Expose  bool
	isTable bool
}

func (v *rawDependencyValue) UnmarshalTOML(data interface{}) error {
	switch t := data.(type) {
	case string:
		v.Version = t
	case map[string]interface{}:
		v.isTable = true
		if s, ok := t["version"].(string); ok {
			v.Version = s
		}
		if s, ok := t["scope"].(string); ok {
			v.Scope = s
		}
		if b, ok := t["expose"].(bool); ok {
			v.Expose = b
		}
	default:
		return fmt.Errorf("dependency value must be a string or a table, got %T", data)
	}
	return nil
}

type rawManifest struct {
	Package struct {
		Name        string `toml:"name"`
		Version     string `toml:"version"`
		Type        string `toml:"type"`
		Java        string `toml:"java"`
		BasePackage string `toml:"base-package"`
		MainClass   string `toml:"main-class"`
	} `toml:"package"`
	Dependencies    map[string]rawDependencyValue `toml:"dependencies"`
	DevDependencies map[string]rawDependencyValue `toml:"dev-dependencies"`
	Run             struct {
		JvmArgs []string `toml:"jvm-args"`
	} `toml:"run"`
	Format struct {
		Indent int `toml:"indent"`
	} `toml:"format"`
}

// Load reads and validates the Jargo.toml at path (or at path/Jargo.toml if
// path is a directory).
func Load(path string) (*Manifest, error) {
	path, err := resolveManifestPath(path)
	if err != nil {
		return nil, &jerr.ManifestError{Path: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &jerr.ManifestError{Path: path, Err: err}
	}
	return Parse(data, filepath.Dir(path))
}

func resolveManifestPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return filepath.Join(path, Filename), nil
	}
	return path, nil
}

// Parse decodes raw TOML bytes into a validated, defaulted Manifest. dir is
// the directory the manifest lives in, used for Manifest.Dir().
func Parse(data []byte, dir string) (*Manifest, error) {
	var raw rawManifest
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, &jerr.ManifestError{Path: dir, Err: err}
	}
	m := &Manifest{dir: dir}

	if raw.Package.Name == "" {
		return nil, &jerr.ManifestError{Path: dir, Err: fmt.Errorf("[package] name is required")}
	}
	if raw.Package.Version == "" {
		return nil, &jerr.ManifestError{Path: dir, Err: fmt.Errorf("[package] version is required")}
	}
	if _, err := semver.NewVersion(raw.Package.Version); err != nil {
		return nil, &jerr.ManifestError{Path: dir, Err: fmt.Errorf("[package] version %q is not a valid semantic version: %w", raw.Package.Version, err)}
	}
	if raw.Package.Java == "" {
		return nil, &jerr.ManifestError{Path: dir, Err: fmt.Errorf("[package] java is required")}
	}

	ptype := ProjectType(raw.Package.Type)
	if ptype == "" {
		ptype = TypeApp
	}
	if ptype != TypeApp && ptype != TypeLib {
		return nil, &jerr.ManifestError{Path: dir, Err: fmt.Errorf("[package] type must be \"app\" or \"lib\", got %q", raw.Package.Type)}
	}

	basePackage := raw.Package.BasePackage
	if basePackage == "" {
		basePackage = raw.Package.Name
	}

	mainClass := raw.Package.MainClass
	if ptype == TypeApp && mainClass == "" {
		mainClass = "Main"
	}

	m.Package = Package{
		Name:        raw.Package.Name,
		Version:     raw.Package.Version,
		Type:        ptype,
		Java:        raw.Package.Java,
		BasePackage: basePackage,
		MainClass:   mainClass,
	}

	deps, err := parseDependencySection(raw.Dependencies, false, dir)
	if err != nil {
		return nil, err
	}
	m.Dependencies = deps

	devDeps, err := parseDependencySection(raw.DevDependencies, true, dir)
	if err != nil {
		return nil, err
	}
	m.DevDependencies = devDeps

	m.JvmArgs = raw.Run.JvmArgs
	if m.JvmArgs == nil {
		m.JvmArgs = []string{}
	}

	m.FormatIndent = raw.Format.Indent
	if m.FormatIndent == 0 {
		m.FormatIndent = 4
	}

	return m, nil
}

// Serialize encodes m back into Jargo.toml's recognized field set. Parsing
// Serialize's output reproduces every field Parse itself recognizes (spec
// §8's "Manifest parse ∘ serialize is identity on the recognized field
// set"); comments and key order in the original file are not preserved.
func Serialize(m *Manifest) ([]byte, error) {
	doc := map[string]interface{}{
		"package": map[string]interface{}{
			"name":         m.Package.Name,
			"version":      m.Package.Version,
			"type":         string(m.Package.Type),
			"java":         m.Package.Java,
			"base-package": m.Package.BasePackage,
			"main-class":   m.Package.MainClass,
		},
		"dependencies":     serializeDependencySection(m.Dependencies, false),
		"dev-dependencies": serializeDependencySection(m.DevDependencies, true),
		"run": map[string]interface{}{
			"jvm-args": m.JvmArgs,
		},
		"format": map[string]interface{}{
			"indent": m.FormatIndent,
		},
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(doc); err != nil {
		return nil, &jerr.ManifestError{Path: m.dir, Err: err}
	}
	return buf.Bytes(), nil
}

func serializeDependencySection(deps []Dependency, dev bool) map[string]interface{} {
	out := make(map[string]interface{}, len(deps))
	for _, d := range deps {
		key := d.Group + ":" + d.Artifact
		showScope := !dev && d.Scope != "" && d.Scope != ScopeCompile
		if !showScope && !d.Expose {
			out[key] = d.Version
			continue
		}
		entry := map[string]interface{}{"version": d.Version}
		if showScope {
			entry["scope"] = string(d.Scope)
		}
		if d.Expose {
			entry["expose"] = true
		}
		out[key] = entry
	}
	return out
}

func parseDependencySection(section map[string]rawDependencyValue, dev bool, dir string) ([]Dependency, error) {
	result := make([]Dependency, 0, len(section))
	for key, raw := range section {
		coord, err := coordinate.Parse(key + ":x")
		if err != nil || key == "" {
			return nil, &jerr.ManifestError{Path: dir, Err: fmt.Errorf("invalid dependency key %q, must be \"group:artifact\"", key)}
		}
		if raw.Version == "" {
			return nil, &jerr.ManifestError{Path: dir, Err: fmt.Errorf("dependency %q is missing a version", key)}
		}
		scope := ScopeCompile
		if dev {
			scope = "" // dev-dependencies are always effective test scope; recorded blank here
		} else if raw.Scope != "" {
			scope = Scope(raw.Scope)
			if scope != ScopeCompile && scope != ScopeRuntime {
				return nil, &jerr.ManifestError{Path: dir, Err: fmt.Errorf("dependency %q has invalid scope %q", key, raw.Scope)}
			}
		}
		if raw.Expose && dev {
			return nil, &jerr.ManifestError{Path: dir, Err: fmt.Errorf("dev-dependency %q cannot set expose", key)}
		}
		result = append(result, Dependency{
			Group:    coord.Group,
			Artifact: coord.Artifact,
			Version:  raw.Version,
			Scope:    scope,
			Expose:   raw.Expose,
		})
	}
	return result, nil
}
