package pom

import "encoding/json"

// GradleModule is the decoded Gradle Module Metadata document (the
// `.module` file Maven Central publishes alongside the POM for most modern
// artifacts). jargo prefers this format over the POM when present because
// its variant/capability model is unambiguous, falling back to POM parsing
// otherwise (spec §4.1 Phase 1).
type GradleModule struct {
	FormatVersion string          `json:"formatVersion"`
	Component     ModuleComponent `json:"component"`
	Variants      []ModuleVariant `json:"variants"`
}

type ModuleComponent struct {
	Group   string `json:"group"`
	Module  string `json:"module"`
	Version string `json:"version"`
}

// ModuleVariant is one published variant (e.g. "apiElements",
// "runtimeElements"). jargo only cares about the two that map to Maven's
// compile/runtime scopes.
type ModuleVariant struct {
	Name           string             `json:"name"`
	Attributes     map[string]any     `json:"attributes"`
	Dependencies   []ModuleDependency `json:"dependencies"`
	Files          []ModuleFile       `json:"files"`
}

type ModuleDependency struct {
	Group   string             `json:"group"`
	Module  string             `json:"module"`
	Version ModuleVersionSpec  `json:"version"`
	Excludes []ModuleExclude   `json:"excludes"`
}

type ModuleVersionSpec struct {
	Requires string `json:"requires"`
	Prefers  string `json:"prefers"`
	Strictly string `json:"strictly"`
}

// Resolved picks the version string jargo should treat as this
// dependency's declared version: "requires" in practice is what Gradle
// modules publish for ordinary dependencies.
func (v ModuleVersionSpec) Resolved() string {
	switch {
	case v.Strictly != "":
		return v.Strictly
	case v.Requires != "":
		return v.Requires
	default:
		return v.Prefers
	}
}

type ModuleExclude struct {
	Group  string `json:"group"`
	Module string `json:"module"`
}

type ModuleFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
	SHA256 string `json:"sha256"`
}

// DecodeGradleModule parses a .module JSON document.
func DecodeGradleModule(data []byte) (*GradleModule, error) {
	var m GradleModule
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Variant returns the named variant, if published.
func (m *GradleModule) Variant(name string) (ModuleVariant, bool) {
	for _, v := range m.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return ModuleVariant{}, false
}

// CompileVariant and RuntimeVariant locate the variants jargo's scope
// mediation maps onto Maven's compile and runtime scopes respectively.
func (m *GradleModule) CompileVariant() (ModuleVariant, bool) { return m.Variant("apiElements") }
func (m *GradleModule) RuntimeVariant() (ModuleVariant, bool) { return m.Variant("runtimeElements") }
