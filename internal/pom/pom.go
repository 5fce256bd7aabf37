// Package pom decodes Maven POM XML, walks <parent> chains, substitutes
// ${property} references, and merges <dependencyManagement> sections
// (including <scope>import</scope> BOM entries) the way Maven itself does.
package pom

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/jargo-build/jargo/internal/jerr"
)

// Dependency is one <dependency> entry, either a direct dependency or a
// <dependencyManagement> entry.
type Dependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Type       string `xml:"type"`
	Scope      string `xml:"scope"`
	Optional   string `xml:"optional"`
	Exclusions struct {
		Exclusion []Exclusion `xml:"exclusion"`
	} `xml:"exclusions"`
}

// Exclusion names a (group, artifact) pruned from a dependency's transitive
// subtree (spec §4.1 Phase 3).
type Exclusion struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
}

func (e Exclusion) Matches(group, artifact string) bool {
	return (e.GroupID == "*" || e.GroupID == group) && (e.ArtifactID == "*" || e.ArtifactID == artifact)
}

// DependencyManagement is a <dependencyManagement> block: default versions
// and scopes for dependencies that omit them, plus imported BOMs.
type DependencyManagement struct {
	Dependencies []Dependency `xml:"dependencies>dependency"`
}

// Property is one <properties> key/value pair. The XML element name is the
// key; its character data is the value.
type Property struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// POM is a decoded Maven project descriptor, already merged with its parent
// chain and with ${property} references in dependency versions resolved.
type POM struct {
	XMLName              xml.Name               `xml:"project"`
	ModelVersion         string                 `xml:"modelVersion"`
	Packaging            string                 `xml:"packaging"`
	GroupID              string                 `xml:"groupId"`
	ArtifactID           string                 `xml:"artifactId"`
	Version              string                 `xml:"version"`
	Parent               *ParentRef             `xml:"parent"`
	Properties           struct {
		Entries []Property `xml:",any"`
	} `xml:"properties"`
	Dependencies         []Dependency           `xml:"dependencies>dependency"`
	DependencyManagement *DependencyManagement  `xml:"dependencyManagement"`

	props map[string]string // merged property scope, built by resolveParentChain
}

// ParentRef is a POM's <parent> pointer.
type ParentRef struct {
	GroupID      string `xml:"groupId"`
	ArtifactID   string `xml:"artifactId"`
	Version      string `xml:"version"`
	RelativePath string `xml:"relativePath"`
}

var propertyPattern = regexp.MustCompile(`\$\{([a-zA-Z0-9._-]+)\}`)

// Fetcher retrieves the raw POM XML bytes for a coordinate, used to walk
// <parent> chains and resolve <scope>import</scope> BOM entries. The
// resolver supplies one backed by the artifact cache (which in turn
// consults Maven Central).
type Fetcher func(group, artifact, version string) ([]byte, error)

// Decode parses raw POM XML into a POM, without resolving its parent chain
// or substituting properties. Load builds on it.
func Decode(data []byte) (*POM, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel
	var p POM
	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding POM XML: %w", err)
	}
	if p.DependencyManagement == nil {
		p.DependencyManagement = &DependencyManagement{}
	}
	return &p, nil
}

// Load decodes a POM and fully resolves it: parent chain merged,
// dependencyManagement import BOMs merged, ${property} references in
// dependency versions substituted. chain is the coordinate chain walked so
// far (root first), used only to build a MissingParentError.
func Load(data []byte, group, artifact, version string, fetch Fetcher, chain []string) (*POM, error) {
	p, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if p.GroupID == "" {
		p.GroupID = group
	}
	if p.Version == "" {
		p.Version = version
	}
	if p.ArtifactID == "" {
		p.ArtifactID = artifact
	}

	p.props = map[string]string{}
	for _, prop := range p.Properties.Entries {
		p.props[prop.XMLName.Local] = prop.Value
	}

	if p.Parent != nil {
		parentChain := append(append([]string{}, chain...), fmt.Sprintf("%s:%s:%s", p.Parent.GroupID, p.Parent.ArtifactID, p.Parent.Version))
		parentData, err := fetch(p.Parent.GroupID, p.Parent.ArtifactID, p.Parent.Version)
		if err != nil {
			return nil, &jerr.MissingParentError{Chain: parentChain, Err: err}
		}
		parent, err := Load(parentData, p.Parent.GroupID, p.Parent.ArtifactID, p.Parent.Version, fetch, parentChain)
		if err != nil {
			return nil, err
		}
		if p.GroupID == "" {
			p.GroupID = parent.GroupID
		}
		if p.Version == "" {
			p.Version = parent.Version
		}
		mergeProperties(p, parent)
		mergeDependencyManagement(p.DependencyManagement, parent.DependencyManagement)
		p.props["project.parent.version"] = parent.Version
	}
	p.props["project.version"] = p.Version
	p.props["project.groupId"] = p.GroupID
	p.props["project.artifactId"] = p.ArtifactID

	// Resolve <scope>import</scope> BOM entries: each contributes its own
	// dependencyManagement into ours (spec §4.1 Phase 3).
	for i := 0; i < len(p.DependencyManagement.Dependencies); i++ {
		dm := &p.DependencyManagement.Dependencies[i]
		dm.Version = p.Expand(dm.Version)
		if dm.Scope == "import" && dm.Type == "pom" {
			bomData, err := fetch(dm.GroupID, dm.ArtifactID, dm.Version)
			if err != nil {
				return nil, &jerr.MissingParentError{Chain: append(chain, fmt.Sprintf("%s:%s:%s", dm.GroupID, dm.ArtifactID, dm.Version)), Err: err}
			}
			bom, err := Load(bomData, dm.GroupID, dm.ArtifactID, dm.Version, fetch, chain)
			if err != nil {
				return nil, err
			}
			mergeDependencyManagement(p.DependencyManagement, bom.DependencyManagement)
		}
	}

	// Fill in missing dependency versions from dependencyManagement, then
	// expand ${property} references in every dependency version.
	for i := range p.Dependencies {
		dep := &p.Dependencies[i]
		if dep.Version == "" {
			if managed := p.findManaged(dep.GroupID, dep.ArtifactID); managed != nil {
				dep.Version = managed.Version
			}
		}
		if dep.Version != "" {
			dep.Version = p.Expand(dep.Version)
		}
	}

	return p, nil
}

// metadataVersioning is the <versioning><versions><version> list from a
// group/artifact's maven-metadata.xml, the concrete candidates a version
// range is resolved against (spec §4.1 Phase 3).
type metadataVersioning struct {
	Versioning struct {
		Versions []string `xml:"versions>version"`
	} `xml:"versioning"`
}

// ParseMetadataVersions decodes a maven-metadata.xml document into its
// listed concrete version strings, in file order.
func ParseMetadataVersions(data []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel
	var meta metadataVersioning
	if err := decoder.Decode(&meta); err != nil {
		return nil, fmt.Errorf("decoding maven-metadata.xml: %w", err)
	}
	return meta.Versioning.Versions, nil
}

func (p *POM) findManaged(group, artifact string) *Dependency {
	if p.DependencyManagement == nil {
		return nil
	}
	for i := range p.DependencyManagement.Dependencies {
		d := &p.DependencyManagement.Dependencies[i]
		if d.GroupID == group && d.ArtifactID == artifact {
			return d
		}
	}
	return nil
}

// Expand substitutes every ${property} reference in s against this POM's
// merged property scope (child overrides parent). Unresolvable references
// are left as-is, matching Maven's own behavior.
func (p *POM) Expand(s string) string {
	if p.props == nil || !strings.Contains(s, "${") {
		return s
	}
	return propertyPattern.ReplaceAllStringFunc(s, func(match string) string {
		key := propertyPattern.FindStringSubmatch(match)[1]
		if v, ok := p.props[key]; ok {
			return v
		}
		return match
	})
}

func mergeProperties(child, parent *POM) {
	merged := map[string]string{}
	for k, v := range parent.props {
		merged[k] = v
	}
	for k, v := range child.props {
		merged[k] = v
	}
	child.props = merged
}

// mergeDependencyManagement adds every parent entry not already present in
// child, keyed on (group, artifact); child entries always win.
func mergeDependencyManagement(child, parent *DependencyManagement) {
	if parent == nil {
		return
	}
	seen := make(map[string]bool, len(child.Dependencies))
	for _, d := range child.Dependencies {
		seen[d.GroupID+":"+d.ArtifactID] = true
	}
	for _, d := range parent.Dependencies {
		key := d.GroupID + ":" + d.ArtifactID
		if !seen[key] {
			child.Dependencies = append(child.Dependencies, d)
			seen[key] = true
		}
	}
}
