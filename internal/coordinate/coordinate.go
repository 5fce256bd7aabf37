// Package coordinate defines the Maven (group, artifact, version) triple
// that identifies every dependency jargo resolves.
package coordinate

import (
	"fmt"
	"strings"
)

// Coordinate identifies a single artifact at a specific version.
type Coordinate struct {
	Group    string
	Artifact string
	Version  string
}

// Module is the (group, artifact) pair, ignoring version. Two Coordinates
// are module-equal when their Module values are equal.
type Module struct {
	Group    string
	Artifact string
}

// ModuleOf drops the version from a Coordinate.
func (c Coordinate) ModuleOf() Module {
	return Module{Group: c.Group, Artifact: c.Artifact}
}

// GAV renders the canonical "group:artifact:version" string.
func (c Coordinate) GAV() string {
	return GAV(c.Group, c.Artifact, c.Version)
}

// GA renders "group:artifact" (no version), the module identity string.
func (m Module) GA() string {
	return m.Group + ":" + m.Artifact
}

func (m Module) String() string { return m.GA() }

// GAV joins a group, artifact, and version into the canonical coordinate
// string used in manifests, logs, and error messages.
func GAV(group, artifact, version string) string {
	return group + ":" + artifact + ":" + version
}

// GroupPath converts a dot-separated Maven group id into the slash-separated
// path segment used in both the Maven Central URL layout and the local
// artifact cache layout.
func GroupPath(group string) string {
	return strings.ReplaceAll(group, ".", "/")
}

// Parse splits a "group:artifact" or "group:artifact:version" string.
// A two-part form yields a Coordinate with an empty Version.
func Parse(s string) (Coordinate, error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return Coordinate{}, fmt.Errorf("invalid coordinate %q, must be <group>:<artifact>", s)
		}
		return Coordinate{Group: parts[0], Artifact: parts[1]}, nil
	case 3:
		if parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return Coordinate{}, fmt.Errorf("invalid coordinate %q, must be <group>:<artifact>:<version>", s)
		}
		return Coordinate{Group: parts[0], Artifact: parts[1], Version: parts[2]}, nil
	default:
		return Coordinate{}, fmt.Errorf("invalid coordinate %q, must be <group>:<artifact>[:<version>]", s)
	}
}
