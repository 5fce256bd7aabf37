package manifest

import "testing"

const sampleToml = `
[package]
name = "demo"
version = "0.1.0"
type = "lib"
java = "17"

[dependencies]
"org.apache.commons:commons-lang3" = "3.14.0"
"org.postgresql:postgresql" = { version = "42.7.1", scope = "runtime" }
"com.google.guava:guava" = { version = "33.0.0-jre", expose = true }

[dev-dependencies]
"org.assertj:assertj-core" = "3.25.1"

[run]
jvm-args = ["-Xmx512m"]

[format]
indent = 2
`

func TestParseManifest(t *testing.T) {
	m, err := Parse([]byte(sampleToml), "/tmp/demo")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Package.Name != "demo" || m.Package.Version != "0.1.0" {
		t.Fatalf("unexpected package: %+v", m.Package)
	}
	if m.Package.Type != TypeLib {
		t.Fatalf("expected lib, got %s", m.Package.Type)
	}
	if m.Package.MainClass != "" {
		t.Fatalf("lib project should not default main-class, got %q", m.Package.MainClass)
	}
	if m.Package.BasePackage != "demo" {
		t.Fatalf("expected default base-package 'demo', got %q", m.Package.BasePackage)
	}
	if len(m.Dependencies) != 3 {
		t.Fatalf("expected 3 dependencies, got %d", len(m.Dependencies))
	}
	var guava *Dependency
	for i := range m.Dependencies {
		if m.Dependencies[i].Artifact == "guava" {
			guava = &m.Dependencies[i]
		}
	}
	if guava == nil || !guava.Expose {
		t.Fatalf("expected guava dependency with expose=true")
	}
	if len(m.DevDependencies) != 1 {
		t.Fatalf("expected 1 dev-dependency, got %d", len(m.DevDependencies))
	}
	if len(m.JvmArgs) != 1 || m.JvmArgs[0] != "-Xmx512m" {
		t.Fatalf("unexpected jvm-args: %v", m.JvmArgs)
	}
	if m.FormatIndent != 2 {
		t.Fatalf("expected format indent 2, got %d", m.FormatIndent)
	}
}

func TestParseManifestDefaults(t *testing.T) {
	m, err := Parse([]byte(`
[package]
name = "app1"
version = "1.0.0"
java = "21"
`), "/tmp/app1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Package.Type != TypeApp {
		t.Fatalf("expected default type app, got %s", m.Package.Type)
	}
	if m.Package.MainClass != "Main" {
		t.Fatalf("expected default main-class Main, got %q", m.Package.MainClass)
	}
	if m.FormatIndent != 4 {
		t.Fatalf("expected default indent 4, got %d", m.FormatIndent)
	}
}

func TestParseManifestInvalidVersionNotSemver(t *testing.T) {
	_, err := Parse([]byte(`
[package]
name = "app1"
version = "not-a-version!!"
java = "21"
`), "/tmp/app1")
	if err == nil {
		t.Fatal("expected error for non-semver [package] version")
	}
}

func TestParseManifestMissingRequired(t *testing.T) {
	_, err := Parse([]byte(`[package]
name = "x"
`), "/tmp/x")
	if err == nil {
		t.Fatal("expected error for missing version/java")
	}
}

func TestSerializeParseRoundTrip(t *testing.T) {
	m, err := Parse([]byte(sampleToml), "/tmp/demo")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := Serialize(m)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	m2, err := Parse(out, "/tmp/demo")
	if err != nil {
		t.Fatalf("Parse(Serialize(m)): %v\n%s", err, out)
	}
	if m2.Package != m.Package {
		t.Fatalf("package mismatch after round-trip: %+v vs %+v", m2.Package, m.Package)
	}
	if len(m2.Dependencies) != len(m.Dependencies) {
		t.Fatalf("dependency count mismatch: %d vs %d", len(m2.Dependencies), len(m.Dependencies))
	}
	byKey := func(deps []Dependency) map[string]Dependency {
		out := make(map[string]Dependency, len(deps))
		for _, d := range deps {
			out[d.Group+":"+d.Artifact] = d
		}
		return out
	}
	want, got := byKey(m.Dependencies), byKey(m2.Dependencies)
	for k, w := range want {
		g, ok := got[k]
		if !ok || g != w {
			t.Fatalf("dependency %q mismatch after round-trip: got %+v, want %+v", k, g, w)
		}
	}
	if len(m2.DevDependencies) != len(m.DevDependencies) {
		t.Fatalf("dev-dependency count mismatch: %d vs %d", len(m2.DevDependencies), len(m.DevDependencies))
	}
	if len(m2.JvmArgs) != len(m.JvmArgs) || m2.JvmArgs[0] != m.JvmArgs[0] {
		t.Fatalf("jvm-args mismatch after round-trip: %v vs %v", m2.JvmArgs, m.JvmArgs)
	}
	if m2.FormatIndent != m.FormatIndent {
		t.Fatalf("format indent mismatch after round-trip: %d vs %d", m2.FormatIndent, m.FormatIndent)
	}
}

func TestParseManifestInvalidScope(t *testing.T) {
	_, err := Parse([]byte(`
[package]
name = "x"
version = "1.0"
java = "17"

[dependencies]
"g:a" = { version = "1.0", scope = "provided" }
`), "/tmp/x")
	if err == nil {
		t.Fatal("expected error for provided scope (non-goal, not accepted in manifest)")
	}
}
