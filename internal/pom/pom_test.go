package pom

import "testing"

const parentPOM = `<project>
  <groupId>com.example</groupId>
  <artifactId>parent</artifactId>
  <version>1.2.0</version>
  <properties>
    <guava.version>33.0.0-jre</guava.version>
  </properties>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>com.google.guava</groupId>
        <artifactId>guava</artifactId>
        <version>${guava.version}</version>
      </dependency>
    </dependencies>
  </dependencyManagement>
</project>`

const childPOM = `<project>
  <groupId>com.example</groupId>
  <artifactId>child</artifactId>
  <parent>
    <groupId>com.example</groupId>
    <artifactId>parent</artifactId>
    <version>1.2.0</version>
  </parent>
  <dependencies>
    <dependency>
      <groupId>com.google.guava</groupId>
      <artifactId>guava</artifactId>
    </dependency>
  </dependencies>
</project>`

func fakeFetch(data map[string][]byte) Fetcher {
	return func(group, artifact, version string) ([]byte, error) {
		return data[group+":"+artifact+":"+version], nil
	}
}

func TestLoadResolvesParentAndProperties(t *testing.T) {
	fetch := fakeFetch(map[string][]byte{
		"com.example:parent:1.2.0": []byte(parentPOM),
	})
	p, err := Load([]byte(childPOM), "com.example", "child", "1.0.0", fetch, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Version == "" {
		t.Fatalf("expected version inherited or supplied, got empty")
	}
	if len(p.Dependencies) != 1 {
		t.Fatalf("expected 1 dependency, got %d", len(p.Dependencies))
	}
	dep := p.Dependencies[0]
	if dep.Version != "33.0.0-jre" {
		t.Fatalf("expected managed+expanded version 33.0.0-jre, got %q", dep.Version)
	}
}

const bomPOM = `<project>
  <groupId>com.example</groupId>
  <artifactId>bom</artifactId>
  <version>1.0</version>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>org.postgresql</groupId>
        <artifactId>postgresql</artifactId>
        <version>42.7.1</version>
      </dependency>
    </dependencies>
  </dependencyManagement>
</project>`

const importerPOM = `<project>
  <groupId>com.example</groupId>
  <artifactId>app</artifactId>
  <version>1.0</version>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>com.example</groupId>
        <artifactId>bom</artifactId>
        <version>1.0</version>
        <type>pom</type>
        <scope>import</scope>
      </dependency>
    </dependencies>
  </dependencyManagement>
  <dependencies>
    <dependency>
      <groupId>org.postgresql</groupId>
      <artifactId>postgresql</artifactId>
    </dependency>
  </dependencies>
</project>`

func TestLoadResolvesImportedBOM(t *testing.T) {
	fetch := fakeFetch(map[string][]byte{
		"com.example:bom:1.0": []byte(bomPOM),
	})
	p, err := Load([]byte(importerPOM), "com.example", "app", "1.0", fetch, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(p.Dependencies) != 1 || p.Dependencies[0].Version != "42.7.1" {
		t.Fatalf("expected BOM-managed version 42.7.1, got %+v", p.Dependencies)
	}
}

func TestExpandLeavesUnknownPropertyAlone(t *testing.T) {
	p := &POM{props: map[string]string{"known": "1.0"}}
	if got := p.Expand("${unknown}"); got != "${unknown}" {
		t.Fatalf("expected unresolved property left as-is, got %q", got)
	}
	if got := p.Expand("${known}"); got != "1.0" {
		t.Fatalf("expected substitution, got %q", got)
	}
}

func TestParseMetadataVersionsReturnsConcreteVersions(t *testing.T) {
	xml := `<metadata>
  <groupId>g</groupId>
  <artifactId>a</artifactId>
  <versioning>
    <versions>
      <version>1.0</version>
      <version>1.5</version>
      <version>2.0</version>
    </versions>
  </versioning>
</metadata>`
	versions, err := ParseMetadataVersions([]byte(xml))
	if err != nil {
		t.Fatalf("ParseMetadataVersions: %v", err)
	}
	want := []string{"1.0", "1.5", "2.0"}
	if len(versions) != len(want) {
		t.Fatalf("got %v, want %v", versions, want)
	}
	for i := range want {
		if versions[i] != want[i] {
			t.Fatalf("got %v, want %v", versions, want)
		}
	}
}

func TestExclusionMatches(t *testing.T) {
	e := Exclusion{GroupID: "org.slf4j", ArtifactID: "*"}
	if !e.Matches("org.slf4j", "slf4j-api") {
		t.Fatal("expected wildcard artifact match")
	}
	if e.Matches("org.apache", "commons-lang3") {
		t.Fatal("unexpected match across groups")
	}
}
