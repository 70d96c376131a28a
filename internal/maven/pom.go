package maven

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/getlawrence/qmaid/internal/domain"
)

// Model is the subset of a pom.xml needed to build a dependency tree
type Model struct {
	GroupID              string       `xml:"groupId"`
	ArtifactID           string       `xml:"artifactId"`
	Version              string       `xml:"version"`
	Name                 string       `xml:"name"`
	Packaging            string       `xml:"packaging"`
	Parent               *Parent      `xml:"parent"`
	Properties           Properties   `xml:"properties"`
	Dependencies         []Dependency `xml:"dependencies>dependency"`
	DependencyManagement []Dependency `xml:"dependencyManagement>dependencies>dependency"`

	// Location of the pom.xml the model was read from, empty when parsed from bytes
	Path string `xml:"-"`
}

// Parent references the parent POM
type Parent struct {
	GroupID      string  `xml:"groupId"`
	ArtifactID   string  `xml:"artifactId"`
	Version      string  `xml:"version"`
	RelativePath *string `xml:"relativePath"`
}

// Coordinate returns the parent's coordinate
func (p *Parent) Coordinate() domain.Coordinate {
	return domain.Coordinate{GroupID: p.GroupID, ArtifactID: p.ArtifactID, Version: p.Version}
}

// Dependency is a <dependency> element
type Dependency struct {
	GroupID    string      `xml:"groupId"`
	ArtifactID string      `xml:"artifactId"`
	Version    string      `xml:"version"`
	Type       string      `xml:"type"`
	Classifier string      `xml:"classifier"`
	Scope      string      `xml:"scope"`
	Optional   string      `xml:"optional"`
	Exclusions []Exclusion `xml:"exclusions>exclusion"`
}

// Exclusion is an <exclusion> element, "*" matches everything
type Exclusion struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
}

// Matches reports whether the exclusion applies to groupId:artifactId
func (e Exclusion) Matches(groupID, artifactID string) bool {
	return (e.GroupID == "*" || e.GroupID == groupID) && (e.ArtifactID == "*" || e.ArtifactID == artifactID)
}

// Key returns groupId:artifactId
func (d Dependency) Key() string {
	return d.GroupID + ":" + d.ArtifactID
}

// IsOptional reports whether <optional>true</optional> is set
func (d Dependency) IsOptional() bool {
	return strings.TrimSpace(d.Optional) == "true"
}

// EffectiveScope returns the scope, "compile" when unset
func (d Dependency) EffectiveScope() string {
	if d.Scope == "" {
		return "compile"
	}
	return d.Scope
}

// Coordinate converts the dependency to a coordinate
func (d Dependency) Coordinate() domain.Coordinate {
	return domain.Coordinate{
		GroupID:    d.GroupID,
		ArtifactID: d.ArtifactID,
		Version:    d.Version,
		Classifier: d.Classifier,
	}
}

// Properties holds the free-form <properties> children
type Properties map[string]string

// UnmarshalXML collects every child element as name -> text
func (p *Properties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	props := Properties{}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &t); err != nil {
				return err
			}
			props[t.Name.Local] = strings.TrimSpace(value)
		case xml.EndElement:
			*p = props
			return nil
		}
	}
}

// ParseModel parses pom.xml content
func ParseModel(data []byte) (*Model, error) {
	var m Model
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse pom: %w", err)
	}
	m.trim()
	return &m, nil
}

// ReadModel reads and parses a pom.xml file
func ReadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := ParseModel(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Path = path
	return m, nil
}

func (m *Model) trim() {
	m.GroupID = strings.TrimSpace(m.GroupID)
	m.ArtifactID = strings.TrimSpace(m.ArtifactID)
	m.Version = strings.TrimSpace(m.Version)
	if m.Parent != nil {
		m.Parent.GroupID = strings.TrimSpace(m.Parent.GroupID)
		m.Parent.ArtifactID = strings.TrimSpace(m.Parent.ArtifactID)
		m.Parent.Version = strings.TrimSpace(m.Parent.Version)
	}
	trimDeps(m.Dependencies)
	trimDeps(m.DependencyManagement)
}

func trimDeps(deps []Dependency) {
	for i := range deps {
		d := &deps[i]
		d.GroupID = strings.TrimSpace(d.GroupID)
		d.ArtifactID = strings.TrimSpace(d.ArtifactID)
		d.Version = strings.TrimSpace(d.Version)
		d.Type = strings.TrimSpace(d.Type)
		d.Classifier = strings.TrimSpace(d.Classifier)
		d.Scope = strings.TrimSpace(d.Scope)
	}
}

// EffectiveGroupID falls back to the parent's groupId
func (m *Model) EffectiveGroupID() string {
	if m.GroupID == "" && m.Parent != nil {
		return m.Parent.GroupID
	}
	return m.GroupID
}

// EffectiveVersion falls back to the parent's version
func (m *Model) EffectiveVersion() string {
	if m.Version == "" && m.Parent != nil {
		return m.Parent.Version
	}
	return m.Version
}

// Coordinate returns the project coordinate with parent fallback
func (m *Model) Coordinate() domain.Coordinate {
	return domain.Coordinate{
		GroupID:    m.EffectiveGroupID(),
		ArtifactID: m.ArtifactID,
		Version:    m.EffectiveVersion(),
	}
}

// ProjectNameUnavailable is reported when the project coordinate is incomplete
const ProjectNameUnavailable = "Project name not available"

// Identifier returns groupId:artifactId:version of the project
func (m *Model) Identifier() string {
	c := m.Coordinate()
	if c.GroupID == "" || c.ArtifactID == "" || c.Version == "" {
		return ProjectNameUnavailable
	}
	return c.String()
}

// JavaVersion returns the java.version property or "undefined"
func (m *Model) JavaVersion() string {
	if v, ok := m.Properties["java.version"]; ok && v != "" {
		return v
	}
	return "undefined"
}
