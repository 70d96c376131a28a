package domain

import "strings"

// Coordinate identifies a Maven artifact
type Coordinate struct {
	GroupID    string `json:"group_id" yaml:"group_id"`
	ArtifactID string `json:"artifact_id" yaml:"artifact_id"`
	Version    string `json:"version" yaml:"version"`
	Classifier string `json:"classifier,omitempty" yaml:"classifier,omitempty"`
}

// ParseCoordinate parses group:artifact[:version[:classifier]]
func ParseCoordinate(s string) (Coordinate, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Coordinate{}, false
	}
	c := Coordinate{GroupID: parts[0], ArtifactID: parts[1]}
	if len(parts) > 2 {
		c.Version = parts[2]
	}
	if len(parts) > 3 {
		c.Classifier = parts[3]
	}
	return c, true
}

// String returns groupId:artifactId:version
func (c Coordinate) String() string {
	return c.GroupID + ":" + c.ArtifactID + ":" + c.Version
}

// Key returns groupId:artifactId
func (c Coordinate) Key() string {
	return c.GroupID + ":" + c.ArtifactID
}

// JarName returns the file name of the artifact's jar in a repository
func (c Coordinate) JarName() string {
	return c.FileName("jar")
}

// FileName returns artifactId-version[-classifier].ext
func (c Coordinate) FileName(ext string) string {
	var b strings.Builder
	b.WriteString(c.ArtifactID)
	b.WriteByte('-')
	b.WriteString(c.Version)
	if c.Classifier != "" {
		b.WriteByte('-')
		b.WriteString(c.Classifier)
	}
	b.WriteByte('.')
	b.WriteString(ext)
	return b.String()
}

// SameArtifact compares group, artifact and version
func (c Coordinate) SameArtifact(o Coordinate) bool {
	return c.GroupID == o.GroupID && c.ArtifactID == o.ArtifactID && c.Version == o.Version
}

// DependencyNode is a node of a resolved dependency tree
type DependencyNode struct {
	Coordinate Coordinate        `json:"coordinate" yaml:"coordinate"`
	Scope      string            `json:"scope,omitempty" yaml:"scope,omitempty"`
	File       string            `json:"-" yaml:"-"`
	Children   []*DependencyNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// Walk visits the node and its descendants depth first. Returning false from
// fn stops descending into that node's children.
func (n *DependencyNode) Walk(fn func(node *DependencyNode, depth int) bool) {
	n.walk(fn, 0)
}

func (n *DependencyNode) walk(fn func(*DependencyNode, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

// Artifact is a resolved artifact with the location of its jar
type Artifact struct {
	Coordinate Coordinate `json:"coordinate" yaml:"coordinate"`
	File       string     `json:"file,omitempty" yaml:"file,omitempty"`
}

// Occurrence lists the imports of a blacklisted dependency in one source file
type Occurrence struct {
	File    string   `json:"file" yaml:"file"`
	Imports []string `json:"imports" yaml:"imports"`
}

// ProjectDependency is an artifact of the dependency tree together with the
// classes and packages it ships
type ProjectDependency struct {
	Coordinate          Coordinate   `json:"coordinate" yaml:"coordinate"`
	Packages            []string     `json:"-" yaml:"-"`
	Classes             []string     `json:"-" yaml:"-"`
	AllPossiblePackages []string     `json:"-" yaml:"-"`
	AllPossibleClasses  []string     `json:"-" yaml:"-"`
	Occurrences         []Occurrence `json:"occurrences,omitempty" yaml:"occurrences,omitempty"`
	Blacklisted         bool         `json:"blacklisted" yaml:"blacklisted"`
	BlacklistReason     string       `json:"blacklist_reason,omitempty" yaml:"blacklist_reason,omitempty"`
}

// NewProjectDependency creates a dependency without classes
func NewProjectDependency(c Coordinate) *ProjectDependency {
	return &ProjectDependency{Coordinate: c}
}

// AddClass records a fully qualified class name and its package
func (d *ProjectDependency) AddClass(fqn string) {
	d.Classes = append(d.Classes, fqn)
	idx := strings.LastIndex(fqn, ".")
	if idx < 0 {
		return
	}
	pkg := fqn[:idx]
	for _, p := range d.Packages {
		if p == pkg {
			return
		}
	}
	d.Packages = append(d.Packages, pkg)
}

// ShipsClassOrPackage reports whether name is one of the dependency's classes or packages
func (d *ProjectDependency) ShipsClassOrPackage(name string) bool {
	return contains(d.Classes, name) || contains(d.Packages, name)
}

// PossiblyProvidesPackage matches wildcard imports
func (d *ProjectDependency) PossiblyProvidesPackage(pkg string) bool {
	return contains(d.AllPossiblePackages, pkg)
}

// PossiblyProvidesClass matches single type imports
func (d *ProjectDependency) PossiblyProvidesClass(class string) bool {
	return contains(d.AllPossibleClasses, class)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
