package maven

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/getlawrence/qmaid/internal/domain"
)

var propertyPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// maximum nesting of ${...} references that is resolved
const maxInterpolationPasses = 10

// EffectiveModel builds the effective model of a project pom.xml: parents are
// merged, properties interpolated and managed versions applied.
func (r *Repository) EffectiveModel(ctx context.Context, pomPath string) (*Model, error) {
	m, err := ReadModel(pomPath)
	if err != nil {
		return nil, err
	}
	return r.effective(ctx, m, map[string]bool{}, map[string]bool{})
}

// EffectiveModelOf builds the effective model of an artifact from the repository
func (r *Repository) EffectiveModelOf(ctx context.Context, c domain.Coordinate) (*Model, error) {
	return r.effectiveOf(ctx, c, map[string]bool{})
}

func (r *Repository) effectiveOf(ctx context.Context, c domain.Coordinate, imports map[string]bool) (*Model, error) {
	key := c.String()
	if m, ok := r.models.Get(key); ok {
		return m, nil
	}
	if imports[key] {
		return nil, fmt.Errorf("cycle in imported BOMs at %s", key)
	}
	imports[key] = true
	defer delete(imports, key)

	raw, err := r.Pom(ctx, c)
	if err != nil {
		return nil, err
	}
	m, err := r.effective(ctx, raw, map[string]bool{}, imports)
	if err != nil {
		return nil, err
	}
	r.models.Add(key, m)
	return m, nil
}

func (r *Repository) effective(ctx context.Context, m *Model, seen, imports map[string]bool) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	self := m.Coordinate().String()
	if seen[self] {
		return nil, fmt.Errorf("cycle in parent hierarchy at %s", self)
	}
	seen[self] = true

	var parent *Model
	if m.Parent != nil {
		raw, err := r.parentModel(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("failed to read parent %s: %w", m.Parent.Coordinate(), err)
		}
		parent, err = r.effective(ctx, raw, seen, imports)
		if err != nil {
			return nil, err
		}
	}

	eff := &Model{
		GroupID:    m.EffectiveGroupID(),
		ArtifactID: m.ArtifactID,
		Version:    m.EffectiveVersion(),
		Name:       m.Name,
		Packaging:  m.Packaging,
		Parent:     m.Parent,
		Path:       m.Path,
		Properties: Properties{},
	}
	if parent != nil {
		for k, v := range parent.Properties {
			eff.Properties[k] = v
		}
	}
	for k, v := range m.Properties {
		eff.Properties[k] = v
	}
	eff.Properties["project.groupId"] = eff.GroupID
	eff.Properties["project.artifactId"] = eff.ArtifactID
	eff.Properties["project.version"] = eff.Version
	eff.Properties["pom.groupId"] = eff.GroupID
	eff.Properties["pom.version"] = eff.Version
	if m.Parent != nil {
		eff.Properties["project.parent.groupId"] = m.Parent.GroupID
		eff.Properties["project.parent.version"] = m.Parent.Version
	}
	eff.Version = eff.interpolate(eff.Version)
	eff.Properties["project.version"] = eff.Version

	// dependencyManagement: own entries first, then imported BOMs, then inherited
	managed := map[string]bool{}
	for _, d := range m.DependencyManagement {
		d = eff.interpolateDependency(d)
		if d.Scope == "import" && d.Type == "pom" {
			bom, err := r.effectiveOf(ctx, d.Coordinate(), imports)
			if err != nil {
				r.log.Debugf("Could not import BOM %s: %v", d.Coordinate(), err)
				continue
			}
			for _, bd := range bom.DependencyManagement {
				if !managed[bd.Key()] {
					managed[bd.Key()] = true
					eff.DependencyManagement = append(eff.DependencyManagement, bd)
				}
			}
			continue
		}
		if !managed[d.Key()] {
			managed[d.Key()] = true
			eff.DependencyManagement = append(eff.DependencyManagement, d)
		}
	}
	if parent != nil {
		for _, d := range parent.DependencyManagement {
			if !managed[d.Key()] {
				managed[d.Key()] = true
				eff.DependencyManagement = append(eff.DependencyManagement, d)
			}
		}
	}

	declared := map[string]bool{}
	for _, d := range m.Dependencies {
		d = eff.applyManagement(eff.interpolateDependency(d))
		declared[d.Key()] = true
		eff.Dependencies = append(eff.Dependencies, d)
	}
	if parent != nil {
		for _, d := range parent.Dependencies {
			if !declared[d.Key()] {
				eff.Dependencies = append(eff.Dependencies, d)
			}
		}
	}

	return eff, nil
}

func (r *Repository) parentModel(ctx context.Context, m *Model) (*Model, error) {
	p := m.Parent
	if m.Path != "" {
		rel := filepath.Join("..", "pom.xml")
		if p.RelativePath != nil {
			rel = *p.RelativePath
		}
		if rel != "" {
			candidate := filepath.Join(filepath.Dir(m.Path), rel)
			if info, err := os.Stat(candidate); err == nil && info.IsDir() {
				candidate = filepath.Join(candidate, "pom.xml")
			}
			if local, err := ReadModel(candidate); err == nil {
				if local.EffectiveGroupID() == p.GroupID && local.ArtifactID == p.ArtifactID {
					return local, nil
				}
			}
		}
	}
	return r.Pom(ctx, p.Coordinate())
}

// ManagedVersion returns the version from dependencyManagement for groupId:artifactId
func (m *Model) ManagedVersion(key string) (string, bool) {
	for _, d := range m.DependencyManagement {
		if d.Key() == key && d.Version != "" {
			return d.Version, true
		}
	}
	return "", false
}

func (m *Model) applyManagement(d Dependency) Dependency {
	for _, md := range m.DependencyManagement {
		if md.Key() != d.Key() {
			continue
		}
		if d.Version == "" {
			d.Version = md.Version
		}
		if d.Scope == "" {
			d.Scope = md.Scope
		}
		if len(d.Exclusions) == 0 {
			d.Exclusions = md.Exclusions
		}
		break
	}
	return d
}

func (m *Model) interpolateDependency(d Dependency) Dependency {
	d.GroupID = m.interpolate(d.GroupID)
	d.ArtifactID = m.interpolate(d.ArtifactID)
	d.Version = m.interpolate(d.Version)
	d.Classifier = m.interpolate(d.Classifier)
	d.Scope = m.interpolate(d.Scope)
	d.Type = m.interpolate(d.Type)
	return d
}

// interpolate replaces ${name} with model properties. Unknown references are kept.
func (m *Model) interpolate(s string) string {
	for i := 0; i < maxInterpolationPasses; i++ {
		replaced := propertyPattern.ReplaceAllStringFunc(s, func(ref string) string {
			name := ref[2 : len(ref)-1]
			if v, ok := m.Properties[name]; ok {
				return v
			}
			return ref
		})
		if replaced == s {
			break
		}
		s = replaced
	}
	return s
}
