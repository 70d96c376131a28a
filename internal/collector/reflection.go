package collector

import (
	"github.com/getlawrence/qmaid/internal/domain"
	"github.com/getlawrence/qmaid/internal/mta"
)

// FailureReflectionUnassigned is recorded for jars that are not part of the dependency tree
const FailureReflectionUnassigned = "Reflection usage found for this artifact, but it could not be assigned to any dependency in the dependency tree."

// Reflection collects reflection usage in the project and in its dependencies
type Reflection struct {
	project      []domain.ReflectionUsageInProject
	dependencies []*domain.ReflectionUsageInDependency
}

// NewReflection collects the reflection rows of the project's MTA run.
// Paths are stored relative to projectDir.
func NewReflection(projectDir string, rows []mta.Row) *Reflection {
	r := &Reflection{}
	for _, row := range rows {
		if row.Category() != domain.CategoryReflection {
			continue
		}
		usage := domain.ReflectionUsageInProject{
			ClassName: row.ClassName(),
			Path:      row.RelativePath(projectDir),
		}
		if !containsProjectUsage(r.project, usage) {
			r.project = append(r.project, usage)
		}
	}
	return r
}

func containsProjectUsage(list []domain.ReflectionUsageInProject, u domain.ReflectionUsageInProject) bool {
	for _, v := range list {
		if v == u {
			return true
		}
	}
	return false
}

// AddDependencyRows groups the reflection rows of a library run by jar file
func (r *Reflection) AddDependencyRows(rows []mta.Row) {
	for _, row := range rows {
		if row.Category() != domain.CategoryReflection {
			continue
		}
		jar := row.JarFile()
		var usage *domain.ReflectionUsageInDependency
		for _, u := range r.dependencies {
			if u.Artifact == jar {
				usage = u
				break
			}
		}
		if usage == nil {
			usage = &domain.ReflectionUsageInDependency{Artifact: jar}
			r.dependencies = append(r.dependencies, usage)
		}
		usage.Classes = append(usage.Classes, row.ClassName())
	}
}

// MapJarsToArtifacts replaces jar file names with groupId:artifactId:version.
// Jars that match no artifact are dropped and recorded as failures.
func (r *Reflection) MapJarsToArtifacts(artifacts []domain.Artifact, failures *Failures) {
	mapped := make([]*domain.ReflectionUsageInDependency, 0, len(r.dependencies))
	for _, usage := range r.dependencies {
		var found *domain.Artifact
		for i := range artifacts {
			if artifacts[i].Coordinate.JarName() == usage.Artifact {
				found = &artifacts[i]
				break
			}
		}
		if found == nil {
			failures.Add(usage.Artifact, FailureReflectionUnassigned)
			continue
		}
		mapped = append(mapped, &domain.ReflectionUsageInDependency{
			Artifact: found.Coordinate.String(),
			Classes:  usage.Classes,
		})
	}
	r.dependencies = mapped
}

// InProject returns the reflection usage of project classes
func (r *Reflection) InProject() []domain.ReflectionUsageInProject {
	return r.project
}

// InDependencies returns the reflection usage grouped by dependency
func (r *Reflection) InDependencies() []*domain.ReflectionUsageInDependency {
	return r.dependencies
}
