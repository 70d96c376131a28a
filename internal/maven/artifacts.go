package maven

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/getlawrence/qmaid/internal/domain"
)

// CollectArtifacts flattens the dependency trees into a list without
// duplicates. Each root comes first, followed by its branch depth first. A
// child whose jar cannot be located is recorded as a failure and its branch
// is not followed.
func (r *Repository) CollectArtifacts(ctx context.Context, roots []*domain.DependencyNode, failures FailureRecorder) []domain.Artifact {
	var artifacts []domain.Artifact
	seen := map[string]bool{}

	for _, root := range roots {
		if ctx.Err() != nil {
			return artifacts
		}
		if !seen[root.Coordinate.String()] {
			seen[root.Coordinate.String()] = true
			jar, err := r.Jar(ctx, root.Coordinate)
			if err != nil {
				failures.Add(root.Coordinate.String(), FailureJarMissing)
				r.log.Debugf("Could not find jar file for artifact %s: %v", root.Coordinate, err)
			}
			root.File = jar
			artifacts = append(artifacts, domain.Artifact{Coordinate: root.Coordinate, File: jar})
		}

		for _, child := range root.Children {
			child.Walk(func(node *domain.DependencyNode, _ int) bool {
				key := node.Coordinate.String()
				if seen[key] {
					return false
				}
				jar, err := r.Jar(ctx, node.Coordinate)
				if err != nil {
					failures.Add(key, FailureJarMissing)
					r.log.Debugf("Could not find jar file for artifact %s: %v", key, err)
					return false
				}
				seen[key] = true
				node.File = jar
				artifacts = append(artifacts, domain.Artifact{Coordinate: node.Coordinate, File: jar})
				return true
			})
		}
	}
	return artifacts
}

// IndexArtifacts creates a project dependency per artifact, filled with the
// classes and packages of its jar
func IndexArtifacts(artifacts []domain.Artifact, failures FailureRecorder) []*domain.ProjectDependency {
	deps := make([]*domain.ProjectDependency, 0, len(artifacts))
	for _, a := range artifacts {
		dep := domain.NewProjectDependency(a.Coordinate)
		if a.File != "" {
			if _, err := os.Stat(a.File); err == nil {
				if err := IndexJar(dep, a.File); err != nil {
					failures.Add(a.Coordinate.String(), FailureJarUnreadable)
				}
			}
		}
		deps = append(deps, dep)
	}
	return deps
}

// IndexJar adds every top-level class of the jar whose name contains the
// dependency's groupId
func IndexJar(dep *domain.ProjectDependency, jarPath string) error {
	zr, err := zip.OpenReader(jarPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", jarPath, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		name := f.Name
		if f.FileInfo().IsDir() || !strings.HasSuffix(name, ".class") || strings.Contains(name, "$") {
			continue
		}
		dotted := strings.ReplaceAll(name, "/", ".")
		if !strings.Contains(dotted, dep.Coordinate.GroupID) {
			continue
		}
		dep.AddClass(strings.TrimSuffix(dotted, ".class"))
	}
	return nil
}
