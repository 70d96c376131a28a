package analyzer

import (
	"context"
	"path/filepath"

	"github.com/getlawrence/qmaid/internal/collector"
	"github.com/getlawrence/qmaid/internal/domain"
	"github.com/getlawrence/qmaid/internal/javasrc"
)

// FailureImports is recorded for sources whose imports could not be read
const FailureImports = "Can not collect import statements from this file."

// expandWithChildren sets the possible packages and classes of every
// blacklisted dependency. A direct dependency of the project also provides
// the packages and classes of its direct children.
func expandWithChildren(roots []*domain.DependencyNode, deps, blacklist []*domain.ProjectDependency) {
	for _, entry := range blacklist {
		entry.AllPossiblePackages = append([]string(nil), entry.Packages...)
		entry.AllPossibleClasses = append([]string(nil), entry.Classes...)

		root := findRoot(roots, entry.Coordinate)
		if root == nil {
			continue
		}
		for _, child := range root.Children {
			for _, dep := range deps {
				if dep.Coordinate.SameArtifact(child.Coordinate) {
					entry.AllPossiblePackages = append(entry.AllPossiblePackages, dep.Packages...)
					entry.AllPossibleClasses = append(entry.AllPossibleClasses, dep.Classes...)
					break
				}
			}
		}
	}
}

func findRoot(roots []*domain.DependencyNode, c domain.Coordinate) *domain.DependencyNode {
	for _, root := range roots {
		if root.Coordinate.SameArtifact(c) {
			return root
		}
	}
	return nil
}

// measureOccurrences counts how often blacklisted dependencies are imported
// by the sources below dir and returns the number of sources scanned. Only a
// canceled context is returned as an error.
func (a *Analyzer) measureOccurrences(ctx context.Context, dir string, exclude []string, roots []*domain.DependencyNode, deps, blacklist []*domain.ProjectDependency, failures *collector.Failures) (int, error) {
	expandWithChildren(roots, deps, blacklist)

	scanned := 0
	err := javasrc.WalkSources(dir, exclude, func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		imports, err := javasrc.Imports(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failures.Add(path, FailureImports)
			a.log.Debugf("Can not collect import statements from file %s: %v", path, err)
			return nil
		}
		scanned++
		countImports(filepath.Base(path), imports, blacklist)
		return nil
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return scanned, ctxErr
	}
	if err != nil {
		failures.Add(dir, "Can not collect import statements from this entrypoint recursively.")
		a.log.Debugf("Occurrence measurement in %s stopped: %v", dir, err)
	}
	return scanned, nil
}

// countImports adds one occurrence per blacklisted dependency used by the
// file. Wildcard imports are matched against packages, all others against
// classes. Further imports of an already counted dependency are added to its
// occurrence for this file.
func countImports(file string, imports []javasrc.Import, blacklist []*domain.ProjectDependency) {
	counted := map[*domain.ProjectDependency]int{}
	for _, imp := range imports {
		for _, dep := range blacklist {
			var match bool
			if imp.Wildcard {
				match = dep.PossiblyProvidesPackage(imp.Name)
			} else {
				match = dep.PossiblyProvidesClass(imp.Name)
			}
			if !match {
				continue
			}
			if idx, ok := counted[dep]; ok {
				occ := &dep.Occurrences[idx]
				if !containsImport(occ.Imports, imp.String()) {
					occ.Imports = append(occ.Imports, imp.String())
				}
				continue
			}
			dep.Occurrences = append(dep.Occurrences, domain.Occurrence{File: file, Imports: []string{imp.String()}})
			counted[dep] = len(dep.Occurrences) - 1
		}
	}
}

func containsImport(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
