package collector

import (
	"github.com/getlawrence/qmaid/internal/domain"
)

// BuildBlacklist marks the dependencies affected by the issues and returns
// them in the order they were first marked. An issue that matches no
// dependency is flagged as a general issue.
func BuildBlacklist(issues []*domain.MtaIssue, deps []*domain.ProjectDependency) []*domain.ProjectDependency {
	var blacklist []*domain.ProjectDependency
	listed := map[*domain.ProjectDependency]bool{}

	mark := func(dep *domain.ProjectDependency, issue *domain.MtaIssue) {
		dep.Blacklisted = true
		dep.BlacklistReason = issue.Description
		if !listed[dep] {
			listed[dep] = true
			blacklist = append(blacklist, dep)
		}
	}

	for _, issue := range issues {
		general := true

		for _, id := range issue.MavenIdentifiers {
			for _, dep := range deps {
				if dep.Coordinate.GroupID == id.GroupID && dep.Coordinate.ArtifactID == id.ArtifactID {
					mark(dep, issue)
					general = false
					break
				}
			}
		}

		for _, pkg := range issue.Packages {
			for _, dep := range deps {
				if dep.ShipsClassOrPackage(pkg) {
					mark(dep, issue)
					general = false
					break
				}
			}
		}

		issue.GeneralIssue = general
	}
	return blacklist
}
