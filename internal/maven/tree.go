package maven

import (
	"context"

	"github.com/getlawrence/qmaid/internal/domain"
	"github.com/getlawrence/qmaid/internal/logger"
)

// Failure descriptions recorded while building the dependency tree
const (
	FailureVersionUnknown = "Cannot resolve artifact because the version cannot be found out. " +
		"The remaining branch of the dependency tree cannot be built further for this dependency."
	FailureUnresolvable = "Could not resolve artifact. " +
		"The remaining branch of the dependency tree cannot be built further for this dependency."
	FailureJarMissing = "Could not find jar file in local maven repository. " +
		"Reflection analysis of this artifact is not possible."
	FailureJarUnreadable = "Could not find jar file in local maven repository. " +
		"Collecting classes and packages of this artifact is not possible."
)

// FailureRecorder receives analysis steps that could not be completed
type FailureRecorder interface {
	Add(subject, description string)
}

// TreeBuilder resolves the transitive dependencies of a project
type TreeBuilder struct {
	repo     *Repository
	failures FailureRecorder
	log      logger.Logger
}

// NewTreeBuilder creates a tree builder on top of repo
func NewTreeBuilder(repo *Repository, failures FailureRecorder, log logger.Logger) *TreeBuilder {
	if log == nil {
		log = logger.Nop{}
	}
	return &TreeBuilder{repo: repo, failures: failures, log: log}
}

type pending struct {
	node       *domain.DependencyNode
	model      *Model
	exclusions []Exclusion
}

// Build returns one tree per direct dependency of the effective project model
// whose scope is not test.
func (b *TreeBuilder) Build(ctx context.Context, project *Model) ([]*domain.DependencyNode, error) {
	var roots []*domain.DependencyNode
	for _, dep := range project.Dependencies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if dep.Scope == "test" || dep.Scope == "import" {
			continue
		}
		if dep.Version == "" {
			b.failures.Add(dep.Key(), FailureVersionUnknown)
			b.log.Debugf("Cannot resolve artifact %s. The version cannot be found out.", dep.Key())
			continue
		}

		coord := dep.Coordinate()
		model, err := b.repo.EffectiveModelOf(ctx, coord)
		if err != nil {
			b.failures.Add(coord.String(), FailureUnresolvable)
			b.log.Debugf("Could not resolve artifact %s: %v", coord, err)
			continue
		}

		root := &domain.DependencyNode{Coordinate: coord, Scope: dep.EffectiveScope()}
		b.expand(ctx, project, root, model, dep.Exclusions)
		roots = append(roots, root)
	}
	return roots, nil
}

// expand resolves the branch below root breadth first so that the nearest
// declaration of a groupId:artifactId wins.
func (b *TreeBuilder) expand(ctx context.Context, project *Model, root *domain.DependencyNode, model *Model, exclusions []Exclusion) {
	visited := map[string]bool{root.Coordinate.Key(): true}
	queue := []pending{{node: root, model: model, exclusions: exclusions}}

	for len(queue) > 0 {
		if ctx.Err() != nil {
			return
		}
		cur := queue[0]
		queue = queue[1:]

		for _, dep := range cur.model.Dependencies {
			scope := dep.EffectiveScope()
			if scope != "compile" && scope != "runtime" {
				continue
			}
			if dep.IsOptional() || excluded(cur.exclusions, dep) || visited[dep.Key()] {
				continue
			}
			if v, ok := project.ManagedVersion(dep.Key()); ok {
				dep.Version = v
			}
			if dep.Version == "" {
				b.log.Debugf("Skipping %s below %s: version unknown", dep.Key(), cur.node.Coordinate)
				continue
			}
			visited[dep.Key()] = true

			child := &domain.DependencyNode{Coordinate: dep.Coordinate(), Scope: scope}
			cur.node.Children = append(cur.node.Children, child)

			childModel, err := b.repo.EffectiveModelOf(ctx, child.Coordinate)
			if err != nil {
				b.log.Debugf("Could not resolve %s, its dependencies are not followed: %v", child.Coordinate, err)
				continue
			}
			childExclusions := append(append([]Exclusion{}, cur.exclusions...), dep.Exclusions...)
			queue = append(queue, pending{node: child, model: childModel, exclusions: childExclusions})
		}
	}
}

func excluded(exclusions []Exclusion, dep Dependency) bool {
	for _, e := range exclusions {
		if e.Matches(dep.GroupID, dep.ArtifactID) {
			return true
		}
	}
	return false
}
