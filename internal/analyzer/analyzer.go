package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/getlawrence/qmaid/internal/collector"
	"github.com/getlawrence/qmaid/internal/domain"
	"github.com/getlawrence/qmaid/internal/javasrc"
	"github.com/getlawrence/qmaid/internal/logger"
	"github.com/getlawrence/qmaid/internal/maven"
	"github.com/getlawrence/qmaid/internal/mta"
)

// FailureProjectAnalysis is recorded when MTA could not analyze the project sources
const FailureProjectAnalysis = "MTA analysis of the project failed. Migration issues, reflection and configuration usage are incomplete."

// Analyzer runs the migration analysis of a Spring Boot project
type Analyzer struct {
	commander mta.Commander
	log       logger.Logger
	now       func() time.Time
}

// New creates an analyzer that runs MTA through commander
func New(commander mta.Commander, log logger.Logger) *Analyzer {
	if log == nil {
		log = logger.Nop{}
	}
	return &Analyzer{commander: commander, log: log, now: time.Now}
}

// Analyze runs the complete analysis. Validation errors are returned before
// anything is written; problems with single artifacts or files are recorded
// as analysis failures instead.
func (a *Analyzer) Analyze(ctx context.Context, opts Options) (*domain.Analysis, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	started := a.now()
	analysis := &domain.Analysis{
		RunID:               uuid.New().String(),
		StartedAt:           started,
		ProjectDir:          opts.ProjectDir,
		WithoutDependencies: opts.WithoutDependencies,
	}
	failures := collector.NewFailures()

	repo, err := a.openRepository(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMavenRepoNotFound, err)
	}

	model, err := repo.EffectiveModel(ctx, opts.PomPath())
	if err != nil {
		return nil, fmt.Errorf("%w: %v. Please build the project with mvn package to load the dependencies in your local maven repository", ErrProjectModel, err)
	}
	analysis.ProjectIdentifier = model.Identifier()
	analysis.JavaVersion = model.JavaVersion()

	entryPoint, err := a.entryPoint(ctx, opts)
	if err != nil {
		return nil, err
	}
	analysis.EntryPoint = entryPoint

	analysis.ResultsDir = filepath.Join(opts.ResultsRoot, strconv.FormatInt(started.UnixMilli(), 10))
	if err := os.MkdirAll(analysis.ResultsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	a.log.Logf("Start the analysis\n")
	a.log.Logf("Project location: %s\n", opts.ProjectDir)
	a.log.Logf("Result folder: %s\n", analysis.ResultsDir)

	a.log.Logf("Building dependency tree...\n")
	roots, err := maven.NewTreeBuilder(repo, failures, a.log).Build(ctx, model)
	if err != nil {
		return nil, err
	}
	analysis.DependencyTree = roots
	artifacts := repo.CollectArtifacts(ctx, roots, failures)
	analysis.Dependencies = maven.IndexArtifacts(artifacts, failures)

	executor := mta.NewExecutor(a.commander, opts.MTAHome, opts.CustomRules, opts.Targets, a.log)
	projectOut := filepath.Join(analysis.ResultsDir, "mta", "project")
	rows := a.analyzeProject(ctx, executor, opts.ProjectDir, projectOut, failures)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	issues := collector.NewMtaIssues()
	issues.Add(rows)
	reflection := collector.NewReflection(opts.ProjectDir, rows)
	configuration := collector.NewConfiguration(opts.ProjectDir, rows)

	if !opts.WithoutDependencies {
		a.log.Logf("Start scanning dependencies. %d dependencies found\n", len(artifacts))
		depRows, err := a.analyzeDependencies(ctx, executor, artifacts, filepath.Join(analysis.ResultsDir, "mta", "dependencies"), opts.Concurrency, failures)
		if err != nil {
			return nil, err
		}
		for _, r := range depRows {
			issues.Add(r)
			reflection.AddDependencyRows(r)
		}
		reflection.MapJarsToArtifacts(artifacts, failures)
	}

	index, err := mta.LoadRules(executor.RuleDirs()...)
	if err != nil {
		a.log.Debugf("Some MTA rules could not be loaded: %v", err)
	}
	issues.Resolve(index)

	analysis.Blacklist = collector.BuildBlacklist(issues.List(), analysis.Dependencies)

	entryDir := opts.ProjectDir
	if entryPoint != nil {
		entryDir = filepath.Dir(entryPoint.FilePath)
	}
	scanned, err := a.measureOccurrences(ctx, entryDir, opts.ExcludeDirs, roots, analysis.Dependencies, analysis.Blacklist, failures)
	if err != nil {
		return nil, err
	}
	analysis.TotalClassesScanned = scanned

	analysis.Issues = issues.List()
	analysis.GeneralIssues = issues.General()
	analysis.ReflectionInProject = reflection.InProject()
	analysis.ReflectionInDependencies = reflection.InDependencies()
	analysis.ConfigurationInjection = configuration.Injection
	analysis.ConfigurationProperties = configuration.Properties
	analysis.Failures = failures.List()
	analysis.FinishedAt = a.now()

	return analysis, nil
}

func (a *Analyzer) openRepository(opts Options) (*maven.Repository, error) {
	repoOpts := []maven.Option{maven.WithLogger(a.log)}
	if !opts.Offline && len(opts.RemoteRepositories) > 0 {
		repoOpts = append(repoOpts, maven.WithRemote(maven.NewRemote(opts.RemoteRepositories, opts.RequestsPerSecond, nil)))
	}
	return maven.NewRepository(opts.MavenRepo, opts.ModelCacheSize, repoOpts...)
}

func (a *Analyzer) entryPoint(ctx context.Context, opts Options) (*domain.EntryPoint, error) {
	if opts.EntryPoint != "" {
		abs, err := filepath.Abs(opts.EntryPoint)
		if err != nil {
			abs = opts.EntryPoint
		}
		return &domain.EntryPoint{
			FilePath:   abs,
			ClassName:  strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs)),
			Confidence: 1.0,
		}, nil
	}

	a.log.Logf("Searching for the @SpringBootApplication class...\n")
	ep, err := javasrc.FindEntryPoint(ctx, opts.ProjectDir, opts.ExcludeDirs)
	if err != nil {
		return nil, fmt.Errorf("failed to search entry point: %w", err)
	}
	if ep == nil {
		return nil, fmt.Errorf("%w: no class annotated with @SpringBootApplication in %s", ErrEntryPointNotFound, opts.ProjectDir)
	}
	a.log.Debugf("Detected entry point %s (%s)", ep.ClassName, ep.FilePath)
	return ep, nil
}

func (a *Analyzer) analyzeProject(ctx context.Context, executor *mta.Executor, projectDir, outDir string, failures *collector.Failures) []mta.Row {
	if err := executor.AnalyzeProject(ctx, projectDir, outDir); err != nil {
		a.log.Logf("MTA execution failed: %v\n", err)
		failures.Add(projectDir, FailureProjectAnalysis)
		return nil
	}
	rows, err := mta.ReadOutput(outDir)
	if err != nil {
		a.log.Debugf("Could not read MTA output: %v", err)
		failures.Add(projectDir, FailureProjectAnalysis)
		return nil
	}
	return rows
}

// analyzeDependencies runs MTA for every artifact jar, each into its own
// output directory. The returned rows keep the artifact order.
func (a *Analyzer) analyzeDependencies(ctx context.Context, executor *mta.Executor, artifacts []domain.Artifact, outRoot string, concurrency int, failures *collector.Failures) ([][]mta.Row, error) {
	results := make([][]mta.Row, len(artifacts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, artifact := range artifacts {
		if artifact.File == "" {
			continue
		}
		g.Go(func() error {
			outDir := filepath.Join(outRoot, fmt.Sprintf("%03d-%s", i, artifact.Coordinate.JarName()))
			if err := executor.AnalyzeLibrary(gctx, artifact.File, outDir); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failures.Add(artifact.File, mta.FailureLibraryAnalysis)
				a.log.Debugf("MTA reflection analysis failed for %s: %v", artifact.File, err)
				return nil
			}
			rows, err := mta.ReadOutput(outDir)
			if err != nil {
				failures.Add(artifact.File, mta.FailureLibraryAnalysis)
				a.log.Debugf("Could not read MTA output of %s: %v", artifact.File, err)
				return nil
			}
			results[i] = rows
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
