package analyzer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/getlawrence/qmaid/internal/config"
	"github.com/getlawrence/qmaid/internal/javasrc"
)

// Validation errors, in the order they are checked
var (
	ErrMissingArguments   = errors.New("project location is mandatory")
	ErrProjectNotFound    = errors.New("project does not exist")
	ErrMavenRepoNotFound  = errors.New("maven repository location does not exist")
	ErrEntryPointNotFound = errors.New("SpringBootApplication file does not exist")
	ErrPomNotFound        = errors.New("can not find project POM")
	ErrProjectModel       = errors.New("failed to read effective model for this project")
)

// Options configures an analysis run
type Options struct {
	ProjectDir string
	// EntryPoint is the @SpringBootApplication source file, detected when empty
	EntryPoint  string
	MavenRepo   string
	ResultsRoot string

	WithoutDependencies bool
	Concurrency         int

	MTAHome     string
	CustomRules string
	Targets     []string

	RemoteRepositories []string
	Offline            bool
	RequestsPerSecond  float64
	ModelCacheSize     int

	ExcludeDirs []string
}

// OptionsFromConfig fills options with configured defaults
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MavenRepo:           cfg.Maven.Repository,
		ResultsRoot:         cfg.Output.ResultsDir,
		WithoutDependencies: cfg.Analysis.WithoutDependencies,
		Concurrency:         cfg.Analysis.Concurrency,
		MTAHome:             cfg.MTA.Home,
		CustomRules:         cfg.MTA.CustomRules,
		Targets:             cfg.MTA.Targets,
		RemoteRepositories:  cfg.Maven.RemoteRepositories,
		Offline:             cfg.Maven.Offline,
		RequestsPerSecond:   cfg.Maven.RequestsPerSecond,
		ModelCacheSize:      cfg.Maven.ModelCacheSize,
		ExcludeDirs:         cfg.Analysis.ExcludeDirs,
	}
}

// PomPath returns the location of the project's pom.xml
func (o *Options) PomPath() string {
	return filepath.Join(o.ProjectDir, "pom.xml")
}

// Validate expands "~" in paths and checks that all locations exist
func (o *Options) Validate() error {
	if o.ProjectDir == "" {
		return ErrMissingArguments
	}
	o.ProjectDir = config.ExpandHome(o.ProjectDir)
	o.MavenRepo = config.ExpandHome(o.MavenRepo)
	o.EntryPoint = config.ExpandHome(o.EntryPoint)
	o.MTAHome = config.ExpandHome(o.MTAHome)
	o.CustomRules = config.ExpandHome(o.CustomRules)
	o.ResultsRoot = config.ExpandHome(o.ResultsRoot)
	if abs, err := filepath.Abs(o.ProjectDir); err == nil {
		o.ProjectDir = abs
	}
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	if len(o.ExcludeDirs) == 0 {
		o.ExcludeDirs = javasrc.DefaultExcludeDirs
	}
	if o.ResultsRoot == "" {
		o.ResultsRoot = "results"
	}

	if !exists(o.ProjectDir) {
		return fmt.Errorf("%w on: %s", ErrProjectNotFound, o.ProjectDir)
	}
	if o.MavenRepo == "" || !exists(o.MavenRepo) {
		return fmt.Errorf("%w on: %s", ErrMavenRepoNotFound, o.MavenRepo)
	}
	if o.EntryPoint != "" && !exists(o.EntryPoint) {
		return fmt.Errorf("%w on: %s", ErrEntryPointNotFound, o.EntryPoint)
	}
	if !exists(o.PomPath()) {
		return fmt.Errorf("%w in: %s", ErrPomNotFound, o.PomPath())
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
