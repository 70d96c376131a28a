package mta

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/getlawrence/qmaid/internal/logger"
)

// FailureLibraryAnalysis is recorded when MTA could not analyze a dependency jar
const FailureLibraryAnalysis = "MTA reflection analysis failed."

// ErrNotInstalled is returned when the MTA CLI cannot be found
var ErrNotInstalled = errors.New("mta-cli not found")

// Executor runs the MTA command line tool
type Executor struct {
	commander   Commander
	home        string
	customRules string
	targets     []string
	goos        string
	log         logger.Logger
}

// NewExecutor creates an executor for the MTA installation in home
func NewExecutor(commander Commander, home, customRules string, targets []string, log logger.Logger) *Executor {
	if log == nil {
		log = logger.Nop{}
	}
	if len(targets) == 0 {
		targets = []string{"quarkus", "reflection"}
	}
	return &Executor{
		commander:   commander,
		home:        home,
		customRules: customRules,
		targets:     targets,
		goos:        runtime.GOOS,
		log:         log,
	}
}

// Binary returns the path of the mta-cli script
func (e *Executor) Binary() string {
	name := "mta-cli"
	if e.goos == "windows" {
		name += ".bat"
	}
	return filepath.Join(e.home, "bin", name)
}

// Check verifies that the MTA CLI is installed
func (e *Executor) Check() error {
	if _, err := os.Stat(e.Binary()); err != nil {
		return fmt.Errorf("%w at %s", ErrNotInstalled, e.Binary())
	}
	return nil
}

// RuleDirs returns the built-in Quarkus rules and the custom rules directory
func (e *Executor) RuleDirs() []string {
	dirs := []string{filepath.Join(e.home, "rules", "migration-core", "quarkus")}
	if e.customRules != "" {
		dirs = append(dirs, e.customRules)
	}
	return dirs
}

// AnalyzeProject runs MTA in source mode over the project
func (e *Executor) AnalyzeProject(ctx context.Context, projectDir, outDir string) error {
	e.log.Logf("Analyzing project %s... This can take a while\n", projectDir)
	return e.run(ctx, outDir, e.args(projectDir, outDir, true))
}

// AnalyzeLibrary runs MTA over a dependency jar
func (e *Executor) AnalyzeLibrary(ctx context.Context, jar, outDir string) error {
	e.log.Logf("Analyze reflection usage in project dependency: %s\n", jar)
	return e.run(ctx, outDir, e.args(jar, outDir, false))
}

func (e *Executor) args(input, outDir string, sourceMode bool) []string {
	args := []string{"--input", input, "--output", outDir}
	for _, t := range e.targets {
		args = append(args, "--target", t)
	}
	args = append(args, "--exportCSV", "--batchMode", "--skipReports", "--overwrite")
	if sourceMode {
		args = append(args, "--sourceMode")
	}
	if e.customRules != "" {
		args = append(args, "--userRulesDirectory", e.customRules)
	}
	return args
}

func (e *Executor) run(ctx context.Context, outDir string, args []string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return e.commander.Run(ctx, e.Binary(), args, "", func(line string) {
		e.log.Debugf("%s", line)
	})
}
