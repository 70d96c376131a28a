// Package history keeps a record of analysis runs in a SQLite database
// inside the results directory.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/getlawrence/qmaid/internal/domain"
	"github.com/getlawrence/qmaid/internal/history/migrations"
)

// FileName is the database file created in the results root
const FileName = "history.db"

// Run summarizes one analysis run
type Run struct {
	RunID               string         `json:"run_id" yaml:"run_id"`
	StartedAt           time.Time      `json:"started_at" yaml:"started_at"`
	FinishedAt          time.Time      `json:"finished_at" yaml:"finished_at"`
	ProjectDir          string         `json:"project_dir" yaml:"project_dir"`
	ProjectIdentifier   string         `json:"project_identifier" yaml:"project_identifier"`
	JavaVersion         string         `json:"java_version" yaml:"java_version"`
	ResultsDir          string         `json:"results_dir" yaml:"results_dir"`
	Dependencies        int            `json:"dependencies" yaml:"dependencies"`
	Blacklisted         int            `json:"blacklisted" yaml:"blacklisted"`
	GeneralIssues       int            `json:"general_issues" yaml:"general_issues"`
	Failures            int            `json:"failures" yaml:"failures"`
	WithoutDependencies bool           `json:"without_dependencies" yaml:"without_dependencies"`
	Blacklist           []BlacklistRow `json:"blacklist,omitempty" yaml:"blacklist,omitempty"`
}

// BlacklistRow is a blacklisted dependency of a recorded run
type BlacklistRow struct {
	Coordinate  string `json:"coordinate" yaml:"coordinate"`
	Reason      string `json:"reason" yaml:"reason"`
	Occurrences int    `json:"occurrences" yaml:"occurrences"`
}

// RunFromAnalysis summarizes an analysis for storage
func RunFromAnalysis(a *domain.Analysis) Run {
	run := Run{
		RunID:               a.RunID,
		StartedAt:           a.StartedAt,
		FinishedAt:          a.FinishedAt,
		ProjectDir:          a.ProjectDir,
		ProjectIdentifier:   a.ProjectIdentifier,
		JavaVersion:         a.JavaVersion,
		ResultsDir:          a.ResultsDir,
		Dependencies:        a.DependencyCount(),
		Blacklisted:         len(a.Blacklist),
		GeneralIssues:       len(a.GeneralIssues),
		Failures:            len(a.Failures),
		WithoutDependencies: a.WithoutDependencies,
	}
	for _, dep := range a.Blacklist {
		run.Blacklist = append(run.Blacklist, BlacklistRow{
			Coordinate:  dep.Coordinate.String(),
			Reason:      dep.BlacklistReason,
			Occurrences: len(dep.Occurrences),
		})
	}
	return run
}

// Store is the run history database
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the history database in dir
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating results directory: %w", err)
	}
	dbPath := filepath.Join(dir, FileName)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// Record stores the summary of an analysis
func (s *Store) Record(ctx context.Context, a *domain.Analysis) error {
	run := RunFromAnalysis(a)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM blacklist_entries WHERE run_id = ?", run.RunID); err != nil {
		return fmt.Errorf("clearing blacklist: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (run_id, started_at, finished_at, project_dir, project_identifier,
			java_version, results_dir, dependencies, blacklisted, general_issues, failures, without_dependencies)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.RunID, formatTime(run.StartedAt), formatTime(run.FinishedAt), run.ProjectDir, run.ProjectIdentifier,
		run.JavaVersion, run.ResultsDir, run.Dependencies, run.Blacklisted, run.GeneralIssues, run.Failures,
		boolToInt(run.WithoutDependencies))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	for _, row := range run.Blacklist {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO blacklist_entries (run_id, coordinate, reason, occurrences)
			VALUES (?, ?, ?, ?)
		`, run.RunID, row.Coordinate, row.Reason, row.Occurrences)
		if err != nil {
			return fmt.Errorf("saving blacklist entry %s: %w", row.Coordinate, err)
		}
	}

	return tx.Commit()
}

// List returns the most recent runs first. A limit <= 0 returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT run_id, started_at, finished_at, project_dir, project_identifier, java_version,
			results_dir, dependencies, blacklisted, general_issues, failures, without_dependencies
		FROM runs ORDER BY started_at DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns a run together with its blacklist
func (s *Store) Get(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, started_at, finished_at, project_dir, project_identifier, java_version,
			results_dir, dependencies, blacklisted, general_issues, failures, without_dependencies
		FROM runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT coordinate, reason, occurrences FROM blacklist_entries WHERE run_id = ? ORDER BY coordinate", runID)
	if err != nil {
		return nil, fmt.Errorf("querying blacklist: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b BlacklistRow
		if err := rows.Scan(&b.Coordinate, &b.Reason, &b.Occurrences); err != nil {
			return nil, fmt.Errorf("scanning blacklist entry: %w", err)
		}
		run.Blacklist = append(run.Blacklist, b)
	}
	return &run, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var started, finished string
	var withoutDeps int
	err := row.Scan(&run.RunID, &started, &finished, &run.ProjectDir, &run.ProjectIdentifier, &run.JavaVersion,
		&run.ResultsDir, &run.Dependencies, &run.Blacklisted, &run.GeneralIssues, &run.Failures, &withoutDeps)
	if err != nil {
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	run.WithoutDependencies = withoutDeps != 0
	return run, nil
}

// timeLayout has a fixed width so that stored timestamps sort as strings
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return time.Time{}
		}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
