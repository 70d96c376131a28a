package mta

import (
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/getlawrence/qmaid/internal/domain"
)

// Column positions in the MTA CSV export
const (
	colRuleID   = 0
	colCategory = 1
	colTitle    = 2
	colClass    = 6
	colPath     = 7
	colJar      = 10
)

// Row is one issue of the MTA CSV export
type Row struct {
	Fields []string
}

func (r Row) field(i int) string {
	if i < len(r.Fields) {
		return r.Fields[i]
	}
	return ""
}

// RuleID returns the MTA rule that produced the issue
func (r Row) RuleID() string { return r.field(colRuleID) }

func (r Row) Category() domain.Category { return domain.Category(r.field(colCategory)) }

// Title is the issue description
func (r Row) Title() string { return r.field(colTitle) }

func (r Row) ClassName() string { return r.field(colClass) }

// Path is the absolute location of the analyzed file
func (r Row) Path() string { return r.field(colPath) }

// JarFile is the archive name when a library was analyzed
func (r Row) JarFile() string { return r.field(colJar) }

// RelativePath strips dir and the following separator from the row's path
func (r Row) RelativePath(dir string) string {
	p := r.Path()
	if rel, err := filepath.Rel(dir, p); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return p
}

// ReadOutput parses every CSV file below outDir. The header row of each file
// is skipped.
func ReadOutput(outDir string) ([]Row, error) {
	var files []string
	err := filepath.WalkDir(outDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list MTA output: %w", err)
	}
	sort.Strings(files)

	var rows []Row
	for _, f := range files {
		fileRows, err := readCSV(f)
		if err != nil {
			return nil, err
		}
		rows = append(rows, fileRows...)
	}
	return rows, nil
}

func readCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseCSV(f)
}

// ParseCSV parses an MTA CSV export, skipping the header row
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows []Row
	header := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse MTA csv: %w", err)
		}
		if header {
			header = false
			continue
		}
		rows = append(rows, Row{Fields: record})
	}
	return rows, nil
}
