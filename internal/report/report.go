package report

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/getlawrence/qmaid/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// File names written into the results directory
const (
	HTMLFile = "report.html"
	JSONFile = "report.json"
)

// Generator renders analysis reports
type Generator struct {
	tmpl *template.Template
}

// NewGenerator loads the embedded report template
func NewGenerator() (*Generator, error) {
	tmpl, err := template.New("report.html").Funcs(template.FuncMap{
		"join":     strings.Join,
		"coverage": coverage,
	}).ParseFS(templateFS, "templates/report.html")
	if err != nil {
		return nil, fmt.Errorf("failed to load report template: %w", err)
	}
	return &Generator{tmpl: tmpl}, nil
}

// coverage is the share of scanned sources that import a dependency, in percent
func coverage(occurrences, total int) string {
	if total == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(occurrences)*100/float64(total))
}

// RenderHTML writes the HTML report
func (g *Generator) RenderHTML(w io.Writer, analysis *domain.Analysis) error {
	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, analysis); err != nil {
		return fmt.Errorf("report template execution failed: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Write stores report.html and report.json in dir and returns their paths
func (g *Generator) Write(dir string, analysis *domain.Analysis) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	htmlPath := filepath.Join(dir, HTMLFile)
	var html bytes.Buffer
	if err := g.RenderHTML(&html, analysis); err != nil {
		return nil, err
	}
	if err := os.WriteFile(htmlPath, html.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("could not generate report: %w", err)
	}

	jsonPath := filepath.Join(dir, JSONFile)
	var js bytes.Buffer
	if err := Encode(&js, analysis, "json"); err != nil {
		return nil, err
	}
	if err := os.WriteFile(jsonPath, js.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("could not generate report: %w", err)
	}

	return []string{htmlPath, jsonPath}, nil
}

// Encode writes v, usually an analysis, as json or yaml
func Encode(w io.Writer, v interface{}, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
