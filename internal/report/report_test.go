package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/getlawrence/qmaid/internal/domain"
)

func sampleAnalysis() *domain.Analysis {
	web := domain.Coordinate{GroupID: "org.springframework.boot", ArtifactID: "spring-boot-starter-web", Version: "2.7.0"}
	return &domain.Analysis{
		RunID:               "run-1",
		StartedAt:           time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt:          time.Date(2024, 3, 1, 10, 1, 0, 0, time.UTC),
		ProjectIdentifier:   "com.example:demo:1.0.0",
		JavaVersion:         "17",
		EntryPoint:          &domain.EntryPoint{ClassName: "DemoApplication"},
		TotalClassesScanned: 4,
		DependencyTree: []*domain.DependencyNode{{
			Coordinate: web,
			Children: []*domain.DependencyNode{{
				Coordinate: domain.Coordinate{GroupID: "org.springframework", ArtifactID: "spring-web", Version: "5.3.20"},
			}},
		}},
		Dependencies: []*domain.ProjectDependency{{Coordinate: web}},
		Blacklist: []*domain.ProjectDependency{{
			Coordinate:      web,
			Blacklisted:     true,
			BlacklistReason: "Replace the Spring Web artifact with Quarkus 'spring-web' extension",
			Occurrences: []domain.Occurrence{
				{File: "GreetingController.java", Imports: []string{"org.springframework.web.bind.annotation.*", "org.springframework.web.bind.annotation.GetMapping"}},
			},
		}},
		GeneralIssues: []*domain.MtaIssue{{RuleID: "ejb-00001", Description: "Remote EJB", GeneralIssue: true}},
		ReflectionInProject: []domain.ReflectionUsageInProject{
			{ClassName: "com.example.Loader", Path: "src/main/java/com/example/Loader.java"},
		},
		ReflectionInDependencies: []*domain.ReflectionUsageInDependency{
			{Artifact: "com.fasterxml.jackson.core:jackson-databind:2.13.3", Classes: []string{"com.fasterxml.jackson.databind.ObjectMapper"}},
		},
		ConfigurationInjection: []domain.ConfigurationUsage{
			{ClassName: "com.example.Settings", Path: "src/main/java/com/example/Settings.java"},
		},
		Failures: []domain.AnalysisFailure{{Subject: "ghost-1.jar", Description: "MTA reflection analysis failed."}},
	}
}

func render(t *testing.T, a *domain.Analysis) *goquery.Document {
	t.Helper()
	g, err := NewGenerator()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, g.RenderHTML(&buf, a))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestRenderHTML_Blacklist(t *testing.T) {
	doc := render(t, sampleAnalysis())

	rows := doc.Find("#blacklist tbody tr")
	require.Equal(t, 1, rows.Length())
	assert.Equal(t, "org.springframework.boot:spring-boot-starter-web:2.7.0", strings.TrimSpace(rows.Find("td.dependency").Text()))
	assert.Equal(t, "1 (25.0 %)", strings.TrimSpace(rows.Find("td.occurrence").Text()))

	items := rows.Find("ul.occurrences li")
	require.Equal(t, 1, items.Length())
	assert.Contains(t, items.Text(), "GreetingController.java")
	assert.Contains(t, items.Text(), "org.springframework.web.bind.annotation.GetMapping")
}

func TestRenderHTML_Sections(t *testing.T) {
	doc := render(t, sampleAnalysis())

	assert.Contains(t, doc.Find("title").Text(), "com.example:demo:1.0.0")
	assert.Contains(t, doc.Find("#summary").Text(), "DemoApplication")
	assert.Contains(t, doc.Find("#general-issues").Text(), "ejb-00001")
	assert.Contains(t, doc.Find("#reflection-project").Text(), "com.example.Loader")
	assert.Contains(t, doc.Find("#reflection-dependencies").Text(), "jackson-databind")
	assert.Equal(t, 1, doc.Find("#configuration tbody tr").Length())
	assert.Equal(t, 2, doc.Find("#dependency-tree li").Length())
	assert.Contains(t, doc.Find("#failures").Text(), "ghost-1.jar")
}

func TestRenderHTML_EmptyAnalysis(t *testing.T) {
	a := &domain.Analysis{ProjectIdentifier: "Project name not available", WithoutDependencies: true}
	doc := render(t, a)

	assert.Equal(t, 0, doc.Find("#blacklist").Length())
	assert.Equal(t, 0, doc.Find("#failures").Length())
	assert.Contains(t, doc.Text(), "No blacklisted dependencies found.")
	assert.Contains(t, doc.Text(), "Dependencies were not analyzed.")
	assert.Contains(t, doc.Text(), "The analysis completed without failures.")
}

func TestRenderHTML_EscapesContent(t *testing.T) {
	a := sampleAnalysis()
	a.GeneralIssues[0].Description = "<script>alert(1)</script>"
	doc := render(t, a)

	assert.Equal(t, 0, doc.Find("#general-issues script").Length())
	assert.Contains(t, doc.Find("#general-issues").Text(), "<script>alert(1)</script>")
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results", "1700000000000")
	g, err := NewGenerator()
	require.NoError(t, err)

	paths, err := g.Write(dir, sampleAnalysis())
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, HTMLFile), paths[0])

	data, err := os.ReadFile(filepath.Join(dir, JSONFile))
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "com.example:demo:1.0.0", decoded["project_identifier"])
	assert.NotContains(t, decoded, "Dependencies")
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleAnalysis(), "yaml"))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "17", decoded["java_version"])

	err := Encode(&buf, sampleAnalysis(), "xml")
	assert.EqualError(t, err, "unsupported format: xml")
}

func TestCoverage(t *testing.T) {
	assert.Equal(t, "0.0", coverage(3, 0))
	assert.Equal(t, "33.3", coverage(1, 3))
}
