package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getlawrence/qmaid/internal/domain"
	"github.com/getlawrence/qmaid/internal/history"
)

func TestRenderAnalysis(t *testing.T) {
	a := &domain.Analysis{
		ProjectIdentifier:   "com.example:demo:1.0.0",
		JavaVersion:         "11",
		EntryPoint:          &domain.EntryPoint{ClassName: "DemoApplication"},
		TotalClassesScanned: 3,
		Blacklist: []*domain.ProjectDependency{
			{Coordinate: domain.Coordinate{GroupID: "g", ArtifactID: "rare", Version: "1"}, BlacklistReason: "rarely used"},
			{
				Coordinate:      domain.Coordinate{GroupID: "g", ArtifactID: "common", Version: "2"},
				BlacklistReason: "replace with extension",
				Occurrences:     []domain.Occurrence{{File: "A.java", Imports: []string{"g.common.Thing"}}},
			},
		},
		GeneralIssues: []*domain.MtaIssue{{RuleID: "ejb-00001", Description: "Remote EJB"}},
		Failures:      []domain.AnalysisFailure{{Subject: "lib.jar", Description: "MTA reflection analysis failed."}},
	}

	out := RenderAnalysis(a, true)
	assert.Contains(t, out, "com.example:demo:1.0.0")
	assert.Contains(t, out, "DemoApplication")
	assert.Contains(t, out, "Blacklisted dependencies: 2")
	assert.Contains(t, out, "A.java: g.common.Thing")
	assert.Contains(t, out, "ejb-00001: Remote EJB")
	assert.Contains(t, out, "MTA reflection analysis failed.")
	assert.Less(t, strings.Index(out, "g:common:2"), strings.Index(out, "g:rare:1"), "most used dependency first")

	brief := RenderAnalysis(a, false)
	assert.NotContains(t, brief, "A.java: g.common.Thing")

	assert.Empty(t, RenderAnalysis(nil, false))
}

func TestRenderAnalysis_NothingFound(t *testing.T) {
	out := RenderAnalysis(&domain.Analysis{ProjectIdentifier: "p", WithoutDependencies: true}, false)
	assert.Contains(t, out, "No blacklisted dependencies found.")
	assert.Contains(t, out, "Dependencies were not analyzed with MTA.")
	assert.NotContains(t, out, "Analysis Failures")
}

func TestRenderHistory(t *testing.T) {
	assert.Equal(t, "No analysis runs recorded yet.\n", RenderHistory(nil))

	out := RenderHistory([]history.Run{{
		ProjectIdentifier: "com.example:demo:1.0.0",
		StartedAt:         time.Now(),
		Dependencies:      12,
		Blacklisted:       2,
		ResultsDir:        "/tmp/results/1",
	}})
	assert.Contains(t, out, "com.example:demo:1.0.0")
	assert.Contains(t, out, "12 dependencies, 2 blacklisted")
	assert.Contains(t, out, "/tmp/results/1")
}

func TestSpinnerModel_Update(t *testing.T) {
	canceled := false
	m := newSpinnerModel("Analyzing", func() { canceled = true })

	_, _ = m.Update(statusMsg("Scanning foo.jar"))
	assert.Contains(t, m.View(), "Scanning foo.jar")

	_, cmd := m.Update(actionDoneMsg{err: errors.New("boom")})
	require.NotNil(t, cmd)
	assert.True(t, m.finished)
	assert.Contains(t, m.View(), "✗ Analyzing (boom)")
	assert.False(t, canceled)

	m = newSpinnerModel("Analyzing", func() { canceled = true })
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, canceled)
	assert.ErrorIs(t, m.err, ErrCanceled)
}

func TestSpinnerModel_Success(t *testing.T) {
	m := newSpinnerModel("Done", func() {})
	_, _ = m.Update(actionDoneMsg{})
	assert.Contains(t, m.View(), "✓ Done")
	assert.NoError(t, m.err)
}
