package collector

import (
	"sync"

	"github.com/getlawrence/qmaid/internal/domain"
)

// Failures collects analysis steps that could not be completed. It is safe
// for concurrent use.
type Failures struct {
	mu      sync.Mutex
	entries []domain.AnalysisFailure
}

// NewFailures creates an empty collector
func NewFailures() *Failures {
	return &Failures{}
}

// Add records a failure for subject. Identical entries are recorded once.
func (f *Failures) Add(subject, description string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry := domain.AnalysisFailure{Subject: subject, Description: description}
	for _, e := range f.entries {
		if e == entry {
			return
		}
	}
	f.entries = append(f.entries, entry)
}

// List returns the recorded failures in insertion order
func (f *Failures) List() []domain.AnalysisFailure {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.AnalysisFailure(nil), f.entries...)
}

// Len returns the number of recorded failures
func (f *Failures) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}
