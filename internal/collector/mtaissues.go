package collector

import (
	"github.com/getlawrence/qmaid/internal/domain"
	"github.com/getlawrence/qmaid/internal/mta"
)

// MtaIssues collects the mandatory migration issues of an MTA run
type MtaIssues struct {
	issues []*domain.MtaIssue
	byRule map[string]*domain.MtaIssue
}

// NewMtaIssues creates an empty issue collector
func NewMtaIssues() *MtaIssues {
	return &MtaIssues{byRule: map[string]*domain.MtaIssue{}}
}

// Add turns mandatory rows into issues. MTA reports a rule once per affected
// file, only the first row of a rule is kept.
func (c *MtaIssues) Add(rows []mta.Row) {
	for _, row := range rows {
		if row.Category() != domain.CategoryMandatory {
			continue
		}
		if _, ok := c.byRule[row.RuleID()]; ok {
			continue
		}
		issue := &domain.MtaIssue{RuleID: row.RuleID(), Description: row.Title()}
		c.byRule[issue.RuleID] = issue
		c.issues = append(c.issues, issue)
	}
}

// Resolve enriches every issue with the coordinates and packages its rule references
func (c *MtaIssues) Resolve(index mta.RuleIndex) {
	for _, issue := range c.issues {
		index.Resolve(issue)
	}
}

// List returns the issues in the order they were reported
func (c *MtaIssues) List() []*domain.MtaIssue {
	return c.issues
}

// General returns the issues that could not be tied to a dependency
func (c *MtaIssues) General() []*domain.MtaIssue {
	var out []*domain.MtaIssue
	for _, issue := range c.issues {
		if issue.GeneralIssue {
			out = append(out, issue)
		}
	}
	return out
}
