package mta

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"github.com/go-enry/go-enry/v2"

	"github.com/getlawrence/qmaid/internal/domain"
)

// RuleTarget is what an MTA rule points at
type RuleTarget struct {
	MavenIdentifiers []domain.MavenIdentifier `json:"maven_identifiers,omitempty" yaml:"maven_identifiers,omitempty"`
	Packages         []string                 `json:"packages,omitempty" yaml:"packages,omitempty"`
}

// RuleIndex maps rule ids to the Maven coordinates and packages they reference
type RuleIndex map[string]*RuleTarget

// RuleIDs returns the indexed rule ids in sorted order
func (idx RuleIndex) RuleIDs() []string {
	ids := make([]string, 0, len(idx))
	for id := range idx {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve attaches the coordinates and packages of the issue's rule
func (idx RuleIndex) Resolve(issue *domain.MtaIssue) {
	target, ok := idx[issue.RuleID]
	if !ok {
		return
	}
	for _, id := range target.MavenIdentifiers {
		if !issue.HasMavenIdentifier(id.GroupID, id.ArtifactID) {
			issue.MavenIdentifiers = append(issue.MavenIdentifiers, id)
		}
	}
	for _, pkg := range target.Packages {
		if !containsString(issue.Packages, pkg) {
			issue.Packages = append(issue.Packages, pkg)
		}
	}
}

// LoadRules indexes every XML rule file below the given directories. Missing
// directories and unparsable files are skipped. Entries that cannot be read
// are skipped as well and reported in the returned error, next to the rules
// indexed from everything else.
func LoadRules(dirs ...string) (RuleIndex, error) {
	idx := RuleIndex{}
	var errs []error
	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				errs = append(errs, fmt.Errorf("failed to read rules in %s: %w", path, err))
				return nil
			}
			if info.IsDir() || !isXML(path) {
				return nil
			}
			// unparsable rule files are skipped
			_ = idx.addFile(path)
			return nil
		})
	}
	return idx, errors.Join(errs...)
}

func isXML(path string) bool {
	lang, safe := enry.GetLanguageByExtension(path)
	if safe && lang != "" {
		return lang == "XML"
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return enry.GetLanguage(path, content) == "XML"
}

func (idx RuleIndex) addFile(path string) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return err
	}
	idx.addDocument(doc)
	return nil
}

// ParseRules indexes rule definitions from XML content
func ParseRules(data []byte) (RuleIndex, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing rule XML: %w", err)
	}
	idx := RuleIndex{}
	idx.addDocument(doc)
	return idx, nil
}

func (idx RuleIndex) addDocument(doc *etree.Document) {
	for _, rule := range doc.FindElements("//rule") {
		id := strings.TrimSpace(rule.SelectAttrValue("id", ""))
		if id == "" {
			continue
		}
		target, ok := idx[id]
		if !ok {
			target = &RuleTarget{}
			idx[id] = target
		}
		for _, el := range rule.FindElements(".//dependency") {
			target.addIdentifier(el)
		}
		for _, el := range rule.FindElements(".//artifact") {
			target.addIdentifier(el)
		}
		for _, el := range rule.FindElements(".//javaclass") {
			ref := strings.TrimSpace(el.SelectAttrValue("references", ""))
			if ref == "" || target.hasGroupID(ref) || containsString(target.Packages, ref) {
				continue
			}
			target.Packages = append(target.Packages, ref)
		}
	}
}

func (t *RuleTarget) addIdentifier(el *etree.Element) {
	id := domain.MavenIdentifier{
		GroupID:    strings.TrimSpace(el.SelectAttrValue("groupId", "")),
		ArtifactID: strings.TrimSpace(el.SelectAttrValue("artifactId", "")),
	}
	if id.GroupID == "" && id.ArtifactID == "" {
		return
	}
	for _, existing := range t.MavenIdentifiers {
		if existing == id {
			return
		}
	}
	t.MavenIdentifiers = append(t.MavenIdentifiers, id)
}

func (t *RuleTarget) hasGroupID(groupID string) bool {
	for _, id := range t.MavenIdentifiers {
		if id.GroupID == groupID {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
