package domain

// Category is the MTA issue category column of a CSV row
type Category string

const (
	CategoryMandatory     Category = "mandatory"
	CategoryReflection    Category = "reflection"
	CategoryConfiguration Category = "configuration"
	CategoryOptional      Category = "optional"
	CategoryPotential     Category = "potential"
)

// Rule ids of the custom configuration rules shipped with qmaid
const (
	RuleConfigurationInjection  = "configuration-annotations-0000"
	RuleConfigurationProperties = "configuration-annotations-0001"
)

// MavenIdentifier is a groupId/artifactId pair referenced by an MTA rule
type MavenIdentifier struct {
	GroupID    string `json:"group_id" yaml:"group_id"`
	ArtifactID string `json:"artifact_id" yaml:"artifact_id"`
}

// Key returns groupId:artifactId
func (m MavenIdentifier) Key() string {
	return m.GroupID + ":" + m.ArtifactID
}

// MtaIssue represents a mandatory migration issue reported by MTA
type MtaIssue struct {
	RuleID           string            `json:"rule_id" yaml:"rule_id"`
	Description      string            `json:"description" yaml:"description"`
	MavenIdentifiers []MavenIdentifier `json:"maven_identifiers,omitempty" yaml:"maven_identifiers,omitempty"`
	Packages         []string          `json:"packages,omitempty" yaml:"packages,omitempty"`
	// GeneralIssue is set when the issue could not be assigned to any dependency
	GeneralIssue bool `json:"general_issue" yaml:"general_issue"`
}

// HasMavenIdentifier reports whether the issue already references groupId:artifactId
func (i *MtaIssue) HasMavenIdentifier(groupID, artifactID string) bool {
	for _, id := range i.MavenIdentifiers {
		if id.GroupID == groupID && id.ArtifactID == artifactID {
			return true
		}
	}
	return false
}

// ReflectionUsageInProject is a project class that uses reflection
type ReflectionUsageInProject struct {
	ClassName string `json:"class_name" yaml:"class_name"`
	Path      string `json:"path" yaml:"path"`
}

// ReflectionUsageInDependency groups reflective classes by dependency.
// Artifact is the jar file name until it is mapped to a coordinate.
type ReflectionUsageInDependency struct {
	Artifact string   `json:"artifact" yaml:"artifact"`
	Classes  []string `json:"classes" yaml:"classes"`
}

// ConfigurationUsage is a project class using Spring configuration annotations
type ConfigurationUsage struct {
	ClassName string `json:"class_name" yaml:"class_name"`
	Path      string `json:"path" yaml:"path"`
}

// AnalysisFailure records an analysis step that could not be completed
type AnalysisFailure struct {
	Subject     string `json:"subject" yaml:"subject"`
	Description string `json:"description" yaml:"description"`
}
