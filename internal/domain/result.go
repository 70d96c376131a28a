package domain

import "time"

// Analysis is the outcome of one qmaid run
type Analysis struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	ResultsDir string    `json:"results_dir" yaml:"results_dir"`

	ProjectDir        string      `json:"project_dir" yaml:"project_dir"`
	ProjectIdentifier string      `json:"project_identifier" yaml:"project_identifier"`
	JavaVersion       string      `json:"java_version" yaml:"java_version"`
	EntryPoint        *EntryPoint `json:"entry_point,omitempty" yaml:"entry_point,omitempty"`

	WithoutDependencies bool `json:"without_dependencies" yaml:"without_dependencies"`
	TotalClassesScanned int  `json:"total_classes_scanned" yaml:"total_classes_scanned"`

	DependencyTree []*DependencyNode    `json:"dependency_tree" yaml:"dependency_tree"`
	Dependencies   []*ProjectDependency `json:"-" yaml:"-"`
	Blacklist      []*ProjectDependency `json:"blacklist" yaml:"blacklist"`

	Issues        []*MtaIssue `json:"issues" yaml:"issues"`
	GeneralIssues []*MtaIssue `json:"general_issues" yaml:"general_issues"`

	ReflectionInProject      []ReflectionUsageInProject     `json:"reflection_in_project" yaml:"reflection_in_project"`
	ReflectionInDependencies []*ReflectionUsageInDependency `json:"reflection_in_dependencies" yaml:"reflection_in_dependencies"`

	ConfigurationInjection  []ConfigurationUsage `json:"configuration_injection" yaml:"configuration_injection"`
	ConfigurationProperties []ConfigurationUsage `json:"configuration_properties" yaml:"configuration_properties"`

	Failures []AnalysisFailure `json:"failures" yaml:"failures"`
}

// Duration returns how long the run took
func (a *Analysis) Duration() time.Duration {
	return a.FinishedAt.Sub(a.StartedAt)
}

// DependencyCount returns the number of artifacts in the dependency tree
func (a *Analysis) DependencyCount() int {
	return len(a.Dependencies)
}
