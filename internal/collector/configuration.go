package collector

import (
	"github.com/getlawrence/qmaid/internal/domain"
	"github.com/getlawrence/qmaid/internal/mta"
)

// Configuration collects Spring configuration usage reported by the custom rules
type Configuration struct {
	Injection  []domain.ConfigurationUsage
	Properties []domain.ConfigurationUsage
}

// NewConfiguration collects @Value injection and @ConfigurationProperties usage
func NewConfiguration(projectDir string, rows []mta.Row) *Configuration {
	c := &Configuration{}
	for _, row := range rows {
		if row.Category() != domain.CategoryConfiguration {
			continue
		}
		usage := domain.ConfigurationUsage{ClassName: row.ClassName(), Path: row.RelativePath(projectDir)}
		switch row.RuleID() {
		case domain.RuleConfigurationInjection:
			c.Injection = appendUsage(c.Injection, usage)
		case domain.RuleConfigurationProperties:
			c.Properties = appendUsage(c.Properties, usage)
		}
	}
	return c
}

func appendUsage(list []domain.ConfigurationUsage, u domain.ConfigurationUsage) []domain.ConfigurationUsage {
	for _, v := range list {
		if v == u {
			return list
		}
	}
	return append(list, u)
}
