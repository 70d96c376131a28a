package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/getlawrence/qmaid/internal/javasrc"
)

// Config represents the qmaid configuration
type Config struct {
	// Maven repository settings
	Maven MavenConfig `json:"maven" yaml:"maven" toml:"maven"`

	// Migration Toolkit for Applications settings
	MTA MTAConfig `json:"mta" yaml:"mta" toml:"mta"`

	// Analysis settings
	Analysis AnalysisConfig `json:"analysis" yaml:"analysis" toml:"analysis"`

	// Output settings
	Output OutputConfig `json:"output" yaml:"output" toml:"output"`
}

// MavenConfig contains dependency resolution settings
type MavenConfig struct {
	// Local repository location, "~" is expanded
	Repository string `json:"repository" yaml:"repository" toml:"repository"`

	// Remote repositories used when an artifact is missing locally
	RemoteRepositories []string `json:"remote_repositories" yaml:"remote_repositories" toml:"remote_repositories"`

	// Never contact remote repositories
	Offline bool `json:"offline" yaml:"offline" toml:"offline"`

	// Requests per second against remote repositories
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" toml:"requests_per_second"`

	// Number of parsed POM models kept in memory
	ModelCacheSize int `json:"model_cache_size" yaml:"model_cache_size" toml:"model_cache_size"`
}

// MTAConfig locates the MTA command line tool and rules
type MTAConfig struct {
	// Installation directory of the MTA CLI
	Home string `json:"home" yaml:"home" toml:"home"`

	// Directory with additional rules passed as --userRulesDirectory
	CustomRules string `json:"custom_rules" yaml:"custom_rules" toml:"custom_rules"`

	// Analysis targets
	Targets []string `json:"targets" yaml:"targets" toml:"targets"`
}

// AnalysisConfig contains analysis-specific settings
type AnalysisConfig struct {
	// Skip the reflection analysis of dependency jars
	WithoutDependencies bool `json:"without_dependencies" yaml:"without_dependencies" toml:"without_dependencies"`

	// Number of dependency jars analyzed in parallel
	Concurrency int `json:"concurrency" yaml:"concurrency" toml:"concurrency"`

	// Directory names skipped when scanning sources
	ExcludeDirs []string `json:"exclude_dirs" yaml:"exclude_dirs" toml:"exclude_dirs"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	// Default output format
	Format string `json:"format" yaml:"format" toml:"format"`

	// Directory where a folder per analysis run is created
	ResultsDir string `json:"results_dir" yaml:"results_dir" toml:"results_dir"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Maven: MavenConfig{
			Repository:         filepath.Join("~", ".m2", "repository"),
			RemoteRepositories: []string{"https://repo.maven.apache.org/maven2/"},
			Offline:            false,
			RequestsPerSecond:  5,
			ModelCacheSize:     512,
		},
		MTA: MTAConfig{
			Home:        filepath.Join("tools", "mta-cli-5.2.1"),
			CustomRules: filepath.Join("tools", "custom-mta-rules"),
			Targets:     []string{"quarkus", "reflection"},
		},
		Analysis: AnalysisConfig{
			WithoutDependencies: false,
			Concurrency:         1,
			ExcludeDirs:         append([]string(nil), javasrc.DefaultExcludeDirs...),
		},
		Output: OutputConfig{
			Format:     "text",
			ResultsDir: "results",
		},
	}
}

// LoadConfig loads configuration from a file and applies environment overrides
func LoadConfig(configPath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// A missing .env is fine
	_ = godotenv.Load()

	// If no config file specified, try to find one
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := unmarshal(configPath, data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	applyEnv(config)
	return config, nil
}

func unmarshal(path string, data []byte, config *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, config)
	case ".toml":
		return toml.Unmarshal(data, config)
	default:
		return json.Unmarshal(data, config)
	}
}

func applyEnv(config *Config) {
	if v := os.Getenv("QMAID_MAVEN_REPO"); v != "" {
		config.Maven.Repository = v
	}
	if v := os.Getenv("QMAID_MTA_HOME"); v != "" {
		config.MTA.Home = v
	}
	if v := os.Getenv("QMAID_CUSTOM_RULES"); v != "" {
		config.MTA.CustomRules = v
	}
	if v := os.Getenv("QMAID_RESULTS_DIR"); v != "" {
		config.Output.ResultsDir = v
	}
	if v := os.Getenv("QMAID_OFFLINE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Maven.Offline = b
		}
	}
}

// SaveConfig saves configuration to a file, format chosen by extension
func SaveConfig(config *Config, configPath string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	case ".toml":
		data, err = toml.Marshal(config)
	default:
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ExpandHome replaces a leading "~" with the user's home directory
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

var configNames = []string{
	".qmaid.yaml",
	".qmaid.yml",
	".qmaid.json",
	".qmaid.toml",
}

// findConfigFile looks for config files in common locations
func findConfigFile() string {
	// Current directory
	for _, candidate := range configNames {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	// Home directory
	homeDir, err := os.UserHomeDir()
	if err == nil {
		for _, name := range configNames {
			candidate := filepath.Join(homeDir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}

	return ""
}
