// Package config handles loading and parsing the reviewer configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is the config file looked up when none is given.
	DefaultConfigPath = "config.yaml"

	DefaultMaxFiles     = 200
	DefaultMaxDiffChars = 8000
	DefaultMaxFindings  = 50
	DefaultBatchSize    = 20
	DefaultMaxTokens    = 4096
	DefaultSnapRadius   = 3
)

// ParseError indicates a configuration file exists but contains invalid
// content. This is distinct from "file not found" errors.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid config at %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Config is the reviewer configuration. Environment variable references like
// ${ANTHROPIC_API_KEY} in the YAML file are expanded before parsing, so
// secrets can stay out of the file itself.
type Config struct {
	// Model is the Claude model used for reviews.
	Model string `yaml:"model"`
	// SystemPrompt overrides the built-in reviewer system prompt.
	SystemPrompt string `yaml:"system_prompt"`
	// Style is an optional tone directive included in the prompt.
	Style string `yaml:"style"`
	// EnableInline posts findings as inline comments when true (the
	// default); otherwise all findings go into one summary review.
	EnableInline bool `yaml:"enable_inline"`
	// FailLevel makes the run exit non-zero when a finding at or above
	// this severity exists. Empty disables the gate.
	FailLevel string `yaml:"fail_level"`
	// IncludeGlobs restricts the review to matching files when non-empty.
	IncludeGlobs []string `yaml:"include_globs"`
	// ExcludeGlobs skips matching files.
	// Example: ["vendor/**", "*.gen.go", "docs/**"]
	ExcludeGlobs []string `yaml:"exclude_globs"`
	// MaxFiles caps the number of files sent for review.
	MaxFiles int `yaml:"max_files"`
	// MaxDiffChars caps the diff text included in the prompt.
	MaxDiffChars int `yaml:"max_diff_chars"`
	// MaxFindings caps the findings taken from the model output.
	MaxFindings int `yaml:"max_findings"`
	// BatchSize is the number of inline comments posted per review call.
	BatchSize int `yaml:"batch_size"`
	// MaxTokens is the model output token limit.
	MaxTokens int64 `yaml:"max_tokens"`
	// SnapRadius is how far a finding's line may be from an added line
	// and still attach to it.
	SnapRadius int `yaml:"snap_radius"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// AnthropicAPIKey authenticates model calls. Falls back to the
	// ANTHROPIC_API_KEY environment variable.
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	// GitHubToken authenticates GitHub calls (CI mode). Falls back to the
	// GITHUB_TOKEN environment variable.
	GitHubToken string `yaml:"github_token"`
	// GitHubAppID, GitHubPrivateKeyPath and GitHubInstallationID select
	// GitHub App authentication instead of a token when all are set.
	GitHubAppID          int64  `yaml:"github_app_id"`
	GitHubPrivateKeyPath string `yaml:"github_private_key_path"`
	GitHubInstallationID int64  `yaml:"github_installation_id"`
	// DatabaseURL enables run-history storage when set. Falls back to the
	// DATABASE_URL environment variable.
	DatabaseURL string `yaml:"database_url"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		EnableInline: true,
		MaxFiles:     DefaultMaxFiles,
		MaxDiffChars: DefaultMaxDiffChars,
		MaxFindings:  DefaultMaxFindings,
		BatchSize:    DefaultBatchSize,
		MaxTokens:    DefaultMaxTokens,
		SnapRadius:   DefaultSnapRadius,
		LogLevel:     "info",
	}
}

// Load reads and parses the config file at path. A missing file yields the
// default config; an unreadable or invalid file is an error.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config, err := Parse(raw)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	return config, nil
}

// Parse parses a config from YAML content, expanding ${VAR} environment
// references first.
func Parse(content []byte) (*Config, error) {
	config := DefaultConfig()
	expanded := os.ExpandEnv(string(content))
	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration. fail_level is accepted in any case
// and normalized to upper case.
func (c *Config) Validate() error {
	if c.FailLevel != "" {
		c.FailLevel = strings.ToUpper(c.FailLevel)
		switch c.FailLevel {
		case "SUGGESTION", "MINOR", "MAJOR", "CRITICAL":
		default:
			return fmt.Errorf("invalid fail_level: %s (must be SUGGESTION, MINOR, MAJOR or CRITICAL)", c.FailLevel)
		}
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn or error)", c.LogLevel)
	}

	for name, v := range map[string]int{
		"max_files":      c.MaxFiles,
		"max_diff_chars": c.MaxDiffChars,
		"max_findings":   c.MaxFindings,
		"batch_size":     c.BatchSize,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.SnapRadius < 0 {
		return fmt.Errorf("snap_radius must not be negative, got %d", c.SnapRadius)
	}

	return nil
}

// ResolveSecrets fills credential fields from the environment when the
// config file left them empty.
func (c *Config) ResolveSecrets() {
	if c.AnthropicAPIKey == "" {
		c.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if c.GitHubToken == "" {
		c.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
}

// UseAppAuth reports whether GitHub App authentication is configured.
func (c *Config) UseAppAuth() bool {
	return c.GitHubAppID != 0 && c.GitHubPrivateKeyPath != "" && c.GitHubInstallationID != 0
}
