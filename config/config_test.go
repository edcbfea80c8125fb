package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	config, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if !config.EnableInline {
		t.Error("expected inline comments enabled by default")
	}
	if config.MaxFiles != DefaultMaxFiles {
		t.Errorf("expected max_files %d, got %d", DefaultMaxFiles, config.MaxFiles)
	}
	if config.MaxDiffChars != DefaultMaxDiffChars {
		t.Errorf("expected max_diff_chars %d, got %d", DefaultMaxDiffChars, config.MaxDiffChars)
	}
	if config.SnapRadius != DefaultSnapRadius {
		t.Errorf("expected snap_radius %d, got %d", DefaultSnapRadius, config.SnapRadius)
	}
	if config.LogLevel != "info" {
		t.Errorf("expected log_level info, got %s", config.LogLevel)
	}
}

func TestParseFullConfig(t *testing.T) {
	content := `
model: claude-sonnet-4-20250514
style: strict
enable_inline: false
fail_level: MAJOR
include_globs:
  - "src/**"
exclude_globs:
  - "vendor/**"
  - "*.gen.go"
max_files: 50
max_diff_chars: 4000
max_findings: 25
batch_size: 10
max_tokens: 2048
snap_radius: 5
log_level: debug
`

	config, err := Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if config.Model != "claude-sonnet-4-20250514" {
		t.Errorf("unexpected model: %s", config.Model)
	}
	if config.EnableInline {
		t.Error("expected inline comments disabled")
	}
	if config.FailLevel != "MAJOR" {
		t.Errorf("unexpected fail_level: %s", config.FailLevel)
	}
	if len(config.IncludeGlobs) != 1 || len(config.ExcludeGlobs) != 2 {
		t.Errorf("unexpected globs: %v / %v", config.IncludeGlobs, config.ExcludeGlobs)
	}
	if config.SnapRadius != 5 {
		t.Errorf("expected snap_radius 5, got %d", config.SnapRadius)
	}
}

func TestParseExpandsEnv(t *testing.T) {
	t.Setenv("TEST_REVIEWBOT_KEY", "sk-test-1234")

	config, err := Parse([]byte("anthropic_api_key: ${TEST_REVIEWBOT_KEY}\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if config.AnthropicAPIKey != "sk-test-1234" {
		t.Errorf("expected env-expanded key, got %q", config.AnthropicAPIKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "valid fail level", mutate: func(c *Config) { c.FailLevel = "CRITICAL" }},
		{name: "invalid fail level", mutate: func(c *Config) { c.FailLevel = "blocker" }, wantErr: true},
		{name: "lowercase fail level accepted", mutate: func(c *Config) { c.FailLevel = "major" }},
		{name: "invalid log level", mutate: func(c *Config) { c.LogLevel = "verbose" }, wantErr: true},
		{name: "zero max files", mutate: func(c *Config) { c.MaxFiles = 0 }, wantErr: true},
		{name: "negative batch size", mutate: func(c *Config) { c.BatchSize = -1 }, wantErr: true},
		{name: "zero max tokens", mutate: func(c *Config) { c.MaxTokens = 0 }, wantErr: true},
		{name: "negative snap radius", mutate: func(c *Config) { c.SnapRadius = -1 }, wantErr: true},
		{name: "zero snap radius allowed", mutate: func(c *Config) { c.SnapRadius = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNormalizesFailLevel(t *testing.T) {
	config := DefaultConfig()
	config.FailLevel = "major"
	if err := config.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if config.FailLevel != "MAJOR" {
		t.Errorf("expected fail_level normalized to MAJOR, got %q", config.FailLevel)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.MaxFiles != DefaultMaxFiles {
		t.Error("expected default config for missing file")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("fail_level: [not, a, string]\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid config")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected ParseError, got %T", err)
	}
}

func TestResolveSecrets(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-anthropic")
	t.Setenv("GITHUB_TOKEN", "env-github")
	t.Setenv("DATABASE_URL", "env-db")

	config := DefaultConfig()
	config.GitHubToken = "from-file"
	config.ResolveSecrets()

	if config.AnthropicAPIKey != "env-anthropic" {
		t.Errorf("expected env fallback for anthropic key, got %q", config.AnthropicAPIKey)
	}
	if config.GitHubToken != "from-file" {
		t.Errorf("file value should win over env, got %q", config.GitHubToken)
	}
	if config.DatabaseURL != "env-db" {
		t.Errorf("expected env fallback for database url, got %q", config.DatabaseURL)
	}
}

func TestUseAppAuth(t *testing.T) {
	config := DefaultConfig()
	if config.UseAppAuth() {
		t.Error("app auth should be off by default")
	}

	config.GitHubAppID = 123
	config.GitHubPrivateKeyPath = "/tmp/key.pem"
	if config.UseAppAuth() {
		t.Error("app auth needs the installation ID too")
	}

	config.GitHubInstallationID = 456
	if !config.UseAppAuth() {
		t.Error("app auth should be on with all three fields set")
	}
}
