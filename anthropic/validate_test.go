package anthropic

import (
	"context"
	"testing"
)

func TestValidateAPIKeyEmpty(t *testing.T) {
	if err := ValidateAPIKey(context.Background(), ""); err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestExtractKeyHint(t *testing.T) {
	tests := []struct {
		apiKey string
		want   string
	}{
		{"sk-ant-api03-abcd", "abcd"},
		{"abc", "****"},
		{"", "****"},
	}

	for _, tt := range tests {
		if got := ExtractKeyHint(tt.apiKey); got != tt.want {
			t.Errorf("ExtractKeyHint(%q) = %q, want %q", tt.apiKey, got, tt.want)
		}
	}
}
