package postgres

import (
	"encoding/json"

	"github.com/reviewbot/reviewbot/storage"
)

// usageToJSON serializes token usage for the JSONB column. Returns nil for
// nil usage so the column stays NULL.
func usageToJSON(usage *storage.TokenUsage) interface{} {
	if usage == nil {
		return nil
	}
	data, err := json.Marshal(usage)
	if err != nil {
		return nil
	}
	return string(data)
}

// usageFromJSON deserializes token usage from the JSONB column. Returns nil
// on any decode failure rather than surfacing a storage error for a
// diagnostics-only field.
func usageFromJSON(data string) *storage.TokenUsage {
	if data == "" {
		return nil
	}
	var usage storage.TokenUsage
	if err := json.Unmarshal([]byte(data), &usage); err != nil {
		return nil
	}
	return &usage
}
