// Package anthropic wraps the Anthropic API for review generation.
package anthropic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/reviewbot/reviewbot/storage"
)

// APITimeout is the maximum time to wait for a model response.
const APITimeout = 3 * time.Minute

// DefaultModel is the Claude model used when the config names none.
const DefaultModel = "claude-sonnet-4-20250514"

// Client calls the Anthropic Messages API.
type Client struct {
	apiKey string
	logger *slog.Logger
}

// NewClient creates a new API client.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	return &Client{apiKey: apiKey, logger: logger}
}

// Response contains the raw text and token usage from one API call.
type Response struct {
	Text  string
	Usage *storage.TokenUsage
}

// Complete sends a single-turn request and returns the text of the first
// text block in the response along with token usage.
func (c *Client) Complete(ctx context.Context, model, system, prompt string, maxTokens int64) (*Response, error) {
	client := anthropic.NewClient(option.WithAPIKey(c.apiKey))

	timeoutCtx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	message, err := client.Messages.New(timeoutCtx, anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(model)),
		MaxTokens: anthropic.F(maxTokens),
		System: anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(system),
		}),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("Anthropic API error: %w", err)
	}

	usage := &storage.TokenUsage{
		InputTokens:              message.Usage.InputTokens,
		OutputTokens:             message.Usage.OutputTokens,
		CacheReadInputTokens:     message.Usage.CacheReadInputTokens,
		CacheCreationInputTokens: message.Usage.CacheCreationInputTokens,
	}
	c.logger.Info("Anthropic API usage",
		"model", model,
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
	)

	for _, block := range message.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			return &Response{Text: block.Text, Usage: usage}, nil
		}
	}

	// No text block; treat as an empty response and let the caller decide
	// whether to retry.
	return &Response{Text: "", Usage: usage}, nil
}
