// Package anyllm binds llm.Port to github.com/mozilla-ai/any-llm-go, a
// provider-agnostic LLM client (pulled into the dependency stack by
// louisbranch-fracturing.space). No package in this module imports it;
// cmd/ttasolo-core builds its move executor with a nil LLM port, so the
// resolution engine stays provider-agnostic (spec.md §4.4, §6).
package anyllm

import (
	"context"
	"time"

	anyllm "github.com/mozilla-ai/any-llm-go"

	"github.com/xldeveloper/theinterneti-tta-solo/llm"
	"github.com/xldeveloper/theinterneti-tta-solo/rpgerr"
)

// Client adapts an any-llm-go completion client to llm.Port.
type Client struct {
	completer *anyllm.Client
	model     string
}

// New builds a Client for the given provider/model pair, e.g.
// provider "ollama" model "llama3" for a local fallback-friendly setup.
func New(provider, model, apiKey string) (*Client, error) {
	c, err := anyllm.NewClient(anyllm.Config{
		Provider: provider,
		APIKey:   apiKey,
	})
	if err != nil {
		return nil, rpgerr.Wrap(err, "anyllm: construct client")
	}
	return &Client{completer: c, model: model}, nil
}

// GenerateStructured implements llm.Port.
func (c *Client) GenerateStructured(ctx context.Context, req llm.StructuredRequest) (*llm.StructuredResponse, error) {
	resp, err := c.completer.Complete(ctx, anyllm.CompletionRequest{
		Model: c.model,
		Messages: []anyllm.Message{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.Prompt},
		},
		ResponseFormat: &anyllm.ResponseFormat{
			Type:       "json_schema",
			SchemaName: req.SchemaName,
			SchemaJSON: req.SchemaJSON,
		},
	})
	if err != nil {
		return nil, rpgerr.Wrap(err, "anyllm: structured completion")
	}
	if len(resp.Choices) == 0 {
		return nil, rpgerr.RuleViolation("anyllm: empty completion response")
	}
	return &llm.StructuredResponse{JSON: resp.Choices[0].Message.Content}, nil
}

// GenerateNarrative implements llm.Port.
func (c *Client) GenerateNarrative(ctx context.Context, req llm.NarrativeRequest) (*llm.NarrativeResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := c.completer.Complete(ctx, anyllm.CompletionRequest{
		Model:     c.model,
		MaxTokens: req.MaxTokens,
		Messages: []anyllm.Message{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.Prompt},
		},
	})
	if err != nil {
		return nil, rpgerr.Wrap(err, "anyllm: narrative completion")
	}
	if len(resp.Choices) == 0 {
		return nil, rpgerr.RuleViolation("anyllm: empty completion response")
	}
	return &llm.NarrativeResponse{Text: resp.Choices[0].Message.Content}, nil
}
