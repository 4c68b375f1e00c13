// Package llm defines the narrow port the move executor and router use
// to reach a language model (spec.md §4.4, §6: "the core never calls
// the LLM itself; narrative generation... [is an] external
// collaborator invoked by a surrounding shell"). The core only depends
// on this interface; llm/anyllm provides a concrete binding.
package llm

import "context"

// StructuredRequest asks the model to fill a schema-shaped response,
// used by generative move generators to mint new entities/relationships.
type StructuredRequest struct {
	SystemPrompt string
	Prompt       string
	SchemaName   string
	SchemaJSON   string // JSON schema the response must conform to
}

// StructuredResponse is the model's schema-conforming reply.
type StructuredResponse struct {
	JSON string
}

// NarrativeRequest asks the model for free-form prose.
type NarrativeRequest struct {
	SystemPrompt string
	Prompt       string
	MaxTokens    int
}

// NarrativeResponse is the model's prose reply.
type NarrativeResponse struct {
	Text string
}

// Port is the LLM collaborator interface (spec.md §4.4). Implementations
// must respect ctx cancellation/deadline; callers apply their own
// timeout (spec.md §4.4 names 5s for move-executor generative calls).
type Port interface {
	GenerateStructured(ctx context.Context, req StructuredRequest) (*StructuredResponse, error)
	GenerateNarrative(ctx context.Context, req NarrativeRequest) (*NarrativeResponse, error)
}
