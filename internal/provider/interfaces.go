package provider

import (
	"context"

	"github.com/Cyclone1070/fincoach/internal/domain"
)

// CompletionRequest carries an assembled prompt to the LLM. Messages hold
// the conversation (history pairs plus the final user message); System is
// the persona instruction and is always delivered as the system turn.
type CompletionRequest struct {
	System   string
	Messages []domain.Message
}

// Provider represents the interface to the Language Model.
type Provider interface {
	// Complete generates the assistant reply for an assembled prompt.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// ClassifyJSON runs a single-turn zero-shot classification with
	// deterministic settings (temperature zero, small output budget,
	// JSON response contract) and returns the raw JSON text.
	ClassifyJSON(ctx context.Context, system, user string) (string, error)
}
