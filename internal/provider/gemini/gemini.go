// Package gemini implements the provider port on top of the Google Gemini
// SDK. Classifier calls are pinned to deterministic settings; completion
// calls keep the model's conversational defaults.
package gemini

import (
	"context"
	"time"

	"github.com/Cyclone1070/fincoach/internal/provider"
	"google.golang.org/genai"
)

// classifierMaxTokens bounds classifier output. The JSON contract is one
// boolean field and a short reason, so a small budget keeps cost and
// latency flat.
const classifierMaxTokens = 100

// Provider implements provider.Provider for Google Gemini.
type Provider struct {
	client          GeminiClient
	model           string
	classifierModel string
	timeout         time.Duration
}

// New creates a Provider with the given client and models. timeout bounds
// every outbound call; a zero timeout disables the per-call bound (the
// caller's ctx still applies).
func New(client GeminiClient, model, classifierModel string, timeout time.Duration) *Provider {
	return &Provider{
		client:          client,
		model:           model,
		classifierModel: classifierModel,
		timeout:         timeout,
	}
}

// Complete generates the assistant reply for an assembled prompt.
func (p *Provider) Complete(ctx context.Context, req provider.CompletionRequest) (string, error) {
	ctx, cancel := p.bound(ctx)
	defer cancel()

	config := &genai.GenerateContentConfig{
		SafetySettings: defaultSafetySettings(),
	}
	if req.System != "" {
		config.SystemInstruction = systemContent(req.System)
	}

	resp, err := p.client.GenerateContent(ctx, p.model, toGeminiContents(req.Messages), config)
	if err != nil {
		return "", mapGeminiError(err)
	}

	return responseText(resp)
}

// ClassifyJSON runs a single-turn classification with temperature zero and
// a strict JSON response MIME type, returning the raw JSON text.
func (p *Provider) ClassifyJSON(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := p.bound(ctx)
	defer cancel()

	temperature := float32(0)
	config := &genai.GenerateContentConfig{
		SystemInstruction: systemContent(system),
		Temperature:       &temperature,
		MaxOutputTokens:   classifierMaxTokens,
		ResponseMIMEType:  "application/json",
		SafetySettings:    defaultSafetySettings(),
	}

	contents := []*genai.Content{genai.NewContentFromText(user, genai.RoleUser)}

	resp, err := p.client.GenerateContent(ctx, p.classifierModel, contents, config)
	if err != nil {
		return "", mapGeminiError(err)
	}

	return responseText(resp)
}

func (p *Provider) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}
