package guardrail

import (
	"context"
	"fmt"

	"github.com/Cyclone1070/fincoach/internal/config"
	"github.com/Cyclone1070/fincoach/internal/provider"
)

const adviceSystemPrompt = `You are an expert classifier for a financial coaching assistant. Decide if the user is asking for DIRECT financial advice: a specific, actionable investment or financial decision made for them.

- DIRECT ADVICE: "should I buy X stock?", "where should I invest my savings?", "is now the time to sell?", "which fund should I pick?", or any other request for a concrete buy/sell/pick decision.
- NOT DIRECT ADVICE: questions about concepts, habits, trade-offs, or how something works ("what is an index fund?", "how do people usually split savings?"), even when the topic is investing.

This classification is independent of whether the topic itself is acceptable.

Respond ONLY in this JSON format:
{ "direct_advice": true/false, "reason": "..." }`

// adviceResult is the direct-advice detector's contract.
type adviceResult struct {
	DirectAdvice *bool  `mapstructure:"direct_advice"`
	Reason       string `mapstructure:"reason"`
}

// AdviceStage detects requests for specific actionable investment or
// financial decisions, which the coach persona must decline.
type AdviceStage struct {
	provider provider.Provider
}

// NewAdviceStage returns the direct-advice check.
func NewAdviceStage(p provider.Provider) *AdviceStage {
	return &AdviceStage{provider: p}
}

// Name implements Stage.
func (a *AdviceStage) Name() string { return config.StageAdvice }

// Check implements Stage.
func (a *AdviceStage) Check(ctx context.Context, text string) (Verdict, error) {
	raw, err := a.provider.ClassifyJSON(ctx, adviceSystemPrompt, fmt.Sprintf("User Message: %q", text))
	if err != nil {
		return Verdict{}, err
	}

	var result adviceResult
	if err := decodeClassifierJSON(raw, &result); err != nil {
		return Verdict{}, err
	}
	if result.DirectAdvice == nil {
		return Verdict{}, fmt.Errorf("classifier response missing required field %q", "direct_advice")
	}

	if *result.DirectAdvice {
		return Reject(a.Name(), reasonOr(result.Reason, "I can't recommend specific investments or financial decisions, but I'm happy to explain the concepts involved")), nil
	}
	return Allow(), nil
}
