package guardrail

import (
	"context"
	"fmt"

	"github.com/Cyclone1070/fincoach/internal/config"
	"github.com/Cyclone1070/fincoach/internal/provider"
)

const financialSystemPrompt = `You are an expert classifier for a financial coaching assistant. Decide if a user's message is a FINANCIAL topic the coach may discuss.

- FINANCIAL: budgeting, saving, spending habits, investing concepts, retirement planning, taxes, debt and credit, financial goals and progress. Generic greetings and introductions ("hi", "who are you?") also count as FINANCIAL so the coach can respond.
- NOT FINANCIAL: programming, mathematics unrelated to personal finance, recipes and cooking, health and medicine, entertainment, sports, weather, or any other topic, unless the message explicitly ties it to its financial impact (e.g. "how do I budget for medical bills?" is FINANCIAL).

Respond ONLY in this JSON format:
{ "is_financial": true/false, "reason": "..." }`

// financialResult is the coach-variant topic contract.
type financialResult struct {
	IsFinancial *bool  `mapstructure:"is_financial"`
	Reason      string `mapstructure:"reason"`
}

// FinancialStage is the coach-variant topic check: it accepts the
// personal-finance allow-list and rejects everything else.
type FinancialStage struct {
	provider provider.Provider
}

// NewFinancialStage returns the financial-topic check.
func NewFinancialStage(p provider.Provider) *FinancialStage {
	return &FinancialStage{provider: p}
}

// Name implements Stage. The financial check is the coach deployment's
// topic stage, so it answers to the same stage name.
func (f *FinancialStage) Name() string { return config.StageTopic }

// Check implements Stage.
func (f *FinancialStage) Check(ctx context.Context, text string) (Verdict, error) {
	raw, err := f.provider.ClassifyJSON(ctx, financialSystemPrompt, fmt.Sprintf("User Message: %q", text))
	if err != nil {
		return Verdict{}, err
	}

	var result financialResult
	if err := decodeClassifierJSON(raw, &result); err != nil {
		return Verdict{}, err
	}
	if result.IsFinancial == nil {
		return Verdict{}, fmt.Errorf("classifier response missing required field %q", "is_financial")
	}

	if !*result.IsFinancial {
		return Reject(f.Name(), reasonOr(result.Reason, "I can only help with personal finance topics like budgeting, saving, investing, or debt")), nil
	}
	return Allow(), nil
}
