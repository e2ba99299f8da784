package guardrail

import (
	"context"
	"fmt"

	"github.com/Cyclone1070/fincoach/internal/config"
	"github.com/Cyclone1070/fincoach/internal/moderation"
)

// ModerationStage delegates to the external moderation service. On a
// flagged result, the first flagged category in the provider's
// enumeration order names the rejection; categories are not aggregated.
type ModerationStage struct {
	client moderation.Client
}

// NewModerationStage returns the moderation check.
func NewModerationStage(client moderation.Client) *ModerationStage {
	return &ModerationStage{client: client}
}

// Name implements Stage.
func (m *ModerationStage) Name() string { return config.StageModeration }

// Check implements Stage.
func (m *ModerationStage) Check(ctx context.Context, text string) (Verdict, error) {
	result, err := m.client.Classify(ctx, text)
	if err != nil {
		return Verdict{}, err
	}

	if result.Flagged {
		category, ok := result.FirstFlagged()
		if !ok {
			// Flagged with no category is an inconsistent provider
			// response; fail the check rather than guess a reason.
			return Verdict{}, fmt.Errorf("moderation flagged input but listed no category")
		}
		return Reject(m.Name(), fmt.Sprintf("message violates moderation policy: %s", category)), nil
	}

	return Allow(), nil
}
