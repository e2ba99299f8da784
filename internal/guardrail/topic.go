package guardrail

import (
	"context"
	"fmt"

	"github.com/Cyclone1070/fincoach/internal/config"
	"github.com/Cyclone1070/fincoach/internal/domain"
	"github.com/Cyclone1070/fincoach/internal/metadata"
	"github.com/Cyclone1070/fincoach/internal/provider"
)

const topicSystemPrompt = `You are an expert classifier for a marketing chatbot. Decide if a user's message is ON-TOPIC (about our product, its features, use cases, or support) or OFF-TOPIC (not related to our product, or about competitors, or inappropriate).

- ON-TOPIC: Any question or statement about the product, its features, pricing, support, integrations, what it does, or anything that helps the user understand or use the product. This includes generic questions like "tell me about your product", "what do you do?", "how can you help me?".
- OFF-TOPIC: Personal questions, jokes, unrelated topics, competitor comparisons, or anything not about our product.
- GREETINGS: If the message is a greeting (e.g. "hi", "hello"), treat as ON-TOPIC.
- COMPETITOR: If the message mentions a competitor, treat as OFF-TOPIC and explain why.

Respond ONLY in this JSON format:
{ "on_topic": true/false, "reason": "..." }`

// topicResult is the on-topic classifier's JSON contract. OnTopic is a
// pointer so a missing field fails hard instead of defaulting.
type topicResult struct {
	OnTopic *bool  `mapstructure:"on_topic"`
	Reason  string `mapstructure:"reason"`
}

// TopicStage is the marketing-variant on-topic classifier.
type TopicStage struct {
	provider provider.Provider
	meta     *metadata.Store
}

// NewTopicStage returns the on-topic check parameterized by the cached
// product metadata.
func NewTopicStage(p provider.Provider, meta *metadata.Store) *TopicStage {
	return &TopicStage{provider: p, meta: meta}
}

// Name implements Stage.
func (t *TopicStage) Name() string { return config.StageTopic }

// Check implements Stage.
func (t *TopicStage) Check(ctx context.Context, text string) (Verdict, error) {
	meta := t.meta.Get()
	user := topicUserPrompt(meta, text)

	raw, err := t.provider.ClassifyJSON(ctx, topicSystemPrompt, user)
	if err != nil {
		return Verdict{}, err
	}

	var result topicResult
	if err := decodeClassifierJSON(raw, &result); err != nil {
		return Verdict{}, err
	}
	if result.OnTopic == nil {
		return Verdict{}, fmt.Errorf("classifier response missing required field %q", "on_topic")
	}

	if !*result.OnTopic {
		return Reject(t.Name(), reasonOr(result.Reason, "message is off-topic for this assistant")), nil
	}
	return Allow(), nil
}

func topicUserPrompt(meta domain.Metadata, text string) string {
	return fmt.Sprintf("Product: %s\nDescription: %s\n\nUser Message: %q", meta.ProductName, meta.Description, text)
}
