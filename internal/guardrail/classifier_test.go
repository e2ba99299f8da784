package guardrail

import (
	"context"
	"errors"
	"testing"

	"github.com/Cyclone1070/fincoach/internal/metadata"
	"github.com/Cyclone1070/fincoach/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockProvider implements provider.Provider for testing.
type MockProvider struct {
	CompleteFunc  func(ctx context.Context, req provider.CompletionRequest) (string, error)
	ClassifyFunc  func(ctx context.Context, system, user string) (string, error)
	ClassifyCalls int
}

func (m *MockProvider) Complete(ctx context.Context, req provider.CompletionRequest) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "", errors.New("Complete not configured")
}

func (m *MockProvider) ClassifyJSON(ctx context.Context, system, user string) (string, error) {
	m.ClassifyCalls++
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, system, user)
	}
	return "", errors.New("ClassifyJSON not configured")
}

// MockMetadataFS serves a fixed metadata file.
type MockMetadataFS struct {
	Data []byte
}

func (m *MockMetadataFS) ReadFile(string) ([]byte, error) {
	return m.Data, nil
}

func testMetadata(t *testing.T) *metadata.Store {
	t.Helper()
	fs := &MockMetadataFS{Data: []byte(`{
		"productName": "FinCoach",
		"description": "A personal finance coaching assistant.",
		"features": ["budgeting", "goal tracking"]
	}`)}
	store := metadata.NewStoreWithFS(fs, "product_metadata.json")
	require.NoError(t, store.Load())
	return store
}

func TestDecodeClassifierJSON_CleanJSON(t *testing.T) {
	var result topicResult
	err := decodeClassifierJSON(`{"on_topic": true, "reason": "about the product"}`, &result)

	require.NoError(t, err)
	require.NotNil(t, result.OnTopic)
	assert.True(t, *result.OnTopic)
	assert.Equal(t, "about the product", result.Reason)
}

func TestDecodeClassifierJSON_FencedJSON_Repaired(t *testing.T) {
	raw := "```json\n{\"on_topic\": false, \"reason\": \"competitor\"}\n```"

	var result topicResult
	err := decodeClassifierJSON(raw, &result)

	require.NoError(t, err)
	require.NotNil(t, result.OnTopic)
	assert.False(t, *result.OnTopic)
}

func TestDecodeClassifierJSON_TrailingComma_Repaired(t *testing.T) {
	var result topicResult
	err := decodeClassifierJSON(`{"on_topic": true, "reason": "fine",}`, &result)

	require.NoError(t, err)
	require.NotNil(t, result.OnTopic)
}

func TestDecodeClassifierJSON_MissingField_LeavesNilPointer(t *testing.T) {
	var result topicResult
	err := decodeClassifierJSON(`{"reason": "no verdict given"}`, &result)

	require.NoError(t, err)
	assert.Nil(t, result.OnTopic)
}

func TestTopicStage_OnTopic_Allows(t *testing.T) {
	p := &MockProvider{
		ClassifyFunc: func(_ context.Context, _, _ string) (string, error) {
			return `{"on_topic": true, "reason": ""}`, nil
		},
	}
	stage := NewTopicStage(p, testMetadata(t))

	verdict, err := stage.Check(context.Background(), "what does FinCoach do?")

	require.NoError(t, err)
	assert.True(t, verdict.Allowed)
}

func TestTopicStage_OffTopic_RejectsWithClassifierReason(t *testing.T) {
	p := &MockProvider{
		ClassifyFunc: func(_ context.Context, _, _ string) (string, error) {
			return `{"on_topic": false, "reason": "asks about a competitor"}`, nil
		},
	}
	stage := NewTopicStage(p, testMetadata(t))

	verdict, err := stage.Check(context.Background(), "is BudgetBuddy better?")

	require.NoError(t, err)
	assert.False(t, verdict.Allowed)
	assert.Equal(t, stage.Name(), verdict.Stage)
	assert.Equal(t, "asks about a competitor", verdict.Reason)
}

func TestTopicStage_OffTopicNoReason_UsesDefaultReason(t *testing.T) {
	p := &MockProvider{
		ClassifyFunc: func(_ context.Context, _, _ string) (string, error) {
			return `{"on_topic": false}`, nil
		},
	}
	stage := NewTopicStage(p, testMetadata(t))

	verdict, err := stage.Check(context.Background(), "tell me a joke")

	require.NoError(t, err)
	assert.False(t, verdict.Allowed)
	assert.Equal(t, "message is off-topic for this assistant", verdict.Reason)
}

func TestTopicStage_UserPromptCarriesProductContext(t *testing.T) {
	var captured string
	p := &MockProvider{
		ClassifyFunc: func(_ context.Context, _, user string) (string, error) {
			captured = user
			return `{"on_topic": true}`, nil
		},
	}
	stage := NewTopicStage(p, testMetadata(t))

	_, err := stage.Check(context.Background(), "what are the features?")

	require.NoError(t, err)
	assert.Contains(t, captured, "FinCoach")
	assert.Contains(t, captured, "A personal finance coaching assistant.")
	assert.Contains(t, captured, "what are the features?")
}

func TestTopicStage_MissingVerdictField_Errors(t *testing.T) {
	p := &MockProvider{
		ClassifyFunc: func(_ context.Context, _, _ string) (string, error) {
			return `{"reason": "probably fine"}`, nil
		},
	}
	stage := NewTopicStage(p, testMetadata(t))

	_, err := stage.Check(context.Background(), "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "on_topic")
}

func TestTopicStage_ProviderError_Propagates(t *testing.T) {
	providerErr := errors.New("rate limited")
	p := &MockProvider{
		ClassifyFunc: func(_ context.Context, _, _ string) (string, error) {
			return "", providerErr
		},
	}
	stage := NewTopicStage(p, testMetadata(t))

	_, err := stage.Check(context.Background(), "hello")

	assert.ErrorIs(t, err, providerErr)
}

func TestFinancialStage_FinancialTopic_Allows(t *testing.T) {
	p := &MockProvider{
		ClassifyFunc: func(_ context.Context, _, _ string) (string, error) {
			return `{"is_financial": true}`, nil
		},
	}
	stage := NewFinancialStage(p)

	verdict, err := stage.Check(context.Background(), "how do I start an emergency fund?")

	require.NoError(t, err)
	assert.True(t, verdict.Allowed)
}

func TestFinancialStage_NonFinancialTopic_Rejects(t *testing.T) {
	p := &MockProvider{
		ClassifyFunc: func(_ context.Context, _, _ string) (string, error) {
			return `{"is_financial": false, "reason": "cooking question"}`, nil
		},
	}
	stage := NewFinancialStage(p)

	verdict, err := stage.Check(context.Background(), "best pasta recipe?")

	require.NoError(t, err)
	assert.False(t, verdict.Allowed)
	assert.Equal(t, "cooking question", verdict.Reason)
}

func TestFinancialStage_SharesTopicStageName(t *testing.T) {
	// Coach and marketing deployments both expose a "topic" stage; only
	// the classifier behind it differs.
	assert.Equal(t, NewTopicStage(nil, nil).Name(), NewFinancialStage(nil).Name())
}

func TestFinancialStage_MissingVerdictField_Errors(t *testing.T) {
	p := &MockProvider{
		ClassifyFunc: func(_ context.Context, _, _ string) (string, error) {
			return `{}`, nil
		},
	}
	stage := NewFinancialStage(p)

	_, err := stage.Check(context.Background(), "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "is_financial")
}

func TestAdviceStage_ConceptQuestion_Allows(t *testing.T) {
	p := &MockProvider{
		ClassifyFunc: func(_ context.Context, _, _ string) (string, error) {
			return `{"direct_advice": false}`, nil
		},
	}
	stage := NewAdviceStage(p)

	verdict, err := stage.Check(context.Background(), "what is an index fund?")

	require.NoError(t, err)
	assert.True(t, verdict.Allowed)
}

func TestAdviceStage_DirectAdviceRequest_Rejects(t *testing.T) {
	p := &MockProvider{
		ClassifyFunc: func(_ context.Context, _, _ string) (string, error) {
			return `{"direct_advice": true}`, nil
		},
	}
	stage := NewAdviceStage(p)

	verdict, err := stage.Check(context.Background(), "should I buy AAPL stock?")

	require.NoError(t, err)
	assert.False(t, verdict.Allowed)
	assert.Contains(t, verdict.Reason, "can't recommend specific investments")
}

func TestAdviceStage_MissingVerdictField_Errors(t *testing.T) {
	p := &MockProvider{
		ClassifyFunc: func(_ context.Context, _, _ string) (string, error) {
			return `{"reason": "unsure"}`, nil
		},
	}
	stage := NewAdviceStage(p)

	_, err := stage.Check(context.Background(), "should I buy AAPL stock?")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "direct_advice")
}
