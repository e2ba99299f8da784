package gemini

import (
	"context"
	"testing"

	"github.com/Cyclone1070/fincoach/internal/domain"
	"github.com/Cyclone1070/fincoach/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestToGeminiContents_RoleMapping(t *testing.T) {
	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: "be helpful"},
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleAssistant, Content: "hello"},
		{Role: domain.RoleUser, Content: "budget tips?"},
	}

	contents := toGeminiContents(messages)

	// System turns never appear as contents.
	require.Len(t, contents, 3)
	assert.EqualValues(t, "user", contents[0].Role)
	assert.EqualValues(t, "model", contents[1].Role)
	assert.EqualValues(t, "user", contents[2].Role)
	assert.Equal(t, "hi", contents[0].Parts[0].Text)
}

func TestToGeminiContents_SkipsEmptyMessages(t *testing.T) {
	messages := []domain.Message{
		{Role: domain.RoleUser, Content: ""},
		{Role: domain.RoleUser, Content: "real"},
	}

	contents := toGeminiContents(messages)

	require.Len(t, contents, 1)
	assert.Equal(t, "real", contents[0].Parts[0].Text)
}

func TestResponseText_ConcatenatesParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{
				genai.NewPartFromText("first "),
				genai.NewPartFromText("second"),
			}}},
		},
	}

	text, err := responseText(resp)

	require.NoError(t, err)
	assert.Equal(t, "first second", text)
}

func TestResponseText_NilResponse_EmptyResponseError(t *testing.T) {
	_, err := responseText(nil)

	assert.ErrorIs(t, err, provider.ErrEmptyResponse)
}

func TestResponseText_SafetyBlock_ContentBlockedError(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{FinishReason: genai.FinishReasonSafety},
		},
	}

	_, err := responseText(resp)

	assert.ErrorIs(t, err, provider.ErrContentBlocked)
}

func TestResponseText_NoText_EmptyResponseError(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{}},
		},
	}

	_, err := responseText(resp)

	assert.ErrorIs(t, err, provider.ErrEmptyResponse)
}

func TestMapGeminiError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantKind  error
		retryable bool
	}{
		{"deadline exceeded", context.DeadlineExceeded, provider.ErrTimeout, true},
		{"unauthorized", &genai.APIError{Code: 401}, provider.ErrAuthentication, false},
		{"forbidden", &genai.APIError{Code: 403}, provider.ErrAuthentication, false},
		{"rate limited", &genai.APIError{Code: 429}, provider.ErrRateLimit, true},
		{"bad request", &genai.APIError{Code: 400, Message: "bad"}, provider.ErrInvalidRequest, false},
		{"server error", &genai.APIError{Code: 503}, provider.ErrServiceUnavailable, true},
		{"unknown api code", &genai.APIError{Code: 418}, provider.ErrServiceUnavailable, true},
		{"plain network error", assert.AnError, provider.ErrServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := mapGeminiError(tt.err)
			assert.ErrorIs(t, mapped, tt.wantKind)
			assert.Equal(t, tt.retryable, provider.IsRetryable(mapped))
		})
	}
}

func TestMapGeminiError_Nil(t *testing.T) {
	assert.NoError(t, mapGeminiError(nil))
}
