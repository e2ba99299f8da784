package gemini

import (
	"context"
	"errors"

	"github.com/Cyclone1070/fincoach/internal/domain"
	"github.com/Cyclone1070/fincoach/internal/provider"
	"google.golang.org/genai"
)

// toGeminiContents converts prompt messages to Gemini Content format.
// The system turn travels as SystemInstruction, not as a content entry.
func toGeminiContents(messages []domain.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		if msg.Role == domain.RoleSystem || msg.Content == "" {
			continue
		}

		var role genai.Role = genai.RoleUser
		if msg.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}

		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}

	return contents
}

// systemContent wraps a system prompt as a SystemInstruction content.
func systemContent(text string) *genai.Content {
	return &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(text)}}
}

// responseText extracts the text of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", &provider.Error{Kind: provider.ErrEmptyResponse, Message: "no candidates in response"}
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", &provider.Error{Kind: provider.ErrContentBlocked, Message: "candidate blocked by safety filters"}
	}

	var text string
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			text += part.Text
		}
	}
	if text == "" {
		return "", &provider.Error{Kind: provider.ErrEmptyResponse, Message: "candidate contained no text"}
	}

	return text, nil
}

// defaultSafetySettings disables provider-side blocking: safety is the
// guardrail pipeline's job, and a provider block mid-conversation would
// surface as an opaque infra error instead of a structured rejection.
func defaultSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdOff},
	}
}

// mapGeminiError maps Gemini API errors to provider errors.
func mapGeminiError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &provider.Error{Kind: provider.ErrTimeout, Message: "call exceeded deadline", Underlying: err, Retryable: true}
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403:
			return &provider.Error{Kind: provider.ErrAuthentication, Message: "authentication failed", Underlying: err}
		case 429:
			return &provider.Error{Kind: provider.ErrRateLimit, Message: "rate limit exceeded", Underlying: err, Retryable: true}
		case 400:
			return &provider.Error{Kind: provider.ErrInvalidRequest, Message: apiErr.Message, Underlying: err}
		case 500, 502, 503, 504:
			return &provider.Error{Kind: provider.ErrServiceUnavailable, Message: "service unavailable", Underlying: err, Retryable: true}
		default:
			return &provider.Error{Kind: provider.ErrServiceUnavailable, Message: apiErr.Message, Underlying: err, Retryable: true}
		}
	}

	return &provider.Error{Kind: provider.ErrServiceUnavailable, Message: "network error", Underlying: err, Retryable: true}
}
