package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPClient calls an OpenAI-compatible /moderations endpoint.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewHTTPClient creates a moderation client. The timeout is deliberately
// short: moderation is a guardrail stage and must fail fast rather than
// hold the whole request.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type moderationRequest struct {
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged    bool            `json:"flagged"`
		Categories json.RawMessage `json:"categories"`
	} `json:"results"`
}

// Classify posts the text and decodes the first result. The categories
// object is parsed with a token decoder instead of a map so the provider's
// key order survives.
func (c *HTTPClient) Classify(ctx context.Context, text string) (Result, error) {
	reqBody, err := json.Marshal(moderationRequest{Input: text})
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/moderations", bytes.NewReader(reqBody))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("moderation service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("moderation returned status: %d", resp.StatusCode)
	}

	var body moderationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("decode moderation response: %w", err)
	}
	if len(body.Results) == 0 {
		return Result{}, fmt.Errorf("moderation response contained no results")
	}

	categories, err := parseCategories(body.Results[0].Categories)
	if err != nil {
		return Result{}, fmt.Errorf("decode moderation categories: %w", err)
	}

	return Result{
		Flagged:    body.Results[0].Flagged,
		Categories: categories,
	}, nil
}

// parseCategories walks the categories JSON object token by token,
// keeping the keys in document order.
func parseCategories(raw json.RawMessage) ([]Category, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("categories: expected object, got %v", tok)
	}

	var categories []Category
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("categories: unexpected key token %v", keyTok)
		}

		var flagged bool
		if err := dec.Decode(&flagged); err != nil {
			return nil, fmt.Errorf("categories: value of %q: %w", name, err)
		}

		categories = append(categories, Category{Name: name, Flagged: flagged})
	}

	return categories, nil
}
