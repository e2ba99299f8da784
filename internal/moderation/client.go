// Package moderation wraps an OpenAI-compatible moderation endpoint.
// Category order as enumerated by the provider is preserved so that "the
// first flagged category" is well defined.
package moderation

import "context"

// Category is one provider category with its flag.
type Category struct {
	Name    string
	Flagged bool
}

// Result is the provider's classification of one input.
type Result struct {
	Flagged    bool
	Categories []Category // provider enumeration order
}

// FirstFlagged returns the first flagged category in provider order.
func (r Result) FirstFlagged() (string, bool) {
	for _, c := range r.Categories {
		if c.Flagged {
			return c.Name, true
		}
	}
	return "", false
}

// Client classifies text against a moderation service.
type Client interface {
	Classify(ctx context.Context, text string) (Result, error)
}
