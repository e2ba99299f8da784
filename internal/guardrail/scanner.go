package guardrail

import (
	"context"
	"fmt"
	"regexp"

	"github.com/Cyclone1070/fincoach/internal/config"
)

// sensitivePattern pairs a human-readable name with its compiled pattern.
type sensitivePattern struct {
	name string
	re   *regexp.Regexp
}

// sensitivePatterns are the markers for financial/PII terms. Order is the
// match-priority order: the first hit names the rejection. All patterns
// are case-insensitive.
var sensitivePatterns = []sensitivePattern{
	{"account number", regexp.MustCompile(`(?i)\baccount\s*(number|no\.?|#)`)},
	{"credit card", regexp.MustCompile(`(?i)\bcredit\s*card\b`)},
	{"debit card", regexp.MustCompile(`(?i)\bdebit\s*card\b`)},
	{"card number", regexp.MustCompile(`(?i)\bcard\s*(number|no\.?|#)`)},
	{"cvv", regexp.MustCompile(`(?i)\bcvv2?\b`)},
	{"ssn", regexp.MustCompile(`(?i)\b(ssn|social\s*security)\b`)},
	{"national id", regexp.MustCompile(`(?i)\bnational\s*(id|identity|insurance)\b`)},
	{"passport number", regexp.MustCompile(`(?i)\bpassport\s*(number|no\.?)`)},
	{"tax id", regexp.MustCompile(`(?i)\b(tax\s*id|tin|itin)\b`)},
	{"password", regexp.MustCompile(`(?i)\bpass\s*word\b|\bpassword\b`)},
	{"pin", regexp.MustCompile(`(?i)\bpin\s*(code|number)?\b`)},
	{"routing number", regexp.MustCompile(`(?i)\brouting\s*(number|no\.?)`)},
	{"iban", regexp.MustCompile(`(?i)\biban\b`)},
	{"swift code", regexp.MustCompile(`(?i)\bswift\s*(code)?\b`)},
}

// Scanner is the sensitive-pattern check. It is a pure local scan with no
// external calls, so it is pinned ahead of every network-bound stage.
type Scanner struct{}

// NewScanner returns the sensitive-pattern stage.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan returns the name of the first matching sensitive pattern.
// Idempotent: no hidden state, same input always yields the same match.
func (s *Scanner) Scan(text string) (string, bool) {
	for _, p := range sensitivePatterns {
		if p.re.MatchString(text) {
			return p.name, true
		}
	}
	return "", false
}

// Name implements Stage.
func (s *Scanner) Name() string { return config.StageSensitive }

// Check implements Stage.
func (s *Scanner) Check(_ context.Context, text string) (Verdict, error) {
	if name, ok := s.Scan(text); ok {
		reason := fmt.Sprintf("message appears to contain sensitive information (%s); please do not share personal or financial identifiers", name)
		return Reject(s.Name(), reason), nil
	}
	return Allow(), nil
}
