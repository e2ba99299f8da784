package guardrail

import (
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
	"github.com/mitchellh/mapstructure"
)

// decodeClassifierJSON parses a classifier response into out, a struct
// whose fields carry mapstructure tags. Models occasionally fence or
// slightly mangle their JSON even in JSON mode, so the raw text is run
// through jsonrepair before the strict decode. Required fields are
// declared as pointers so that "missing" is distinguishable from false;
// the caller must treat a nil pointer as a hard failure, never as a pass.
func decodeClassifierJSON(raw string, out any) error {
	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return fmt.Errorf("unusable classifier response: %w", err)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(repaired), &payload); err != nil {
		return fmt.Errorf("malformed classifier response: %w", err)
	}

	if err := mapstructure.Decode(payload, out); err != nil {
		return fmt.Errorf("unexpected classifier response shape: %w", err)
	}

	return nil
}

// reasonOr returns the classifier-supplied reason when present, otherwise
// the stage's default user-facing explanation.
func reasonOr(reason, fallback string) string {
	if reason != "" {
		return reason
	}
	return fallback
}
