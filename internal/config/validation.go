package config

import (
	"fmt"
	"slices"
	"strings"
)

// knownStages lists every stage name the pipeline can resolve.
var knownStages = []string{StageSensitive, StageTopic, StageAdvice, StageModeration}

// llmStages are the stages that call out to an external service.
var llmStages = []string{StageTopic, StageAdvice, StageModeration}

// Validate checks config values for correctness.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	var errs []string

	switch c.Variant {
	case VariantMarketing, VariantCoach:
	default:
		errs = append(errs, fmt.Sprintf("variant must be %q or %q, got %q", VariantMarketing, VariantCoach, c.Variant))
	}

	if c.MetadataPath == "" {
		errs = append(errs, "metadata_path must not be empty")
	}

	// Server validation
	if c.Server.Addr == "" {
		errs = append(errs, "server.addr must not be empty")
	}
	if c.Server.ReadTimeoutSeconds < 1 {
		errs = append(errs, "server.read_timeout_seconds must be >= 1")
	}
	if c.Server.WriteTimeoutSeconds < 1 {
		errs = append(errs, "server.write_timeout_seconds must be >= 1")
	}

	// Provider validation
	if c.Provider.Model == "" {
		errs = append(errs, "provider.model must not be empty")
	}
	if c.Provider.ClassifierModel == "" {
		errs = append(errs, "provider.classifier_model must not be empty")
	}
	if c.Provider.TimeoutSeconds < 1 {
		errs = append(errs, "provider.timeout_seconds must be >= 1")
	}

	// Moderation validation (only required when the stage is enabled)
	if slices.Contains(c.Guardrails.Stages, StageModeration) {
		if c.Moderation.BaseURL == "" {
			errs = append(errs, "moderation.base_url must not be empty")
		}
		if c.Moderation.TimeoutSeconds < 1 {
			errs = append(errs, "moderation.timeout_seconds must be >= 1")
		}
	}

	errs = append(errs, c.validateStages()...)

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// validateStages enforces the stage-ordering rules: every name must be
// known, no duplicates, and the local pattern scan must precede every
// network-bound check so that trivially rejectable input never costs an
// API call.
func (c *Config) validateStages() []string {
	var errs []string

	stages := c.Guardrails.Stages
	if len(stages) == 0 {
		errs = append(errs, "guardrails.stages must not be empty")
		return errs
	}

	seen := make(map[string]bool, len(stages))
	for _, name := range stages {
		if !slices.Contains(knownStages, name) {
			errs = append(errs, fmt.Sprintf("guardrails.stages: unknown stage %q", name))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Sprintf("guardrails.stages: duplicate stage %q", name))
		}
		seen[name] = true
	}

	sensitiveIdx := slices.Index(stages, StageSensitive)
	for _, name := range llmStages {
		if idx := slices.Index(stages, name); idx >= 0 && (sensitiveIdx < 0 || idx < sensitiveIdx) {
			errs = append(errs, fmt.Sprintf("guardrails.stages: %q must run before %q", StageSensitive, name))
		}
	}

	return errs
}
