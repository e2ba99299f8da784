package config

// Variant selects which assistant this deployment serves.
type Variant string

const (
	// VariantMarketing is the product Q&A assistant.
	VariantMarketing Variant = "marketing"
	// VariantCoach is the financial-coaching persona.
	VariantCoach Variant = "coach"
)

// Guardrail stage names. The stage list in the config is ordered; the
// pipeline runs stages in exactly this order and short-circuits on the
// first rejection.
const (
	StageSensitive  = "sensitive"
	StageTopic      = "topic"
	StageAdvice     = "advice"
	StageModeration = "moderation"
)

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero
// values. Missing keys are left at their default values.
type Config struct {
	Variant      Variant          `json:"variant"`
	MetadataPath string           `json:"metadata_path"`
	Server       ServerConfig     `json:"server"`
	Provider     ProviderConfig   `json:"provider"`
	Moderation   ModerationConfig `json:"moderation"`
	Guardrails   GuardrailsConfig `json:"guardrails"`
	Store        StoreConfig      `json:"store"`
}

type ServerConfig struct {
	Addr                string `json:"addr"`                  // Default: ":8080"
	ReadTimeoutSeconds  int    `json:"read_timeout_seconds"`  // Default: 15
	WriteTimeoutSeconds int    `json:"write_timeout_seconds"` // Default: 120 (LLM replies are slow)
}

type ProviderConfig struct {
	Model           string `json:"model"`            // Completion model
	ClassifierModel string `json:"classifier_model"` // Zero-shot classifier model
	TimeoutSeconds  int    `json:"timeout_seconds"`  // Per-call bound. Default: 60
}

type ModerationConfig struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"` // Default: 10, fail fast
}

type GuardrailsConfig struct {
	// Stages is the ordered list of checks. Empty means "the default
	// order for the configured variant".
	Stages []string `json:"stages"`
}

type StoreConfig struct {
	Path string `json:"path"` // SQLite file path
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Variant:      VariantCoach,
		MetadataPath: "product_metadata.json",
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 120,
		},
		Provider: ProviderConfig{
			Model:           "gemini-2.0-flash",
			ClassifierModel: "gemini-2.0-flash",
			TimeoutSeconds:  60,
		},
		Moderation: ModerationConfig{
			BaseURL:        "https://api.openai.com/v1",
			TimeoutSeconds: 10,
		},
		Store: StoreConfig{
			Path: "chat_history.db",
		},
	}
}

// DefaultStages returns the documented check ordering for a variant.
// Both orderings place the cheap local scan first; they only differ in
// which rejection reason surfaces when several checks would fire.
func DefaultStages(v Variant) []string {
	switch v {
	case VariantMarketing:
		return []string{StageSensitive, StageModeration, StageTopic}
	default:
		return []string{StageSensitive, StageTopic, StageAdvice, StageModeration}
	}
}
