package domain

// Role identifies who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn in the sequence sent to the LLM.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Exchange is one user/bot pair of a conversation history as supplied by
// the caller. The caller's history is not authoritative storage; it is
// only used to rebuild the prompt.
type Exchange struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}

// Valid reports whether the exchange carries both sides. Pairs missing
// either side are skipped during prompt assembly, never fabricated.
func (e Exchange) Valid() bool {
	return e.User != "" && e.Bot != ""
}

// Metadata is the static product/domain description used to parameterize
// guardrail and persona prompts. Immutable after load.
type Metadata struct {
	ProductName string   `json:"productName"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

// UserProfile biases prompt phrasing. It never gates guardrail decisions.
// All fields are optional; zero values mean "unknown".
type UserProfile struct {
	Name          string `json:"name"`
	Region        string `json:"region"`
	Language      string `json:"language"`
	Persona       string `json:"persona"`
	Accessibility string `json:"accessibility"`
}

// Empty reports whether no profile field is populated.
func (p UserProfile) Empty() bool {
	return p == UserProfile{}
}
