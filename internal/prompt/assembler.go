// Package prompt builds the ordered message sequence sent to the LLM:
// one persona system message (optionally carrying user-profile context),
// the valid history pairs in original order, and the new user message.
package prompt

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/fincoach/internal/config"
	"github.com/Cyclone1070/fincoach/internal/domain"
)

const profileHeader = "USER PROFILE CONTEXT"

// Assembler renders variant-specific persona prompts.
type Assembler struct {
	variant config.Variant
}

// NewAssembler creates an Assembler for the deployment variant.
func NewAssembler(variant config.Variant) *Assembler {
	return &Assembler{variant: variant}
}

// Assemble builds the full prompt. The system message is always first;
// history pairs are appended in original order with malformed pairs
// skipped; the user's new message is always last. Assembly never fails:
// a missing or partial profile just omits the profile section.
func (a *Assembler) Assemble(meta domain.Metadata, profile domain.UserProfile, history []domain.Exchange, userText string) []domain.Message {
	messages := make([]domain.Message, 0, 2*len(history)+2)

	messages = append(messages, domain.Message{
		Role:    domain.RoleSystem,
		Content: a.systemPrompt(meta, profile),
	})

	for _, exchange := range history {
		if !exchange.Valid() {
			continue
		}
		messages = append(messages,
			domain.Message{Role: domain.RoleUser, Content: exchange.User},
			domain.Message{Role: domain.RoleAssistant, Content: exchange.Bot},
		)
	}

	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: userText})
	return messages
}

func (a *Assembler) systemPrompt(meta domain.Metadata, profile domain.UserProfile) string {
	var b strings.Builder

	switch a.variant {
	case config.VariantMarketing:
		fmt.Fprintf(&b, "You are a helpful and friendly marketing assistant for a product named '%s'.\n", meta.ProductName)
		b.WriteString("Your goal is to answer user questions and encourage them to try the product based on these details:\n")
		fmt.Fprintf(&b, "Product Description: %s\n", meta.Description)
		fmt.Fprintf(&b, "Key Features: %s\n", strings.Join(meta.Features, ", "))
		b.WriteString("Stay on topic and be positive.")
	default:
		fmt.Fprintf(&b, "You are a supportive financial coach for '%s'.\n", meta.ProductName)
		fmt.Fprintf(&b, "About the service: %s\n", meta.Description)
		fmt.Fprintf(&b, "Key Features: %s\n", strings.Join(meta.Features, ", "))
		b.WriteString("Help users build healthy money habits: budgeting, saving, understanding debt, and planning towards goals.\n")
		b.WriteString("Explain concepts plainly and encourage progress. Never recommend specific investments, securities, or financial products.")
	}

	if section := profileSection(profile); section != "" {
		b.WriteString("\n\n")
		b.WriteString(section)
	}

	return b.String()
}

// profileSection renders the optional profile context. Only populated
// fields appear; an empty profile yields no section at all.
func profileSection(profile domain.UserProfile) string {
	if profile.Empty() {
		return ""
	}

	var b strings.Builder
	b.WriteString(profileHeader + ":")

	fields := []struct {
		label, value string
	}{
		{"Name", profile.Name},
		{"Region", profile.Region},
		{"Preferred language", profile.Language},
		{"Persona", profile.Persona},
		{"Accessibility need", profile.Accessibility},
	}
	for _, f := range fields {
		if f.value != "" {
			fmt.Fprintf(&b, "\n- %s: %s", f.label, f.value)
		}
	}

	b.WriteString("\nAdapt tone and examples to this user where it helps.")
	return b.String()
}
