package prompt

import (
	"testing"

	"github.com/Cyclone1070/fincoach/internal/config"
	"github.com/Cyclone1070/fincoach/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMeta = domain.Metadata{
	ProductName: "FinCoach",
	Description: "A personal finance coaching assistant.",
	Features:    []string{"budgeting", "goal tracking"},
}

func TestAssemble_SystemFirstHistoryInOrderUserLast(t *testing.T) {
	a := NewAssembler(config.VariantCoach)
	history := []domain.Exchange{
		{User: "hi", Bot: "hello"},
	}

	messages := a.Assemble(testMeta, domain.UserProfile{}, history, "budget tips?")

	require.Len(t, messages, 4)
	assert.Equal(t, domain.RoleSystem, messages[0].Role)
	assert.Equal(t, domain.RoleUser, messages[1].Role)
	assert.Equal(t, "hi", messages[1].Content)
	assert.Equal(t, domain.RoleAssistant, messages[2].Role)
	assert.Equal(t, "hello", messages[2].Content)
	assert.Equal(t, domain.RoleUser, messages[3].Role)
	assert.Equal(t, "budget tips?", messages[3].Content)
}

func TestAssemble_MalformedHistoryPair_Skipped(t *testing.T) {
	a := NewAssembler(config.VariantCoach)
	history := []domain.Exchange{
		{User: "first", Bot: "reply"},
		{User: "orphaned question", Bot: ""}, // No bot half: dropped
		{User: "", Bot: "orphaned answer"},   // No user half: dropped
		{User: "second", Bot: "reply two"},
	}

	messages := a.Assemble(testMeta, domain.UserProfile{}, history, "next")

	require.Len(t, messages, 6)
	assert.Equal(t, "first", messages[1].Content)
	assert.Equal(t, "second", messages[3].Content)
}

func TestAssemble_EmptyHistory(t *testing.T) {
	a := NewAssembler(config.VariantCoach)

	messages := a.Assemble(testMeta, domain.UserProfile{}, nil, "hello")

	require.Len(t, messages, 2)
	assert.Equal(t, domain.RoleSystem, messages[0].Role)
	assert.Equal(t, "hello", messages[1].Content)
}

func TestAssemble_MarketingSystemPrompt_CarriesMetadata(t *testing.T) {
	a := NewAssembler(config.VariantMarketing)

	messages := a.Assemble(testMeta, domain.UserProfile{}, nil, "what is this?")

	system := messages[0].Content
	assert.Contains(t, system, "marketing assistant for a product named 'FinCoach'")
	assert.Contains(t, system, "A personal finance coaching assistant.")
	assert.Contains(t, system, "budgeting, goal tracking")
	assert.Contains(t, system, "Stay on topic and be positive.")
}

func TestAssemble_CoachSystemPrompt_DeclinesSpecificInvestments(t *testing.T) {
	a := NewAssembler(config.VariantCoach)

	messages := a.Assemble(testMeta, domain.UserProfile{}, nil, "hello")

	system := messages[0].Content
	assert.Contains(t, system, "supportive financial coach")
	assert.Contains(t, system, "Never recommend specific investments")
}

func TestAssemble_EmptyProfile_NoProfileSection(t *testing.T) {
	a := NewAssembler(config.VariantCoach)

	messages := a.Assemble(testMeta, domain.UserProfile{}, nil, "hello")

	assert.NotContains(t, messages[0].Content, profileHeader)
}

func TestAssemble_PopulatedProfile_OnlyNonEmptyFieldsListed(t *testing.T) {
	a := NewAssembler(config.VariantCoach)
	profile := domain.UserProfile{
		Name:   "Ada",
		Region: "UK",
		// Language, Persona, Accessibility left empty
	}

	messages := a.Assemble(testMeta, profile, nil, "hello")

	system := messages[0].Content
	assert.Contains(t, system, profileHeader)
	assert.Contains(t, system, "- Name: Ada")
	assert.Contains(t, system, "- Region: UK")
	assert.NotContains(t, system, "Preferred language")
	assert.NotContains(t, system, "Persona")
	assert.NotContains(t, system, "Accessibility")
}

func TestAssemble_ProfileNeverFailsAssembly(t *testing.T) {
	a := NewAssembler(config.VariantCoach)
	partial := domain.UserProfile{Accessibility: "screen reader"}

	messages := a.Assemble(testMeta, partial, nil, "hello")

	require.NotEmpty(t, messages)
	assert.Contains(t, messages[0].Content, "- Accessibility need: screen reader")
}
