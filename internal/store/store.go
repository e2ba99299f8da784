// Package store persists conversations, users, goals, and badges. The
// chat core consumes it through narrow interfaces; the SQLite
// implementation owns the concurrency discipline.
package store

import (
	"context"
	"errors"

	"github.com/Cyclone1070/fincoach/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Message is one persisted transcript entry. Guardrail rejections and
// internal errors are recorded as assistant-authored messages so the
// outcome is visible in the transcript.
type Message struct {
	ID      string `json:"id"`
	ConvoID string `json:"convoId"`
	Author  string `json:"author"` // "user" or "assistant"
	Content string `json:"content"`
	TS      int64  `json:"ts"` // unix milliseconds
}

// Conversation is one conversation header.
type Conversation struct {
	ConvoID   string `json:"convoId"`
	UserID    string `json:"userId"`
	StartedAt int64  `json:"startedAt"`
}

// Goal is a user's financial goal.
type Goal struct {
	GoalID       string  `json:"goalId"`
	UserID       string  `json:"userId"`
	GoalType     string  `json:"goal_type"`
	TargetAmount float64 `json:"target_amount"`
	Deadline     int64   `json:"deadline"`
	Progress     float64 `json:"progress"`
}

// Badge is a gamification achievement.
type Badge struct {
	BadgeID     string `json:"badgeId"`
	UserID      string `json:"userId"`
	BadgeName   string `json:"badge_name"`
	DateAwarded int64  `json:"date_awarded"`
}

// ConversationStore records and lists conversation transcripts.
type ConversationStore interface {
	// StartConversation registers a conversation header. Registering an
	// existing conversation is a no-op.
	StartConversation(ctx context.Context, convoID, userID string, startedAt int64) error
	AppendMessage(ctx context.Context, msg Message) error
	Conversations(ctx context.Context, userID string) ([]Conversation, error)
	Messages(ctx context.Context, convoID string) ([]Message, error)
	// Owner returns the owning user, or ErrNotFound.
	Owner(ctx context.Context, convoID string) (string, error)
}

// UserStore resolves user profiles for prompt enrichment.
type UserStore interface {
	// Profile returns the user's profile, or ErrNotFound.
	Profile(ctx context.Context, userID string) (domain.UserProfile, error)
}
