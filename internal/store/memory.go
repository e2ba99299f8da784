package store

import (
	"context"
	"slices"
	"sync"

	"github.com/Cyclone1070/fincoach/internal/domain"
)

// Memory is an in-process store used by the CLI and by tests.
type Memory struct {
	mu       sync.RWMutex
	convos   map[string]Conversation
	messages map[string][]Message
	profiles map[string]domain.UserProfile
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		convos:   make(map[string]Conversation),
		messages: make(map[string][]Message),
		profiles: make(map[string]domain.UserProfile),
	}
}

// StartConversation implements ConversationStore.
func (m *Memory) StartConversation(_ context.Context, convoID, userID string, startedAt int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.convos[convoID]; !ok {
		m.convos[convoID] = Conversation{ConvoID: convoID, UserID: userID, StartedAt: startedAt}
	}
	return nil
}

// AppendMessage implements ConversationStore.
func (m *Memory) AppendMessage(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[msg.ConvoID] = append(m.messages[msg.ConvoID], msg)
	return nil
}

// Conversations implements ConversationStore, newest first.
func (m *Memory) Conversations(_ context.Context, userID string) ([]Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var convos []Conversation
	for _, c := range m.convos {
		if c.UserID == userID {
			convos = append(convos, c)
		}
	}
	slices.SortFunc(convos, func(a, b Conversation) int {
		return int(b.StartedAt - a.StartedAt)
	})
	return convos, nil
}

// Messages implements ConversationStore in append order.
func (m *Memory) Messages(_ context.Context, convoID string) ([]Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.messages[convoID]), nil
}

// Owner implements ConversationStore.
func (m *Memory) Owner(_ context.Context, convoID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.convos[convoID]
	if !ok {
		return "", ErrNotFound
	}
	return c.UserID, nil
}

// SetProfile stores a profile for Profile lookups.
func (m *Memory) SetProfile(userID string, profile domain.UserProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[userID] = profile
}

// Profile implements UserStore.
func (m *Memory) Profile(_ context.Context, userID string) (domain.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return domain.UserProfile{}, ErrNotFound
	}
	return p, nil
}
