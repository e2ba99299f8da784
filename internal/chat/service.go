// Package chat orchestrates one conversation turn: guardrail validation,
// prompt assembly, the LLM call, and transcript recording.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Cyclone1070/fincoach/internal/domain"
	"github.com/Cyclone1070/fincoach/internal/guardrail"
	"github.com/Cyclone1070/fincoach/internal/metadata"
	"github.com/Cyclone1070/fincoach/internal/prompt"
	"github.com/Cyclone1070/fincoach/internal/provider"
	"github.com/Cyclone1070/fincoach/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Guard validates an inbound message. *guardrail.Pipeline satisfies it;
// tests substitute their own.
type Guard interface {
	Validate(ctx context.Context, text string) (guardrail.Verdict, error)
}

// Request is one inbound user turn.
type Request struct {
	UserID   string
	ConvoID  string // empty starts a new conversation
	UserText string
	History  []domain.Exchange
}

// Response is the outcome of a turn. Rejections are part of the response,
// not an error: they are deterministic business outcomes.
type Response struct {
	ConvoID  string
	BotReply string
	Rejected bool
	Reason   string
}

// Service wires the guardrail pipeline, prompt assembler, provider, and
// stores into the conversation flow.
type Service struct {
	guard     Guard
	assembler *prompt.Assembler
	provider  provider.Provider
	meta      *metadata.Store
	convos    store.ConversationStore
	users     store.UserStore // may be nil; profile is enrichment only
	log       *zap.Logger
	now       func() time.Time
}

// NewService creates a Service. users may be nil when the deployment has
// no profile source (e.g. the CLI).
func NewService(guard Guard, assembler *prompt.Assembler, p provider.Provider, meta *metadata.Store, convos store.ConversationStore, users store.UserStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		guard:     guard,
		assembler: assembler,
		provider:  p,
		meta:      meta,
		convos:    convos,
		users:     users,
		log:       log,
		now:       time.Now,
	}
}

// Respond handles one user turn.
//
// The user message is always recorded first. A guardrail rejection is
// recorded as an assistant-authored "[Guardrail] ..." message and
// returned in the Response with no error. Infrastructure failures (a
// guardrail stage failing, the completion call failing) are recorded
// as an assistant-authored error marker and returned as errors; they are
// never converted into a pass.
func (s *Service) Respond(ctx context.Context, req Request) (Response, error) {
	if req.UserText == "" {
		return Response{}, errors.New("user_text must not be empty")
	}
	userID := req.UserID
	if userID == "" {
		userID = "demo-user"
	}

	convoID := req.ConvoID
	if convoID == "" {
		convoID = uuid.NewString()
		if err := s.convos.StartConversation(ctx, convoID, userID, s.now().UnixMilli()); err != nil {
			return Response{}, fmt.Errorf("start conversation: %w", err)
		}
	}

	if err := s.record(ctx, convoID, "user", req.UserText); err != nil {
		return Response{}, fmt.Errorf("record user message: %w", err)
	}

	verdict, err := s.guard.Validate(ctx, req.UserText)
	if err != nil {
		s.recordBestEffort(ctx, convoID, "[Error] Internal Server Error")
		return Response{}, fmt.Errorf("guardrail: %w", err)
	}
	if !verdict.Allowed {
		s.recordBestEffort(ctx, convoID, "[Guardrail] "+verdict.Reason)
		return Response{ConvoID: convoID, Rejected: true, Reason: verdict.Reason}, nil
	}

	messages := s.assembler.Assemble(s.meta.Get(), s.profile(ctx, userID), req.History, req.UserText)

	reply, err := s.provider.Complete(ctx, provider.CompletionRequest{
		System:   messages[0].Content,
		Messages: messages[1:],
	})
	if err != nil {
		s.recordBestEffort(ctx, convoID, "[Error] Internal Server Error")
		return Response{}, fmt.Errorf("completion: %w", err)
	}

	if err := s.record(ctx, convoID, "assistant", reply); err != nil {
		return Response{}, fmt.Errorf("record reply: %w", err)
	}

	return Response{ConvoID: convoID, BotReply: reply}, nil
}

// profile fetches the user's profile. Unlike guardrail checks, a profile
// fetch failure degrades to an empty profile: it only biases phrasing and
// must never fail the turn.
func (s *Service) profile(ctx context.Context, userID string) domain.UserProfile {
	if s.users == nil {
		return domain.UserProfile{}
	}

	profile, err := s.users.Profile(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn("profile fetch failed; continuing without profile",
				zap.String("userId", userID),
				zap.Error(err))
		}
		return domain.UserProfile{}
	}
	return profile
}

func (s *Service) record(ctx context.Context, convoID, author, content string) error {
	return s.convos.AppendMessage(ctx, store.Message{
		ID:      uuid.NewString(),
		ConvoID: convoID,
		Author:  author,
		Content: content,
		TS:      s.now().UnixMilli(),
	})
}

// recordBestEffort writes an assistant marker for audit. Failures here
// must not mask the outcome being reported.
func (s *Service) recordBestEffort(ctx context.Context, convoID, content string) {
	if err := s.record(ctx, convoID, "assistant", content); err != nil {
		s.log.Warn("failed to record assistant message",
			zap.String("convoId", convoID),
			zap.Error(err))
	}
}
