// Package chat streams LLM completions for the public intake flow and the
// staff document flow, and auto-submits quote requests when a conversation
// becomes ready.
package chat

import (
	"context"
	"time"

	"conciergerie_backend/internal/chat/llm"
	"conciergerie_backend/internal/chat/readiness"
	"conciergerie_backend/platform/logger"
)

// submissionKeyTTL bounds how long a content hash blocks re-submission.
// Long enough to cover any realistic chat session.
const submissionKeyTTL = 24 * time.Hour

// Submission is a ready conversation handed to the requests module.
type Submission struct {
	SessionID string
	Payload   map[string]any
	Messages  []llm.Message
}

// SubmissionResult reports a created quote request.
type SubmissionResult struct {
	ID            string `json:"id"`
	RequestNumber string `json:"requestNumber"`
}

// Submitter creates a quote request from a ready chat payload.
type Submitter interface {
	SubmitFromChat(ctx context.Context, sub Submission) (SubmissionResult, error)
}

// IdempotencyStore guards each distinct ready payload so it triggers at
// most one submission. Satisfied by platform/cache.Store.
type IdempotencyStore interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) bool
	Release(ctx context.Context, key string)
}

// Service orchestrates completions, extraction, and auto-submission.
type Service struct {
	provider  llm.Provider
	submitter Submitter
	idem      IdempotencyStore
	log       *logger.Logger
}

// NewService creates the chat service.
func NewService(provider llm.Provider, submitter Submitter, idem IdempotencyStore, log *logger.Logger) *Service {
	return &Service{provider: provider, submitter: submitter, idem: idem, log: log}
}

// StreamClientChat streams the assistant reply for the public intake flow,
// invoking onDelta per text chunk. Once the reply is complete it evaluates
// the transcript for readiness and auto-submits at most once per distinct
// payload. The returned result is nil when no submission happened.
func (s *Service) StreamClientChat(ctx context.Context, sessionID string, messages []llm.Message, onDelta func(delta string) error) (*SubmissionResult, error) {
	reply, err := s.stream(ctx, clientSystemPrompt, messages, onDelta)
	if err != nil {
		return nil, err
	}

	transcript := append(append([]llm.Message{}, messages...), llm.Message{Role: llm.RoleAssistant, Content: reply})
	return s.maybeSubmit(ctx, sessionID, transcript), nil
}

// StreamCollaboratorChat streams the staff document assistant. No
// auto-submission: the collaborator decides what to do with the payload.
func (s *Service) StreamCollaboratorChat(ctx context.Context, messages []llm.Message, onDelta func(delta string) error) error {
	_, err := s.stream(ctx, collaboratorSystemPrompt, messages, onDelta)
	return err
}

func (s *Service) stream(ctx context.Context, systemPrompt string, messages []llm.Message, onDelta func(delta string) error) (string, error) {
	full := make([]llm.Message, 0, len(messages)+1)
	full = append(full, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	full = append(full, messages...)

	chunks, errs := s.provider.StreamChat(ctx, full)

	var reply []byte
	for chunk := range chunks {
		reply = append(reply, chunk...)
		if onDelta != nil {
			if err := onDelta(chunk); err != nil {
				return "", err
			}
		}
	}
	if err := <-errs; err != nil {
		return "", err
	}
	return string(reply), nil
}

// maybeSubmit walks the transcript for a ready payload and submits it,
// guarded by the content-hash idempotency key. Submission failures are
// logged; the assistant reply has already been streamed, so the client
// simply does not receive a submission confirmation and can retry.
func (s *Service) maybeSubmit(ctx context.Context, sessionID string, transcript []llm.Message) *SubmissionResult {
	candidates := make([]readiness.Message, len(transcript))
	for i, m := range transcript {
		candidates[i] = readiness.Message{Role: m.Role, Content: m.Content}
	}

	payload, ok := readiness.Candidate(candidates)
	if !ok {
		return nil
	}
	if !readiness.Ready(payload) {
		s.log.ChatEvent("payload_not_ready", sessionID)
		return nil
	}

	key := "chat:submission:" + readiness.ContentHash(payload)
	if !s.idem.Acquire(ctx, key, submissionKeyTTL) {
		s.log.ChatEvent("duplicate_payload_skipped", sessionID)
		return nil
	}

	result, err := s.submitter.SubmitFromChat(ctx, Submission{
		SessionID: sessionID,
		Payload:   payload,
		Messages:  transcript,
	})
	if err != nil {
		// Free the key so a corrected conversation can retry immediately.
		s.idem.Release(ctx, key)
		s.log.Error("auto submission failed", "session_id", sessionID, "error", err)
		return nil
	}

	s.log.ChatEvent("request_submitted", sessionID, "request_number", result.RequestNumber)
	return &result
}
