package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"conciergerie_backend/internal/chat/llm"
	"conciergerie_backend/platform/logger"
)

type fakeProvider struct {
	reply string
}

func (p *fakeProvider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	return p.reply, nil
}

func (p *fakeProvider) StreamChat(ctx context.Context, messages []llm.Message) (<-chan string, <-chan error) {
	chunks := make(chan string, 2)
	errs := make(chan error, 1)
	chunks <- p.reply
	close(chunks)
	close(errs)
	return chunks, errs
}

type fakeSubmitter struct {
	mu    sync.Mutex
	calls []Submission
}

func (f *fakeSubmitter) SubmitFromChat(ctx context.Context, sub Submission) (SubmissionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sub)
	return SubmissionResult{ID: "id-1", RequestNumber: "REQ-2025-ABCDE"}, nil
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type memoryStore struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{held: make(map[string]bool)}
}

func (m *memoryStore) Acquire(ctx context.Context, key string, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] {
		return false
	}
	m.held[key] = true
	return true
}

func (m *memoryStore) Release(ctx context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, key)
}

const readyReply = "Parfait, voici le résumé :\n```json\n{\"ready_for_quote\": true, \"client_email\": \"a@b.ch\", \"service_type\": \"fin de bail\"}\n```"

func TestStreamClientChatAutoSubmits(t *testing.T) {
	submitter := &fakeSubmitter{}
	svc := NewService(&fakeProvider{reply: readyReply}, submitter, newMemoryStore(), logger.Discard())

	var streamed string
	result, err := svc.StreamClientChat(context.Background(), "sess-1", []llm.Message{
		{Role: llm.RoleUser, Content: "je veux un devis"},
	}, func(delta string) error {
		streamed += delta
		return nil
	})
	if err != nil {
		t.Fatalf("StreamClientChat returned error: %v", err)
	}
	if streamed != readyReply {
		t.Fatalf("streamed %q", streamed)
	}
	if result == nil || result.RequestNumber != "REQ-2025-ABCDE" {
		t.Fatalf("expected submission result, got %v", result)
	}
	if submitter.count() != 1 {
		t.Fatalf("expected 1 submission, got %d", submitter.count())
	}

	// Transcript handed to the submitter includes the assistant reply.
	sub := submitter.calls[0]
	last := sub.Messages[len(sub.Messages)-1]
	if last.Role != llm.RoleAssistant || last.Content != readyReply {
		t.Fatalf("transcript missing final assistant reply: %+v", last)
	}
}

func TestStreamClientChatSamePayloadSubmitsOnce(t *testing.T) {
	submitter := &fakeSubmitter{}
	svc := NewService(&fakeProvider{reply: readyReply}, submitter, newMemoryStore(), logger.Discard())

	messages := []llm.Message{{Role: llm.RoleUser, Content: "je veux un devis"}}
	for range 2 {
		if _, err := svc.StreamClientChat(context.Background(), "sess-1", messages, nil); err != nil {
			t.Fatalf("StreamClientChat returned error: %v", err)
		}
	}

	if submitter.count() != 1 {
		t.Fatalf("same payload must submit at most once, got %d submissions", submitter.count())
	}
}

func TestStreamClientChatExplicitNotReadyBlocks(t *testing.T) {
	reply := "```json\n{\"ready_for_quote\": false, \"client_email\": \"a@b.ch\", \"service_type\": \"x\"}\n```"
	submitter := &fakeSubmitter{}
	svc := NewService(&fakeProvider{reply: reply}, submitter, newMemoryStore(), logger.Discard())

	result, err := svc.StreamClientChat(context.Background(), "sess-1", []llm.Message{
		{Role: llm.RoleUser, Content: "bonjour"},
	}, nil)
	if err != nil {
		t.Fatalf("StreamClientChat returned error: %v", err)
	}
	if result != nil {
		t.Fatal("explicit ready_for_quote=false must not submit")
	}
	if submitter.count() != 0 {
		t.Fatalf("expected 0 submissions, got %d", submitter.count())
	}
}

func TestStreamClientChatNoPayloadNoSubmission(t *testing.T) {
	submitter := &fakeSubmitter{}
	svc := NewService(&fakeProvider{reply: "Quelle est la surface approximative ?"}, submitter, newMemoryStore(), logger.Discard())

	result, err := svc.StreamClientChat(context.Background(), "sess-1", []llm.Message{
		{Role: llm.RoleUser, Content: "bonjour"},
	}, nil)
	if err != nil {
		t.Fatalf("StreamClientChat returned error: %v", err)
	}
	if result != nil || submitter.count() != 0 {
		t.Fatal("plain reply must not trigger a submission")
	}
}
