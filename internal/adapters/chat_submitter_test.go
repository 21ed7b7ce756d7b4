package adapters

import (
	"context"
	"testing"

	"conciergerie_backend/internal/chat"
	"conciergerie_backend/internal/chat/llm"
	"conciergerie_backend/internal/requests/repository"
	requestsvc "conciergerie_backend/internal/requests/service"
	"conciergerie_backend/platform/logger"
	"conciergerie_backend/platform/validator"

	"github.com/google/uuid"
)

type recordingStore struct {
	requests      []*repository.QuoteRequest
	conversations []*repository.Conversation
}

func (r *recordingStore) RequestNumberExists(context.Context, string) (bool, error) {
	return false, nil
}

func (r *recordingStore) InsertRequest(_ context.Context, req *repository.QuoteRequest) error {
	r.requests = append(r.requests, req)
	return nil
}

func (r *recordingStore) InsertConversation(_ context.Context, conv *repository.Conversation) error {
	r.conversations = append(r.conversations, conv)
	return nil
}

func (r *recordingStore) List(context.Context, string) ([]repository.QuoteRequest, error) {
	return nil, nil
}

func (r *recordingStore) GetByID(context.Context, uuid.UUID) (*repository.QuoteRequest, error) {
	return nil, nil
}

func (r *recordingStore) FindConversation(context.Context, uuid.UUID, string) (*repository.Conversation, error) {
	return nil, nil
}

func (r *recordingStore) GetVersion(context.Context, uuid.UUID) (int, error) {
	return 0, nil
}

func (r *recordingStore) UpdateStatus(context.Context, repository.UpdateStatusParams) error {
	return nil
}

func TestSubmitFromChatMapsPayload(t *testing.T) {
	store := &recordingStore{}
	svc := requestsvc.New(store, validator.New(), nil, logger.Discard())
	adapter := NewChatSubmitter(svc)

	sub := chat.Submission{
		SessionID: "sess-42",
		Payload: map[string]any{
			"ready_for_quote": true,
			"client_data": map[string]any{
				"name":        "Jean Martin",
				"email":       "jean@example.ch",
				"phone":       "079 555 12 34",
				"client_type": "Gérance",
			},
			"service_type": "conciergerie d'immeuble",
			"surface_area": "45 m2",
			"location":     "Lausanne",
		},
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: "Bonjour"},
			{Role: llm.RoleAssistant, Content: "Voici le récapitulatif."},
		},
	}

	result, err := adapter.SubmitFromChat(context.Background(), sub)
	if err != nil {
		t.Fatalf("SubmitFromChat: %v", err)
	}
	if result.RequestNumber == "" || result.ID == "" {
		t.Fatalf("incomplete result: %+v", result)
	}

	if len(store.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(store.requests))
	}
	req := store.requests[0]
	if req.ClientEmail != "jean@example.ch" {
		t.Fatalf("email = %q", req.ClientEmail)
	}
	if req.ClientType != "gerances" {
		t.Fatalf("client type = %q, want gerances", req.ClientType)
	}
	if req.SurfaceArea == nil || *req.SurfaceArea != 45 {
		t.Fatalf("surface = %v, want 45", req.SurfaceArea)
	}
	if req.SessionID == nil || *req.SessionID != "sess-42" {
		t.Fatalf("session id = %v", req.SessionID)
	}
	if len(req.CollectedData) == 0 {
		t.Fatalf("payload should be preserved as collected data")
	}

	if len(store.conversations) != 1 {
		t.Fatalf("expected the transcript to be persisted")
	}
	if got := len(store.conversations[0].Messages); got != 2 {
		t.Fatalf("transcript length = %d, want 2", got)
	}
}

func TestNormalizeClientType(t *testing.T) {
	cases := map[string]string{
		"gerances":    "gerances",
		"Gérance":     "gerances",
		"entreprises": "entreprise",
		"particulier": "particulier",
		"":            "particulier",
		"inconnu":     "particulier",
	}
	for in, want := range cases {
		if got := normalizeClientType(in); got != want {
			t.Fatalf("normalizeClientType(%q) = %q, want %q", in, got, want)
		}
	}
}
