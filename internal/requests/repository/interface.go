package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// QuoteRequest is the database model for one inbound lead.
type QuoteRequest struct {
	ID            uuid.UUID      `json:"id"`
	RequestNumber string         `json:"requestNumber"`
	SessionID     *string        `json:"sessionId,omitempty"`
	ClientName    *string        `json:"clientName,omitempty"`
	ClientEmail   string         `json:"clientEmail"`
	ClientPhone   *string        `json:"clientPhone,omitempty"`
	ClientCompany *string        `json:"clientCompany,omitempty"`
	ClientAddress *string        `json:"clientAddress,omitempty"`
	ClientType    string         `json:"clientType"`
	ServiceType   string         `json:"serviceType"`
	Frequency     *string        `json:"frequency,omitempty"`
	SurfaceArea   *float64       `json:"surfaceArea,omitempty"`
	Location      *string        `json:"location,omitempty"`
	PreferredDate *string        `json:"preferredDate,omitempty"`
	Budget        *string        `json:"budget,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
	CollectedData map[string]any `json:"collectedData,omitempty"`
	Status        string         `json:"status"`
	QuoteID       *uuid.UUID     `json:"quoteId,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Version       int            `json:"version"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	FinalizedAt   *time.Time     `json:"finalizedAt,omitempty"`
}

// ConversationMessage is one turn of a stored transcript.
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	ID      string `json:"id,omitempty"`
}

// Conversation is the transcript backing one request. Rows are written once
// at submission time and never mutated.
type Conversation struct {
	ID            uuid.UUID             `json:"id"`
	SessionID     string                `json:"sessionId"`
	Messages      []ConversationMessage `json:"messages"`
	CollectedData map[string]any        `json:"collectedData,omitempty"`
	Status        string                `json:"status"`
	QuoteID       *uuid.UUID            `json:"quoteId,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// UpdateStatusParams carries one optimistic status transition.
type UpdateStatusParams struct {
	ID              uuid.UUID
	Status          string
	Notes           *string
	Metadata        map[string]any
	QuoteID         *uuid.UUID
	ExpectedVersion int
	StampFinalized  bool
}

// Store is the persistence surface of the requests service.
type Store interface {
	RequestNumberExists(ctx context.Context, number string) (bool, error)
	InsertRequest(ctx context.Context, req *QuoteRequest) error
	InsertConversation(ctx context.Context, conv *Conversation) error
	List(ctx context.Context, status string) ([]QuoteRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*QuoteRequest, error)
	// FindConversation resolves the transcript for a request: by quote id
	// first, then by session id, most recent first.
	FindConversation(ctx context.Context, quoteID uuid.UUID, sessionID string) (*Conversation, error)
	GetVersion(ctx context.Context, id uuid.UUID) (int, error)
	UpdateStatus(ctx context.Context, params UpdateStatusParams) error
}
