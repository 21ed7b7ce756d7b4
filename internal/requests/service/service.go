// Package service implements the quote-request intake pipeline and the
// staff read/status operations.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"conciergerie_backend/internal/requests/repository"
	"conciergerie_backend/internal/requests/transport"
	"conciergerie_backend/platform/apperr"
	"conciergerie_backend/platform/cache"
	"conciergerie_backend/platform/logger"
	"conciergerie_backend/platform/sanitize"
	"conciergerie_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
)

// Statuses of a quote request.
const (
	StatusPending   = "pending"
	StatusInReview  = "in_review"
	StatusFinalized = "finalized"
	StatusSent      = "sent"
)

const (
	surfaceAreaMax = 100000
	listCacheTTL   = 60 * time.Second
)

// statusRank orders the workflow; transitions only move forward, with the
// single staff-triggered exception in_review → pending.
var statusRank = map[string]int{
	StatusPending:   0,
	StatusInReview:  1,
	StatusFinalized: 2,
	StatusSent:      3,
}

// Notifier alerts staff of a new request. Optional; failures never affect
// the submission outcome.
type Notifier interface {
	NewRequest(ctx context.Context, requestNumber, clientName, serviceType string) error
}

// SubmissionResult reports a created request.
type SubmissionResult struct {
	ID            uuid.UUID
	RequestNumber string
}

// RequestDetail is a request enriched with its conversation transcript.
type RequestDetail struct {
	repository.QuoteRequest
	Transcript []repository.ConversationMessage `json:"transcript,omitempty"`
}

// Service implements the quote-request operations.
type Service struct {
	repo     repository.Store
	val      *validator.Validator
	views    *cache.Store
	notifier Notifier
	log      *logger.Logger

	segment func() string
	now     func() time.Time
}

// New creates the requests service. views may be nil when no cache is
// configured.
func New(repo repository.Store, val *validator.Validator, views *cache.Store, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		val:     val,
		views:   views,
		log:     log,
		segment: randomSegment,
		now:     time.Now,
	}
}

// SetNotifier attaches the optional staff notifier.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Submit validates a candidate submission and persists the request plus its
// transcript. No partial writes on validation failure; a transcript write
// failure is logged and swallowed because the request row is the durable
// artifact of record.
func (s *Service) Submit(ctx context.Context, input *transport.SubmitRequest) (*SubmissionResult, error) {
	if err := s.val.Struct(input); err != nil {
		return nil, apperr.ValidationFields("validation échouée", validator.Fields(err))
	}

	surface, surfaceErr := validateSurface(input.SurfaceArea)
	if surfaceErr != nil {
		return nil, surfaceErr
	}

	now := s.now()
	number, err := s.generateRequestNumber(ctx, now)
	if err != nil {
		return nil, err
	}

	req := &repository.QuoteRequest{
		ID:            uuid.New(),
		RequestNumber: number,
		SessionID:     optional(input.SessionID),
		ClientName:    optional(sanitize.Text(input.ClientName)),
		ClientEmail:   strings.TrimSpace(input.ClientEmail),
		ClientPhone:   optional(normalizePhone(input.ClientPhone)),
		ClientCompany: optional(sanitize.Text(input.ClientCompany)),
		ClientAddress: optional(sanitize.Text(input.ClientAddress)),
		ClientType:    input.ClientType,
		ServiceType:   sanitize.Text(input.ServiceType),
		Frequency:     optional(sanitize.Text(input.Frequency)),
		SurfaceArea:   surface,
		Location:      optional(sanitize.Text(input.Location)),
		PreferredDate: optional(sanitize.Text(input.PreferredDate)),
		Budget:        optional(sanitize.Text(input.Budget)),
		Notes:         optional(sanitize.Text(input.Notes)),
		CollectedData: input.CollectedData,
		Status:        StatusPending,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.InsertRequest(ctx, req); err != nil {
		return nil, err
	}

	if len(input.Messages) > 0 {
		s.writeConversation(ctx, req, input)
	}

	s.invalidateListViews(ctx)

	if s.notifier != nil {
		name := input.ClientName
		if name == "" {
			name = input.ClientEmail
		}
		if err := s.notifier.NewRequest(ctx, number, name, req.ServiceType); err != nil {
			s.log.Warn("new request notification failed", "request_number", number, "error", err)
		}
	}

	return &SubmissionResult{ID: req.ID, RequestNumber: number}, nil
}

// writeConversation stores the transcript tagged completed, linked to the
// request through the quote_id column. Failure is logged, never returned:
// the request write already committed.
func (s *Service) writeConversation(ctx context.Context, req *repository.QuoteRequest, input *transport.SubmitRequest) {
	messages := make([]repository.ConversationMessage, len(input.Messages))
	for i, m := range input.Messages {
		messages[i] = repository.ConversationMessage{Role: m.Role, Content: m.Content, ID: m.ID}
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = req.ID.String()
	}

	requestID := req.ID
	conv := &repository.Conversation{
		ID:            uuid.New(),
		SessionID:     sessionID,
		Messages:      messages,
		CollectedData: input.CollectedData,
		Status:        "completed",
		QuoteID:       &requestID,
		CreatedAt:     req.CreatedAt,
		UpdatedAt:     req.CreatedAt,
	}

	if err := s.repo.InsertConversation(ctx, conv); err != nil {
		s.log.Error("conversation write failed, request kept", "request_number", req.RequestNumber, "error", err)
	}
}

// List returns requests newest first, optionally filtered by status, served
// from the view cache when warm.
func (s *Service) List(ctx context.Context, status string) ([]repository.QuoteRequest, error) {
	if status != "" {
		if _, ok := statusRank[status]; !ok {
			return nil, apperr.Validation("statut inconnu: " + status)
		}
	}

	key := listCacheKey(status)
	if payload, ok := s.views.Get(ctx, key); ok {
		var cached []repository.QuoteRequest
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached, nil
		}
	}

	requests, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(requests); err == nil {
		s.views.Set(ctx, key, payload, listCacheTTL)
	}
	return requests, nil
}

// GetByID returns one request enriched with its transcript. An empty
// collected-data blob is backfilled from the conversation's.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*RequestDetail, error) {
	key := detailCacheKey(id)
	if payload, ok := s.views.Get(ctx, key); ok {
		var cached RequestDetail
		if err := json.Unmarshal(payload, &cached); err == nil {
			return &cached, nil
		}
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &RequestDetail{QuoteRequest: *req}

	sessionID := ""
	if req.SessionID != nil {
		sessionID = *req.SessionID
	}
	conv, err := s.repo.FindConversation(ctx, req.ID, sessionID)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		detail.Transcript = conv.Messages
		if len(detail.CollectedData) == 0 && len(conv.CollectedData) > 0 {
			detail.CollectedData = conv.CollectedData
		}
	}

	if payload, err := json.Marshal(detail); err == nil {
		s.views.Set(ctx, key, payload, listCacheTTL)
	}
	return detail, nil
}

// UpdateStatus applies one workflow transition. Backward moves are rejected
// except the staff reversion in_review → pending; finalized and sent stamp
// the finalization timestamp. Concurrent staff writes surface as conflicts
// through the version column.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, input *transport.UpdateStatusRequest) error {
	if err := s.val.Struct(input); err != nil {
		return apperr.ValidationFields("validation échouée", validator.Fields(err))
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !transitionAllowed(current.Status, input.Status) {
		return apperr.Validation(fmt.Sprintf("transition de statut interdite: %s → %s", current.Status, input.Status))
	}

	expected := input.Version
	if expected == 0 {
		expected = current.Version
	}

	params := repository.UpdateStatusParams{
		ID:              id,
		Status:          input.Status,
		Notes:           optional(sanitize.Text(input.Notes)),
		Metadata:        input.Metadata,
		ExpectedVersion: expected,
		StampFinalized:  input.Status == StatusFinalized || input.Status == StatusSent,
	}
	if err := s.repo.UpdateStatus(ctx, params); err != nil {
		return err
	}

	s.invalidateViews(ctx, id)
	return nil
}

// Finalize transitions a request to finalized, linking the created quote
// and carrying the finalization context into metadata. Used by the
// document finalization pipeline once the quote row exists.
func (s *Service) Finalize(ctx context.Context, id, quoteID uuid.UUID, expectedVersion int, metadata map[string]any) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !transitionAllowed(current.Status, StatusFinalized) {
		return apperr.Validation(fmt.Sprintf("transition de statut interdite: %s → %s", current.Status, StatusFinalized))
	}

	params := repository.UpdateStatusParams{
		ID:              id,
		Status:          StatusFinalized,
		Metadata:        metadata,
		QuoteID:         &quoteID,
		ExpectedVersion: expectedVersion,
		StampFinalized:  true,
	}
	if err := s.repo.UpdateStatus(ctx, params); err != nil {
		return err
	}
	s.invalidateViews(ctx, id)
	return nil
}

func transitionAllowed(from, to string) bool {
	fromRank, okFrom := statusRank[from]
	toRank, okTo := statusRank[to]
	if !okFrom || !okTo {
		return false
	}
	if from == StatusInReview && to == StatusPending {
		return true
	}
	return toRank >= fromRank
}

func validateSurface(value any) (*float64, *apperr.Error) {
	if value == nil {
		return nil, nil
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return nil, nil
	}

	parsed, ok := ParseSurfaceArea(value)
	if !ok {
		return nil, nil
	}
	if parsed < 0 || parsed > surfaceAreaMax {
		fields := apperr.FieldErrors{}
		fields.Add("surfaceArea", fmt.Sprintf("la surface doit être comprise entre 0 et %d m2", surfaceAreaMax))
		return nil, apperr.ValidationFields("validation échouée", fields)
	}
	return &parsed, nil
}

// normalizePhone formats Swiss numbers to E.164. Lenient: anything the
// parser rejects is stored as typed.
func normalizePhone(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	num, err := phonenumbers.Parse(trimmed, "CH")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return trimmed
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func listCacheKey(status string) string {
	if status == "" {
		return "requests:list"
	}
	return "requests:list:" + status
}

func detailCacheKey(id uuid.UUID) string {
	return "requests:detail:" + id.String()
}

func (s *Service) invalidateListViews(ctx context.Context) {
	s.views.Invalidate(ctx,
		listCacheKey(""),
		listCacheKey(StatusPending),
		listCacheKey(StatusInReview),
		listCacheKey(StatusFinalized),
		listCacheKey(StatusSent),
	)
}

func (s *Service) invalidateViews(ctx context.Context, id uuid.UUID) {
	s.invalidateListViews(ctx)
	s.views.Invalidate(ctx, detailCacheKey(id))
}
