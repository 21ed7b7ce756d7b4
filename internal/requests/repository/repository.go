// Package repository provides database operations for quote requests and
// their conversation transcripts.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"conciergerie_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const requestNotFoundMsg = "demande introuvable"

// Repository implements Store on pgx.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new requests repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

// RequestNumberExists reports whether a candidate request number is taken.
func (r *Repository) RequestNumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM quote_requests WHERE request_number = $1)`
	if err := r.pool.QueryRow(ctx, query, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check request number: %w", err)
	}
	return exists, nil
}

// InsertRequest writes one request row.
func (r *Repository) InsertRequest(ctx context.Context, req *QuoteRequest) error {
	collected, err := marshalJSONB(req.CollectedData)
	if err != nil {
		return err
	}
	metadata, err := marshalJSONB(req.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO quote_requests (
			id, request_number, session_id,
			client_name, client_email, client_phone, client_company, client_address, client_type,
			service_type, frequency, surface_area, location, preferred_date, budget, notes,
			collected_data, status, quote_id, metadata, version, created_at, updated_at, finalized_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`

	if _, err := r.pool.Exec(ctx, query,
		req.ID, req.RequestNumber, req.SessionID,
		req.ClientName, req.ClientEmail, req.ClientPhone, req.ClientCompany, req.ClientAddress, req.ClientType,
		req.ServiceType, req.Frequency, req.SurfaceArea, req.Location, req.PreferredDate, req.Budget, req.Notes,
		collected, req.Status, req.QuoteID, metadata, req.Version, req.CreatedAt, req.UpdatedAt, req.FinalizedAt,
	); err != nil {
		return fmt.Errorf("failed to insert quote request: %w", err)
	}
	return nil
}

// InsertConversation writes one transcript row.
func (r *Repository) InsertConversation(ctx context.Context, conv *Conversation) error {
	messages, err := json.Marshal(conv.Messages)
	if err != nil {
		return fmt.Errorf("failed to encode messages: %w", err)
	}
	collected, err := marshalJSONB(conv.CollectedData)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO conversations (
			id, session_id, messages, collected_data, status, quote_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := r.pool.Exec(ctx, query,
		conv.ID, conv.SessionID, messages, collected, conv.Status, conv.QuoteID, conv.CreatedAt, conv.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}
	return nil
}

const requestColumns = `
	id, request_number, session_id,
	client_name, client_email, client_phone, client_company, client_address, client_type,
	service_type, frequency, surface_area, location, preferred_date, budget, notes,
	collected_data, status, quote_id, metadata, version, created_at, updated_at, finalized_at`

func scanRequest(row pgx.Row) (*QuoteRequest, error) {
	var req QuoteRequest
	var collected, metadata []byte

	err := row.Scan(
		&req.ID, &req.RequestNumber, &req.SessionID,
		&req.ClientName, &req.ClientEmail, &req.ClientPhone, &req.ClientCompany, &req.ClientAddress, &req.ClientType,
		&req.ServiceType, &req.Frequency, &req.SurfaceArea, &req.Location, &req.PreferredDate, &req.Budget, &req.Notes,
		&collected, &req.Status, &req.QuoteID, &metadata, &req.Version, &req.CreatedAt, &req.UpdatedAt, &req.FinalizedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalJSONB(collected, &req.CollectedData); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(metadata, &req.Metadata); err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns all requests, optionally filtered by status, newest first.
func (r *Repository) List(ctx context.Context, status string) ([]QuoteRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM quote_requests`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote requests: %w", err)
	}
	defer rows.Close()

	var requests []QuoteRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote request: %w", err)
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quote requests: %w", err)
	}
	return requests, nil
}

// GetByID retrieves one request.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*QuoteRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM quote_requests WHERE id = $1`
	req, err := scanRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(requestNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get quote request: %w", err)
	}
	return req, nil
}

// FindConversation resolves the transcript for a request: the most recent
// conversation linked by quote id, falling back to session id.
func (r *Repository) FindConversation(ctx context.Context, quoteID uuid.UUID, sessionID string) (*Conversation, error) {
	conv, err := r.findConversationBy(ctx, `quote_id = $1`, quoteID)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		return conv, nil
	}
	if sessionID == "" {
		return nil, nil
	}
	return r.findConversationBy(ctx, `session_id = $1`, sessionID)
}

func (r *Repository) findConversationBy(ctx context.Context, where string, arg any) (*Conversation, error) {
	query := `
		SELECT id, session_id, messages, collected_data, status, quote_id, created_at, updated_at
		FROM conversations WHERE ` + where + `
		ORDER BY created_at DESC LIMIT 1`

	var conv Conversation
	var messages, collected []byte
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&conv.ID, &conv.SessionID, &messages, &collected, &conv.Status, &conv.QuoteID, &conv.CreatedAt, &conv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	if len(messages) > 0 {
		if err := json.Unmarshal(messages, &conv.Messages); err != nil {
			return nil, fmt.Errorf("failed to decode messages: %w", err)
		}
	}
	if err := unmarshalJSONB(collected, &conv.CollectedData); err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetVersion reads the current optimistic concurrency token of a request.
func (r *Repository) GetVersion(ctx context.Context, id uuid.UUID) (int, error) {
	var version int
	err := r.pool.QueryRow(ctx, `SELECT version FROM quote_requests WHERE id = $1`, id).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperr.NotFound(requestNotFoundMsg)
		}
		return 0, fmt.Errorf("failed to get request version: %w", err)
	}
	return version, nil
}

// UpdateStatus applies one status transition guarded by the version column.
// A stale version updates zero rows and surfaces as a conflict, so two
// simultaneous staff actions can never both win.
func (r *Repository) UpdateStatus(ctx context.Context, params UpdateStatusParams) error {
	metadata, err := marshalJSONB(params.Metadata)
	if err != nil {
		return err
	}

	query := `
		UPDATE quote_requests SET
			status = $3,
			notes = COALESCE($4, notes),
			metadata = CASE WHEN $5::jsonb IS NULL THEN metadata ELSE COALESCE(metadata, '{}'::jsonb) || $5::jsonb END,
			quote_id = COALESCE($6, quote_id),
			finalized_at = CASE WHEN $7 THEN NOW() ELSE finalized_at END,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $2`

	result, err := r.pool.Exec(ctx, query,
		params.ID, params.ExpectedVersion, params.Status,
		params.Notes, metadata, params.QuoteID, params.StampFinalized,
	)
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Either the row is gone or someone else moved it first.
		if _, err := r.GetVersion(ctx, params.ID); err != nil {
			return err
		}
		return apperr.Conflict("la demande a été modifiée par un autre collaborateur")
	}
	return nil
}

func marshalJSONB(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode jsonb: %w", err)
	}
	return b, nil
}

func unmarshalJSONB(b []byte, dst *map[string]any) error {
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("failed to decode jsonb: %w", err)
	}
	return nil
}
