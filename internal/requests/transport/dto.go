// Package transport defines the request/response DTOs for the quote-request
// module.
package transport

// TranscriptMessage is one turn of the chat transcript supplied at
// submission time.
type TranscriptMessage struct {
	Role    string `json:"role" validate:"required,oneof=assistant user system"`
	Content string `json:"content" validate:"required"`
	ID      string `json:"id,omitempty"`
}

// SubmitRequest is the full quote-request submission payload. SurfaceArea
// is deliberately untyped: the chat flow produces free text ("45 m2"),
// direct staff entry produces numbers. The service parses and bounds-checks
// it.
type SubmitRequest struct {
	SessionID     string              `json:"sessionId"`
	ClientName    string              `json:"clientName" validate:"omitempty,max=200"`
	ClientEmail   string              `json:"clientEmail" validate:"required,email"`
	ClientPhone   string              `json:"clientPhone" validate:"omitempty,max=40"`
	ClientCompany string              `json:"clientCompany" validate:"omitempty,max=200"`
	ClientAddress string              `json:"clientAddress" validate:"omitempty,max=500"`
	ClientType    string              `json:"clientType" validate:"required,oneof=gerances entreprise particulier"`
	ServiceType   string              `json:"serviceType" validate:"required,max=200"`
	Frequency     string              `json:"frequency" validate:"omitempty,max=100"`
	SurfaceArea   any                 `json:"surfaceArea"`
	Location      string              `json:"location" validate:"omitempty,max=200"`
	PreferredDate string              `json:"preferredDate" validate:"omitempty,max=100"`
	Budget        string              `json:"budget" validate:"omitempty,max=100"`
	Notes         string              `json:"notes" validate:"omitempty,max=5000"`
	CollectedData map[string]any      `json:"collectedData"`
	Messages      []TranscriptMessage `json:"messages" validate:"omitempty,dive"`
}

// SubmitResponse reports a created quote request.
type SubmitResponse struct {
	Success       bool   `json:"success"`
	ID            string `json:"id"`
	RequestNumber string `json:"requestNumber"`
}

// UpdateStatusRequest changes a request's workflow status. Version carries
// the optimistic concurrency token the staff UI read; a stale version is
// rejected as a conflict instead of silently overwriting.
type UpdateStatusRequest struct {
	Status   string         `json:"status" validate:"required,oneof=pending in_review finalized sent"`
	Notes    string         `json:"notes" validate:"omitempty,max=5000"`
	Metadata map[string]any `json:"metadata"`
	Version  int            `json:"version" validate:"omitempty,min=1"`
}
