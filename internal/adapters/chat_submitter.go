// Package adapters bridges modules without letting them import each other.
// Each adapter reshapes one module's output into another module's input.
package adapters

import (
	"context"
	"strings"

	"conciergerie_backend/internal/chat"
	"conciergerie_backend/internal/chat/readiness"
	requestsvc "conciergerie_backend/internal/requests/service"
	"conciergerie_backend/internal/requests/transport"
)

// ChatSubmitter turns a ready chat payload into a quote-request submission.
type ChatSubmitter struct {
	requests *requestsvc.Service
}

// NewChatSubmitter wires the chat auto-submission path to the requests
// service.
func NewChatSubmitter(requests *requestsvc.Service) *ChatSubmitter {
	return &ChatSubmitter{requests: requests}
}

// SubmitFromChat maps the extracted payload onto the submission DTO and
// delegates to the requests service. The assistant writes client identity
// under client_data; each field also accepts a flat spelling because
// models drift from the schema.
func (a *ChatSubmitter) SubmitFromChat(ctx context.Context, sub chat.Submission) (chat.SubmissionResult, error) {
	payload := sub.Payload

	messages := make([]transport.TranscriptMessage, len(sub.Messages))
	for i, m := range sub.Messages {
		messages[i] = transport.TranscriptMessage{Role: m.Role, Content: m.Content}
	}

	input := &transport.SubmitRequest{
		SessionID:     sub.SessionID,
		ClientName:    clientField(payload, "name", "client_name"),
		ClientEmail:   readiness.Email(payload),
		ClientPhone:   clientField(payload, "phone", "client_phone"),
		ClientCompany: clientField(payload, "company", "client_company"),
		ClientAddress: clientField(payload, "address", "client_address"),
		ClientType:    normalizeClientType(clientField(payload, "client_type", "client_type")),
		ServiceType:   readiness.ServiceType(payload),
		Frequency:     stringField(payload, "frequency"),
		SurfaceArea:   payload["surface_area"],
		Location:      stringField(payload, "location"),
		PreferredDate: stringField(payload, "preferred_date"),
		Budget:        stringField(payload, "budget"),
		Notes:         stringField(payload, "notes"),
		CollectedData: payload,
		Messages:      messages,
	}

	result, err := a.requests.Submit(ctx, input)
	if err != nil {
		return chat.SubmissionResult{}, err
	}
	return chat.SubmissionResult{ID: result.ID.String(), RequestNumber: result.RequestNumber}, nil
}

// normalizeClientType folds assistant variants onto the three canonical
// client types; particulier is the safe default for the public flow.
func normalizeClientType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gerances", "gérances", "gerance", "gérance":
		return "gerances"
	case "entreprise", "entreprises":
		return "entreprise"
	default:
		return "particulier"
	}
}

// clientField looks up a field under client_data first, then flat.
func clientField(payload map[string]any, nestedKey, flatKey string) string {
	if nested, ok := payload["client_data"].(map[string]any); ok {
		if v := stringField(nested, nestedKey); v != "" {
			return v
		}
	}
	return stringField(payload, flatKey)
}

func stringField(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return strings.TrimSpace(s)
}

// Compile-time check that the adapter satisfies the chat port.
var _ chat.Submitter = (*ChatSubmitter)(nil)
