// Package readiness decides whether a chat transcript has collected enough
// information to auto-create a quote request, and guards auto-submission
// with a content-based idempotency key.
package readiness

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"conciergerie_backend/internal/chat/extract"
)

// Message is the minimal transcript view the classifier needs.
type Message struct {
	Role    string
	Content string
}

// Ready reports whether a payload is ready for submission. An explicit
// ready_for_quote boolean is authoritative, including false. Without the
// flag, the heuristic requires a non-empty client email AND service type.
func Ready(payload map[string]any) bool {
	if flag, ok := payload["ready_for_quote"].(bool); ok {
		return flag
	}
	return Email(payload) != "" && ServiceType(payload) != ""
}

// Email returns the client email from a payload, looking at the flat field
// first and the nested client_data record second.
func Email(payload map[string]any) string {
	if v := stringField(payload, "client_email"); v != "" {
		return v
	}
	if nested, ok := payload["client_data"].(map[string]any); ok {
		if v := stringField(nested, "email"); v != "" {
			return v
		}
		return stringField(nested, "client_email")
	}
	return ""
}

// ServiceType returns the requested service type from a payload.
func ServiceType(payload map[string]any) string {
	if v := stringField(payload, "service_type"); v != "" {
		return v
	}
	if nested, ok := payload["client_data"].(map[string]any); ok {
		return stringField(nested, "service_type")
	}
	return ""
}

// Candidate walks the transcript newest-first over assistant messages and
// returns the first parseable structured payload. Unparseable candidates
// are skipped, not fatal.
func Candidate(messages []Message) (map[string]any, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != "assistant" {
			continue
		}
		if payload, ok := extract.JSONBlock(messages[i].Content); ok {
			return payload, true
		}
	}
	return nil, false
}

// ContentHash derives the idempotency key for a payload: SHA-256 of its
// canonical JSON serialization. encoding/json sorts map keys, so two
// payloads with equal content hash equally regardless of original key
// order or where in the transcript they appeared.
func ContentHash(payload map[string]any) string {
	canonical, err := json.Marshal(payload)
	if err != nil {
		// Payloads come from json.Unmarshal, so this cannot happen for
		// real inputs; hash the error text to stay total.
		canonical = []byte(err.Error())
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

func stringField(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return strings.TrimSpace(s)
}
