package readiness

import "testing"

func TestReadyExplicitFlagWins(t *testing.T) {
	payload := map[string]any{
		"ready_for_quote": false,
		"client_email":    "a@b.ch",
		"service_type":    "fin de bail",
	}
	if Ready(payload) {
		t.Fatal("explicit false flag must block readiness even with complete fields")
	}

	payload["ready_for_quote"] = true
	delete(payload, "client_email")
	if !Ready(payload) {
		t.Fatal("explicit true flag is authoritative")
	}
}

func TestReadyHeuristicFallback(t *testing.T) {
	cases := []struct {
		name    string
		payload map[string]any
		want    bool
	}{
		{
			name:    "email and service type",
			payload: map[string]any{"client_email": "a@b.ch", "service_type": "x"},
			want:    true,
		},
		{
			name:    "email only",
			payload: map[string]any{"client_email": "a@b.ch"},
			want:    false,
		},
		{
			name:    "service type only",
			payload: map[string]any{"service_type": "x"},
			want:    false,
		},
		{
			name: "nested client_data",
			payload: map[string]any{
				"client_data":  map[string]any{"email": "a@b.ch"},
				"service_type": "nettoyage",
			},
			want: true,
		},
		{
			name:    "whitespace email is empty",
			payload: map[string]any{"client_email": "   ", "service_type": "x"},
			want:    false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Ready(tc.payload); got != tc.want {
				t.Fatalf("Ready = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCandidateWalksNewestFirstSkippingUnparseable(t *testing.T) {
	messages := []Message{
		{Role: "assistant", Content: "```json\n{\"older\": true}\n```"},
		{Role: "user", Content: "```json\n{\"from_user\": true}\n```"},
		{Role: "assistant", Content: "```json\n{not valid\n```"},
		{Role: "assistant", Content: "Merci, à bientôt !"},
	}

	payload, ok := Candidate(messages)
	if !ok {
		t.Fatal("expected the older parseable assistant payload")
	}
	if payload["older"] != true {
		t.Fatalf("wrong candidate: %v", payload)
	}
}

func TestCandidateExhaustsTranscript(t *testing.T) {
	messages := []Message{
		{Role: "user", Content: "bonjour"},
		{Role: "assistant", Content: "Bonjour ! Quelle surface ?"},
	}
	if _, ok := Candidate(messages); ok {
		t.Fatal("no payload expected")
	}
}

func TestContentHashIsOrderInsensitive(t *testing.T) {
	a := map[string]any{"client_email": "a@b.ch", "service_type": "x", "surface": 45.0}
	b := map[string]any{"surface": 45.0, "service_type": "x", "client_email": "a@b.ch"}

	if ContentHash(a) != ContentHash(b) {
		t.Fatal("equal payloads must hash equally regardless of key order")
	}

	c := map[string]any{"client_email": "a@b.ch", "service_type": "y", "surface": 45.0}
	if ContentHash(a) == ContentHash(c) {
		t.Fatal("distinct payloads must hash differently")
	}

	if len(ContentHash(a)) != 64 {
		t.Fatalf("hash should be hex SHA-256, got %q", ContentHash(a))
	}
}
