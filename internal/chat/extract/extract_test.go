package extract

import "testing"

func TestJSONBlock(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantOK  bool
		check   func(t *testing.T, payload map[string]any)
	}{
		{
			name:    "well-formed block",
			content: "Voici le résumé :\n```json\n{\"ready_for_quote\": true, \"client_email\": \"a@b.ch\"}\n```\nMerci !",
			wantOK:  true,
			check: func(t *testing.T, payload map[string]any) {
				if payload["ready_for_quote"] != true {
					t.Errorf("ready_for_quote = %v", payload["ready_for_quote"])
				}
				if payload["client_email"] != "a@b.ch" {
					t.Errorf("client_email = %v", payload["client_email"])
				}
			},
		},
		{
			name:    "uppercase tag",
			content: "```JSON\n{\"type\":\"quote\"}\n```",
			wantOK:  true,
		},
		{
			name:    "no fence",
			content: "Bonjour, pouvez-vous préciser la surface ?",
			wantOK:  false,
		},
		{
			name:    "malformed json",
			content: "```json\n{broken\n```",
			wantOK:  false,
		},
		{
			name:    "empty block",
			content: "```json\n```",
			wantOK:  false,
		},
		{
			name:    "json array is not an object payload",
			content: "```json\n[1,2,3]\n```",
			wantOK:  false,
		},
		{
			name:    "empty string",
			content: "",
			wantOK:  false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload, ok := JSONBlock(tc.content)
			if ok != tc.wantOK {
				t.Fatalf("JSONBlock ok = %v, want %v", ok, tc.wantOK)
			}
			if tc.check != nil {
				tc.check(t, payload)
			}
		})
	}
}

func TestJSONBlockFirstFenceWins(t *testing.T) {
	content := "```json\n{\"first\": true}\n```\ntext\n```json\n{\"second\": true}\n```"
	payload, ok := JSONBlock(content)
	if !ok {
		t.Fatal("expected payload")
	}
	if payload["first"] != true {
		t.Fatalf("expected first fence, got %v", payload)
	}
}
