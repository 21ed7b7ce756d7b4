// Package extract recovers structured payloads from free-text assistant
// output. Parsing is total: any input yields either a payload or nothing,
// never an error. Shape validation belongs to the consumer.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// fencedJSON matches a ```json fenced block (case-insensitive tag) and
// captures its inner text.
var fencedJSON = regexp.MustCompile("(?is)```json\\s*(.*?)```")

// JSONBlock returns the first fenced JSON object found in content. A missing
// fence, empty block, or malformed JSON all return ok=false.
func JSONBlock(content string) (map[string]any, bool) {
	match := fencedJSON.FindStringSubmatch(content)
	if match == nil {
		return nil, false
	}

	inner := strings.TrimSpace(match[1])
	if inner == "" {
		return nil, false
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(inner), &payload); err != nil {
		return nil, false
	}
	return payload, true
}
