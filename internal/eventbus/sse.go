package eventbus

import (
	"encoding/json"
	"fmt"

	"goa.design/hierarchical-agents/internal/model"
)

// FormatFrame renders event as one SSE frame: "event: <type>\ndata: <json>\n\n".
// JSON omits null/zero-value optional fields per their struct tags and
// timestamps serialize as RFC3339 in UTC ("...Z"), matching spec.md §6.
func FormatFrame(event model.ExecutionEvent) (string, error) {
	event.Timestamp = event.Timestamp.UTC()
	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	return fmt.Sprintf("event: %s\ndata: %s\n\n", event.EventType, payload), nil
}

// FormatErrorFrame renders the terminal "stream_error" frame emitted before
// an SSE stream closes on error, per spec.md §6.
func FormatErrorFrame(message string) string {
	payload, _ := json.Marshal(map[string]string{"message": message})
	return fmt.Sprintf("event: stream_error\ndata: %s\n\n", payload)
}
