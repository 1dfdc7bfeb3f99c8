// Package events holds the canonical event contract shared by every
// workflow module. Publishers and transports agree on this shape only.
package events

import "time"

// Envelope is the wire shape carried by the event sink. Payloads are
// opaque to the transport; Key carries the aggregate identifier used
// for partitioning once an external broker is wired in.
type Envelope struct {
	EventID    string         `json:"event_id"`
	EventType  string         `json:"event_type"`
	Key        string         `json:"key"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}
