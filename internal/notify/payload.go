package notify

import (
	"time"

	"github.com/google/uuid"
)

// Embed colors used across notifications.
const (
	ColorGreen  = 0x00ff00
	ColorOrange = 0xff6600
	ColorRed    = 0xff0000
	ColorBlue   = 0x0099ff
)

// Field is one named section of a payload.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Payload is a single deliverable message unit: one embed plus an optional
// plain-text content prefix (used for mention strings).
type Payload struct {
	ID          string
	Content     string
	Title       string
	Description string
	Color       int
	Timestamp   time.Time
	Fields      []Field
	Footer      string
}

func newPayload(title, description string, color int, ts time.Time) Payload {
	return Payload{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   ts,
	}
}
