package checkin

import "time"

// Kind distinguishes the two check-in flows.
type Kind string

const (
	KindDay   Kind = "day"
	KindNight Kind = "night"
)

// Entry is the durable record produced by a successful save. Once written it
// belongs to the timeline store and is read-only to the machines.
type Entry struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Kind      Kind      `json:"kind"`
	Emotion   Emotion   `json:"emotion"`
	Intensity int       `json:"intensity"`
	Summary   string    `json:"summary"`
	Detail    string    `json:"detail"`
	Tags      []string  `json:"tags,omitempty"`
}

// RetryContext tracks an in-progress save attempt. It exists only while a
// session sits in a saving state and is discarded on success or permanent
// failure.
type RetryContext struct {
	RetryCount int    `json:"retryCount"`
	LastError  string `json:"lastError,omitempty"`
}
