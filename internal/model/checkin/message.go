package checkin

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MaxMessages caps a session transcript to bound memory and prompt size.
const MaxMessages = 100

// Message is a single conversation turn within a Day check-in.
// Ordering is append-only and significant: the transcript is replayed as
// history to the generation gateway.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage mints a message with a fresh ID and UTC timestamp.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// AppendMessage appends without mutating the input slice and trims the
// transcript to the most recent MaxMessages turns.
func AppendMessage(messages []Message, msg Message) []Message {
	out := make([]Message, 0, len(messages)+1)
	out = append(out, messages...)
	out = append(out, msg)
	if len(out) > MaxMessages {
		out = out[len(out)-MaxMessages:]
	}
	return out
}
