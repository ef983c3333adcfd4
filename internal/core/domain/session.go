package domain

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is append-only; ordering is chronological.
type ConversationTurn struct {
	Role         Role      `json:"role"`
	Text         string    `json:"text"`
	Timestamp    time.Time `json:"timestamp"`
	ApproxTokens int       `json:"approx_tokens"`
}

// Session scopes one user's ingested documents and conversation history.
// Documents keep insertion order; the session store owns all mutation.
type Session struct {
	ID        string             `json:"id"`
	Documents []DocumentRecord   `json:"documents"`
	Turns     []ConversationTurn `json:"turns"`
	CreatedAt time.Time          `json:"created_at"`
}

// DocumentBySource returns the record for a sourceId, or nil.
func (s *Session) DocumentBySource(sourceID string) *DocumentRecord {
	for i := range s.Documents {
		if s.Documents[i].SourceID == sourceID {
			return &s.Documents[i]
		}
	}
	return nil
}
