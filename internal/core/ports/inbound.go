package ports

import (
	"context"

	"github.com/inklyn/docchat/internal/core/domain"
)

// DocumentIngestor is the inbound contract for uploading one file into a
// session. A failed extraction is reported through the record status, not
// through the error return.
type DocumentIngestor interface {
	Ingest(ctx context.Context, sessionID string, upload domain.RawUpload) (*domain.DocumentRecord, error)
}

// ConversationService is the inbound contract for one chat turn: budget the
// session content, assemble the prompt, call the model, record the turns.
type ConversationService interface {
	Converse(ctx context.Context, sessionID, userQuery string, opts domain.ConverseOptions) (*domain.ChatResult, error)
}

// EmailDrafter is the inbound contract for drafting an email grounded in
// the session's documents. Drafting never touches the chat history.
type EmailDrafter interface {
	DraftEmail(ctx context.Context, sessionID string, req domain.EmailRequest) (*domain.EmailDraft, error)
}

// SessionManager is the inbound contract for session lifecycle.
type SessionManager interface {
	StartSession(ctx context.Context) (*domain.Session, error)
	EndSession(ctx context.Context, sessionID string) error
	SessionSnapshot(ctx context.Context, sessionID string) (*domain.Session, error)
}
