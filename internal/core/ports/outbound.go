package ports

import (
	"context"
	"image"

	"github.com/inklyn/docchat/internal/core/domain"
)

// FormatSniffer classifies an upload. It never fails; TypeUnknown is a
// valid terminal classification.
type FormatSniffer interface {
	Classify(filename string, data []byte) domain.LogicalType
}

// Extractor turns one upload into raw blocks in natural document order.
// Per-unit failures are recorded as raw-fallback marker blocks; a non-nil
// error means the whole file was unreadable.
type Extractor interface {
	Extract(ctx context.Context, upload domain.RawUpload) ([]domain.ExtractedBlock, error)
}

// Recognizer converts a raster image to text. An empty string means nothing
// was recognized above the confidence floor; that is not an error.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// SessionStore is the only mutable shared resource. Mutations serialize per
// session; Snapshot returns an isolated copy safe to read without a lock.
type SessionStore interface {
	Create(ctx context.Context) (*domain.Session, error)
	Exists(ctx context.Context, sessionID string) error
	AddDocument(ctx context.Context, sessionID string, rec domain.DocumentRecord) error
	AppendTurn(ctx context.Context, sessionID string, turn domain.ConversationTurn) error
	Snapshot(ctx context.Context, sessionID string) (*domain.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// ChatModel is the external AI collaborator. Transport details are its own
// concern; failures come back as errors, never partial replies.
type ChatModel interface {
	Complete(ctx context.Context, payload domain.PromptPayload, model string) (string, error)
}

// Sizer measures text in the budget unit (tokens or characters). A given
// Sizer instance is deterministic for the life of the process.
type Sizer interface {
	Size(text string) int
}
