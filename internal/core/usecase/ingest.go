package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/inklyn/docchat/internal/core/domain"
	"github.com/inklyn/docchat/internal/core/normalize"
	"github.com/inklyn/docchat/internal/core/ports"
)

type IngestUseCase struct {
	sniffer    ports.FormatSniffer
	extractors map[domain.LogicalType]ports.Extractor
	fallback   ports.Extractor
	sessions   ports.SessionStore
	timeout    time.Duration
}

func NewIngestUseCase(
	sniffer ports.FormatSniffer,
	extractors map[domain.LogicalType]ports.Extractor,
	fallback ports.Extractor,
	sessions ports.SessionStore,
	timeout time.Duration,
) *IngestUseCase {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &IngestUseCase{
		sniffer:    sniffer,
		extractors: extractors,
		fallback:   fallback,
		sessions:   sessions,
		timeout:    timeout,
	}
}

// Ingest classifies, extracts, normalizes, and publishes one upload as a
// DocumentRecord. Publication is all-or-nothing: on timeout or session
// error the record never becomes visible. Whole-file extraction failure is
// reported through the record status, so sibling uploads in a batch are
// unaffected.
func (uc *IngestUseCase) Ingest(ctx context.Context, sessionID string, upload domain.RawUpload) (*domain.DocumentRecord, error) {
	if upload.Filename == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest", fmt.Errorf("filename is required"))
	}
	if err := uc.sessions.Exists(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	logicalType := uc.sniffer.Classify(upload.Filename, upload.Data)
	extractor, ok := uc.extractors[logicalType]
	if !ok {
		// Unknown and unmapped types route to the plain-text fallback.
		extractor = uc.fallback
	}

	rec := domain.DocumentRecord{
		SourceID:  uuid.NewString(),
		Filename:  upload.Filename,
		Type:      logicalType,
		CreatedAt: time.Now().UTC(),
	}

	raw, err := extractor.Extract(ctx, upload)
	if ctx.Err() != nil {
		// Partial work is discarded, never half-published.
		return nil, fmt.Errorf("extract %q: %w", upload.Filename, ctx.Err())
	}
	if err != nil {
		rec.Status = domain.IngestFailed
		rec.ErrorDetail = fmt.Sprintf("%s: %v", upload.Filename, err)
	} else {
		rec.Blocks = normalize.Blocks(rec.SourceID, raw)
		rec.FailedUnits = countFailedUnits(rec.Blocks)
		rec.Status = domain.IngestSuccess
		if rec.FailedUnits > 0 {
			rec.Status = domain.IngestPartial
		}
	}

	if err := uc.sessions.AddDocument(ctx, sessionID, rec); err != nil {
		return nil, fmt.Errorf("publish document record: %w", err)
	}
	return &rec, nil
}

func countFailedUnits(blocks []domain.ExtractedBlock) int {
	n := 0
	for _, b := range blocks {
		if b.Kind == domain.KindRawFallback {
			n++
		}
	}
	return n
}
