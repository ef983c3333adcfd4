package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/inklyn/docchat/internal/core/domain"
	"github.com/inklyn/docchat/internal/core/ports"
)

type snifferFake struct {
	result domain.LogicalType
}

func (f snifferFake) Classify(_ string, _ []byte) domain.LogicalType { return f.result }

type extractorFake struct {
	blocks []domain.ExtractedBlock
	err    error
	delay  time.Duration
}

func (f extractorFake) Extract(ctx context.Context, _ domain.RawUpload) ([]domain.ExtractedBlock, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.blocks, f.err
}

// storeFake records mutations so tests can assert on publication.
type storeFake struct {
	sessions map[string]*domain.Session
	added    []domain.DocumentRecord
}

func newStoreFake(ids ...string) *storeFake {
	f := &storeFake{sessions: make(map[string]*domain.Session)}
	for _, id := range ids {
		f.sessions[id] = &domain.Session{ID: id, CreatedAt: time.Now().UTC()}
	}
	return f
}

func (f *storeFake) Create(_ context.Context) (*domain.Session, error) {
	sess := &domain.Session{ID: "generated", CreatedAt: time.Now().UTC()}
	f.sessions[sess.ID] = sess
	return sess, nil
}

func (f *storeFake) Exists(_ context.Context, sessionID string) error {
	if _, ok := f.sessions[sessionID]; !ok {
		return domain.WrapError(domain.ErrSessionNotFound, "exists", errors.New(sessionID))
	}
	return nil
}

func (f *storeFake) AddDocument(_ context.Context, sessionID string, rec domain.DocumentRecord) error {
	sess, ok := f.sessions[sessionID]
	if !ok {
		return domain.WrapError(domain.ErrSessionNotFound, "add document", errors.New(sessionID))
	}
	sess.Documents = append(sess.Documents, rec)
	f.added = append(f.added, rec)
	return nil
}

func (f *storeFake) AppendTurn(_ context.Context, sessionID string, turn domain.ConversationTurn) error {
	sess, ok := f.sessions[sessionID]
	if !ok {
		return domain.WrapError(domain.ErrSessionNotFound, "append turn", errors.New(sessionID))
	}
	sess.Turns = append(sess.Turns, turn)
	return nil
}

func (f *storeFake) Snapshot(_ context.Context, sessionID string) (*domain.Session, error) {
	sess, ok := f.sessions[sessionID]
	if !ok {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "snapshot", errors.New(sessionID))
	}
	cp := *sess
	cp.Documents = append([]domain.DocumentRecord(nil), sess.Documents...)
	cp.Turns = append([]domain.ConversationTurn(nil), sess.Turns...)
	return &cp, nil
}

func (f *storeFake) Delete(_ context.Context, sessionID string) error {
	if _, ok := f.sessions[sessionID]; !ok {
		return domain.WrapError(domain.ErrSessionNotFound, "delete", errors.New(sessionID))
	}
	delete(f.sessions, sessionID)
	return nil
}

func newIngestForTest(extractor ports.Extractor, store ports.SessionStore, timeout time.Duration) *IngestUseCase {
	return NewIngestUseCase(
		snifferFake{result: domain.TypePlainText},
		map[domain.LogicalType]ports.Extractor{domain.TypePlainText: extractor},
		extractor,
		store,
		timeout,
	)
}

func TestIngestSuccess(t *testing.T) {
	store := newStoreFake("s1")
	extractor := extractorFake{blocks: []domain.ExtractedBlock{
		{Ordinal: 0, Kind: domain.KindParagraph, Text: "hello world"},
	}}
	uc := newIngestForTest(extractor, store, 0)

	rec, err := uc.Ingest(context.Background(), "s1", domain.RawUpload{Filename: "a.txt", Data: []byte("hello world")})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if rec.Status != domain.IngestSuccess {
		t.Fatalf("status = %s, want success", rec.Status)
	}
	if len(rec.Blocks) != 1 || rec.Blocks[0].SourceID != rec.SourceID {
		t.Fatalf("blocks not normalized onto the record: %+v", rec.Blocks)
	}
	if len(store.added) != 1 {
		t.Fatalf("expected 1 published record, got %d", len(store.added))
	}
}

func TestIngestPartialWhenUnitsFail(t *testing.T) {
	store := newStoreFake("s1")
	extractor := extractorFake{blocks: []domain.ExtractedBlock{
		{Ordinal: 0, Kind: domain.KindParagraph, Text: "page one"},
		{Ordinal: 1, Kind: domain.KindRawFallback, Text: "[unreadable section]"},
		{Ordinal: 2, Kind: domain.KindParagraph, Text: "page three"},
	}}
	uc := newIngestForTest(extractor, store, 0)

	rec, err := uc.Ingest(context.Background(), "s1", domain.RawUpload{Filename: "a.pdf", Data: []byte("x")})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if rec.Status != domain.IngestPartial {
		t.Fatalf("status = %s, want partial", rec.Status)
	}
	if rec.FailedUnits != 1 {
		t.Fatalf("FailedUnits = %d, want 1", rec.FailedUnits)
	}
	if len(rec.Blocks) != 3 {
		t.Fatalf("expected successful units kept alongside the marker, got %d blocks", len(rec.Blocks))
	}
}

func TestIngestWholeFileFailureStillPublishes(t *testing.T) {
	store := newStoreFake("s1")
	extractor := extractorFake{err: domain.WrapError(domain.ErrExtractionFailed, "extract", errors.New("corrupt header"))}
	uc := newIngestForTest(extractor, store, 0)

	rec, err := uc.Ingest(context.Background(), "s1", domain.RawUpload{Filename: "bad.pdf", Data: []byte("x")})
	if err != nil {
		t.Fatalf("Ingest() error = %v, want failure carried on the record", err)
	}
	if rec.Status != domain.IngestFailed {
		t.Fatalf("status = %s, want failed", rec.Status)
	}
	if rec.ErrorDetail == "" || rec.ErrorDetail[:7] != "bad.pdf" {
		t.Fatalf("ErrorDetail = %q, want it to name the file", rec.ErrorDetail)
	}
	if len(store.added) != 1 {
		t.Fatal("failed record was not published")
	}
}

func TestIngestUnknownSessionRejected(t *testing.T) {
	store := newStoreFake()
	uc := newIngestForTest(extractorFake{}, store, 0)

	_, err := uc.Ingest(context.Background(), "nope", domain.RawUpload{Filename: "a.txt", Data: []byte("x")})
	if !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session-not-found kind, got %v", err)
	}
	if len(store.added) != 0 {
		t.Fatal("record published for unknown session")
	}
}

func TestIngestTimeoutDiscardsPartialWork(t *testing.T) {
	store := newStoreFake("s1")
	extractor := extractorFake{
		blocks: []domain.ExtractedBlock{{Ordinal: 0, Kind: domain.KindParagraph, Text: "late"}},
		delay:  200 * time.Millisecond,
	}
	uc := newIngestForTest(extractor, store, 10*time.Millisecond)

	_, err := uc.Ingest(context.Background(), "s1", domain.RawUpload{Filename: "slow.txt", Data: []byte("x")})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if len(store.added) != 0 {
		t.Fatal("partial work was published after timeout")
	}
}

func TestIngestReuploadGetsFreshSourceID(t *testing.T) {
	store := newStoreFake("s1")
	extractor := extractorFake{blocks: []domain.ExtractedBlock{
		{Ordinal: 0, Kind: domain.KindParagraph, Text: "same bytes"},
	}}
	uc := newIngestForTest(extractor, store, 0)

	upload := domain.RawUpload{Filename: "a.txt", Data: []byte("same bytes")}
	first, err := uc.Ingest(context.Background(), "s1", upload)
	if err != nil {
		t.Fatalf("first Ingest() error = %v", err)
	}
	second, err := uc.Ingest(context.Background(), "s1", upload)
	if err != nil {
		t.Fatalf("second Ingest() error = %v", err)
	}
	if first.SourceID == second.SourceID {
		t.Fatal("re-upload reused the source id")
	}
	if len(store.sessions["s1"].Documents) != 2 {
		t.Fatalf("expected 2 records in session, got %d", len(store.sessions["s1"].Documents))
	}
}

func TestIngestUnmappedTypeUsesFallback(t *testing.T) {
	store := newStoreFake("s1")
	fallback := extractorFake{blocks: []domain.ExtractedBlock{
		{Ordinal: 0, Kind: domain.KindParagraph, Text: "raw bytes as text"},
	}}
	uc := NewIngestUseCase(
		snifferFake{result: domain.TypeUnknown},
		map[domain.LogicalType]ports.Extractor{},
		fallback,
		store,
		0,
	)

	rec, err := uc.Ingest(context.Background(), "s1", domain.RawUpload{Filename: "mystery.bin", Data: []byte{0x01}})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if rec.Type != domain.TypeUnknown {
		t.Fatalf("type = %s, want unknown", rec.Type)
	}
	if len(rec.Blocks) != 1 {
		t.Fatalf("fallback extractor not used: %+v", rec.Blocks)
	}
}
