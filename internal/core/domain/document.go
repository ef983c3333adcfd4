package domain

import "time"

// LogicalType is the classified document format used to select an extractor.
// It is determined once per upload and never changes.
type LogicalType string

const (
	TypePDF            LogicalType = "pdf"
	TypeLegacyDoc      LogicalType = "legacy-doc"
	TypeModernDoc      LogicalType = "modern-doc"
	TypeDelimitedTable LogicalType = "delimited-table"
	TypeSpreadsheet    LogicalType = "spreadsheet"
	TypeSlideDeck      LogicalType = "slide-deck"
	TypeStructuredText LogicalType = "structured-text"
	TypePlainText      LogicalType = "plain-text"
	TypeImage          LogicalType = "image"
	TypeUnknown        LogicalType = "unknown"
)

type BlockKind string

const (
	KindParagraph   BlockKind = "paragraph"
	KindTableRow    BlockKind = "table-row"
	KindSlideText   BlockKind = "slide-text"
	KindCellRange   BlockKind = "cell-range"
	KindOCRText     BlockKind = "ocr-text"
	KindRawFallback BlockKind = "raw-fallback"
)

type IngestStatus string

const (
	IngestSuccess IngestStatus = "success"
	IngestPartial IngestStatus = "partial"
	IngestFailed  IngestStatus = "failed"
)

// RawUpload holds one uploaded file for the duration of a single ingestion
// call. The bytes are not retained after extraction.
type RawUpload struct {
	Filename string
	Data     []byte
}

// ExtractedBlock is the unit of normalized content. Blocks of a record are
// totally ordered by Ordinal and CharCount always equals len(Text).
type ExtractedBlock struct {
	SourceID  string    `json:"source_id"`
	Ordinal   int       `json:"ordinal"`
	Kind      BlockKind `json:"kind"`
	Text      string    `json:"text"`
	CharCount int       `json:"char_count"`
}

// DocumentRecord is a completed ingestion result. It is immutable after
// creation; re-uploading the same bytes yields a new record with a new
// SourceID.
type DocumentRecord struct {
	SourceID    string           `json:"source_id"`
	Filename    string           `json:"filename"`
	Type        LogicalType      `json:"type"`
	Blocks      []ExtractedBlock `json:"blocks"`
	Status      IngestStatus     `json:"status"`
	ErrorDetail string           `json:"error_detail,omitempty"`
	FailedUnits int              `json:"failed_units,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// HasContent reports whether the record contributed at least one block.
func (r *DocumentRecord) HasContent() bool {
	return r.Status != IngestFailed && len(r.Blocks) > 0
}
