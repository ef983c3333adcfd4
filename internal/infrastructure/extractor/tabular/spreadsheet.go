package tabular

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/inklyn/docchat/internal/core/domain"
)

type SpreadsheetExtractor struct{}

func NewSpreadsheet() *SpreadsheetExtractor { return &SpreadsheetExtractor{} }

// Extract reads every sheet in workbook order. Multi-sheet workbooks
// prefix each block with the sheet name; a sheet that fails to read
// becomes one marker unit while the remaining sheets keep going.
func (e *SpreadsheetExtractor) Extract(_ context.Context, upload domain.RawUpload) ([]domain.ExtractedBlock, error) {
	f, err := excelize.OpenReader(bytes.NewReader(upload.Data))
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtractionFailed, "open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	multiSheet := len(sheets) > 1

	var blocks []domain.ExtractedBlock
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			blocks = append(blocks, domain.ExtractedBlock{
				Ordinal: len(blocks),
				Kind:    domain.KindRawFallback,
				Text:    fmt.Sprintf("[unreadable sheet %s]", sheet),
			})
			continue
		}

		prefix := ""
		if multiSheet {
			prefix = "[" + sheet + "]"
		}
		for _, b := range rowsToBlocks(rows, prefix, domain.KindCellRange) {
			b.Ordinal = len(blocks)
			blocks = append(blocks, b)
		}
	}
	return blocks, nil
}
