// Package tabular extracts delimited files and spreadsheets. Every data
// row becomes one block, and a detected header row is prefixed into each
// block so column semantics survive independent truncation.
package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/inklyn/docchat/internal/core/domain"
)

type CSVExtractor struct{}

func NewCSV() *CSVExtractor { return &CSVExtractor{} }

func (e *CSVExtractor) Extract(_ context.Context, upload domain.RawUpload) ([]domain.ExtractedBlock, error) {
	reader := csv.NewReader(bytes.NewReader(upload.Data))
	reader.Comma = delimiterFor(upload.Filename)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtractionFailed, "parse delimited file", err)
	}

	return rowsToBlocks(rows, "", domain.KindTableRow), nil
}

func delimiterFor(filename string) rune {
	if strings.EqualFold(filepath.Ext(filename), ".tsv") {
		return '\t'
	}
	return ','
}

// rowsToBlocks converts one sheet of rows. When a header row is detected
// the header line is repeated in front of every data row; sheetPrefix, if
// set, tags each block with the sheet it came from.
func rowsToBlocks(rows [][]string, sheetPrefix string, kind domain.BlockKind) []domain.ExtractedBlock {
	var blocks []domain.ExtractedBlock
	header := ""
	start := 0
	if len(rows) > 1 && looksLikeHeader(rows[0]) {
		header = joinCells(rows[0])
		start = 1
	}

	for _, row := range rows[start:] {
		line := joinCells(row)
		if line == "" {
			continue
		}
		text := line
		if header != "" {
			text = header + "\n" + line
		}
		if sheetPrefix != "" {
			text = sheetPrefix + " " + text
		}
		blocks = append(blocks, domain.ExtractedBlock{
			Ordinal: len(blocks),
			Kind:    kind,
			Text:    text,
		})
	}
	return blocks
}

func joinCells(cells []string) string {
	trimmed := make([]string, 0, len(cells))
	empty := true
	for _, c := range cells {
		c = strings.TrimSpace(c)
		if c != "" {
			empty = false
		}
		trimmed = append(trimmed, c)
	}
	if empty {
		return ""
	}
	return strings.Join(trimmed, " | ")
}

// looksLikeHeader treats the first row as a header when none of its
// non-empty cells parse as numbers.
func looksLikeHeader(row []string) bool {
	nonEmpty := 0
	for _, c := range row {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		nonEmpty++
		if _, err := strconv.ParseFloat(c, 64); err == nil {
			return false
		}
	}
	return nonEmpty > 0
}
