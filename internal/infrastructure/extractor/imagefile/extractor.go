// Package imagefile extracts raster uploads through the OCR fallback.
package imagefile

import (
	"bytes"
	"context"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/inklyn/docchat/internal/core/domain"
	"github.com/inklyn/docchat/internal/core/ports"
)

type Extractor struct {
	recognizer ports.Recognizer
}

func New(recognizer ports.Recognizer) *Extractor {
	return &Extractor{recognizer: recognizer}
}

// Extract decodes the raster and runs it through recognition. An image in
// which nothing is recognized yields zero blocks, not an error; an
// undecodable file is a whole-file failure.
func (e *Extractor) Extract(ctx context.Context, upload domain.RawUpload) ([]domain.ExtractedBlock, error) {
	img, format, err := image.Decode(bytes.NewReader(upload.Data))
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtractionFailed, "decode image", err)
	}

	text, err := e.recognizer.Recognize(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("recognize %s image: %w", format, err)
	}
	if text == "" {
		return nil, nil
	}
	return []domain.ExtractedBlock{{
		Kind: domain.KindOCRText,
		Text: text,
	}}, nil
}
