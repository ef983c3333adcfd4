package pdffile

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"sort"
	"strconv"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	_ "golang.org/x/image/tiff"
)

// recognizePage pulls the raster images embedded in one page and runs each
// through the recognizer, concatenating the results in extraction order.
func (e *Extractor) recognizePage(ctx context.Context, raw []byte, pageNr int) (string, error) {
	conf := api.LoadConfiguration()
	pages := []string{strconv.Itoa(pageNr)}

	extracted, err := api.ExtractImagesRaw(bytes.NewReader(raw), pages, conf)
	if err != nil {
		return "", fmt.Errorf("extract page images: %w", err)
	}

	var parts []string
	for _, pageImages := range extracted {
		// Maps are keyed by object number; keep a stable order.
		objNrs := make([]int, 0, len(pageImages))
		for objNr := range pageImages {
			objNrs = append(objNrs, objNr)
		}
		sort.Ints(objNrs)

		for _, objNr := range objNrs {
			img, _, decErr := image.Decode(pageImages[objNr])
			if decErr != nil {
				continue
			}
			text, recErr := e.recognizer.Recognize(ctx, img)
			if recErr != nil {
				return "", fmt.Errorf("recognize page image: %w", recErr)
			}
			if text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, "\n"), nil
}
