package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"strings"
	"time"

	"github.com/inklyn/docchat/internal/core/domain"
	"github.com/inklyn/docchat/internal/infrastructure/resilience"
	"github.com/inklyn/docchat/internal/observability/metrics"
)

// noTextMarker is what the vision model is instructed to answer when the
// image contains nothing legible; it maps to an empty recognition result.
const noTextMarker = "NO_TEXT"

const recognitionPrompt = `Transcribe all legible text visible in this image.
Return only the transcribed text, preserving line breaks.
If the image contains no legible text, return exactly ` + noTextMarker + `.`

// VisionClient recognizes text by sending the preprocessed raster to a
// vision language model over an Ollama-style generate API.
type VisionClient struct {
	baseURL  string
	model    string
	floor    int
	http     *http.Client
	exec     *resilience.Executor
	pipeline *metrics.PipelineMetrics
}

func NewVisionClient(baseURL, model string, minTextLength int, exec *resilience.Executor, pipeline *metrics.PipelineMetrics) *VisionClient {
	if minTextLength <= 0 {
		minTextLength = 2
	}
	return &VisionClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		model:    model,
		floor:    minTextLength,
		http:     &http.Client{Timeout: 120 * time.Second},
		exec:     exec,
		pipeline: pipeline,
	}
}

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Stream bool     `json:"stream"`
	Images []string `json:"images"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Recognize preprocesses and transcribes one raster image. An empty result
// means nothing was recognized above the floor; that is not an error.
func (c *VisionClient) Recognize(ctx context.Context, img image.Image) (string, error) {
	start := time.Now()

	var buf bytes.Buffer
	if err := png.Encode(&buf, Preprocess(img)); err != nil {
		return "", fmt.Errorf("encode preprocessed image: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())

	var text string
	err := c.exec.Execute(ctx, "ocr_recognize", func(ctx context.Context) error {
		var callErr error
		text, callErr = c.generate(ctx, encoded)
		return callErr
	}, func(err error) bool {
		return domain.IsKind(err, domain.ErrTemporary)
	})
	if err != nil {
		c.pipeline.RecordOCR("error", time.Since(start))
		return "", err
	}

	text = cleanResult(text)
	if len(text) < c.floor {
		c.pipeline.RecordOCR("empty", time.Since(start))
		return "", nil
	}
	c.pipeline.RecordOCR("recognized", time.Since(start))
	return text, nil
}

func (c *VisionClient) generate(ctx context.Context, encodedImage string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: recognitionPrompt,
		Stream: false,
		Images: []string{encodedImage},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", domain.WrapError(domain.ErrTemporary, "ocr request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return "", domain.WrapError(domain.ErrTemporary, "ocr request", fmt.Errorf("status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocr request: status %d", resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	return parsed.Response, nil
}

func cleanResult(text string) string {
	text = strings.TrimSpace(text)
	if strings.EqualFold(text, noTextMarker) {
		return ""
	}
	return text
}
