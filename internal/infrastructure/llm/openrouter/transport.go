package openrouter

import (
	"log/slog"
	"net/http"
	"time"
)

// loggingTransport logs one line per outbound provider call. Bodies and
// auth headers are never logged.
type loggingTransport struct {
	next http.RoundTripper
}

func newLoggingTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &loggingTransport{next: next}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	attrs := []any{
		"method", req.Method,
		"url", req.URL.Redacted(),
		"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
	}
	if err != nil {
		slog.Warn("provider_request_failed", append(attrs, "error", err)...)
		return nil, err
	}
	slog.Debug("provider_request", append(attrs, "status", resp.StatusCode)...)
	return resp, nil
}
