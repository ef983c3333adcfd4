package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/inklyn/docchat/internal/core/domain"
	"github.com/inklyn/docchat/internal/core/ports"
	"github.com/inklyn/docchat/internal/observability/metrics"
)

type Router struct {
	sessionUC  ports.SessionManager
	ingestUC   ports.DocumentIngestor
	converseUC ports.ConversationService
	emailUC    ports.EmailDrafter

	pipeline    *metrics.PipelineMetrics
	httpMetrics *metrics.HTTPMetrics

	maxUploadBytes int64
	limiter        *ipRateLimiter
}

type Options struct {
	MaxUploadBytes     int64
	RateLimitPerSecond float64
	RateLimitBurst     int
}

func NewRouter(
	sessionUC ports.SessionManager,
	ingestUC ports.DocumentIngestor,
	converseUC ports.ConversationService,
	emailUC ports.EmailDrafter,
	pipeline *metrics.PipelineMetrics,
	httpMetrics *metrics.HTTPMetrics,
	opts Options,
) *Router {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 50 * 1024 * 1024
	}
	return &Router{
		sessionUC:      sessionUC,
		ingestUC:       ingestUC,
		converseUC:     converseUC,
		emailUC:        emailUC,
		pipeline:       pipeline,
		httpMetrics:    httpMetrics,
		maxUploadBytes: opts.MaxUploadBytes,
		limiter:        newIPRateLimiter(opts.RateLimitPerSecond, opts.RateLimitBurst),
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.Handle("GET /metrics", rt.pipeline.Handler())
	mux.HandleFunc("POST /v1/sessions", rt.createSession)
	mux.HandleFunc("GET /v1/sessions/{id}", rt.getSession)
	mux.HandleFunc("DELETE /v1/sessions/{id}", rt.deleteSession)
	mux.HandleFunc("POST /v1/sessions/{id}/documents", rt.uploadDocument)
	mux.HandleFunc("POST /v1/sessions/{id}/chat", rt.chat)
	mux.HandleFunc("POST /v1/sessions/{id}/email", rt.draftEmail)

	var handler http.Handler = mux
	handler = rt.limiter.middleware(handler)
	handler = rt.httpMetrics.Middleware("api", handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) createSession(w http.ResponseWriter, r *http.Request) {
	sess, err := rt.sessionUC.StartSession(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": sess.ID,
		"created_at": sess.CreatedAt,
	})
}

func (rt *Router) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := rt.sessionUC.SessionSnapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView(sess))
}

func (rt *Router) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := rt.sessionUC.EndSession(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		if status := mapErrorToHTTPStatus(err); status == http.StatusRequestEntityTooLarge {
			writeJSON(w, status, map[string]string{"error": "upload exceeds the size limit"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, err)
		return
	}

	start := time.Now()
	rec, err := rt.ingestUC.Ingest(r.Context(), r.PathValue("id"), domain.RawUpload{
		Filename: fileHeader.Filename,
		Data:     data,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	rt.pipeline.RecordIngest(string(rec.Type), string(rec.Status), time.Since(start), rec.FailedUnits)

	writeJSON(w, http.StatusCreated, recordView(rec))
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query  string `json:"query"`
		Model  string `json:"model"`
		Budget int    `json:"budget"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	result, err := rt.converseUC.Converse(r.Context(), r.PathValue("id"), req.Query, domain.ConverseOptions{
		Budget: req.Budget,
		Model:  req.Model,
	})
	if err != nil {
		rt.pipeline.RecordConverse(converseOutcome(err), 0, 0, 0)
		writeError(w, err)
		return
	}

	bc := result.Context
	rt.pipeline.RecordConverse("success", bc.FixedCost, bc.DocumentCost, bc.HistoryCost)
	for _, e := range bc.Excerpts {
		if e.Truncated {
			rt.pipeline.RecordTruncation()
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reply": result.Reply,
		"model": result.Model,
		"budget": map[string]int{
			"budget":        bc.Budget,
			"fixed_cost":    bc.FixedCost,
			"document_cost": bc.DocumentCost,
			"history_cost":  bc.HistoryCost,
			"total_cost":    bc.TotalCost(),
		},
		"excerpts":      len(bc.Excerpts),
		"history_turns": len(bc.Turns),
	})
}

func (rt *Router) draftEmail(w http.ResponseWriter, r *http.Request) {
	var req domain.EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	draft, err := rt.emailUC.DraftEmail(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, err)
		return
	}

	bc := draft.Context
	for _, e := range bc.Excerpts {
		if e.Truncated {
			rt.pipeline.RecordTruncation()
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"draft": draft.Draft,
		"model": draft.Model,
		"budget": map[string]int{
			"budget":        bc.Budget,
			"fixed_cost":    bc.FixedCost,
			"document_cost": bc.DocumentCost,
			"history_cost":  bc.HistoryCost,
			"total_cost":    bc.TotalCost(),
		},
		"excerpts": len(bc.Excerpts),
	})
}

func converseOutcome(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrBudgetExceededByFixedCost):
		return "budget_exceeded"
	case domain.IsKind(err, domain.ErrSessionNotFound):
		return "session_not_found"
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}

// sessionView exposes the full snapshot: document summaries plus the raw
// conversation history, so a client can export or audit the session.
func sessionView(sess *domain.Session) map[string]any {
	docs := make([]map[string]any, 0, len(sess.Documents))
	for i := range sess.Documents {
		docs = append(docs, recordView(&sess.Documents[i]))
	}
	turns := make([]map[string]any, 0, len(sess.Turns))
	for _, t := range sess.Turns {
		turns = append(turns, map[string]any{
			"role":      t.Role,
			"text":      t.Text,
			"timestamp": t.Timestamp,
		})
	}
	return map[string]any{
		"session_id": sess.ID,
		"created_at": sess.CreatedAt,
		"documents":  docs,
		"turns":      turns,
	}
}

func recordView(rec *domain.DocumentRecord) map[string]any {
	chars := 0
	for _, b := range rec.Blocks {
		chars += b.CharCount
	}
	view := map[string]any{
		"source_id":  rec.SourceID,
		"filename":   rec.Filename,
		"type":       rec.Type,
		"status":     rec.Status,
		"blocks":     len(rec.Blocks),
		"char_count": chars,
		"created_at": rec.CreatedAt,
	}
	if rec.FailedUnits > 0 {
		view["failed_units"] = rec.FailedUnits
	}
	if rec.ErrorDetail != "" {
		view["error_detail"] = rec.ErrorDetail
	}
	return view
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
