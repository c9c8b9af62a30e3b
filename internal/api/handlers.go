// Package api exposes the explanation pipeline over HTTP. Bodies arrive as
// JSON or HTML form fields and leave as JSON.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"github.com/fundsight/explain-engine/internal/inference"
	"github.com/fundsight/explain-engine/internal/metrics"
	"github.com/fundsight/explain-engine/internal/models"
	"github.com/fundsight/explain-engine/internal/services"
	"github.com/fundsight/explain-engine/internal/transform"
)

// Handler routes explanation requests to the service facade.
type Handler struct {
	logger *slog.Logger
	svc    *services.ExplainService
}

// NewHandler constructs the HTTP handler set.
func NewHandler(logger *slog.Logger, svc *services.ExplainService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, svc: svc}
}

// Routes builds the instrumented request mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/predictions", h.handlePredict)
	mux.HandleFunc("/healthz", h.handleHealth)
	return metrics.InstrumentHandler(mux)
}

func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	record, err := decodeRecord(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	explanation, err := h.svc.Explain(r.Context(), record)
	if err != nil {
		h.writeExplainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, explanation)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeExplainError maps the error taxonomy onto status codes: input
// problems are the caller's to fix; shape and inference defects indicate a
// deployment problem, so details stay in the logs.
func (h *Handler) writeExplainError(w http.ResponseWriter, err error) {
	var validation *models.ValidationError
	var unknown *transform.UnknownCategoryError
	var shape *transform.ShapeMismatchError
	var inferenceErr *inference.InferenceError

	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &unknown):
		writeError(w, http.StatusBadRequest, unknown.Error())
	case errors.As(err, &shape), errors.As(err, &inferenceErr):
		h.logger.Error("pipeline contract violation", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		h.logger.Error("explanation failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// maxMultipartMemory bounds the in-memory portion of a multipart body.
// Records are a handful of scalar fields; anything larger spills to disk.
const maxMultipartMemory = 4 << 20

// decodeRecord accepts a JSON object or form fields. Form values are plain
// strings; the transform layer coerces them by field role.
func decodeRecord(r *http.Request) (models.RawRecord, error) {
	contentType := r.Header.Get("Content-Type")
	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}

	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, errors.New("malformed form body")
		}
		return recordFromForm(r.PostForm), nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, errors.New("malformed multipart body")
		}
		return recordFromForm(r.PostForm), nil
	default:
		var record models.RawRecord
		decoder := json.NewDecoder(r.Body)
		if err := decoder.Decode(&record); err != nil {
			return nil, errors.New("malformed JSON body")
		}
		return record, nil
	}
}

func recordFromForm(form url.Values) models.RawRecord {
	record := make(models.RawRecord, len(form))
	for name, values := range form {
		if len(values) > 0 {
			record[name] = values[0]
		}
	}
	return record
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
