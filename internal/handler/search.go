package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/mapme/mapme/internal/identity"
	"github.com/mapme/mapme/internal/metrics"
	"github.com/mapme/mapme/internal/middleware"
	"github.com/mapme/mapme/internal/model"
	"github.com/mapme/mapme/internal/store"
	"github.com/mapme/mapme/internal/validate"
)

// maxQueryLength is the maximum accepted search query length.
const maxQueryLength = 500

// SearchHandler handles HTTP requests for the caller's search history.
type SearchHandler struct {
	store        store.Store
	logger       *slog.Logger
	metrics      metrics.Recorder
	historyLimit int
}

// NewSearchHandler creates a new SearchHandler. historyLimit caps how
// many recent entries a GET returns.
func NewSearchHandler(s store.Store, logger *slog.Logger, rec metrics.Recorder, historyLimit int) *SearchHandler {
	return &SearchHandler{
		store:        s,
		logger:       logger,
		metrics:      rec,
		historyLimit: historyLimit,
	}
}

// createSearchRequest is the POST body.
type createSearchRequest struct {
	Query validate.Value `json:"query"`
}

func validateSearchInput(req createSearchRequest) validate.Errors {
	var errs validate.Errors
	errs.Add(validate.String(req.Query, "query", maxQueryLength, true))
	return errs
}

// createdResponse confirms a stored search entry.
type createdResponse struct {
	OK        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
}

// List handles GET /api/v1/searches.
// Returns the most recent entries, newest first, possibly empty.
func (h *SearchHandler) List(w http.ResponseWriter, r *http.Request) {
	id := identity.FromContext(r.Context())
	if !id.IsAuthenticated() {
		h.logger.Warn("missing user id in claims",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	entries, err := h.store.ListSearches(r.Context(), id.UserID, h.historyLimit)
	if err != nil {
		h.logger.Error("store error fetching search history",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("user_id", id.UserID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve search history")
		return
	}

	views := make([]model.SearchView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, entry.View())
	}

	writeJSON(w, http.StatusOK, views)
}

// Create handles POST /api/v1/searches.
func (h *SearchHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := identity.FromContext(r.Context())
	if !id.IsAuthenticated() {
		h.logger.Warn("missing user id in claims",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	req, ok := decodeSearchBody(r.Body)
	if !ok {
		h.logger.Warn("invalid JSON in search create",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("user_id", id.UserID),
		)
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if errs := validateSearchInput(req); !errs.OK() {
		h.logger.Warn("search validation failed",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("user_id", id.UserID),
			slog.Any("details", []string(errs)),
		)
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Validation failed",
			Details: errs,
		})
		return
	}

	entry := &model.SearchEntry{
		UserID:    id.UserID,
		EntryID:   ulid.Make().String(),
		CreatedAt: model.UnixNowString(),
		Query:     req.Query.String(),
	}

	if err := h.store.PutSearch(r.Context(), entry); err != nil {
		h.logger.Error("store error writing search entry",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("user_id", id.UserID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "Failed to create search entry")
		return
	}

	h.metrics.IncSearchCreated()
	h.logger.Info("search_created",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("user_id", id.UserID),
		slog.Int("query_length", len(entry.Query)),
	)

	writeJSON(w, http.StatusCreated, createdResponse{OK: true, Timestamp: entry.CreatedAt})
}

// MethodNotAllowed handles unsupported methods on the searches route.
func (h *SearchHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}

// decodeSearchBody parses the POST body; an empty body counts as an
// empty object so the missing-query case reports through validation.
func decodeSearchBody(body io.Reader) (createSearchRequest, bool) {
	var req createSearchRequest

	raw, err := io.ReadAll(body)
	if err != nil {
		return req, false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return req, true
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return createSearchRequest{}, false
	}
	return req, true
}
