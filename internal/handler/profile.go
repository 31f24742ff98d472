package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/mapme/mapme/internal/identity"
	"github.com/mapme/mapme/internal/metrics"
	"github.com/mapme/mapme/internal/middleware"
	"github.com/mapme/mapme/internal/model"
	"github.com/mapme/mapme/internal/store"
	"github.com/mapme/mapme/internal/validate"
)

// maxNameLength is the maximum accepted display name length.
const maxNameLength = 100

// ProfileHandler handles HTTP requests for the caller's profile.
type ProfileHandler struct {
	store   store.Store
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(s store.Store, logger *slog.Logger, rec metrics.Recorder) *ProfileHandler {
	return &ProfileHandler{
		store:   s,
		logger:  logger,
		metrics: rec,
	}
}

// updateProfileRequest is the PUT body. Both fields are optional;
// omitting one preserves the stored value, an explicit empty string
// clears it.
type updateProfileRequest struct {
	Name      validate.Value `json:"name"`
	AvatarURL validate.Value `json:"avatarUrl"`
}

func validateProfileInput(req updateProfileRequest) validate.Errors {
	var errs validate.Errors
	errs.Add(validate.String(req.Name, "name", maxNameLength, false))
	errs.Add(validate.URL(req.AvatarURL, "avatarUrl", false))
	return errs
}

// Get handles GET /api/v1/profile.
// A store miss is served as a default view from the identity claims;
// nothing is persisted for it.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := identity.FromContext(r.Context())
	if !id.IsAuthenticated() {
		h.logger.Warn("missing user id in claims",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	profile, err := h.store.GetProfile(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusOK, model.DefaultProfileView(id.UserID, id.Email))
			return
		}
		h.logger.Error("store error fetching profile",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("user_id", id.UserID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve user profile")
		return
	}

	writeJSON(w, http.StatusOK, profile.View())
}

// Put handles PUT /api/v1/profile.
// Creates the record on first write and merges on subsequent writes:
// request-supplied fields win, stored values are preserved otherwise,
// and createdAt survives every update.
func (h *ProfileHandler) Put(w http.ResponseWriter, r *http.Request) {
	id := identity.FromContext(r.Context())
	if !id.IsAuthenticated() {
		h.logger.Warn("missing user id in claims",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	req, ok := decodeProfileBody(r.Body)
	if !ok {
		h.logger.Warn("invalid JSON in profile update",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("user_id", id.UserID),
		)
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if errs := validateProfileInput(req); !errs.OK() {
		h.logger.Warn("profile validation failed",
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

	existing, err := h.store.GetProfile(r.Context(), id.UserID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.logger.Error("store error reading profile before update",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("user_id", id.UserID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "Failed to update user profile")
		return
	}

	now := model.NowISO()
	merged := &model.Profile{
		UserID:    id.UserID,
		Email:     id.Email,
		Name:      mergeField(req.Name, existing, func(p *model.Profile) string { return p.Name }),
		AvatarURL: mergeField(req.AvatarURL, existing, func(p *model.Profile) string { return p.AvatarURL }),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing != nil {
		merged.CreatedAt = existing.CreatedAt
	}

	if err := h.store.PutProfile(r.Context(), merged); err != nil {
		h.logger.Error("store error writing profile",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("user_id", id.UserID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "Failed to update user profile")
		return
	}

	h.metrics.IncProfileUpdated()
	h.logger.Info("profile_updated",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("user_id", id.UserID),
		slog.Bool("created", existing == nil),
	)

	writeJSON(w, http.StatusOK, merged.View())
}

// MethodNotAllowed handles unsupported methods on the profile route.
func (h *ProfileHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// decodeProfileBody parses the PUT body. An empty body counts as an
// empty object, matching the tolerant front-door behavior.
func decodeProfileBody(body io.Reader) (updateProfileRequest, bool) {
	var req updateProfileRequest

	raw, err := io.ReadAll(body)
	if err != nil {
		return req, false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return req, true
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return updateProfileRequest{}, false
	}
	return req, true
}

// mergeField resolves one profile field: the request value when
// supplied (empty string clears), else the stored value, else "".
func mergeField(v validate.Value, existing *model.Profile, stored func(*model.Profile) string) string {
	if v.Provided() {
		return v.String()
	}
	if existing != nil {
		return stored(existing)
	}
	return ""
}
