package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/mapme/mapme/internal/middleware"
	"github.com/mapme/mapme/internal/provision"
)

// ProvisionHandler exposes the account-provisioning hook over HTTP for
// deployments where the identity provider calls back through the
// gateway instead of invoking the handler directly.
type ProvisionHandler struct {
	prov   *provision.Handler
	logger *slog.Logger
}

// NewProvisionHandler creates a new ProvisionHandler.
func NewProvisionHandler(prov *provision.Handler, logger *slog.Logger) *ProvisionHandler {
	return &ProvisionHandler{
		prov:   prov,
		logger: logger,
	}
}

// AccountConfirmed handles POST /internal/hooks/account-confirmed.
// The raw event body is echoed back verbatim with a 200 regardless of
// outcome; the confirmation workflow must never be blocked.
func (h *ProvisionHandler) AccountConfirmed(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("failed to read confirmation event body",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("error", err.Error()),
		)
		raw = nil
	}

	var event provision.Event
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &event); err != nil {
			h.logger.Error("malformed confirmation event",
				slog.String("request_id", middleware.GetRequestID(r.Context())),
				slog.String("error", err.Error()),
			)
		}
	}

	h.prov.Handle(r.Context(), event)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	if len(raw) > 0 {
		_, _ = w.Write(raw)
	} else {
		_, _ = w.Write([]byte("{}"))
	}
}
