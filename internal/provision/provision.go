// Package provision seeds a default profile record when the identity
// provider confirms a new account. The confirmation workflow blocks on
// this handler's acknowledgment, so it always echoes the event back
// unchanged and never surfaces a failure.
package provision

import (
	"context"
	"log/slog"

	"github.com/mapme/mapme/internal/metrics"
	"github.com/mapme/mapme/internal/model"
	"github.com/mapme/mapme/internal/store"
)

// Event is the account-confirmation event delivered by the identity
// provider. It is returned to the caller verbatim as acknowledgment.
type Event struct {
	TriggerSource string `json:"triggerSource,omitempty"`
	UserID        string `json:"userId"`
	Email         string `json:"email"`
}

// Handler reacts to account-confirmation events.
type Handler struct {
	store   store.Store
	logger  *slog.Logger
	metrics metrics.Recorder
}

// New creates a provisioning Handler.
func New(s store.Store, logger *slog.Logger, rec metrics.Recorder) *Handler {
	return &Handler{
		store:   s,
		logger:  logger,
		metrics: rec,
	}
}

// Handle creates a default profile record for the confirmed account
// and returns the event unchanged. Every failure, expected or not, is
// logged and swallowed; a missing profile row is self-healed later by
// the profile endpoint's create-on-first-write path.
func (h *Handler) Handle(ctx context.Context, event Event) Event {
	h.provision(ctx, event)
	return event
}

func (h *Handler) provision(ctx context.Context, event Event) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("unexpected failure during account provisioning",
				slog.Any("panic", r),
			)
			h.metrics.IncProvisioned(metrics.OutcomeFailed)
		}
	}()

	if event.UserID == "" {
		h.logger.Error("missing user id in confirmation event",
			slog.String("trigger_source", event.TriggerSource),
		)
		h.metrics.IncProvisioned(metrics.OutcomeSkipped)
		return
	}

	if event.Email == "" {
		h.logger.Error("missing email in confirmation event",
			slog.String("trigger_source", event.TriggerSource),
			slog.String("user_id", event.UserID),
		)
		h.metrics.IncProvisioned(metrics.OutcomeSkipped)
		return
	}

	h.logger.Info("creating default profile record",
		slog.String("trigger_source", event.TriggerSource),
		slog.String("user_id", event.UserID),
	)

	profile := model.NewProfile(event.UserID, event.Email)

	if err := h.store.PutProfile(ctx, profile); err != nil {
		h.logger.Error("store error during account provisioning",
			slog.String("user_id", event.UserID),
			slog.String("error", err.Error()),
		)
		h.metrics.IncProvisioned(metrics.OutcomeFailed)
		return
	}

	h.metrics.IncProvisioned(metrics.OutcomeCreated)
	h.logger.Info("profile record created",
		slog.String("user_id", event.UserID),
	)
}
