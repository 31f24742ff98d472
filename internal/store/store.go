// Package store provides the record store the handlers read and write.
// The interface is deliberately narrow: get-by-key, full-record put,
// and a most-recent-first query with a limit. Backends are selected by
// configuration.
package store

import (
	"context"
	"errors"

	"github.com/mapme/mapme/internal/model"
)

// ErrNotFound signals a profile miss. Handlers treat a miss as a
// normal outcome, not a failure.
var ErrNotFound = errors.New("record not found")

// Store is the persistence surface consumed by the handlers.
type Store interface {
	// GetProfile returns the profile for userID, or ErrNotFound.
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)

	// PutProfile writes the full profile record, overwriting any
	// existing record for the same user.
	PutProfile(ctx context.Context, profile *model.Profile) error

	// ListSearches returns up to limit entries for userID, most
	// recent first.
	ListSearches(ctx context.Context, userID string, limit int) ([]*model.SearchEntry, error)

	// PutSearch appends a new search entry.
	PutSearch(ctx context.Context, entry *model.SearchEntry) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
