package model

import (
	"strconv"
	"time"
)

// SearchEntry is one persisted search. Entries are append-only and
// never mutated. CreatedAt is the sort key, Unix seconds as a string.
// EntryID is a ULID that disambiguates two entries created within the
// same second, so they never collide on the (user, createdAt) key.
type SearchEntry struct {
	UserID    string `json:"userId"`
	EntryID   string `json:"entryId"`
	CreatedAt string `json:"createdAt"`
	Query     string `json:"query"`
}

// SearchView is the flat wire representation of a search entry.
type SearchView struct {
	UserID    string `json:"userId"`
	CreatedAt string `json:"createdAt"`
	Query     string `json:"query"`
}

// View returns the wire representation of the entry.
func (e *SearchEntry) View() SearchView {
	return SearchView{
		UserID:    e.UserID,
		CreatedAt: e.CreatedAt,
		Query:     e.Query,
	}
}

// CreatedAtUnix parses the sort key back into Unix seconds.
// Returns 0 for a malformed value.
func (e *SearchEntry) CreatedAtUnix() int64 {
	secs, err := strconv.ParseInt(e.CreatedAt, 10, 64)
	if err != nil {
		return 0
	}
	return secs
}

// UnixNowString returns the current Unix time in seconds as a string,
// the format used for search entry sort keys.
func UnixNowString() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}
