package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/mapme/mapme/internal/identity"
	"github.com/mapme/mapme/internal/metrics"
	"github.com/mapme/mapme/internal/model"
	"github.com/mapme/mapme/internal/store"
)

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	profiles map[string]*model.Profile
	searches map[string][]*model.SearchEntry

	getProfileErr error
	putProfileErr error
	listErr       error
	putSearchErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles: make(map[string]*model.Profile),
		searches: make(map[string][]*model.SearchEntry),
	}
}

func (f *fakeStore) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	if f.getProfileErr != nil {
		return nil, f.getProfileErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeStore) PutProfile(ctx context.Context, profile *model.Profile) error {
	if f.putProfileErr != nil {
		return f.putProfileErr
	}
	copied := *profile
	f.profiles[profile.UserID] = &copied
	return nil
}

func (f *fakeStore) ListSearches(ctx context.Context, userID string, limit int) ([]*model.SearchEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	entries := append([]*model.SearchEntry(nil), f.searches[userID]...)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAtUnix() != entries[j].CreatedAtUnix() {
			return entries[i].CreatedAtUnix() > entries[j].CreatedAtUnix()
		}
		return entries[i].EntryID > entries[j].EntryID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (f *fakeStore) PutSearch(ctx context.Context, entry *model.SearchEntry) error {
	if f.putSearchErr != nil {
		return f.putSearchErr
	}
	copied := *entry
	f.searches[entry.UserID] = append(f.searches[entry.UserID], &copied)
	return nil
}

func (f *fakeStore) Ping(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                   { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// authedRequest builds a request carrying a verified identity, the way
// the identity middleware would.
func authedRequest(method, target, body, userID, email string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	id := &identity.Identity{UserID: userID, Email: email}
	return req.WithContext(identity.WithIdentity(req.Context(), id))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestProfileHandler_Get_Unauthenticated(t *testing.T) {
	h := NewProfileHandler(newFakeStore(), testLogger(), metrics.NewNoop())

	req := authedRequest(http.MethodGet, "/api/v1/profile", "", "", "")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Unauthorized" {
		t.Errorf("unexpected error message: %v", body["error"])
	}
}

func TestProfileHandler_Get_Miss(t *testing.T) {
	h := NewProfileHandler(newFakeStore(), testLogger(), metrics.NewNoop())

	req := authedRequest(http.MethodGet, "/api/v1/profile", "", "u1", "u1@example.com")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["userId"] != "u1" || body["email"] != "u1@example.com" {
		t.Errorf("unexpected identity fields: %v", body)
	}
	if body["name"] != "" || body["avatarUrl"] != "" {
		t.Errorf("expected empty profile fields: %v", body)
	}
	if body["onboardingComplete"] != false || body["nameProvided"] != false || body["avatarUploaded"] != false {
		t.Errorf("expected all derived flags false: %v", body)
	}
	if body["createdAt"] != "" || body["updatedAt"] != "" {
		t.Errorf("expected empty timestamps: %v", body)
	}
}

func TestProfileHandler_Get_Hit(t *testing.T) {
	fs := newFakeStore()
	fs.profiles["u1"] = &model.Profile{
		UserID:    "u1",
		Email:     "u1@example.com",
		Name:      "Ada",
		AvatarURL: "https://example.com/a.jpg",
		CreatedAt: "2023-01-01T00:00:00Z",
		UpdatedAt: "2023-01-02T00:00:00Z",
	}
	h := NewProfileHandler(fs, testLogger(), metrics.NewNoop())

	req := authedRequest(http.MethodGet, "/api/v1/profile", "", "u1", "u1@example.com")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["name"] != "Ada" {
		t.Errorf("unexpected name: %v", body["name"])
	}
	if body["nameProvided"] != true || body["avatarUploaded"] != true || body["onboardingComplete"] != true {
		t.Errorf("unexpected derived flags: %v", body)
	}
}

func TestProfileHandler_Get_StoreError(t *testing.T) {
	fs := newFakeStore()
	fs.getProfileErr = errors.New("connection refused")
	h := NewProfileHandler(fs, testLogger(), metrics.NewNoop())

	req := authedRequest(http.MethodGet, "/api/v1/profile", "", "u1", "u1@example.com")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Failed to retrieve user profile" {
		t.Errorf("unexpected error message: %v", body["error"])
	}
}

func TestProfileHandler_Put_NewUser(t *testing.T) {
	fs := newFakeStore()
	h := NewProfileHandler(fs, testLogger(), metrics.NewNoop())

	req := authedRequest(http.MethodPut, "/api/v1/profile", `{"name": "Ada"}`, "u1", "u1@example.com")
	rec := httptest.NewRecorder()

	h.Put(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["name"] != "Ada" {
		t.Errorf("unexpected name: %v", body["name"])
	}
	if body["avatarUrl"] != "" {
		t.Errorf("expected empty avatarUrl, got %v", body["avatarUrl"])
	}
	if body["onboardingComplete"] != true {
		t.Errorf("expected onboardingComplete true: %v", body)
	}
	if body["createdAt"] == "" || body["createdAt"] != body["updatedAt"] {
		t.Errorf("expected createdAt == updatedAt on first write: %v", body)
	}

	stored := fs.profiles["u1"]
	if stored == nil || stored.Name != "Ada" || stored.Email != "u1@example.com" {
		t.Errorf("unexpected stored record: %+v", stored)
	}
}

func TestProfileHandler_Put_PreservesOmittedFields(t *testing.T) {
	fs := newFakeStore()
	fs.profiles["u1"] = &model.Profile{
		UserID:    "u1",
		Email:     "u1@example.com",
		Name:      "Old Name",
		AvatarURL: "https://example.com/old.jpg",
		CreatedAt: "2023-01-01T00:00:00Z",
		UpdatedAt: "2023-01-01T00:00:00Z",
	}
	h := NewProfileHandler(fs, testLogger(), metrics.NewNoop())

	req := authedRequest(http.MethodPut, "/api/v1/profile", `{"name": "Updated Name"}`, "u1", "u1@example.com")
	rec := httptest.NewRecorder()

	h.Put(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["name"] != "Updated Name" {
		t.Errorf("unexpected name: %v", body["name"])
	}
	if body["avatarUrl"] != "https://example.com/old.jpg" {
		t.Errorf("expected avatarUrl preserved, got %v", body["avatarUrl"])
	}
	if body["createdAt"] != "2023-01-01T00:00:00Z" {
		t.Errorf("expected createdAt preserved, got %v", body["createdAt"])
	}
}

func TestProfileHandler_Put_EmptyStringClears(t *testing.T) {
	fs := newFakeStore()
	fs.profiles["u1"] = &model.Profile{
		UserID:    "u1",
		Email:     "u1@example.com",
		Name:      "Ada",
		AvatarURL: "https://example.com/a.jpg",
		CreatedAt: "2023-01-01T00:00:00Z",
		UpdatedAt: "2023-01-01T00:00:00Z",
	}
	h := NewProfileHandler(fs, testLogger(), metrics.NewNoop())

	req := authedRequest(http.MethodPut, "/api/v1/profile", `{"name": ""}`, "u1", "u1@example.com")
	rec := httptest.NewRecorder()

	h.Put(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["name"] != "" {
		t.Errorf("expected name cleared, got %v", body["name"])
	}
	if body["onboardingComplete"] != false {
		t.Errorf("expected onboardingComplete false after clearing name: %v", body)
	}
	if body["avatarUrl"] != "https://example.com/a.jpg" {
		t.Errorf("expected avatarUrl preserved, got %v", body["avatarUrl"])
	}
}

func TestProfileHandler_Put_CreatedAtImmutable(t *testing.T) {
	fs := newFakeStore()
	h := NewProfileHandler(fs, testLogger(), metrics.NewNoop())

	first := httptest.NewRecorder()
	h.Put(first, authedRequest(http.MethodPut, "/api/v1/profile", `{"name": "First"}`, "u1", "u1@example.com"))
	createdAt := decodeBody(t, first)["createdAt"]

	second := httptest.NewRecorder()
	h.Put(second, authedRequest(http.MethodPut, "/api/v1/profile", `{"name": "Second"}`, "u1", "u1@example.com"))

	body := decodeBody(t, second)
	if body["createdAt"] != createdAt {
		t.Errorf("expected createdAt %v preserved, got %v", createdAt, body["createdAt"])
	}
}

func TestProfileHandler_Put_InvalidJSON(t *testing.T) {
	h := NewProfileHandler(newFakeStore(), testLogger(), metrics.NewNoop())

	req := authedRequest(http.MethodPut, "/api/v1/profile", "invalid json{", "u1", "u1@example.com")
	rec := httptest.NewRecorder()

	h.Put(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Invalid JSON in request body" {
		t.Errorf("unexpected error message: %v", body["error"])
	}
}

func TestProfileHandler_Put_ValidationFailure(t *testing.T) {
	h := NewProfileHandler(newFakeStore(), testLogger(), metrics.NewNoop())

	body := `{"name": "` + strings.Repeat("a", 101) + `", "avatarUrl": "not-a-url"}`
	req := authedRequest(http.MethodPut, "/api/v1/profile", body, "u1", "u1@example.com")
	rec := httptest.NewRecorder()

	h.Put(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	resp := decodeBody(t, rec)
	if resp["error"] != "Validation failed" {
		t.Errorf("unexpected error message: %v", resp["error"])
	}
	details, ok := resp["details"].([]any)
	if !ok || len(details) != 2 {
		t.Fatalf("expected both failures reported, got %v", resp["details"])
	}
}

func TestProfileHandler_Put_StoreError(t *testing.T) {
	fs := newFakeStore()
	fs.putProfileErr = errors.New("connection refused")
	h := NewProfileHandler(fs, testLogger(), metrics.NewNoop())

	req := authedRequest(http.MethodPut, "/api/v1/profile", `{"name": "Ada"}`, "u1", "u1@example.com")
	rec := httptest.NewRecorder()

	h.Put(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Failed to update user profile" {
		t.Errorf("unexpected error message: %v", body["error"])
	}
}

func TestProfileHandler_MethodNotAllowed(t *testing.T) {
	h := NewProfileHandler(newFakeStore(), testLogger(), metrics.NewNoop())

	req := authedRequest(http.MethodDelete, "/api/v1/profile", "", "u1", "u1@example.com")
	rec := httptest.NewRecorder()

	h.MethodNotAllowed(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Method not allowed" {
		t.Errorf("unexpected error message: %v", body["error"])
	}
}

func TestProfileHandler_ResponseHeaders(t *testing.T) {
	h := NewProfileHandler(newFakeStore(), testLogger(), metrics.NewNoop())

	req := authedRequest(http.MethodGet, "/api/v1/profile", "", "u1", "u1@example.com")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard allow-origin, got %s", got)
	}
}
