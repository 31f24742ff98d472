package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mapme/mapme/internal/identity"
)

func TestIdentity_ExtractsTrustedHeaders(t *testing.T) {
	var got *identity.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = identity.FromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.Header.Set(UserIDHeader, "u1")
	req.Header.Set(EmailHeader, "u1@example.com")
	req.Header.Set(NameHeader, "Ada")

	Identity()(next).ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected identity in context")
	}
	if got.UserID != "u1" || got.Email != "u1@example.com" || got.Name != "Ada" {
		t.Errorf("unexpected identity: %+v", got)
	}
	if !got.IsAuthenticated() {
		t.Error("expected identity to be authenticated")
	}
}

func TestIdentity_MissingHeaders(t *testing.T) {
	var got *identity.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = identity.FromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)

	Identity()(next).ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected identity in context even when unauthenticated")
	}
	if got.IsAuthenticated() {
		t.Error("expected unauthenticated identity")
	}
}

func TestCORS_Preflight(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not run on preflight")
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/searches", nil)
	rec := httptest.NewRecorder()

	CORS()(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard allow-origin, got %s", got)
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("expected allowed methods header")
	}
}

func TestCORS_PassThrough(t *testing.T) {
	ran := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ran = true
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/searches", nil)
	rec := httptest.NewRecorder()

	CORS()(next).ServeHTTP(rec, req)

	if !ran {
		t.Fatal("expected next handler to run")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard allow-origin, got %s", got)
	}
}
