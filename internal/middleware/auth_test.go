package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fotolume/fotolume-api/internal/pkg/token"
)

func newTestTokens() *token.Service {
	return token.NewService("test-secret", 15*time.Minute, time.Hour, 24*time.Hour)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAdminAuthRejectsMissingHeader(t *testing.T) {
	h := AdminAuth(newTestTokens())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/galleries", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminAuthRejectsGalleryToken(t *testing.T) {
	tokens := newTestTokens()
	galleryTok, _, err := tokens.GenerateGalleryToken(uuid.New(), "wedding-smith-2024")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	h := AdminAuth(tokens)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/admin/galleries", nil)
	req.Header.Set("Authorization", "Bearer "+galleryTok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("gallery token must not open admin routes, got %d", rec.Code)
	}
}

func TestAdminAuthAcceptsValidToken(t *testing.T) {
	tokens := newTestTokens()
	userID := uuid.New()
	tok, err := tokens.GenerateAdminAccess(userID, "admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var gotID uuid.UUID
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	h := AdminAuth(tokens)(inner)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/galleries", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotID != userID {
		t.Fatalf("expected user id %s in context, got %s", userID, gotID)
	}
}

type fakeGate struct {
	state *GalleryState
	err   error
}

func (f *fakeGate) GalleryState(ctx context.Context, id uuid.UUID) (*GalleryState, error) {
	return f.state, f.err
}

func galleryRequest(tok string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/galleries/wedding-smith-2024", nil)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req
}

func TestGalleryAuthRejectsMissingToken(t *testing.T) {
	h := GalleryAuth(newTestTokens(), &fakeGate{})(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, galleryRequest(""))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGalleryAuthRejectsMalformedHeader(t *testing.T) {
	tokens := newTestTokens()
	tok, _, _ := tokens.GenerateGalleryToken(uuid.New(), "wedding-smith-2024")

	h := GalleryAuth(tokens, &fakeGate{})(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/galleries/wedding-smith-2024", nil)
	req.Header.Set("Authorization", tok) // missing Bearer prefix
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGalleryAuthHidesDeactivatedGallery(t *testing.T) {
	tokens := newTestTokens()
	id := uuid.New()
	tok, _, _ := tokens.GenerateGalleryToken(id, "wedding-smith-2024")

	h := GalleryAuth(tokens, &fakeGate{state: &GalleryState{ID: id, Active: false}})(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, galleryRequest(tok))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("deactivated gallery should 404, got %d", rec.Code)
	}
}

func TestGalleryAuthReportsExpiredGallery(t *testing.T) {
	tokens := newTestTokens()
	id := uuid.New()
	tok, _, _ := tokens.GenerateGalleryToken(id, "wedding-smith-2024")

	h := GalleryAuth(tokens, &fakeGate{state: &GalleryState{ID: id, Active: true, Expired: true}})(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, galleryRequest(tok))

	if rec.Code != http.StatusGone {
		t.Fatalf("expired gallery should 410, got %d", rec.Code)
	}

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "GALLERY_EXPIRED" {
		t.Fatalf("expected GALLERY_EXPIRED, got %q", body.Error.Code)
	}
}

func TestGalleryAuthPassesVerifiedGallery(t *testing.T) {
	tokens := newTestTokens()
	id := uuid.New()
	tok, _, _ := tokens.GenerateGalleryToken(id, "wedding-smith-2024")

	var gotID uuid.UUID
	var gotSlug string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetGalleryID(r.Context())
		gotSlug, _ = GetGallerySlug(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	h := GalleryAuth(tokens, &fakeGate{state: &GalleryState{ID: id, Active: true}})(inner)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, galleryRequest(tok))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotID != id || gotSlug != "wedding-smith-2024" {
		t.Fatalf("context not populated: id=%s slug=%q", gotID, gotSlug)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xrip       string
		want       string
	}{
		{"remote addr only", "203.0.113.7:51234", "", "", "203.0.113.7"},
		{"forwarded for wins", "10.0.0.1:80", "198.51.100.4, 10.0.0.1", "", "198.51.100.4"},
		{"real ip fallback", "10.0.0.1:80", "", "198.51.100.9", "198.51.100.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xrip != "" {
				req.Header.Set("X-Real-IP", tt.xrip)
			}
			if got := ClientIP(req); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
