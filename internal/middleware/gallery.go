package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/fotolume/fotolume-api/internal/pkg/response"
	"github.com/fotolume/fotolume-api/internal/pkg/token"
)

const (
	galleryIDKey   contextKey = "gallery_id"
	gallerySlugKey contextKey = "gallery_slug"
)

// GalleryState is what the gate reports about a gallery right now. A token
// is only proof of a past password check; the gallery may have been
// deactivated or may have expired since it was issued.
type GalleryState struct {
	ID      uuid.UUID
	Active  bool
	Expired bool
}

// GalleryGate checks the current state of a gallery by id
type GalleryGate interface {
	GalleryState(ctx context.Context, id uuid.UUID) (*GalleryState, error)
}

// GalleryAuth requires a valid gallery token and re-checks the gallery's
// state on every request. Missing or deactivated galleries report 404 so
// their existence is not leaked; expired ones report 410.
func GalleryAuth(tokens *token.Service, gate GalleryGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				response.Unauthorized(w, "Gallery token required")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := tokens.ValidateGalleryToken(parts[1])
			if err != nil {
				response.Unauthorized(w, "Invalid or expired gallery token")
				return
			}

			state, err := gate.GalleryState(r.Context(), claims.GalleryID)
			if err != nil {
				response.InternalError(w)
				return
			}
			if state == nil || !state.Active {
				response.Error(w, http.StatusNotFound, "GALLERY_NOT_FOUND", "Gallery not found")
				return
			}
			if state.Expired {
				response.Gone(w, "GALLERY_EXPIRED", "This gallery is no longer available")
				return
			}

			ctx := context.WithValue(r.Context(), galleryIDKey, claims.GalleryID)
			ctx = context.WithValue(ctx, gallerySlugKey, claims.Slug)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetGalleryID extracts the verified gallery id from context
func GetGalleryID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(galleryIDKey).(uuid.UUID)
	return id, ok
}

// GetGallerySlug extracts the verified gallery slug from context
func GetGallerySlug(ctx context.Context) (string, bool) {
	slug, ok := ctx.Value(gallerySlugKey).(string)
	return slug, ok
}
