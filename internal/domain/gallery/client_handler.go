package gallery

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fotolume/fotolume-api/internal/middleware"
	"github.com/fotolume/fotolume-api/internal/pkg/response"
	"github.com/fotolume/fotolume-api/internal/pkg/validator"
)

// ClientHandler handles the public/client-facing gallery endpoints
type ClientHandler struct {
	service *Service
}

// NewClientHandler creates a new client gallery handler
func NewClientHandler(service *Service) *ClientHandler {
	return &ClientHandler{service: service}
}

// Verify handles POST /api/v1/galleries/verify
func (h *ClientHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	var userAgent *string
	if ua := r.UserAgent(); ua != "" {
		userAgent = &ua
	}

	result, err := h.service.VerifyAccess(r.Context(), req, middleware.ClientIP(r), userAgent)
	if err != nil {
		switch {
		case errors.Is(err, ErrGalleryNotFound):
			response.Error(w, http.StatusNotFound, "GALLERY_NOT_FOUND", "Gallery not found")
		case errors.Is(err, ErrGalleryExpired):
			response.Gone(w, "GALLERY_EXPIRED", "This gallery is no longer available")
		case errors.Is(err, ErrInvalidPassword):
			response.Error(w, http.StatusUnauthorized, "INVALID_PASSWORD", "Incorrect password")
		case errors.Is(err, ErrTooManyAttempts):
			response.TooManyRequests(w, "TOO_MANY_ATTEMPTS", "Too many attempts. Try again later.")
		default:
			log.Error().Err(err).Msg("gallery verification failed")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, result)
}

// View handles GET /api/v1/galleries/{slug}
func (h *ClientHandler) View(w http.ResponseWriter, r *http.Request) {
	galleryID, ok := middleware.GetGalleryID(r.Context())
	if !ok {
		response.Unauthorized(w, "Gallery token required")
		return
	}

	view, err := h.service.ClientView(r.Context(), galleryID, middleware.ClientIP(r))
	if err != nil {
		if errors.Is(err, ErrGalleryNotFound) {
			response.Error(w, http.StatusNotFound, "GALLERY_NOT_FOUND", "Gallery not found")
			return
		}
		log.Error().Err(err).Msg("gallery view failed")
		response.InternalError(w)
		return
	}

	response.OK(w, view)
}
