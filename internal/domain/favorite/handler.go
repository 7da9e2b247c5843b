package favorite

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fotolume/fotolume-api/internal/middleware"
	"github.com/fotolume/fotolume-api/internal/pkg/response"
)

// Handler handles favorite HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates a new favorite handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type toggleRequest struct {
	ImageID uuid.UUID `json:"image_id"`
}

// Toggle handles POST /api/v1/galleries/{slug}/favorite
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	galleryID, ok := middleware.GetGalleryID(r.Context())
	if !ok {
		response.Unauthorized(w, "Gallery token required")
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ImageID == uuid.Nil {
		response.BadRequest(w, "image_id is required")
		return
	}

	isFavorite, err := h.service.Toggle(r.Context(), galleryID, req.ImageID, middleware.ClientIP(r))
	if err != nil {
		if errors.Is(err, ErrImageNotFound) {
			response.Error(w, http.StatusNotFound, "IMAGE_NOT_FOUND", "Image not found")
			return
		}
		log.Error().Err(err).Msg("favorite toggle failed")
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]bool{"is_favorite": isFavorite})
}
