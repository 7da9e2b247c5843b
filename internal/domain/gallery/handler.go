package gallery

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fotolume/fotolume-api/internal/middleware"
	"github.com/fotolume/fotolume-api/internal/pkg/response"
	"github.com/fotolume/fotolume-api/internal/pkg/validator"
)

// Handler handles admin gallery HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates a new gallery handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /api/admin/galleries
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	g, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			response.Error(w, http.StatusConflict, "SLUG_TAKEN", "A gallery with this slug already exists")
			return
		}
		log.Error().Err(err).Msg("gallery create failed")
		response.InternalError(w)
		return
	}

	response.Created(w, g)
}

// List handles GET /api/admin/galleries
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	galleries, err := h.service.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("gallery list failed")
		response.InternalError(w)
		return
	}
	response.OK(w, galleries)
}

// Get handles GET /api/admin/galleries/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid gallery ID")
		return
	}

	detail, err := h.service.GetDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrGalleryNotFound) {
			response.Error(w, http.StatusNotFound, "GALLERY_NOT_FOUND", "Gallery not found")
			return
		}
		log.Error().Err(err).Msg("gallery detail failed")
		response.InternalError(w)
		return
	}

	response.OK(w, detail)
}

// Update handles PATCH /api/admin/galleries/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid gallery ID")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	g, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrGalleryNotFound) {
			response.Error(w, http.StatusNotFound, "GALLERY_NOT_FOUND", "Gallery not found")
			return
		}
		log.Error().Err(err).Msg("gallery update failed")
		response.InternalError(w)
		return
	}

	response.OK(w, g)
}

// Delete handles DELETE /api/admin/galleries/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid gallery ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrGalleryNotFound) {
			response.Error(w, http.StatusNotFound, "GALLERY_NOT_FOUND", "Gallery not found")
			return
		}
		log.Error().Err(err).Msg("gallery delete failed")
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}
