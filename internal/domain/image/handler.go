package image

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fotolume/fotolume-api/internal/pkg/response"
	"github.com/fotolume/fotolume-api/internal/pkg/validator"
)

// Handler handles admin image HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates a new image handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Ingest handles POST /api/admin/galleries/{id}/images
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	galleryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid gallery ID")
		return
	}

	// Multipart header; per-file size limits are enforced by the service.
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		response.BadRequest(w, "No files provided")
		return
	}

	files := make([]IngestFile, 0, len(headers))
	opened := make([]interface{ Close() error }, 0, len(headers))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for _, hdr := range headers {
		f, err := hdr.Open()
		if err != nil {
			response.InternalError(w)
			return
		}
		opened = append(opened, f)
		files = append(files, IngestFile{
			Name:        hdr.Filename,
			ContentType: hdr.Header.Get("Content-Type"),
			Size:        hdr.Size,
			Reader:      f,
		})
	}

	result, err := h.service.Ingest(r.Context(), galleryID, files)
	if err != nil {
		if errors.Is(err, ErrGalleryNotFound) {
			response.Error(w, http.StatusNotFound, "GALLERY_NOT_FOUND", "Gallery not found")
			return
		}
		log.Error().Err(err).Msg("ingestion failed")
		response.InternalError(w)
		return
	}

	created := make([]*Response, len(result.Created))
	for i, img := range result.Created {
		created[i] = h.service.ToResponse(img)
	}

	response.Created(w, map[string]interface{}{
		"created":  created,
		"failures": result.Failures,
	})
}

// Reorder handles PATCH /api/admin/galleries/{id}/images/reorder
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	galleryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid gallery ID")
		return
	}

	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.service.Reorder(r.Context(), galleryID, req.Orders); err != nil {
		if errors.Is(err, ErrImageNotFound) {
			response.Error(w, http.StatusNotFound, "IMAGE_NOT_FOUND", "One or more images do not belong to this gallery")
			return
		}
		log.Error().Err(err).Msg("reorder failed")
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}

// SetVisibility handles PATCH /api/admin/galleries/{id}/images/visibility
func (h *Handler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	galleryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid gallery ID")
		return
	}

	var req VisibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	updated, err := h.service.SetVisibility(r.Context(), galleryID, req.ImageIDs, req.IsPublic)
	if err != nil {
		log.Error().Err(err).Msg("visibility update failed")
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]int{"updated": updated})
}

// Delete handles DELETE /api/admin/galleries/{id}/images/{imageID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	galleryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid gallery ID")
		return
	}
	imageID, err := uuid.Parse(chi.URLParam(r, "imageID"))
	if err != nil {
		response.BadRequest(w, "Invalid image ID")
		return
	}

	if err := h.service.Delete(r.Context(), galleryID, imageID); err != nil {
		if errors.Is(err, ErrImageNotFound) {
			response.Error(w, http.StatusNotFound, "IMAGE_NOT_FOUND", "Image not found")
			return
		}
		log.Error().Err(err).Msg("image delete failed")
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}
