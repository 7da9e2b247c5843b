package download

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fotolume/fotolume-api/internal/middleware"
	"github.com/fotolume/fotolume-api/internal/pkg/response"
)

// Handler handles download HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates a new download handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Download handles GET /api/v1/galleries/{slug}/download/{imageID}
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	galleryID, ok := middleware.GetGalleryID(r.Context())
	if !ok {
		response.Unauthorized(w, "Gallery token required")
		return
	}

	imageID, err := uuid.Parse(chi.URLParam(r, "imageID"))
	if err != nil {
		response.BadRequest(w, "Invalid image ID")
		return
	}

	var userAgent *string
	if ua := r.UserAgent(); ua != "" {
		userAgent = &ua
	}

	asset, err := h.service.Download(r.Context(), galleryID, imageID, middleware.ClientIP(r), userAgent)
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer asset.Reader.Close()

	h.stream(w, asset)
}

// Preview handles GET /api/admin/galleries/{id}/images/{imageID}/download
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
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

	asset, err := h.service.Preview(r.Context(), galleryID, imageID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer asset.Reader.Close()

	h.stream(w, asset)
}

func (h *Handler) stream(w http.ResponseWriter, asset *Asset) {
	w.Header().Set("Content-Type", asset.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", asset.FileName))
	if asset.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(asset.Size, 10))
	}

	if _, err := io.Copy(w, asset.Reader); err != nil {
		log.Warn().Err(err).Msg("download stream interrupted")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrImageNotFound):
		response.Error(w, http.StatusNotFound, "IMAGE_NOT_FOUND", "Image not found")
	case errors.Is(err, ErrFileNotFound):
		response.Error(w, http.StatusNotFound, "FILE_NOT_FOUND", "The image file is no longer available")
	case errors.Is(err, ErrLimitReached):
		response.TooManyRequests(w, "DOWNLOAD_LIMIT_REACHED",
			"This gallery's download limit has been reached. Contact your photographer to raise it.")
	default:
		log.Error().Err(err).Msg("download failed")
		response.InternalError(w)
	}
}
