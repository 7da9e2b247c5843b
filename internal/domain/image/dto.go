package image

import (
	"io"

	"github.com/google/uuid"
)

// IngestFile is one file submitted for ingestion. Handlers adapt multipart
// parts into this so the service stays independent of HTTP.
type IngestFile struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// IngestFailure reports why one file was rejected
type IngestFailure struct {
	FileName string `json:"file_name"`
	Code     string `json:"code"`
	Error    string `json:"error"`
}

// IngestResult lists what was created and what failed. A batch with
// failures still commits its successes.
type IngestResult struct {
	Created  []*Image        `json:"created"`
	Failures []IngestFailure `json:"failures"`
}

// ImageOrder is one entry of a reorder request
type ImageOrder struct {
	ImageID   uuid.UUID `json:"image_id" validate:"required"`
	SortOrder int       `json:"sort_order" validate:"gte=0"`
}

// ReorderRequest rewrites sort positions for a gallery's images
type ReorderRequest struct {
	Orders []ImageOrder `json:"orders" validate:"required,min=1,dive"`
}

// VisibilityRequest toggles client visibility for a set of images
type VisibilityRequest struct {
	ImageIDs []uuid.UUID `json:"image_ids" validate:"required,min=1"`
	IsPublic bool        `json:"is_public"`
}

// Response is an image with resolved URLs for API consumers
type Response struct {
	*Image
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}
