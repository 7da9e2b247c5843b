package image

import (
	"time"

	"github.com/google/uuid"
)

// Image is one processed photo belonging to a gallery. FilePath and
// ThumbnailPath are storage keys, not URLs.
type Image struct {
	ID            uuid.UUID `db:"id" json:"id"`
	GalleryID     uuid.UUID `db:"gallery_id" json:"gallery_id"`
	FileName      string    `db:"file_name" json:"file_name"`
	OriginalName  string    `db:"original_name" json:"original_name"`
	FilePath      string    `db:"file_path" json:"-"`
	ThumbnailPath *string   `db:"thumbnail_path" json:"-"`
	FileSize      int64     `db:"file_size" json:"file_size"`
	Width         int       `db:"width" json:"width"`
	Height        int       `db:"height" json:"height"`
	SortOrder     int       `db:"sort_order" json:"sort_order"`
	IsPublic      bool      `db:"is_public" json:"is_public"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
