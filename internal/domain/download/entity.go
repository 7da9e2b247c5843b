package download

import (
	"time"

	"github.com/google/uuid"
)

// Download is one successful client download. Rows are append-only; the
// gallery-wide quota is the row count against the gallery's limit.
type Download struct {
	ID           uuid.UUID `db:"id" json:"id"`
	GalleryID    uuid.UUID `db:"gallery_id" json:"gallery_id"`
	ImageID      uuid.UUID `db:"image_id" json:"image_id"`
	ClientIP     string    `db:"client_ip" json:"client_ip"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	DownloadedAt time.Time `db:"downloaded_at" json:"downloaded_at"`
}
