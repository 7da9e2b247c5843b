package favorite

import (
	"time"

	"github.com/google/uuid"
)

// Favorite marks one image as favorited by one client IP. Clients have no
// accounts, so the IP is the identity; (client_ip, image_id) is unique.
type Favorite struct {
	ID        uuid.UUID `db:"id" json:"id"`
	GalleryID uuid.UUID `db:"gallery_id" json:"gallery_id"`
	ImageID   uuid.UUID `db:"image_id" json:"image_id"`
	ClientIP  string    `db:"client_ip" json:"client_ip"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
