package gallery

import (
	"time"

	"github.com/google/uuid"
)

// Gallery is a password-protected client delivery gallery
type Gallery struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	UserID        uuid.UUID  `db:"user_id" json:"user_id"`
	Title         string     `db:"title" json:"title"`
	Slug          string     `db:"slug" json:"slug"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	ClientName    string     `db:"client_name" json:"client_name"`
	ClientEmail   string     `db:"client_email" json:"client_email"`
	EventType     string     `db:"event_type" json:"event_type"`
	EventDate     *time.Time `db:"event_date" json:"event_date,omitempty"`
	IsActive      bool       `db:"is_active" json:"is_active"`
	ExpiryDate    *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	DownloadLimit int        `db:"download_limit" json:"download_limit"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// IsExpired reports whether the gallery's expiry date has passed
func (g *Gallery) IsExpired(now time.Time) bool {
	return g.ExpiryDate != nil && now.After(*g.ExpiryDate)
}

// AccessLog records one successful password verification
type AccessLog struct {
	ID         uuid.UUID `db:"id" json:"id"`
	GalleryID  uuid.UUID `db:"gallery_id" json:"gallery_id"`
	ClientIP   string    `db:"client_ip" json:"client_ip"`
	UserAgent  *string   `db:"user_agent" json:"user_agent,omitempty"`
	AccessedAt time.Time `db:"accessed_at" json:"accessed_at"`
}

// Stats aggregates per-gallery activity for the admin detail view
type Stats struct {
	ImageCount    int `db:"image_count" json:"image_count"`
	DownloadsUsed int `db:"downloads_used" json:"downloads_used"`
	FavoriteCount int `db:"favorite_count" json:"favorite_count"`
	AccessCount   int `db:"access_count" json:"access_count"`
}
