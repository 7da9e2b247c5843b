package gallery

import (
	"time"

	"github.com/google/uuid"

	"github.com/fotolume/fotolume-api/internal/domain/image"
)

// CreateRequest is the admin gallery creation payload
type CreateRequest struct {
	Title         string     `json:"title" validate:"required,max=200"`
	Slug          string     `json:"slug" validate:"required,max=100,slug"`
	Password      string     `json:"password" validate:"required,min=6"`
	ClientName    string     `json:"client_name" validate:"max=200"`
	ClientEmail   string     `json:"client_email" validate:"omitempty,email"`
	EventType     string     `json:"event_type" validate:"event_type"`
	EventDate     *time.Time `json:"event_date,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	DownloadLimit *int       `json:"download_limit,omitempty" validate:"omitempty,gte=0"`
}

// UpdateRequest is the admin gallery update payload. Nil fields are left
// unchanged; a new password replaces the old hash.
type UpdateRequest struct {
	Title         *string    `json:"title,omitempty" validate:"omitempty,max=200"`
	Password      *string    `json:"password,omitempty" validate:"omitempty,min=6"`
	ClientName    *string    `json:"client_name,omitempty" validate:"omitempty,max=200"`
	ClientEmail   *string    `json:"client_email,omitempty" validate:"omitempty,email"`
	EventType     *string    `json:"event_type,omitempty" validate:"omitempty,event_type"`
	EventDate     *time.Time `json:"event_date,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	IsActive      *bool      `json:"is_active,omitempty"`
	DownloadLimit *int       `json:"download_limit,omitempty" validate:"omitempty,gte=0"`
}

// VerifyRequest is the client's slug+password submission
type VerifyRequest struct {
	Slug     string `json:"slug" validate:"required,slug"`
	Password string `json:"password" validate:"required"`
}

// Descriptor is the gallery as clients see it. It never carries the
// password hash or the client's email.
type Descriptor struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	ClientName    string     `json:"client_name"`
	EventType     string     `json:"event_type"`
	EventDate     *time.Time `json:"event_date,omitempty"`
	DownloadLimit int        `json:"download_limit"`
}

// VerifyResponse is returned after a successful password check
type VerifyResponse struct {
	Gallery     Descriptor `json:"gallery"`
	AccessToken string     `json:"access_token"`
	ExpiresAt   time.Time  `json:"expires_at"`
}

// ClientImage is an image in the client view with the caller's favorite state
type ClientImage struct {
	*image.Response
	IsFavorite bool `json:"is_favorite"`
}

// ClientView is the full gallery as served to a verified client
type ClientView struct {
	Gallery       Descriptor    `json:"gallery"`
	Images        []ClientImage `json:"images"`
	DownloadsUsed int           `json:"downloads_used"`
	DownloadLimit int           `json:"download_limit"`
}

// AdminDetail is the gallery with stats and all images for the admin UI
type AdminDetail struct {
	*Gallery
	Stats  *Stats            `json:"stats"`
	Images []*image.Response `json:"images"`
}

func toDescriptor(g *Gallery) Descriptor {
	return Descriptor{
		ID:            g.ID,
		Title:         g.Title,
		Slug:          g.Slug,
		ClientName:    g.ClientName,
		EventType:     g.EventType,
		EventDate:     g.EventDate,
		DownloadLimit: g.DownloadLimit,
	}
}
