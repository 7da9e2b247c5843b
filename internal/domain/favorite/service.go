package favorite

import (
	"context"

	"github.com/google/uuid"

	"github.com/fotolume/fotolume-api/internal/domain/image"
)

// Notifier pushes favorite events to the admin activity feed
type Notifier interface {
	NotifyFavorite(galleryID, imageID uuid.UUID, clientIP string, isFavorite bool)
}

// Service handles favorite toggling
type Service struct {
	repo     Repository
	images   image.Repository
	notifier Notifier
}

// NewService creates a new favorite service
func NewService(repo Repository, images image.Repository, notifier Notifier) *Service {
	return &Service{repo: repo, images: images, notifier: notifier}
}

// Toggle flips the favorite state of a public image for a client IP.
// Images outside the gallery or hidden from clients report not found.
func (s *Service) Toggle(ctx context.Context, galleryID, imageID uuid.UUID, clientIP string) (bool, error) {
	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return false, err
	}
	if img == nil || img.GalleryID != galleryID || !img.IsPublic {
		return false, ErrImageNotFound
	}

	isFavorite, err := s.repo.Toggle(ctx, galleryID, imageID, clientIP)
	if err != nil {
		return false, err
	}

	if s.notifier != nil {
		s.notifier.NotifyFavorite(galleryID, imageID, clientIP, isFavorite)
	}
	return isFavorite, nil
}
