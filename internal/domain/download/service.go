package download

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/fotolume/fotolume-api/internal/domain/image"
	"github.com/fotolume/fotolume-api/internal/pkg/storage"
)

// Notifier pushes download events to the admin activity feed
type Notifier interface {
	NotifyDownload(galleryID, imageID uuid.UUID, clientIP string)
}

// Asset is an opened image file ready to stream to the client
type Asset struct {
	Reader      io.ReadCloser
	FileName    string
	ContentType string
	Size        int64
}

// Service handles client downloads and admin previews
type Service struct {
	repo     Repository
	images   image.Repository
	store    storage.Storage
	notifier Notifier
}

// NewService creates a new download service
func NewService(repo Repository, images image.Repository, store storage.Storage, notifier Notifier) *Service {
	return &Service{repo: repo, images: images, store: store, notifier: notifier}
}

// Download serves a client download. The stored file is opened before the
// quota transaction runs so a missing file never burns quota, and the quota
// row is only written once the bytes are ready to stream.
func (s *Service) Download(ctx context.Context, galleryID, imageID uuid.UUID, clientIP string, userAgent *string) (*Asset, error) {
	img, asset, err := s.open(ctx, galleryID, imageID, false)
	if err != nil {
		return nil, err
	}

	result, err := s.repo.RecordIfUnderLimit(ctx, galleryID, imageID, clientIP, userAgent)
	if err != nil {
		asset.Reader.Close()
		return nil, err
	}
	if !result.Allowed {
		asset.Reader.Close()
		return nil, ErrLimitReached
	}

	if s.notifier != nil {
		s.notifier.NotifyDownload(galleryID, img.ID, clientIP)
	}
	return asset, nil
}

// Preview serves an admin preview. It ignores the quota and records nothing,
// and can see images hidden from clients.
func (s *Service) Preview(ctx context.Context, galleryID, imageID uuid.UUID) (*Asset, error) {
	_, asset, err := s.open(ctx, galleryID, imageID, true)
	if err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *Service) open(ctx context.Context, galleryID, imageID uuid.UUID, includeHidden bool) (*image.Image, *Asset, error) {
	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return nil, nil, err
	}
	if img == nil || img.GalleryID != galleryID {
		return nil, nil, ErrImageNotFound
	}
	if !includeHidden && !img.IsPublic {
		return nil, nil, ErrImageNotFound
	}

	reader, err := s.store.Get(ctx, img.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, err
	}

	return img, &Asset{
		Reader:      reader,
		FileName:    img.OriginalName,
		ContentType: contentTypeFor(img.FileName),
		Size:        img.FileSize,
	}, nil
}

func contentTypeFor(fileName string) string {
	if len(fileName) > 4 && fileName[len(fileName)-4:] == ".png" {
		return "image/png"
	}
	return "image/jpeg"
}
