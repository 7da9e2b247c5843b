package image

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	imgproc "github.com/fotolume/fotolume-api/internal/pkg/imaging"
	"github.com/fotolume/fotolume-api/internal/pkg/storage"
)

// MaxFileSize is the per-file upload limit (10MB)
const MaxFileSize = 10 << 20

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// GalleryRef is the minimal gallery info ingestion needs
type GalleryRef struct {
	ID   uuid.UUID
	Slug string
}

// GalleryResolver looks up a gallery by id. Wired to the gallery
// repository in main.
type GalleryResolver interface {
	Resolve(ctx context.Context, id uuid.UUID) (*GalleryRef, error)
}

// Service handles image ingestion and management
type Service struct {
	repo      Repository
	galleries GalleryResolver
	processor *imgproc.Processor
	store     storage.Storage
}

// NewService creates a new image service
func NewService(repo Repository, galleries GalleryResolver, processor *imgproc.Processor, store storage.Storage) *Service {
	return &Service{repo: repo, galleries: galleries, processor: processor, store: store}
}

// Ingest processes a batch of uploaded files for a gallery. Each file is
// validated, resized, stored and recorded independently; one bad file never
// sinks the batch. The result lists every created image and every failure.
func (s *Service) Ingest(ctx context.Context, galleryID uuid.UUID, files []IngestFile) (*IngestResult, error) {
	ref, err := s.galleries.Resolve(ctx, galleryID)
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, ErrGalleryNotFound
	}

	maxOrder, err := s.repo.MaxSortOrder(ctx, galleryID)
	if err != nil {
		return nil, err
	}

	result := &IngestResult{
		Created:  []*Image{},
		Failures: []IngestFailure{},
	}

	nextOrder := maxOrder
	for _, f := range files {
		img, failure := s.ingestOne(ctx, ref, f, nextOrder+1)
		if failure != nil {
			result.Failures = append(result.Failures, *failure)
			continue
		}
		nextOrder++
		result.Created = append(result.Created, img)
	}

	return result, nil
}

func (s *Service) ingestOne(ctx context.Context, ref *GalleryRef, f IngestFile, sortOrder int) (*Image, *IngestFailure) {
	if f.Size > MaxFileSize {
		return nil, &IngestFailure{
			FileName: f.Name,
			Code:     "FILE_TOO_LARGE",
			Error:    fmt.Sprintf("file exceeds the %dMB limit", MaxFileSize>>20),
		}
	}
	if !allowedTypes[f.ContentType] {
		return nil, &IngestFailure{
			FileName: f.Name,
			Code:     "INVALID_FILE_TYPE",
			Error:    "only JPEG, PNG and WebP images are accepted",
		}
	}

	processed, err := s.processor.Process(f.Reader)
	if err != nil {
		log.Warn().Err(err).Str("file", f.Name).Msg("image decode failed")
		return nil, &IngestFailure{
			FileName: f.Name,
			Code:     "INVALID_FILE_TYPE",
			Error:    "file could not be decoded as an image",
		}
	}

	id := uuid.New()
	fileName := id.String() + processed.Extension
	fullKey := fmt.Sprintf("galleries/%s/%s", ref.Slug, fileName)
	thumbKey := fmt.Sprintf("galleries/%s/thumbnails/%s", ref.Slug, fileName)

	if err := s.store.Put(ctx, fullKey, bytes.NewReader(processed.Full), processed.ContentType); err != nil {
		log.Error().Err(err).Str("file", f.Name).Msg("failed to store image")
		return nil, &IngestFailure{FileName: f.Name, Code: "STORAGE_ERROR", Error: "failed to store image"}
	}
	if err := s.store.Put(ctx, thumbKey, bytes.NewReader(processed.Thumbnail), processed.ContentType); err != nil {
		s.store.Delete(ctx, fullKey)
		log.Error().Err(err).Str("file", f.Name).Msg("failed to store thumbnail")
		return nil, &IngestFailure{FileName: f.Name, Code: "STORAGE_ERROR", Error: "failed to store image"}
	}

	img := &Image{
		GalleryID:     ref.ID,
		FileName:      fileName,
		OriginalName:  f.Name,
		FilePath:      fullKey,
		ThumbnailPath: &thumbKey,
		FileSize:      int64(len(processed.Full)),
		Width:         processed.Width,
		Height:        processed.Height,
		SortOrder:     sortOrder,
		IsPublic:      true,
	}
	if err := s.repo.Create(ctx, img); err != nil {
		s.store.Delete(ctx, fullKey)
		s.store.Delete(ctx, thumbKey)
		log.Error().Err(err).Str("file", f.Name).Msg("failed to record image")
		return nil, &IngestFailure{FileName: f.Name, Code: "STORAGE_ERROR", Error: "failed to record image"}
	}

	return img, nil
}

// Reorder rewrites sort positions for a gallery's images
func (s *Service) Reorder(ctx context.Context, galleryID uuid.UUID, orders []ImageOrder) error {
	return s.repo.Reorder(ctx, galleryID, orders)
}

// SetVisibility toggles client visibility for a set of images
func (s *Service) SetVisibility(ctx context.Context, galleryID uuid.UUID, imageIDs []uuid.UUID, isPublic bool) (int, error) {
	return s.repo.SetVisibility(ctx, galleryID, imageIDs, isPublic)
}

// Delete removes an image's stored files and its record
func (s *Service) Delete(ctx context.Context, galleryID, imageID uuid.UUID) error {
	img, err := s.repo.GetByID(ctx, imageID)
	if err != nil {
		return err
	}
	if img == nil || img.GalleryID != galleryID {
		return ErrImageNotFound
	}

	if err := s.store.Delete(ctx, img.FilePath); err != nil {
		log.Warn().Err(err).Str("key", img.FilePath).Msg("failed to delete stored file")
	}
	if img.ThumbnailPath != nil {
		if err := s.store.Delete(ctx, *img.ThumbnailPath); err != nil {
			log.Warn().Err(err).Str("key", *img.ThumbnailPath).Msg("failed to delete thumbnail")
		}
	}

	return s.repo.Delete(ctx, imageID)
}

// ToResponse resolves storage URLs for an image
func (s *Service) ToResponse(img *Image) *Response {
	resp := &Response{Image: img, URL: s.store.GetURL(img.FilePath)}
	if img.ThumbnailPath != nil {
		resp.ThumbnailURL = s.store.GetURL(*img.ThumbnailPath)
	}
	return resp
}
