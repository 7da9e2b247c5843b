package gallery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fotolume/fotolume-api/internal/domain/download"
	"github.com/fotolume/fotolume-api/internal/domain/favorite"
	"github.com/fotolume/fotolume-api/internal/domain/image"
	"github.com/fotolume/fotolume-api/internal/pkg/password"
	"github.com/fotolume/fotolume-api/internal/pkg/ratelimit"
	"github.com/fotolume/fotolume-api/internal/pkg/storage"
	"github.com/fotolume/fotolume-api/internal/pkg/token"
)

// DefaultDownloadLimit applies when a gallery is created without one
const DefaultDownloadLimit = 50

// Notifier pushes gallery access events to the admin activity feed
type Notifier interface {
	NotifyAccess(galleryID uuid.UUID, slug, clientIP string)
}

// Service handles gallery management and client access verification
type Service struct {
	repo      Repository
	images    image.Repository
	imageSvc  *image.Service
	favorites favorite.Repository
	downloads download.Repository
	tokens    *token.Service
	limiter   *ratelimit.Limiter
	store     storage.Storage
	notifier  Notifier
}

// NewService creates a new gallery service
func NewService(
	repo Repository,
	images image.Repository,
	imageSvc *image.Service,
	favorites favorite.Repository,
	downloads download.Repository,
	tokens *token.Service,
	limiter *ratelimit.Limiter,
	store storage.Storage,
	notifier Notifier,
) *Service {
	return &Service{
		repo:      repo,
		images:    images,
		imageSvc:  imageSvc,
		favorites: favorites,
		downloads: downloads,
		tokens:    tokens,
		limiter:   limiter,
		store:     store,
		notifier:  notifier,
	}
}

// Create creates a gallery owned by the given admin
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req CreateRequest) (*Gallery, error) {
	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash gallery password: %w", err)
	}

	limit := DefaultDownloadLimit
	if req.DownloadLimit != nil {
		limit = *req.DownloadLimit
	}

	g := &Gallery{
		UserID:        userID,
		Title:         req.Title,
		Slug:          req.Slug,
		PasswordHash:  hash,
		ClientName:    req.ClientName,
		ClientEmail:   req.ClientEmail,
		EventType:     req.EventType,
		EventDate:     req.EventDate,
		IsActive:      true,
		ExpiryDate:    req.ExpiryDate,
		DownloadLimit: limit,
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Update applies a partial update to a gallery
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Gallery, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGalleryNotFound
	}

	if req.Title != nil {
		g.Title = *req.Title
	}
	if req.Password != nil {
		hash, err := password.Hash(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash gallery password: %w", err)
		}
		g.PasswordHash = hash
	}
	if req.ClientName != nil {
		g.ClientName = *req.ClientName
	}
	if req.ClientEmail != nil {
		g.ClientEmail = *req.ClientEmail
	}
	if req.EventType != nil {
		g.EventType = *req.EventType
	}
	if req.EventDate != nil {
		g.EventDate = req.EventDate
	}
	if req.ExpiryDate != nil {
		g.ExpiryDate = req.ExpiryDate
	}
	if req.IsActive != nil {
		g.IsActive = *req.IsActive
	}
	if req.DownloadLimit != nil {
		g.DownloadLimit = *req.DownloadLimit
	}

	if err := s.repo.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// List returns all galleries, newest first
func (s *Service) List(ctx context.Context) ([]*Gallery, error) {
	return s.repo.List(ctx)
}

// GetDetail returns a gallery with stats and all its images for the admin UI
func (s *Service) GetDetail(ctx context.Context, id uuid.UUID) (*AdminDetail, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGalleryNotFound
	}

	stats, err := s.repo.GetStats(ctx, id)
	if err != nil {
		return nil, err
	}
	images, err := s.images.ListByGallery(ctx, id, false)
	if err != nil {
		return nil, err
	}

	responses := make([]*image.Response, len(images))
	for i, img := range images {
		responses[i] = s.imageSvc.ToResponse(img)
	}

	return &AdminDetail{Gallery: g, Stats: stats, Images: responses}, nil
}

// Delete removes a gallery, its rows (cascade) and its stored files
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if g == nil {
		return ErrGalleryNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.store.DeletePrefix(ctx, "galleries/"+g.Slug); err != nil {
		log.Warn().Err(err).Str("slug", g.Slug).Msg("failed to delete stored gallery files")
	}
	return nil
}

// VerifyAccess checks a client's slug+password submission. On success it
// records one access-log row and issues a gallery token. Failed attempts
// record nothing. Missing and deactivated galleries are indistinguishable,
// and expiry is reported before the password is even checked.
func (s *Service) VerifyAccess(ctx context.Context, req VerifyRequest, clientIP string, userAgent *string) (*VerifyResponse, error) {
	attemptKey := req.Slug + ":" + clientIP
	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, attemptKey)
		if err != nil {
			log.Warn().Err(err).Msg("attempt limiter unavailable")
		}
		if !ok {
			return nil, ErrTooManyAttempts
		}
	}

	g, err := s.repo.GetBySlug(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	if g == nil || !g.IsActive {
		return nil, ErrGalleryNotFound
	}
	if g.IsExpired(time.Now()) {
		return nil, ErrGalleryExpired
	}

	if !password.Verify(req.Password, g.PasswordHash) {
		return nil, ErrInvalidPassword
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, attemptKey); err != nil {
			log.Warn().Err(err).Msg("failed to reset attempt counter")
		}
	}

	if err := s.repo.CreateAccessLog(ctx, &AccessLog{
		GalleryID: g.ID,
		ClientIP:  clientIP,
		UserAgent: userAgent,
	}); err != nil {
		return nil, err
	}

	accessToken, expiresAt, err := s.tokens.GenerateGalleryToken(g.ID, g.Slug)
	if err != nil {
		return nil, fmt.Errorf("failed to issue gallery token: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyAccess(g.ID, g.Slug, clientIP)
	}

	return &VerifyResponse{
		Gallery:     toDescriptor(g),
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	}, nil
}

// ClientView assembles the gallery as a verified client sees it: public
// images with the caller's favorite flags, plus quota usage.
func (s *Service) ClientView(ctx context.Context, galleryID uuid.UUID, clientIP string) (*ClientView, error) {
	g, err := s.repo.GetByID(ctx, galleryID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGalleryNotFound
	}

	images, err := s.images.ListByGallery(ctx, galleryID, true)
	if err != nil {
		return nil, err
	}

	favoriteIDs, err := s.favorites.ListImageIDs(ctx, galleryID, clientIP)
	if err != nil {
		return nil, err
	}
	favored := make(map[uuid.UUID]bool, len(favoriteIDs))
	for _, id := range favoriteIDs {
		favored[id] = true
	}

	used, err := s.downloads.CountByGallery(ctx, galleryID)
	if err != nil {
		return nil, err
	}

	view := &ClientView{
		Gallery:       toDescriptor(g),
		Images:        make([]ClientImage, len(images)),
		DownloadsUsed: used,
		DownloadLimit: g.DownloadLimit,
	}
	for i, img := range images {
		view.Images[i] = ClientImage{
			Response:   s.imageSvc.ToResponse(img),
			IsFavorite: favored[img.ID],
		}
	}
	return view, nil
}

// State reports whether a gallery is currently active and unexpired.
// Used by the gallery token middleware to re-verify on every request.
func (s *Service) State(ctx context.Context, id uuid.UUID) (active, expired bool, err error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, false, err
	}
	if g == nil {
		return false, false, nil
	}
	return g.IsActive, g.IsExpired(time.Now()), nil
}
