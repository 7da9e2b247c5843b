package download

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// QuotaResult reports the outcome of a quota-checked record attempt
type QuotaResult struct {
	Allowed bool
	Used    int
	Limit   int
}

// Repository handles download data access
type Repository interface {
	// RecordIfUnderLimit inserts a download row only when the gallery-wide
	// quota has room, atomically with the check.
	RecordIfUnderLimit(ctx context.Context, galleryID, imageID uuid.UUID, clientIP string, userAgent *string) (*QuotaResult, error)

	// CountByGallery returns the downloads used by a gallery.
	CountByGallery(ctx context.Context, galleryID uuid.UUID) (int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates a new download repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// RecordIfUnderLimit locks the gallery row for the duration of the check so
// two concurrent downloads cannot both pass the limit.
func (r *repository) RecordIfUnderLimit(ctx context.Context, galleryID, imageID uuid.UUID, clientIP string, userAgent *string) (*QuotaResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var limit int
	err = tx.GetContext(ctx, &limit,
		`SELECT download_limit FROM galleries WHERE id = $1 FOR UPDATE`, galleryID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock gallery: %w", err)
	}

	var used int
	err = tx.GetContext(ctx, &used,
		`SELECT COUNT(*) FROM downloads WHERE gallery_id = $1`, galleryID)
	if err != nil {
		return nil, fmt.Errorf("failed to count downloads: %w", err)
	}

	if used >= limit {
		return &QuotaResult{Allowed: false, Used: used, Limit: limit}, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO downloads (gallery_id, image_id, client_ip, user_agent)
		VALUES ($1, $2, $3, $4)`,
		galleryID, imageID, clientIP, userAgent,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record download: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit download: %w", err)
	}
	return &QuotaResult{Allowed: true, Used: used + 1, Limit: limit}, nil
}

func (r *repository) CountByGallery(ctx context.Context, galleryID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM downloads WHERE gallery_id = $1`, galleryID)
	if err != nil {
		return 0, fmt.Errorf("failed to count downloads: %w", err)
	}
	return count, nil
}
