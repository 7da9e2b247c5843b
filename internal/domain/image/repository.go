package image

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository handles gallery image data access
type Repository interface {
	Create(ctx context.Context, img *Image) error
	GetByID(ctx context.Context, id uuid.UUID) (*Image, error)
	ListByGallery(ctx context.Context, galleryID uuid.UUID, publicOnly bool) ([]*Image, error)
	MaxSortOrder(ctx context.Context, galleryID uuid.UUID) (int, error)
	Reorder(ctx context.Context, galleryID uuid.UUID, orders []ImageOrder) error
	SetVisibility(ctx context.Context, galleryID uuid.UUID, imageIDs []uuid.UUID, isPublic bool) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates a new image repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, img *Image) error {
	query := `
		INSERT INTO gallery_images (
			gallery_id, file_name, original_name, file_path, thumbnail_path,
			file_size, width, height, sort_order, is_public
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		img.GalleryID, img.FileName, img.OriginalName, img.FilePath, img.ThumbnailPath,
		img.FileSize, img.Width, img.Height, img.SortOrder, img.IsPublic,
	).Scan(&img.ID, &img.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Image, error) {
	var img Image
	err := r.db.GetContext(ctx, &img, `SELECT * FROM gallery_images WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return &img, nil
}

func (r *repository) ListByGallery(ctx context.Context, galleryID uuid.UUID, publicOnly bool) ([]*Image, error) {
	query := `SELECT * FROM gallery_images WHERE gallery_id = $1`
	if publicOnly {
		query += ` AND is_public = true`
	}
	query += ` ORDER BY sort_order ASC, created_at ASC`

	images := []*Image{}
	if err := r.db.SelectContext(ctx, &images, query, galleryID); err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}

func (r *repository) MaxSortOrder(ctx context.Context, galleryID uuid.UUID) (int, error) {
	var max int
	query := `SELECT COALESCE(MAX(sort_order), 0) FROM gallery_images WHERE gallery_id = $1`
	if err := r.db.GetContext(ctx, &max, query, galleryID); err != nil {
		return 0, fmt.Errorf("failed to get max sort order: %w", err)
	}
	return max, nil
}

// Reorder rewrites sort positions in one transaction. An unknown image id
// rolls the whole batch back.
func (r *repository) Reorder(ctx context.Context, galleryID uuid.UUID, orders []ImageOrder) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE gallery_images SET sort_order = $1 WHERE id = $2 AND gallery_id = $3`
	for _, o := range orders {
		res, err := tx.ExecContext(ctx, query, o.SortOrder, o.ImageID, galleryID)
		if err != nil {
			return fmt.Errorf("failed to reorder image: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check reorder result: %w", err)
		}
		if affected == 0 {
			return ErrImageNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}
	return nil
}

func (r *repository) SetVisibility(ctx context.Context, galleryID uuid.UUID, imageIDs []uuid.UUID, isPublic bool) (int, error) {
	query, args, err := sqlx.In(
		`UPDATE gallery_images SET is_public = ? WHERE gallery_id = ? AND id IN (?)`,
		isPublic, galleryID, imageIDs,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to build visibility query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update visibility: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check visibility result: %w", err)
	}
	return int(affected), nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM gallery_images WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
