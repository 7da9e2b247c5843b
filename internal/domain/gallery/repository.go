package gallery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository handles gallery data access
type Repository interface {
	Create(ctx context.Context, g *Gallery) error
	GetByID(ctx context.Context, id uuid.UUID) (*Gallery, error)
	GetBySlug(ctx context.Context, slug string) (*Gallery, error)
	List(ctx context.Context) ([]*Gallery, error)
	Update(ctx context.Context, g *Gallery) error
	Delete(ctx context.Context, id uuid.UUID) error
	CreateAccessLog(ctx context.Context, l *AccessLog) error
	GetStats(ctx context.Context, id uuid.UUID) (*Stats, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates a new gallery repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const uniqueViolation = "23505"

func (r *repository) Create(ctx context.Context, g *Gallery) error {
	query := `
		INSERT INTO galleries (
			user_id, title, slug, password_hash, client_name, client_email,
			event_type, event_date, is_active, expiry_date, download_limit
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		g.UserID, g.Title, g.Slug, g.PasswordHash, g.ClientName, g.ClientEmail,
		g.EventType, g.EventDate, g.IsActive, g.ExpiryDate, g.DownloadLimit,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrSlugTaken
		}
		return fmt.Errorf("failed to create gallery: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Gallery, error) {
	var g Gallery
	err := r.db.GetContext(ctx, &g, `SELECT * FROM galleries WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get gallery: %w", err)
	}
	return &g, nil
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Gallery, error) {
	var g Gallery
	err := r.db.GetContext(ctx, &g, `SELECT * FROM galleries WHERE slug = $1`, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get gallery by slug: %w", err)
	}
	return &g, nil
}

func (r *repository) List(ctx context.Context) ([]*Gallery, error) {
	galleries := []*Gallery{}
	err := r.db.SelectContext(ctx, &galleries,
		`SELECT * FROM galleries ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list galleries: %w", err)
	}
	return galleries, nil
}

func (r *repository) Update(ctx context.Context, g *Gallery) error {
	query := `
		UPDATE galleries SET
			title = $1, password_hash = $2, client_name = $3, client_email = $4,
			event_type = $5, event_date = $6, is_active = $7, expiry_date = $8,
			download_limit = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		g.Title, g.PasswordHash, g.ClientName, g.ClientEmail,
		g.EventType, g.EventDate, g.IsActive, g.ExpiryDate,
		g.DownloadLimit, g.ID,
	).Scan(&g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrGalleryNotFound
		}
		return fmt.Errorf("failed to update gallery: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM galleries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete gallery: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrGalleryNotFound
	}
	return nil
}

func (r *repository) CreateAccessLog(ctx context.Context, l *AccessLog) error {
	query := `
		INSERT INTO gallery_access_logs (gallery_id, client_ip, user_agent)
		VALUES ($1, $2, $3)
		RETURNING id, accessed_at`

	err := r.db.QueryRowContext(ctx, query, l.GalleryID, l.ClientIP, l.UserAgent).
		Scan(&l.ID, &l.AccessedAt)
	if err != nil {
		return fmt.Errorf("failed to create access log: %w", err)
	}
	return nil
}

func (r *repository) GetStats(ctx context.Context, id uuid.UUID) (*Stats, error) {
	var s Stats
	query := `
		SELECT
			(SELECT COUNT(*) FROM gallery_images WHERE gallery_id = $1) AS image_count,
			(SELECT COUNT(*) FROM downloads WHERE gallery_id = $1) AS downloads_used,
			(SELECT COUNT(*) FROM favorites WHERE gallery_id = $1) AS favorite_count,
			(SELECT COUNT(*) FROM gallery_access_logs WHERE gallery_id = $1) AS access_count`

	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		return nil, fmt.Errorf("failed to get gallery stats: %w", err)
	}
	return &s, nil
}
