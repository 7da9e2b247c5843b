package favorite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository handles favorite data access
type Repository interface {
	// Toggle flips the favorite state for (clientIP, imageID) and returns
	// the new state.
	Toggle(ctx context.Context, galleryID, imageID uuid.UUID, clientIP string) (bool, error)

	// ListImageIDs returns the image ids favorited by clientIP in a gallery.
	ListImageIDs(ctx context.Context, galleryID uuid.UUID, clientIP string) ([]uuid.UUID, error)

	// CountByGallery returns the total favorites in a gallery.
	CountByGallery(ctx context.Context, galleryID uuid.UUID) (int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates a new favorite repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Toggle runs delete-then-insert in one transaction. The unique index on
// (client_ip, image_id) is the race detector: if a concurrent request
// inserted between our delete and insert, the insert conflicts and we
// resolve it as "toggle again", deleting the row and reporting false.
func (r *repository) Toggle(ctx context.Context, galleryID, imageID uuid.UUID, clientIP string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM favorites WHERE client_ip = $1 AND image_id = $2`,
		clientIP, imageID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete favorite: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check delete result: %w", err)
	}

	if deleted > 0 {
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("failed to commit toggle: %w", err)
		}
		return false, nil
	}

	var id uuid.UUID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO favorites (gallery_id, image_id, client_ip)
		VALUES ($1, $2, $3)
		ON CONFLICT (client_ip, image_id) DO NOTHING
		RETURNING id`,
		galleryID, imageID, clientIP,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lost the race to a concurrent insert; toggle again.
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM favorites WHERE client_ip = $1 AND image_id = $2`,
				clientIP, imageID,
			); err != nil {
				return false, fmt.Errorf("failed to resolve toggle conflict: %w", err)
			}
			if err := tx.Commit(); err != nil {
				return false, fmt.Errorf("failed to commit toggle: %w", err)
			}
			return false, nil
		}
		return false, fmt.Errorf("failed to insert favorite: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit toggle: %w", err)
	}
	return true, nil
}

func (r *repository) ListImageIDs(ctx context.Context, galleryID uuid.UUID, clientIP string) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := r.db.SelectContext(ctx, &ids,
		`SELECT image_id FROM favorites WHERE gallery_id = $1 AND client_ip = $2`,
		galleryID, clientIP,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return ids, nil
}

func (r *repository) CountByGallery(ctx context.Context, galleryID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM favorites WHERE gallery_id = $1`, galleryID)
	if err != nil {
		return 0, fmt.Errorf("failed to count favorites: %w", err)
	}
	return count, nil
}
