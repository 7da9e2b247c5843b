// Command thumbnailer regenerates missing gallery thumbnails. Run it after
// restoring storage from a backup or changing thumbnail dimensions:
//
//	thumbnailer            # regenerate only missing thumbnails
//	thumbnailer -all       # regenerate every thumbnail
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fotolume/fotolume-api/internal/config"
	"github.com/fotolume/fotolume-api/internal/pkg/database"
	imgproc "github.com/fotolume/fotolume-api/internal/pkg/imaging"
	"github.com/fotolume/fotolume-api/internal/pkg/storage"
)

type imageRow struct {
	ID            uuid.UUID `db:"id"`
	FileName      string    `db:"file_name"`
	FilePath      string    `db:"file_path"`
	ThumbnailPath *string   `db:"thumbnail_path"`
	Slug          string    `db:"slug"`
}

func main() {
	regenerateAll := flag.Bool("all", false, "regenerate every thumbnail, not only missing ones")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load()

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	store, err := newStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	processor := imgproc.NewProcessor(imgproc.DefaultConfig())
	ctx := context.Background()

	rows, err := listImages(ctx, db, *regenerateAll)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list images")
	}
	log.Info().Int("count", len(rows)).Msg("Images to process")

	processed, failed := 0, 0
	for _, row := range rows {
		if err := regenerate(ctx, db, store, processor, row); err != nil {
			failed++
			log.Error().Err(err).Str("image", row.ID.String()).Msg("Regeneration failed")
			continue
		}
		processed++
	}

	log.Info().Int("processed", processed).Int("failed", failed).Msg("Done")
	if failed > 0 {
		os.Exit(1)
	}
}

func listImages(ctx context.Context, db *sqlx.DB, all bool) ([]imageRow, error) {
	query := `
		SELECT i.id, i.file_name, i.file_path, i.thumbnail_path, g.slug
		FROM gallery_images i
		JOIN galleries g ON g.id = i.gallery_id`
	if !all {
		query += ` WHERE i.thumbnail_path IS NULL`
	}
	query += ` ORDER BY i.created_at`

	rows := []imageRow{}
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	return rows, nil
}

func regenerate(ctx context.Context, db *sqlx.DB, store storage.Storage, processor *imgproc.Processor, row imageRow) error {
	reader, err := store.Get(ctx, row.FilePath)
	if err != nil {
		return fmt.Errorf("open full variant: %w", err)
	}
	data, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		return fmt.Errorf("read full variant: %w", err)
	}

	processed, err := processor.Process(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("process: %w", err)
	}

	thumbKey := fmt.Sprintf("galleries/%s/thumbnails/%s", row.Slug, row.FileName)
	if err := store.Put(ctx, thumbKey, bytes.NewReader(processed.Thumbnail), processed.ContentType); err != nil {
		return fmt.Errorf("store thumbnail: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`UPDATE gallery_images SET thumbnail_path = $1 WHERE id = $2`,
		thumbKey, row.ID)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}

	log.Debug().Str("image", row.ID.String()).Str("key", path.Base(thumbKey)).Msg("Thumbnail written")
	return nil
}

func newStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.StorageDriver == "s3" {
		return storage.NewS3Storage(storage.S3Config{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return storage.NewLocalStorage(cfg.StoragePath, cfg.StorageBaseURL)
}
