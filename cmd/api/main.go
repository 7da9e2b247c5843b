package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fotolume/fotolume-api/internal/config"
	"github.com/fotolume/fotolume-api/internal/domain/activity"
	"github.com/fotolume/fotolume-api/internal/domain/auth"
	"github.com/fotolume/fotolume-api/internal/domain/download"
	"github.com/fotolume/fotolume-api/internal/domain/favorite"
	"github.com/fotolume/fotolume-api/internal/domain/gallery"
	"github.com/fotolume/fotolume-api/internal/domain/image"
	"github.com/fotolume/fotolume-api/internal/domain/user"
	"github.com/fotolume/fotolume-api/internal/middleware"
	"github.com/fotolume/fotolume-api/internal/pkg/database"
	imgproc "github.com/fotolume/fotolume-api/internal/pkg/imaging"
	"github.com/fotolume/fotolume-api/internal/pkg/ratelimit"
	"github.com/fotolume/fotolume-api/internal/pkg/response"
	"github.com/fotolume/fotolume-api/internal/pkg/storage"
	"github.com/fotolume/fotolume-api/internal/pkg/token"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	// Database
	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	// Redis (optional)
	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, continuing without it")
		rdb = nil
	}
	defer database.CloseRedis(rdb)

	// Storage
	store, err := newStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	// Shared infrastructure
	tokens := token.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, cfg.GalleryTokenTTL)
	processor := imgproc.NewProcessor(imgproc.DefaultConfig())
	verifyLimiter := ratelimit.NewLimiter(rdb, "verify", cfg.VerifyAttemptLimit, cfg.VerifyAttemptWindow)

	// Activity feed
	hub := activity.NewHub(rdb)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	// Repositories
	userRepo := user.NewRepository(db)
	galleryRepo := gallery.NewRepository(db)
	imageRepo := image.NewRepository(db)
	favoriteRepo := favorite.NewRepository(db)
	downloadRepo := download.NewRepository(db)

	// Services
	authService := auth.NewService(userRepo, tokens)
	imageService := image.NewService(imageRepo, &galleryResolver{repo: galleryRepo}, processor, store)
	favoriteService := favorite.NewService(favoriteRepo, imageRepo, hub)
	downloadService := download.NewService(downloadRepo, imageRepo, store, hub)
	galleryService := gallery.NewService(
		galleryRepo, imageRepo, imageService, favoriteRepo, downloadRepo,
		tokens, verifyLimiter, store, hub,
	)

	// Bootstrap admin
	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.EnsureAdmin(bootCtx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		cancelBoot()
		log.Fatal().Err(err).Msg("Failed to bootstrap admin account")
	}
	cancelBoot()

	// Handlers
	authHandler := auth.NewHandler(authService)
	galleryHandler := gallery.NewHandler(galleryService)
	clientHandler := gallery.NewClientHandler(galleryService)
	imageHandler := image.NewHandler(imageService)
	favoriteHandler := favorite.NewHandler(favoriteService)
	downloadHandler := download.NewHandler(downloadService)
	activityHandler := activity.NewHandler(hub, tokens, cfg.AllowedOrigins)

	// Middleware
	adminAuth := middleware.AdminAuth(tokens)
	galleryAuth := middleware.GalleryAuth(tokens, &galleryGate{service: galleryService})

	// Router
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		response.OK(w, map[string]string{"status": "ok"})
	})

	// Client API
	r.Route("/api/v1/galleries", func(r chi.Router) {
		r.Post("/verify", clientHandler.Verify)

		r.Group(func(r chi.Router) {
			r.Use(galleryAuth)
			r.Get("/{slug}", clientHandler.View)
			r.Post("/{slug}/favorite", favoriteHandler.Toggle)
			r.Get("/{slug}/download/{imageID}", downloadHandler.Download)
		})
	})

	// Admin API
	r.Route("/api/admin", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes(adminAuth))

		r.Group(func(r chi.Router) {
			r.Use(adminAuth)

			r.Route("/galleries", func(r chi.Router) {
				r.Post("/", galleryHandler.Create)
				r.Get("/", galleryHandler.List)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", galleryHandler.Get)
					r.Patch("/", galleryHandler.Update)
					r.Delete("/", galleryHandler.Delete)

					r.Post("/images", imageHandler.Ingest)
					r.Patch("/images/reorder", imageHandler.Reorder)
					r.Patch("/images/visibility", imageHandler.SetVisibility)
					r.Delete("/images/{imageID}", imageHandler.Delete)
					r.Get("/images/{imageID}/download", downloadHandler.Preview)
				})
			})
		})
	})

	// Admin activity feed (token in query, validated in the handler)
	r.Get("/ws/admin", activityHandler.Serve)

	// Serve local storage directly in development
	if cfg.StorageDriver == "local" {
		fs := http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.StoragePath)))
		r.Get("/media/*", fs.ServeHTTP)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stopHub()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server stopped")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
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

// galleryResolver adapts the gallery repository to the image service
type galleryResolver struct {
	repo gallery.Repository
}

func (a *galleryResolver) Resolve(ctx context.Context, id uuid.UUID) (*image.GalleryRef, error) {
	g, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, nil
	}
	return &image.GalleryRef{ID: g.ID, Slug: g.Slug}, nil
}

// galleryGate adapts the gallery service to the gallery token middleware
type galleryGate struct {
	service *gallery.Service
}

func (a *galleryGate) GalleryState(ctx context.Context, id uuid.UUID) (*middleware.GalleryState, error) {
	active, expired, err := a.service.State(ctx, id)
	if err != nil {
		return nil, err
	}
	return &middleware.GalleryState{ID: id, Active: active, Expired: expired}, nil
}
