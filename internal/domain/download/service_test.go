package download

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/fotolume/fotolume-api/internal/domain/image"
	"github.com/fotolume/fotolume-api/internal/pkg/storage"
)

type fakeDownloadRepo struct {
	limit int
	rows  []*Download
}

func (f *fakeDownloadRepo) RecordIfUnderLimit(ctx context.Context, galleryID, imageID uuid.UUID, clientIP string, userAgent *string) (*QuotaResult, error) {
	used := 0
	for _, d := range f.rows {
		if d.GalleryID == galleryID {
			used++
		}
	}
	if used >= f.limit {
		return &QuotaResult{Allowed: false, Used: used, Limit: f.limit}, nil
	}
	f.rows = append(f.rows, &Download{
		ID: uuid.New(), GalleryID: galleryID, ImageID: imageID, ClientIP: clientIP, UserAgent: userAgent,
	})
	return &QuotaResult{Allowed: true, Used: used + 1, Limit: f.limit}, nil
}

func (f *fakeDownloadRepo) CountByGallery(ctx context.Context, galleryID uuid.UUID) (int, error) {
	used := 0
	for _, d := range f.rows {
		if d.GalleryID == galleryID {
			used++
		}
	}
	return used, nil
}

type fakeImageRepo struct {
	images map[uuid.UUID]*image.Image
}

func (f *fakeImageRepo) GetByID(ctx context.Context, id uuid.UUID) (*image.Image, error) {
	return f.images[id], nil
}

func (f *fakeImageRepo) Create(ctx context.Context, img *image.Image) error { return nil }
func (f *fakeImageRepo) ListByGallery(ctx context.Context, galleryID uuid.UUID, publicOnly bool) ([]*image.Image, error) {
	return nil, nil
}
func (f *fakeImageRepo) MaxSortOrder(ctx context.Context, galleryID uuid.UUID) (int, error) {
	return 0, nil
}
func (f *fakeImageRepo) Reorder(ctx context.Context, galleryID uuid.UUID, orders []image.ImageOrder) error {
	return nil
}
func (f *fakeImageRepo) SetVisibility(ctx context.Context, galleryID uuid.UUID, imageIDs []uuid.UUID, isPublic bool) (int, error) {
	return 0, nil
}
func (f *fakeImageRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type fakeStore struct {
	objects map[string][]byte
}

func (f *fakeStore) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	data, _ := io.ReadAll(reader)
	f.objects[key] = data
	return nil
}

func (f *fakeStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error       { return nil }
func (f *fakeStore) DeletePrefix(ctx context.Context, p string) error   { return nil }
func (f *fakeStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}
func (f *fakeStore) GetURL(key string) string { return key }

type fixture struct {
	svc       *Service
	repo      *fakeDownloadRepo
	galleryID uuid.UUID
	img       *image.Image
	hidden    *image.Image
}

func newFixture(t *testing.T, limit int) *fixture {
	t.Helper()

	galleryID := uuid.New()
	img := &image.Image{
		ID:           uuid.New(),
		GalleryID:    galleryID,
		FileName:     "a1b2.jpg",
		OriginalName: "IMG_0001.jpg",
		FilePath:     "galleries/wedding-smith-2024/a1b2.jpg",
		FileSize:     11,
		IsPublic:     true,
	}
	hidden := &image.Image{
		ID:           uuid.New(),
		GalleryID:    galleryID,
		FileName:     "c3d4.jpg",
		OriginalName: "IMG_0002.jpg",
		FilePath:     "galleries/wedding-smith-2024/c3d4.jpg",
		IsPublic:     false,
	}

	store := &fakeStore{objects: map[string][]byte{
		img.FilePath:    []byte("image-bytes"),
		hidden.FilePath: []byte("hidden-bytes"),
	}}
	repo := &fakeDownloadRepo{limit: limit}
	images := &fakeImageRepo{images: map[uuid.UUID]*image.Image{img.ID: img, hidden.ID: hidden}}

	return &fixture{
		svc:       NewService(repo, images, store, nil),
		repo:      repo,
		galleryID: galleryID,
		img:       img,
		hidden:    hidden,
	}
}

func TestDownloadQuotaIsGalleryWide(t *testing.T) {
	fx := newFixture(t, 2)
	ctx := context.Background()

	// Two different clients share the gallery's quota of 2.
	for i, ip := range []string{"203.0.113.7", "198.51.100.4"} {
		asset, err := fx.svc.Download(ctx, fx.galleryID, fx.img.ID, ip, nil)
		if err != nil {
			t.Fatalf("download %d: %v", i+1, err)
		}
		data, _ := io.ReadAll(asset.Reader)
		asset.Reader.Close()
		if string(data) != "image-bytes" {
			t.Fatalf("download %d: wrong bytes %q", i+1, data)
		}
	}

	_, err := fx.svc.Download(ctx, fx.galleryID, fx.img.ID, "192.0.2.1", nil)
	if !errors.Is(err, ErrLimitReached) {
		t.Fatalf("third download should hit the limit, got %v", err)
	}

	if len(fx.repo.rows) != 2 {
		t.Fatalf("refused download must not add a row: have %d", len(fx.repo.rows))
	}
}

func TestDownloadUnknownImage(t *testing.T) {
	fx := newFixture(t, 2)

	_, err := fx.svc.Download(context.Background(), fx.galleryID, uuid.New(), "203.0.113.7", nil)
	if !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound, got %v", err)
	}
	if len(fx.repo.rows) != 0 {
		t.Fatal("failed download must not burn quota")
	}
}

func TestDownloadHiddenImage(t *testing.T) {
	fx := newFixture(t, 2)

	_, err := fx.svc.Download(context.Background(), fx.galleryID, fx.hidden.ID, "203.0.113.7", nil)
	if !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("hidden image must look missing to clients, got %v", err)
	}
}

func TestDownloadMissingFileBurnsNoQuota(t *testing.T) {
	fx := newFixture(t, 2)
	fx.img.FilePath = "galleries/wedding-smith-2024/gone.jpg"

	_, err := fx.svc.Download(context.Background(), fx.galleryID, fx.img.ID, "203.0.113.7", nil)
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	if len(fx.repo.rows) != 0 {
		t.Fatal("missing file must not record a download")
	}
}

func TestPreviewBypassesQuotaAndRecordsNothing(t *testing.T) {
	fx := newFixture(t, 0) // quota already exhausted
	ctx := context.Background()

	asset, err := fx.svc.Preview(ctx, fx.galleryID, fx.img.ID)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	asset.Reader.Close()

	if len(fx.repo.rows) != 0 {
		t.Fatal("preview must not insert a download row")
	}
}

func TestPreviewSeesHiddenImages(t *testing.T) {
	fx := newFixture(t, 2)

	asset, err := fx.svc.Preview(context.Background(), fx.galleryID, fx.hidden.ID)
	if err != nil {
		t.Fatalf("preview hidden: %v", err)
	}
	data, _ := io.ReadAll(asset.Reader)
	asset.Reader.Close()
	if !strings.Contains(string(data), "hidden") {
		t.Fatalf("unexpected bytes %q", data)
	}
}
