package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	imgproc "github.com/fotolume/fotolume-api/internal/pkg/imaging"
)

type fakeImageRepo struct {
	images   map[uuid.UUID]*Image
	maxOrder int
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{images: make(map[uuid.UUID]*Image)}
}

func (f *fakeImageRepo) Create(ctx context.Context, img *Image) error {
	img.ID = uuid.New()
	img.CreatedAt = time.Now()
	f.images[img.ID] = img
	return nil
}

func (f *fakeImageRepo) GetByID(ctx context.Context, id uuid.UUID) (*Image, error) {
	return f.images[id], nil
}

func (f *fakeImageRepo) ListByGallery(ctx context.Context, galleryID uuid.UUID, publicOnly bool) ([]*Image, error) {
	var out []*Image
	for _, img := range f.images {
		if img.GalleryID == galleryID && (!publicOnly || img.IsPublic) {
			out = append(out, img)
		}
	}
	return out, nil
}

func (f *fakeImageRepo) MaxSortOrder(ctx context.Context, galleryID uuid.UUID) (int, error) {
	return f.maxOrder, nil
}

func (f *fakeImageRepo) Reorder(ctx context.Context, galleryID uuid.UUID, orders []ImageOrder) error {
	for _, o := range orders {
		img, ok := f.images[o.ImageID]
		if !ok || img.GalleryID != galleryID {
			return ErrImageNotFound
		}
	}
	for _, o := range orders {
		f.images[o.ImageID].SortOrder = o.SortOrder
	}
	return nil
}

func (f *fakeImageRepo) SetVisibility(ctx context.Context, galleryID uuid.UUID, imageIDs []uuid.UUID, isPublic bool) (int, error) {
	updated := 0
	for _, id := range imageIDs {
		if img, ok := f.images[id]; ok && img.GalleryID == galleryID {
			img.IsPublic = isPublic
			updated++
		}
	}
	return updated, nil
}

func (f *fakeImageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.images, id)
	return nil
}

type fakeStore struct {
	objects map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) DeletePrefix(ctx context.Context, prefix string) error {
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			delete(f.objects, k)
		}
	}
	return nil
}

func (f *fakeStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStore) GetURL(key string) string {
	return "http://localhost:8080/media/" + key
}

type fakeResolver struct {
	ref *GalleryRef
}

func (f *fakeResolver) Resolve(ctx context.Context, id uuid.UUID) (*GalleryRef, error) {
	if f.ref != nil && f.ref.ID == id {
		return f.ref, nil
	}
	return nil, nil
}

func jpegBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 10 {
		for y := 0; y < height; y += 10 {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func newTestIngestService(t *testing.T) (*Service, *fakeImageRepo, *fakeStore, uuid.UUID) {
	t.Helper()
	repo := newFakeImageRepo()
	store := newFakeStore()
	galleryID := uuid.New()
	resolver := &fakeResolver{ref: &GalleryRef{ID: galleryID, Slug: "wedding-smith-2024"}}
	svc := NewService(repo, resolver, imgproc.NewProcessor(imgproc.DefaultConfig()), store)
	return svc, repo, store, galleryID
}

func TestIngestBatchContinuesPastFailures(t *testing.T) {
	svc, repo, store, galleryID := newTestIngestService(t)

	files := make([]IngestFile, 0, 6)
	for i := 0; i < 5; i++ {
		data := jpegBytes(t, 800, 600)
		files = append(files, IngestFile{
			Name:        fmt.Sprintf("IMG_%04d.jpg", i+1),
			ContentType: "image/jpeg",
			Size:        int64(len(data)),
			Reader:      bytes.NewReader(data),
		})
	}
	files = append(files, IngestFile{
		Name:        "notes.pdf",
		ContentType: "application/pdf",
		Size:        1024,
		Reader:      bytes.NewReader([]byte("%PDF-1.4")),
	})

	result, err := svc.Ingest(context.Background(), galleryID, files)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if len(result.Created) != 5 {
		t.Fatalf("expected 5 created, got %d", len(result.Created))
	}
	if len(result.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(result.Failures))
	}
	if result.Failures[0].FileName != "notes.pdf" || result.Failures[0].Code != "INVALID_FILE_TYPE" {
		t.Fatalf("unexpected failure: %+v", result.Failures[0])
	}

	for i, img := range result.Created {
		if img.SortOrder != i+1 {
			t.Fatalf("image %d has sort_order %d, want %d", i, img.SortOrder, i+1)
		}
		if img.ThumbnailPath == nil {
			t.Fatal("expected a thumbnail path")
		}
		if _, ok := store.objects[img.FilePath]; !ok {
			t.Fatalf("full variant %s not stored", img.FilePath)
		}
		if _, ok := store.objects[*img.ThumbnailPath]; !ok {
			t.Fatalf("thumbnail %s not stored", *img.ThumbnailPath)
		}
	}
	if len(repo.images) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(repo.images))
	}
}

func TestIngestAppendsAfterExistingOrder(t *testing.T) {
	svc, repo, _, galleryID := newTestIngestService(t)
	repo.maxOrder = 7

	data := jpegBytes(t, 800, 600)
	result, err := svc.Ingest(context.Background(), galleryID, []IngestFile{{
		Name:        "IMG_0001.jpg",
		ContentType: "image/jpeg",
		Size:        int64(len(data)),
		Reader:      bytes.NewReader(data),
	}})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if result.Created[0].SortOrder != 8 {
		t.Fatalf("expected sort_order 8, got %d", result.Created[0].SortOrder)
	}
}

func TestIngestRejectsOversizeFile(t *testing.T) {
	svc, repo, _, galleryID := newTestIngestService(t)

	result, err := svc.Ingest(context.Background(), galleryID, []IngestFile{{
		Name:        "huge.jpg",
		ContentType: "image/jpeg",
		Size:        MaxFileSize + 1,
		Reader:      bytes.NewReader(nil),
	}})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(result.Created) != 0 || len(result.Failures) != 1 {
		t.Fatalf("expected only a failure, got %+v", result)
	}
	if result.Failures[0].Code != "FILE_TOO_LARGE" {
		t.Fatalf("unexpected code %q", result.Failures[0].Code)
	}
	if len(repo.images) != 0 {
		t.Fatal("no rows should exist")
	}
}

func TestIngestRejectsCorruptImage(t *testing.T) {
	svc, _, _, galleryID := newTestIngestService(t)

	result, err := svc.Ingest(context.Background(), galleryID, []IngestFile{{
		Name:        "broken.jpg",
		ContentType: "image/jpeg",
		Size:        32,
		Reader:      strings.NewReader("definitely not a jpeg"),
	}})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(result.Failures) != 1 || result.Failures[0].Code != "INVALID_FILE_TYPE" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestIngestUnknownGallery(t *testing.T) {
	svc, _, _, _ := newTestIngestService(t)

	_, err := svc.Ingest(context.Background(), uuid.New(), nil)
	if !errors.Is(err, ErrGalleryNotFound) {
		t.Fatalf("expected ErrGalleryNotFound, got %v", err)
	}
}

func TestDeleteRemovesFilesAndRow(t *testing.T) {
	svc, repo, store, galleryID := newTestIngestService(t)

	data := jpegBytes(t, 800, 600)
	result, err := svc.Ingest(context.Background(), galleryID, []IngestFile{{
		Name:        "IMG_0001.jpg",
		ContentType: "image/jpeg",
		Size:        int64(len(data)),
		Reader:      bytes.NewReader(data),
	}})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	img := result.Created[0]

	if err := svc.Delete(context.Background(), galleryID, img.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.images) != 0 {
		t.Fatal("row should be gone")
	}
	if len(store.objects) != 0 {
		t.Fatalf("stored files should be gone, %d remain", len(store.objects))
	}
}

func TestDeleteWrongGallery(t *testing.T) {
	svc, _, _, galleryID := newTestIngestService(t)

	data := jpegBytes(t, 800, 600)
	result, err := svc.Ingest(context.Background(), galleryID, []IngestFile{{
		Name:        "IMG_0001.jpg",
		ContentType: "image/jpeg",
		Size:        int64(len(data)),
		Reader:      bytes.NewReader(data),
	}})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	err = svc.Delete(context.Background(), uuid.New(), result.Created[0].ID)
	if !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound, got %v", err)
	}
}
