package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGalleryTokenRoundTrip(t *testing.T) {
	svc := NewService("secret", time.Minute, time.Hour, 24*time.Hour)
	galleryID := uuid.New()

	signed, expiresAt, err := svc.GenerateGalleryToken(galleryID, "wedding-smith-2024")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if remaining := time.Until(expiresAt); remaining < 23*time.Hour {
		t.Fatalf("expected ~24h expiry, got %v", remaining)
	}

	claims, err := svc.ValidateGalleryToken(signed)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.GalleryID != galleryID {
		t.Fatalf("gallery id mismatch: %s != %s", claims.GalleryID, galleryID)
	}
	if claims.Slug != "wedding-smith-2024" {
		t.Fatalf("unexpected slug %q", claims.Slug)
	}
}

func TestGalleryTokenExpired(t *testing.T) {
	svc := NewService("secret", time.Minute, time.Hour, -time.Minute)

	signed, _, err := svc.GenerateGalleryToken(uuid.New(), "old-gallery")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := svc.ValidateGalleryToken(signed); err != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestAdminTokenRejectedAsGalleryToken(t *testing.T) {
	svc := NewService("secret", time.Hour, time.Hour, time.Hour)

	admin, err := svc.GenerateAdminAccess(uuid.New(), "admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := svc.ValidateGalleryToken(admin); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for admin token, got %v", err)
	}
}

func TestTokenWithDifferentSecretRejected(t *testing.T) {
	issuer := NewService("secret-a", time.Hour, time.Hour, time.Hour)
	verifier := NewService("secret-b", time.Hour, time.Hour, time.Hour)

	signed, _, err := issuer.GenerateGalleryToken(uuid.New(), "g")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.ValidateGalleryToken(signed); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
