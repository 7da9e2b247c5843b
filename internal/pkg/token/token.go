package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

const (
	TypeAdminAccess  = "admin_access"
	TypeAdminRefresh = "admin_refresh"
	TypeGallery      = "gallery"
)

// AdminClaims represents admin access/refresh JWT claims
type AdminClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	Type   string    `json:"type"`
	jwt.RegisteredClaims
}

// GalleryClaims is the server-issued proof that a client supplied the
// correct gallery password. It carries the gallery id and slug only; every
// endpoint still re-verifies gallery state (active, unexpired) server-side.
type GalleryClaims struct {
	GalleryID uuid.UUID `json:"gallery_id"`
	Slug      string    `json:"slug"`
	Type      string    `json:"type"`
	jwt.RegisteredClaims
}

// Service handles JWT operations
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	galleryTTL time.Duration
}

// NewService creates token service
func NewService(secret string, accessTTL, refreshTTL, galleryTTL time.Duration) *Service {
	return &Service{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		galleryTTL: galleryTTL,
	}
}

// GenerateAdminAccess generates an admin access token
func (s *Service) GenerateAdminAccess(userID uuid.UUID, role string) (string, error) {
	return s.generateAdmin(userID, role, TypeAdminAccess, s.accessTTL)
}

// GenerateAdminRefresh generates an admin refresh token
func (s *Service) GenerateAdminRefresh(userID uuid.UUID, role string) (string, error) {
	return s.generateAdmin(userID, role, TypeAdminRefresh, s.refreshTTL)
}

func (s *Service) generateAdmin(userID uuid.UUID, role, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		UserID: userID,
		Role:   role,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// GenerateGalleryToken issues a gallery access token after a successful
// password verification. Returns the token and its expiry.
func (s *Service) GenerateGalleryToken(galleryID uuid.UUID, slug string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.galleryTTL)
	claims := GalleryClaims{
		GalleryID: galleryID,
		Slug:      slug,
		Type:      TypeGallery,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   galleryID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	return signed, expiresAt, err
}

// ValidateAdminAccess validates and parses an admin access token
func (s *Service) ValidateAdminAccess(tokenString string) (*AdminClaims, error) {
	return s.validateAdmin(tokenString, TypeAdminAccess)
}

// ValidateAdminRefresh validates and parses an admin refresh token
func (s *Service) ValidateAdminRefresh(tokenString string) (*AdminClaims, error) {
	return s.validateAdmin(tokenString, TypeAdminRefresh)
}

func (s *Service) validateAdmin(tokenString, typ string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid || claims.Type != typ {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateGalleryToken validates and parses a gallery access token
func (s *Service) ValidateGalleryToken(tokenString string) (*GalleryClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &GalleryClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*GalleryClaims)
	if !ok || !token.Valid || claims.Type != TypeGallery {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
