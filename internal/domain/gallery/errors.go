package gallery

import "errors"

var (
	ErrGalleryNotFound = errors.New("gallery not found")
	ErrGalleryExpired  = errors.New("gallery expired")
	ErrInvalidPassword = errors.New("invalid gallery password")
	ErrSlugTaken       = errors.New("slug already in use")
	ErrTooManyAttempts = errors.New("too many password attempts")
)
