package image

import "errors"

var (
	ErrImageNotFound   = errors.New("image not found")
	ErrGalleryNotFound = errors.New("gallery not found")
)
