package download

import "errors"

var (
	ErrImageNotFound = errors.New("image not found")
	ErrFileNotFound  = errors.New("stored file not found")
	ErrLimitReached  = errors.New("download limit reached")
)
