package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlbumNotFound = errors.New("album not found")
	ErrPhotoNotFound = errors.New("photo not found")
	ErrInvalidInput  = errors.New("invalid input")
)
