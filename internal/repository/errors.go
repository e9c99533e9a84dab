package repository

import "errors"

var (
	// ErrInvalidImageURL indicates an invalid micrograph URL
	ErrInvalidImageURL = errors.New("invalid image URL")

	// ErrBlobSourceUnavailable indicates no blob source is configured for
	// an azblob:// URL
	ErrBlobSourceUnavailable = errors.New("blob storage not configured")
)
