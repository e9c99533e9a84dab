package repository

import (
	"context"
	"image"
)

// MicrographRepository defines the interface for retrieving base micrographs
// from remote sources.
type MicrographRepository interface {
	// FetchImage retrieves a micrograph. HTTP(S) URLs go through the HTTP
	// fetcher; azblob://container/blob URLs go through the blob source.
	FetchImage(ctx context.Context, imageURL string) (image.Image, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error
}
