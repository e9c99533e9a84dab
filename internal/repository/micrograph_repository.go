package repository

import (
	"context"
	"image"
	"net/url"
	"strings"

	"github.com/CliffortMC08/pearlite-analyser/internal/storage"
	"github.com/CliffortMC08/pearlite-analyser/pkg/validation"
)

// micrographRepository routes fetches to the HTTP fetcher or, for
// azblob://container/blob URLs, to the configured blob source.
type micrographRepository struct {
	fetcher   storage.ImageFetcher
	blobs     storage.BlobStorage // nil when no blob source is configured
	validator *validation.URLValidator
}

// NewMicrographRepository creates a repository over the given sources.
// blobs may be nil.
func NewMicrographRepository(fetcher storage.ImageFetcher, blobs storage.BlobStorage) MicrographRepository {
	return &micrographRepository{
		fetcher:   fetcher,
		blobs:     blobs,
		validator: validation.NewURLValidator(),
	}
}

func (r *micrographRepository) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	if container, blobName, ok := parseBlobURL(imageURL); ok {
		if r.blobs == nil {
			return nil, ErrBlobSourceUnavailable
		}
		return r.blobs.GetImage(ctx, container, blobName)
	}
	return r.fetcher.FetchImage(ctx, imageURL)
}

func (r *micrographRepository) ValidateImageURL(imageURL string) error {
	if _, _, ok := parseBlobURL(imageURL); ok {
		return nil
	}
	return r.validator.ValidateImageURL(imageURL)
}

// parseBlobURL splits azblob://container/path/to/blob into its parts.
func parseBlobURL(imageURL string) (container, blobName string, ok bool) {
	parsed, err := url.Parse(imageURL)
	if err != nil || parsed.Scheme != "azblob" {
		return "", "", false
	}
	blobName = strings.TrimPrefix(parsed.Path, "/")
	if parsed.Host == "" || blobName == "" {
		return "", "", false
	}
	return parsed.Host, blobName, true
}
