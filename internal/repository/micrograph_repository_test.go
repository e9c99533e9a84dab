package repository

import (
	"context"
	"errors"
	"image"
	"testing"
)

type fakeFetcher struct {
	lastURL string
	img     image.Image
}

func (f *fakeFetcher) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	f.lastURL = imageURL
	return f.img, nil
}

type fakeBlobStorage struct {
	lastContainer string
	lastBlob      string
	img           image.Image
}

func (f *fakeBlobStorage) GetImage(ctx context.Context, container, blobName string) (image.Image, error) {
	f.lastContainer = container
	f.lastBlob = blobName
	return f.img, nil
}

func TestParseBlobURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		container string
		blob      string
		ok        bool
	}{
		{"simple blob", "azblob://scans/sample.png", "scans", "sample.png", true},
		{"nested blob path", "azblob://scans/2024/batch-7/sample.tiff", "scans", "2024/batch-7/sample.tiff", true},
		{"http URL", "https://example.com/sample.png", "", "", false},
		{"missing blob name", "azblob://scans", "", "", false},
		{"missing container", "azblob:///sample.png", "", "", false},
		{"empty", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			container, blob, ok := parseBlobURL(tt.url)
			if ok != tt.ok {
				t.Fatalf("parseBlobURL(%q) ok = %v, want %v", tt.url, ok, tt.ok)
			}
			if container != tt.container || blob != tt.blob {
				t.Errorf("parseBlobURL(%q) = (%q, %q), want (%q, %q)",
					tt.url, container, blob, tt.container, tt.blob)
			}
		})
	}
}

func TestFetchImage_RoutesToHTTP(t *testing.T) {
	fetcher := &fakeFetcher{img: image.NewNRGBA(image.Rect(0, 0, 1, 1))}
	repo := NewMicrographRepository(fetcher, nil)

	img, err := repo.FetchImage(context.Background(), "https://example.com/sample.png")
	if err != nil {
		t.Fatalf("FetchImage failed: %v", err)
	}
	if img == nil {
		t.Fatal("Expected an image")
	}
	if fetcher.lastURL != "https://example.com/sample.png" {
		t.Errorf("Fetcher saw URL %q", fetcher.lastURL)
	}
}

func TestFetchImage_RoutesToBlobStorage(t *testing.T) {
	fetcher := &fakeFetcher{}
	blobs := &fakeBlobStorage{img: image.NewNRGBA(image.Rect(0, 0, 1, 1))}
	repo := NewMicrographRepository(fetcher, blobs)

	img, err := repo.FetchImage(context.Background(), "azblob://scans/2024/sample.png")
	if err != nil {
		t.Fatalf("FetchImage failed: %v", err)
	}
	if img == nil {
		t.Fatal("Expected an image")
	}
	if blobs.lastContainer != "scans" || blobs.lastBlob != "2024/sample.png" {
		t.Errorf("Blob source saw (%q, %q)", blobs.lastContainer, blobs.lastBlob)
	}
	if fetcher.lastURL != "" {
		t.Errorf("HTTP fetcher should not be called, saw %q", fetcher.lastURL)
	}
}

func TestFetchImage_BlobUnavailable(t *testing.T) {
	repo := NewMicrographRepository(&fakeFetcher{}, nil)

	_, err := repo.FetchImage(context.Background(), "azblob://scans/sample.png")
	if !errors.Is(err, ErrBlobSourceUnavailable) {
		t.Fatalf("Expected ErrBlobSourceUnavailable, got %v", err)
	}
}

func TestValidateImageURL(t *testing.T) {
	repo := NewMicrographRepository(&fakeFetcher{}, nil)

	if err := repo.ValidateImageURL("https://example.com/sample.png"); err != nil {
		t.Errorf("Expected valid HTTPS URL, got %v", err)
	}
	if err := repo.ValidateImageURL("azblob://scans/sample.png"); err != nil {
		t.Errorf("Expected blob URL to validate, got %v", err)
	}
	if err := repo.ValidateImageURL("ftp://example.com/sample.png"); err == nil {
		t.Error("Expected scheme rejection")
	}
}
