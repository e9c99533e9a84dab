package storage

import (
	"context"
	"fmt"
	"image"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobStorage retrieves micrographs kept in a lab's blob container.
type BlobStorage interface {
	GetImage(ctx context.Context, container, blobName string) (image.Image, error)
}

type azureStorage struct {
	client *azblob.Client
}

// NewAzureStorage creates a blob-backed micrograph source using shared key
// credentials.
func NewAzureStorage(accountName, accountKey string) (BlobStorage, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &azureStorage{client: client}, nil
}

func (s *azureStorage) GetImage(ctx context.Context, container, blobName string) (image.Image, error) {
	downloadResponse, err := s.client.DownloadStream(ctx, container, blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	retryReader := downloadResponse.Body
	defer retryReader.Close()

	img, _, err := DecodeImage(retryReader)
	if err != nil {
		return nil, err
	}
	return img, nil
}
