package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

const (
	blobRetries = 3
	blobBackoff = 500 * time.Millisecond
)

// BlobBackend persists the snapshot as a single blob in Azure Blob Storage.
// Reads and writes retry with linear backoff before surfacing an
// UnavailableError.
type BlobBackend struct {
	client    *azblob.Client
	container string
	blob      string
}

// NewBlobBackend connects to Blob Storage with a connection string.
func NewBlobBackend(connectionString, container, blob string) (*BlobBackend, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("azure client: %w", err)
	}
	return &BlobBackend{client: client, container: container, blob: blob}, nil
}

func (b *BlobBackend) Load() ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= blobRetries; attempt++ {
		resp, err := b.client.DownloadStream(context.Background(), b.container, b.blob, nil)
		if err == nil {
			data, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr == nil {
				return data, nil
			}
			err = readErr
		}
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, ErrNoSnapshot
		}
		lastErr = err
		slog.Warn("blob read failed", "attempt", attempt, "retries", blobRetries, "error", err)
		if attempt < blobRetries {
			time.Sleep(blobBackoff * time.Duration(attempt))
		}
	}
	return nil, &UnavailableError{Err: lastErr}
}

func (b *BlobBackend) Save(data []byte) error {
	var lastErr error
	for attempt := 1; attempt <= blobRetries; attempt++ {
		_, err := b.client.UploadBuffer(context.Background(), b.container, b.blob, data, nil)
		if err == nil {
			return nil
		}
		if bloberror.HasCode(err, bloberror.ContainerNotFound) {
			if _, cerr := b.client.CreateContainer(context.Background(), b.container, nil); cerr != nil &&
				!bloberror.HasCode(cerr, bloberror.ContainerAlreadyExists) {
				err = cerr
			} else {
				continue // retry the upload against the fresh container
			}
		}
		lastErr = err
		slog.Warn("blob write failed", "attempt", attempt, "retries", blobRetries, "error", err)
		if attempt < blobRetries {
			time.Sleep(blobBackoff * time.Duration(attempt))
		}
	}
	return &UnavailableError{Err: lastErr}
}
