package storage

import (
	"context"
	"io"
)

// StorageService is the blob store used for the article archive.
type StorageService interface {
	Upload(ctx context.Context, bucket, objectName string, content []byte, contentType string) (string, error)
	StreamUpload(ctx context.Context, bucket, objectName string, reader io.Reader, contentType string) (string, error)
	Download(ctx context.Context, bucket, objectName string) ([]byte, error)
	Delete(ctx context.Context, bucket, objectName string) error
}
