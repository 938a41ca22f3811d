// Package gcs provides a storage.Provider backed by Google Cloud Storage.
package gcs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

const jsonContentType = "application/json; charset=utf-8"

// Config captures the parameters required to mirror into GCS.
type Config struct {
	Bucket string
	// ContentType defaults to JSON.
	ContentType string
}

// BlobStore writes mirrored snapshots to a configured GCS bucket.
type BlobStore struct {
	client      *storage.Client
	bucket      string
	contentType string
}

// New creates a GCS-backed blob store. Authentication is handled by the
// client, usually through Application Default Credentials.
func New(client *storage.Client, cfg Config) (*BlobStore, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	contentType := cfg.ContentType
	if contentType == "" {
		contentType = jsonContentType
	}
	return &BlobStore{
		client:      client,
		bucket:      cfg.Bucket,
		contentType: contentType,
	}, nil
}

// Save uploads data to objectName in the configured bucket.
func (s *BlobStore) Save(ctx context.Context, objectName string, data []byte) error {
	if strings.TrimSpace(objectName) == "" {
		return fmt.Errorf("object name is required")
	}
	writer := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	writer.ContentType = s.contentType
	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		if closeErr := writer.Close(); closeErr != nil {
			return fmt.Errorf("copy object: %w (close writer: %v)", err, closeErr)
		}
		return fmt.Errorf("copy object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close writer for gs://%s/%s: %w", s.bucket, objectName, err)
	}
	return nil
}

// URI returns the gs:// location of objectName.
func (s *BlobStore) URI(objectName string) string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName)
}
