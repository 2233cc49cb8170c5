package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrNotExist is returned by Download when the key has no object.
var ErrNotExist = errors.New("object does not exist")

// StorageProvider is an object store holding archived rate-card files.
type StorageProvider interface {
	Upload(ctx context.Context, request *UploadRequest) (*UploadResponse, error)
	Download(ctx context.Context, key string) (*DownloadResponse, error)
	Delete(ctx context.Context, key string) error
	FileExists(ctx context.Context, key string) (bool, error)
}

type UploadRequest struct {
	Key         string            `json:"key"`
	Reader      io.Reader         `json:"-"`
	ContentType string            `json:"content_type"`
	Size        int64             `json:"size"`
	Metadata    map[string]string `json:"metadata"`
}

type UploadResponse struct {
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	ETag     string `json:"etag,omitempty"`
	Location string `json:"location"`
}

type DownloadResponse struct {
	Reader       io.ReadCloser     `json:"-"`
	Size         int64             `json:"size"`
	ContentType  string            `json:"content_type"`
	Metadata     map[string]string `json:"metadata"`
	LastModified time.Time         `json:"last_modified"`
}

type ProviderConfig struct {
	Provider           string // local, aws, gcp, none
	LocalBasePath      string
	AWSRegion          string
	AWSBucket          string
	GCPBucket          string
	GCPCredentialsFile string
}

// NewProvider builds the configured provider. "none" returns nil, nil.
func NewProvider(ctx context.Context, cfg *ProviderConfig) (StorageProvider, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "local":
		return NewLocalStorage(cfg.LocalBasePath)
	case "aws", "s3":
		return NewAWSS3Storage(ctx, cfg.AWSRegion, cfg.AWSBucket)
	case "gcp", "gcs":
		return NewGCPStorage(ctx, cfg.GCPBucket, cfg.GCPCredentialsFile)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
