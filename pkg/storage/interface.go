package storage

import (
	"context"
	"fmt"
	"io"
)

const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
	ProviderGCS   = "gcs"
)

// Provider stores uploaded listing and profile images.
type Provider interface {
	Upload(ctx context.Context, request *UploadRequest) (*UploadResponse, error)
	Delete(ctx context.Context, key string) error
	FileExists(ctx context.Context, key string) (bool, error)
}

type UploadRequest struct {
	Key          string            `json:"key"`
	Reader       io.Reader         `json:"-"`
	ContentType  string            `json:"content_type"`
	Size         int64             `json:"size"`
	Metadata     map[string]string `json:"metadata"`
	CacheControl string            `json:"cache_control"`
}

type UploadResponse struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
	ETag string `json:"etag"`
}

type Config struct {
	Provider        string
	LocalPath       string
	LocalURL        string
	Region          string
	Bucket          string
	CredentialsFile string
	CDNDomain       string
}

func New(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderLocal, "":
		return NewLocalStorage(cfg.LocalPath, cfg.LocalURL)
	case ProviderS3:
		return NewAWSS3Storage(ctx, cfg.Region, cfg.Bucket, cfg.CDNDomain)
	case ProviderGCS:
		return NewGCPStorage(ctx, cfg.Bucket, cfg.CredentialsFile, cfg.CDNDomain)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
