package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"auditapi/internal/storage"
)

var (
	ErrKeyRequired   = errors.New("key is required")
	ErrInvalidExpiry = errors.New("expiresIn must be a positive number of seconds")
)

// ObjectPayload is the service-level view of a stored object, content included.
type ObjectPayload struct {
	Key         string
	Data        []byte
	Size        int64
	ETag        string
	ContentType string
	UploadedAt  time.Time
}

// PresignedURL is an issued time-limited URL together with its expiry window.
type PresignedURL struct {
	URL       string
	ExpiresIn int
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ObjectService defines the use cases over the object store gateway:
// direct byte upload/download and presigned-URL issuance.
type ObjectService interface {
	// Upload stores or overwrites the object under key.
	Upload(ctx context.Context, key string, data []byte, contentType string) (*ObjectPayload, error)

	// Download returns the object's full content and metadata.
	// Returns storage.ErrNotFound when the key is absent.
	Download(ctx context.Context, key string) (*ObjectPayload, error)

	// PresignUpload issues a URL permitting one PUT of key for expiresIn seconds.
	// Key existence is not checked.
	PresignUpload(ctx context.Context, key string, expiresIn int) (*PresignedURL, error)

	// PresignDownload issues a URL permitting one GET of key for expiresIn
	// seconds. Existence is the store's concern at access time, not at issuance.
	PresignDownload(ctx context.Context, key string, expiresIn int) (*PresignedURL, error)
}

type objectService struct {
	store  storage.Storage
	maxTTL time.Duration
}

// NewObjectService constructs a new ObjectService. maxTTLSec caps requested
// presign expiries; values at or below zero fall back to the V4 limit of 7 days.
func NewObjectService(store storage.Storage, maxTTLSec int) ObjectService {
	if maxTTLSec <= 0 {
		maxTTLSec = 7 * 24 * 3600
	}
	return &objectService{store: store, maxTTL: time.Duration(maxTTLSec) * time.Second}
}

func (s *objectService) Upload(ctx context.Context, key string, data []byte, contentType string) (*ObjectPayload, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := s.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}
	return &ObjectPayload{
		Key:         key,
		Size:        info.Size,
		ETag:        info.ETag,
		ContentType: info.ContentType,
		UploadedAt:  info.LastModified,
	}, nil
}

func (s *objectService) Download(ctx context.Context, key string) (*ObjectPayload, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	rc, info, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return &ObjectPayload{
		Key:         key,
		Data:        data,
		Size:        info.Size,
		ETag:        info.ETag,
		ContentType: info.ContentType,
		UploadedAt:  info.LastModified,
	}, nil
}

func (s *objectService) PresignUpload(ctx context.Context, key string, expiresIn int) (*PresignedURL, error) {
	return s.presign(ctx, key, expiresIn, s.store.PresignPut)
}

func (s *objectService) PresignDownload(ctx context.Context, key string, expiresIn int) (*PresignedURL, error) {
	return s.presign(ctx, key, expiresIn, s.store.PresignGet)
}

func (s *objectService) presign(ctx context.Context, key string, expiresIn int, sign func(context.Context, string, time.Duration) (string, error)) (*PresignedURL, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}
	if expiresIn <= 0 {
		return nil, ErrInvalidExpiry
	}

	ttl := time.Duration(expiresIn) * time.Second
	if ttl > s.maxTTL {
		ttl = s.maxTTL
	}

	issuedAt := timeNow().UTC()
	u, err := sign(ctx, key, ttl)
	if err != nil {
		return nil, fmt.Errorf("presign: %w", err)
	}
	return &PresignedURL{
		URL:       u,
		ExpiresIn: int(ttl / time.Second),
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(ttl),
	}, nil
}
