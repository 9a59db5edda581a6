package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Package storage contains the object store gateway for S3-compatible
// backends. Implementations must avoid local disk and rely on streaming
// I/O only.

// ErrNotFound is returned by Get when the key has no object behind it.
var ErrNotFound = errors.New("object not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1
// and the implementation will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the gateway to an S3-compatible object store. It covers the
// direct read/write path and time-limited delegated access via presigned
// URLs. Presigning never checks key existence; for downloads the store
// itself rejects missing keys at access time.
type Storage interface {
	// Put stores or overwrites the object under key. Overwrites are
	// last-writer-wins with respect to concurrent readers.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	// Returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// PresignPut returns a time-limited URL permitting exactly one PUT of the key.
	PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error)
	// PresignGet returns a time-limited URL permitting exactly one GET of the key.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
