// Package filestore defines the object-storage interface used for schema
// snapshot uploads.
//
// All providers (MinIO, S3-compatible gateways, …) implement the Store
// interface. Callers depend only on this package — never on a specific
// provider package.
package filestore

import (
	"context"
	"io"
	"time"
)

// Store is the interface every snapshot storage provider implements.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error

	// PutObject uploads size bytes from body to key inside bucket.
	// size may be -1 when unknown; providers then buffer as needed.
	PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) (*ObjectInfo, error)

	// PresignGetURL returns a time-limited URL that allows anyone to
	// download the object at key inside bucket without credentials.
	PresignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	// Key is the full object path within the bucket
	// (e.g. "snapshots/warehouse/2026-08-25T10-00-00Z.json").
	Key string

	// Size is the byte size of the object. -1 if unknown.
	Size int64

	// ContentType is the MIME type.
	ContentType string

	// ETag is the object's entity tag / hash, as returned by the backend.
	ETag string

	// LastModified is when the object was last written.
	LastModified time.Time
}

// Config holds the settings needed to connect to a storage backend.
type Config struct {
	// Endpoint is the host:port of the storage server.
	Endpoint string

	// AccessKey is the access key ID (MinIO / S3 style).
	AccessKey string

	// SecretKey is the secret access key.
	SecretKey string

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool

	// Region is used by region-aware backends. Leave empty for MinIO.
	Region string

	// Bucket is the bucket snapshots are written to.
	Bucket string
}
