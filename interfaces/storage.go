package interfaces

import (
	"context"
	"errors"
)

var (
	// ErrBackendUnavailable is returned when an export destination is not accessible.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrInvalidLocationURI is returned when a destination URI is malformed or unsupported.
	// URIs must follow the format: [scheme]://[auth@]host[:port][/path][?params]
	ErrInvalidLocationURI = errors.New("invalid storage location URI")
)

// ArtifactStore exports retrieved files to a destination outside the process.
type ArtifactStore interface {
	// Put writes the payload and returns the location it was written to.
	Put(ctx context.Context, file *RetrievedFile) (string, error)

	// Available checks if the destination is accessible.
	Available(ctx context.Context) bool

	// Name returns identifier for logging.
	Name() string

	// LocationURI returns URI identifying this destination.
	LocationURI() string
}

// ArtifactStoreFactory creates export destinations.
type ArtifactStoreFactory interface {
	// StoreFor creates a destination from URI.
	// Supports file://, s3://, ipfs://
	StoreFor(locationURI string) (ArtifactStore, error)

	// CreateMultiStore creates a destination writing to every given URI.
	CreateMultiStore(locationURIs []string) (ArtifactStore, error)
}
