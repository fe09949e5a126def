package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ruteri/vc-storage-client/interfaces"
)

var _ interfaces.ArtifactStoreFactory = (*Factory)(nil)

// Factory creates export destinations from URIs.
type Factory struct {
	log *slog.Logger
}

// NewFactory creates a destination factory.
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{log: logger}
}

// StoreFor creates a destination from a location URI.
//
// Supported schemes:
//   - file:// - Local directory
//   - s3:// - Amazon S3 or compatible object storage
//   - ipfs:// - IPFS node API
func (f *Factory) StoreFor(locationURI string) (interfaces.ArtifactStore, error) {
	u, err := url.Parse(locationURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidLocationURI, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "ipfs":
		return f.createIPFSStore(u)
	case "s3":
		return f.createS3Store(u)
	case "file":
		return f.createFileStore(u)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", interfaces.ErrInvalidLocationURI, u.Scheme)
	}
}

// CreateMultiStore creates a destination writing to every valid URI.
// URIs that cannot be parsed are logged and skipped.
func (f *Factory) CreateMultiStore(locationURIs []string) (interfaces.ArtifactStore, error) {
	stores := make([]interfaces.ArtifactStore, 0, len(locationURIs))

	for _, uri := range locationURIs {
		store, err := f.StoreFor(uri)
		if err != nil {
			f.log.Warn("Failed to create export destination",
				"err", err,
				slog.String("locationURI", uri))
			continue
		}
		stores = append(stores, store)
	}

	if len(stores) == 0 {
		return nil, fmt.Errorf("no valid export destinations created")
	}

	return NewMultiStore(stores, f.log), nil
}

// createIPFSStore handles ipfs://host:port/?timeout=30s.
func (f *Factory) createIPFSStore(u *url.URL) (interfaces.ArtifactStore, error) {
	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: missing IPFS host", interfaces.ErrInvalidLocationURI)
	}
	port := u.Port()
	if port == "" {
		port = "5001"
	}

	timeout := 30 * time.Second
	if raw := u.Query().Get("timeout"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid timeout %q", interfaces.ErrInvalidLocationURI, raw)
		}
		timeout = parsed
	}

	return NewIPFSStore(host, port, timeout, f.log), nil
}

// createS3Store handles s3://[ACCESS_KEY:SECRET_KEY@]bucket/prefix/?region=us-west-2&endpoint=http://minio:9000.
func (f *Factory) createS3Store(u *url.URL) (interfaces.ArtifactStore, error) {
	bucketName := u.Host
	if bucketName == "" {
		return nil, fmt.Errorf("%w: missing S3 bucket", interfaces.ErrInvalidLocationURI)
	}

	query := u.Query()
	region := query.Get("region")
	if region == "" {
		region = "us-east-1"
	}

	var accessKey, secretKey string
	if u.User != nil {
		accessKey = u.User.Username()
		secretKey, _ = u.User.Password()
	}

	return NewS3Store(bucketName, u.Path, region, query.Get("endpoint"), accessKey, secretKey, f.log)
}

// createFileStore handles file:///absolute/path/ and file://./relative/path/.
func (f *Factory) createFileStore(u *url.URL) (interfaces.ArtifactStore, error) {
	path := u.Path
	if u.Host != "" {
		path = u.Host + "/" + strings.TrimPrefix(path, "/")
	}
	if path == "" {
		return nil, fmt.Errorf("%w: empty path in %s", interfaces.ErrInvalidLocationURI, u.String())
	}

	return NewFileStore(path, f.log)
}
