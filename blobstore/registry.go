// Package blobstore keeps retrieved payloads in memory behind opaque handles,
// the way a browser keeps object URLs. Handles are caller-owned: whoever
// receives one must Release it once the payload is no longer displayed.
package blobstore

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// HandlePrefix starts every handle, mirroring the blob: URL scheme.
const HandlePrefix = "blob:"

// Blob is a registered payload.
type Blob struct {
	Data      []byte
	MIMEType  string
	Filename  string
	CreatedAt time.Time
}

// Registry implements interfaces.HandleStore.
type Registry struct {
	mu    sync.RWMutex
	blobs map[string]*Blob
	log   *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		blobs: make(map[string]*Blob),
		log:   log,
	}
}

// Allocate registers data and returns a new handle for it.
func (r *Registry) Allocate(data []byte, mimeType, filename string) string {
	handle := HandlePrefix + uuid.NewString()

	r.mu.Lock()
	r.blobs[handle] = &Blob{
		Data:      data,
		MIMEType:  mimeType,
		Filename:  filename,
		CreatedAt: time.Now(),
	}
	live := len(r.blobs)
	r.mu.Unlock()

	r.log.Debug("Allocated blob handle",
		slog.String("handle", handle),
		slog.Int("size", len(data)),
		slog.Int("live", live))
	return handle
}

// Open returns the payload behind handle.
func (r *Registry) Open(handle string) (*Blob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.blobs[handle]
	return b, ok
}

// Release drops the payload behind handle. It reports false for unknown or
// already released handles.
func (r *Registry) Release(handle string) bool {
	r.mu.Lock()
	_, ok := r.blobs[handle]
	delete(r.blobs, handle)
	live := len(r.blobs)
	r.mu.Unlock()

	if ok {
		r.log.Debug("Released blob handle", slog.String("handle", handle), slog.Int("live", live))
	}
	return ok
}

// Live returns the number of handles not yet released.
func (r *Registry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blobs)
}

// ParseHandle accepts either a full handle or the bare id used in URLs.
func ParseHandle(s string) string {
	if strings.HasPrefix(s, HandlePrefix) {
		return s
	}
	return HandlePrefix + s
}

// ID returns the handle without its prefix, suitable for a URL path segment.
func ID(handle string) string {
	return strings.TrimPrefix(handle, HandlePrefix)
}
