package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ruteri/vc-storage-client/interfaces"
)

// MultiStore writes every payload to all of its available destinations.
type MultiStore struct {
	stores []interfaces.ArtifactStore
	log    *slog.Logger
}

// NewMultiStore combines stores.
func NewMultiStore(stores []interfaces.ArtifactStore, logger *slog.Logger) *MultiStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &MultiStore{
		stores: stores,
		log:    logger,
	}
}

// Put writes to every available destination and returns the written locations
// joined by commas. It fails only if no destination accepted the payload.
func (m *MultiStore) Put(ctx context.Context, file *interfaces.RetrievedFile) (string, error) {
	start := time.Now()
	var locations []string
	var errs []error

	for _, store := range m.stores {
		if !store.Available(ctx) {
			m.log.Debug("Destination unavailable", slog.String("destination", store.Name()))
			errs = append(errs, fmt.Errorf("%s: %w", store.Name(), interfaces.ErrBackendUnavailable))
			continue
		}

		location, err := store.Put(ctx, file)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", store.Name(), err))
			m.log.Debug("Failed to export to destination",
				slog.String("destination", store.Name()),
				"err", err)
			continue
		}
		locations = append(locations, location)
	}

	if len(locations) == 0 {
		m.log.Error("All destinations failed to export file",
			slog.String("cid", string(file.CID)),
			slog.Int("failed", len(errs)),
			slog.Duration("duration", time.Since(start)))
		return "", fmt.Errorf("all destinations failed: %w", errors.Join(errs...))
	}

	m.log.Info("Exported file",
		slog.String("cid", string(file.CID)),
		slog.Int("destinations", len(locations)),
		slog.Int("failed", len(errs)),
		slog.Duration("duration", time.Since(start)))

	return strings.Join(locations, ","), nil
}

// Available reports whether any destination is available.
func (m *MultiStore) Available(ctx context.Context) bool {
	for _, store := range m.stores {
		if store.Available(ctx) {
			return true
		}
	}
	return false
}

func (m *MultiStore) Name() string {
	return "multi-store"
}

func (m *MultiStore) LocationURI() string {
	var locations []string
	for _, store := range m.stores {
		locations = append(locations, store.LocationURI())
	}
	return "multi:[" + strings.Join(locations, ",") + "]"
}
