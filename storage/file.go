package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ruteri/vc-storage-client/interfaces"
)

// FileStore exports payloads to a local directory.
type FileStore struct {
	baseDir     string
	log         *slog.Logger
	locationURI string
}

// NewFileStore creates a file destination rooted at baseDir, creating it if needed.
func NewFileStore(baseDir string, log *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FileStore{
		baseDir:     baseDir,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// Put writes the payload to <baseDir>/<cid>/<filename> and returns that path.
func (s *FileStore) Put(ctx context.Context, file *interfaces.RetrievedFile) (string, error) {
	filePath := filepath.Join(s.baseDir, filepath.FromSlash(ObjectKey(file)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filePath, file.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.log.Debug("Exported file",
		slog.String("path", filePath),
		slog.String("cid", string(file.CID)),
		slog.Int("size", file.Size()))

	return filePath, nil
}

// Available checks that the base directory still exists.
func (s *FileStore) Available(ctx context.Context) bool {
	if _, err := os.Stat(s.baseDir); err != nil {
		s.log.Debug("File destination unavailable", "err", err)
		return false
	}
	return true
}

func (s *FileStore) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(s.baseDir))
}

func (s *FileStore) LocationURI() string {
	return s.locationURI
}
