package storage

import (
	"path"
	"strings"

	"github.com/ruteri/vc-storage-client/interfaces"
)

// ObjectKey returns the relative key a payload is exported under: <cid>/<filename>.
// Both parts are reduced to a single path element so a hostile name cannot escape
// the destination.
func ObjectKey(file *interfaces.RetrievedFile) string {
	return path.Join(safeElement(string(file.CID), "unknown"), safeElement(file.Filename, "download"))
}

func safeElement(s, fallback string) string {
	s = strings.ReplaceAll(s, "\\", "/")
	s = path.Base(strings.TrimSpace(s))
	if s == "" || s == "." || s == ".." || s == "/" {
		return fallback
	}
	return s
}
