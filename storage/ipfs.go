package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/ruteri/vc-storage-client/interfaces"
)

// IPFSStore exports payloads to an IPFS node through its HTTP API.
type IPFSStore struct {
	shell       *shell.Shell
	host        string
	port        string
	log         *slog.Logger
	locationURI string
}

// NewIPFSStore creates an IPFS destination for the node API at host:port.
func NewIPFSStore(host, port string, timeout time.Duration, log *slog.Logger) *IPFSStore {
	apiURL := fmt.Sprintf("%s:%s", host, port)

	sh := shell.NewShell(apiURL)
	if timeout > 0 {
		sh.SetTimeout(timeout)
	}

	return &IPFSStore{
		shell:       sh,
		host:        host,
		port:        port,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s/?timeout=%s", apiURL, timeout),
	}
}

// Put adds and pins the payload and returns its /ipfs/ path.
// The node computes its own CID; it need not equal the file manager's.
func (s *IPFSStore) Put(ctx context.Context, file *interfaces.RetrievedFile) (string, error) {
	if !s.shell.IsUp() {
		return "", interfaces.ErrBackendUnavailable
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	hash, err := s.shell.Add(bytes.NewReader(file.Data), shell.Pin(true))
	if err != nil {
		return "", fmt.Errorf("failed to add data to IPFS: %w", err)
	}

	s.log.Debug("Exported file to IPFS",
		slog.String("ipfsCID", hash),
		slog.String("cid", string(file.CID)),
		slog.String("filename", file.Filename))

	return "/ipfs/" + hash, nil
}

// Available checks if the IPFS node answers.
func (s *IPFSStore) Available(ctx context.Context) bool {
	return s.shell.IsUp()
}

func (s *IPFSStore) Name() string {
	return fmt.Sprintf("ipfs-%s-%s", s.host, s.port)
}

func (s *IPFSStore) LocationURI() string {
	return s.locationURI
}
