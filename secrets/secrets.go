// Package secrets provides the presentation service API key to the auth client.
//
// The key never leaves the process that resolves it: the CLI and the gateway hold
// it server-side and the browser-facing surfaces only ever see its effects.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	vault "github.com/hashicorp/vault/api"
	"github.com/ruteri/vc-storage-client/interfaces"
)

// APIKeyField is the KV field holding the API key.
const APIKeyField = "api_key"

// ErrNoAPIKey is returned when no API key is configured or found.
var ErrNoAPIKey = errors.New("no api key configured")

var _ interfaces.SecretSource = Static("")
var _ interfaces.SecretSource = (*Vault)(nil)

// Static is an API key given directly (flag or environment).
type Static string

func (s Static) APIKey(_ context.Context) (string, error) {
	key := strings.TrimSpace(string(s))
	if key == "" {
		return "", ErrNoAPIKey
	}
	return key, nil
}

// Vault reads the API key from a HashiCorp Vault KV v2 secret on every call.
type Vault struct {
	client    *vault.Client
	mountPath string
	dataPath  string
	log       *slog.Logger
}

// NewVault creates a Vault-backed source.
//
// Parameters:
//   - address: Vault server address (e.g. https://vault.example.com:8200)
//   - token: Vault token, may be empty to fall back to VAULT_TOKEN
//   - mountPath: KV v2 mount (e.g. "secret")
//   - dataPath: Secret path within the mount (e.g. "vcfiles")
//   - log: Structured logger
func NewVault(address, token, mountPath, dataPath string, log *slog.Logger) (*Vault, error) {
	if log == nil {
		log = slog.Default()
	}

	config := vault.DefaultConfig()
	config.Address = address
	config.Timeout = 30 * time.Second

	client, err := vault.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if token != "" {
		client.SetToken(token)
	}

	return &Vault{
		client:    client,
		mountPath: strings.Trim(mountPath, "/"),
		dataPath:  strings.Trim(dataPath, "/"),
		log:       log,
	}, nil
}

// Path returns the logical path read from Vault.
func (v *Vault) Path() string {
	return fmt.Sprintf("%s/data/%s", v.mountPath, v.dataPath)
}

func (v *Vault) APIKey(ctx context.Context) (string, error) {
	path := v.Path()

	secret, err := v.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		v.log.Error("Failed to read API key from Vault", slog.String("path", path), "err", err)
		return "", fmt.Errorf("could not read %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("%w: %s not found", ErrNoAPIKey, path)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid data format in Vault response for %s", path)
	}

	key, _ := data[APIKeyField].(string)
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: field %s missing in %s", ErrNoAPIKey, APIKeyField, path)
	}

	return strings.TrimSpace(key), nil
}
