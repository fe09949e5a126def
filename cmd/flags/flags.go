package flags

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/vc-storage-client/api"
	"github.com/ruteri/vc-storage-client/api/authservice"
	"github.com/ruteri/vc-storage-client/api/filemanager"
	"github.com/ruteri/vc-storage-client/common"
	"github.com/ruteri/vc-storage-client/discovery"
	"github.com/ruteri/vc-storage-client/interfaces"
	"github.com/ruteri/vc-storage-client/secrets"
	"github.com/urfave/cli/v2"
)

// Identities of the testnet demo accounts.
const (
	DefaultIssuerDID = "did:nda:testnet:0xfb2ea60a8c629fb0bb392479c7801a772bf8c9f9"
	DefaultViewerDID = "did:nda:testnet:0xd012ef45a753535bf3774cef3a4884115c69b9bf"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *api.HTTPServerConfig {
	enablePprof := cCtx.Bool(PprofFlag.Name)
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second

	return &api.HTTPServerConfig{
		ListenAddr:               listenAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		AllowedOrigins:           cCtx.StringSlice(AllowedOriginsFlag.Name),
		MaxUploadSize:            cCtx.Int64(MaxUploadSizeFlag.Name),
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		// Retrievals have no deadline of their own unless --timeout is set.
		WriteTimeout: 0,
	}
}

// Clients resolves the service URLs and builds both remote clients.
func Clients(cCtx *cli.Context, logger *slog.Logger, handles interfaces.HandleStore, source interfaces.SecretSource) (*filemanager.Client, *authservice.Client, error) {
	nameserver := cCtx.String(NameserverFlag.Name)
	timeout := cCtx.Duration(TimeoutFlag.Name)

	fileManagerURL, err := discovery.ResolveBaseURL(cCtx.Context, cCtx.String(FileManagerURLFlag.Name), nameserver)
	if err != nil {
		return nil, nil, fmt.Errorf("could not resolve file manager url: %w", err)
	}
	authURL, err := discovery.ResolveBaseURL(cCtx.Context, cCtx.String(AuthServiceURLFlag.Name), nameserver)
	if err != nil {
		return nil, nil, fmt.Errorf("could not resolve auth service url: %w", err)
	}

	files := filemanager.NewClient(fileManagerURL, handles, logger, timeout)
	auth := authservice.NewClient(authURL, source, logger, timeout)

	logger.Debug("Configured services",
		slog.String("fileManager", files.BaseURL()),
		slog.String("authService", auth.BaseURL()),
		slog.Duration("timeout", timeout))

	return files, auth, nil
}

// SecretSource picks Vault when an address is configured and the static key otherwise.
func SecretSource(cCtx *cli.Context, logger *slog.Logger) (interfaces.SecretSource, error) {
	address := cCtx.String(VaultAddrFlag.Name)
	if address == "" {
		return secrets.Static(cCtx.String(AuthAPIKeyFlag.Name)), nil
	}

	source, err := secrets.NewVault(address, cCtx.String(VaultTokenFlag.Name), cCtx.String(VaultMountFlag.Name), cCtx.String(VaultPathFlag.Name), logger)
	if err != nil {
		return nil, fmt.Errorf("could not create vault client: %w", err)
	}
	return source, nil
}

// CheckAPIKey fails early when the auth client has no usable key.
func CheckAPIKey(ctx context.Context, source interfaces.SecretSource) error {
	if _, err := source.APIKey(ctx); err != nil {
		return fmt.Errorf("auth service api key: %w", err)
	}
	return nil
}

var FileManagerURLFlag = &cli.StringFlag{
	Name:    "file-manager-url",
	Value:   "https://fmanager-dev.pila.vn",
	EnvVars: []string{"VCFILES_FILE_MANAGER_URL"},
	Usage:   "file manager base URL, srv+https://_service._tcp.domain resolves through DNS SRV",
}
var AuthServiceURLFlag = &cli.StringFlag{
	Name:    "auth-service-url",
	Value:   "https://auth-dev.pila.vn",
	EnvVars: []string{"VCFILES_AUTH_SERVICE_URL"},
	Usage:   "presentation service base URL, srv+https://... resolves through DNS SRV",
}
var NameserverFlag = &cli.StringFlag{
	Name:    "nameserver",
	Value:   discovery.DefaultNameserver,
	EnvVars: []string{"VCFILES_NAMESERVER"},
	Usage:   "DNS server used for srv+ service URLs",
}
var AuthAPIKeyFlag = &cli.StringFlag{
	Name:    "auth-api-key",
	EnvVars: []string{"VCFILES_AUTH_API_KEY"},
	Usage:   "presentation service API key",
}
var VaultAddrFlag = &cli.StringFlag{
	Name:    "vault-addr",
	EnvVars: []string{"VCFILES_VAULT_ADDR"},
	Usage:   "read the API key from this Vault server instead of --auth-api-key",
}
var VaultTokenFlag = &cli.StringFlag{
	Name:    "vault-token",
	EnvVars: []string{"VCFILES_VAULT_TOKEN", "VAULT_TOKEN"},
	Usage:   "Vault token",
}
var VaultMountFlag = &cli.StringFlag{
	Name:    "vault-mount",
	Value:   "secret",
	EnvVars: []string{"VCFILES_VAULT_MOUNT"},
	Usage:   "Vault KV v2 mount",
}
var VaultPathFlag = &cli.StringFlag{
	Name:    "vault-path",
	Value:   "vcfiles",
	EnvVars: []string{"VCFILES_VAULT_PATH"},
	Usage:   "secret path under the mount, holding the api_key field",
}
var TimeoutFlag = &cli.DurationFlag{
	Name:    "timeout",
	EnvVars: []string{"VCFILES_TIMEOUT"},
	Usage:   "per-request timeout for remote calls, 0 waits indefinitely",
}

var IssuerDIDFlag = &cli.StringFlag{
	Name:    "issuer-did",
	Value:   DefaultIssuerDID,
	EnvVars: []string{"VCFILES_ISSUER_DID"},
	Usage:   "issuer DID sent in x-issuer-did",
}
var OwnerDIDFlag = &cli.StringFlag{
	Name:    "owner-did",
	Value:   DefaultIssuerDID,
	EnvVars: []string{"VCFILES_OWNER_DID"},
	Usage:   "owner DID of uploaded files",
}
var ViewerDIDFlag = &cli.StringFlag{
	Name:    "viewer-did",
	Value:   DefaultViewerDID,
	EnvVars: []string{"VCFILES_VIEWER_DID"},
	Usage:   "holder DID for minted credentials and presentations",
}

var AllowedOriginsFlag = &cli.StringSliceFlag{
	Name:    "allowed-origin",
	EnvVars: []string{"VCFILES_ALLOWED_ORIGINS"},
	Usage:   "browser origin allowed to call the gateway, repeatable; none allows any",
}
var MaxUploadSizeFlag = &cli.Int64Flag{
	Name:  "max-upload-size",
	Value: 32 << 20,
	Usage: "largest multipart upload accepted, in bytes",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
}

var ServiceFlags = []cli.Flag{
	FileManagerURLFlag,
	AuthServiceURLFlag,
	NameserverFlag,
	AuthAPIKeyFlag,
	VaultAddrFlag,
	VaultTokenFlag,
	VaultMountFlag,
	VaultPathFlag,
	TimeoutFlag,
}

var ServerFlags = []cli.Flag{
	PprofFlag,
	DrainSecondsFlag,
	AllowedOriginsFlag,
	MaxUploadSizeFlag,
}
