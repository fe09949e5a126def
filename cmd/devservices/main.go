package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ruteri/vc-storage-client/cmd/flags"
	"github.com/ruteri/vc-storage-client/common"
	"github.com/ruteri/vc-storage-client/devservices"
	"github.com/urfave/cli/v2"
)

var flagFileManagerAddr = &cli.StringFlag{
	Name:  "file-manager-addr",
	Value: "127.0.0.1:9000",
	Usage: "address to serve the file manager API on",
}
var flagAuthAddr = &cli.StringFlag{
	Name:  "auth-addr",
	Value: "127.0.0.1:9001",
	Usage: "address to serve the presentation API on",
}
var flagAPIKey = &cli.StringFlag{
	Name:    "api-key",
	Value:   "dev-api-key",
	EnvVars: []string{"VCFILES_AUTH_API_KEY"},
	Usage:   "API key required by the presentation API",
}
var flagNetwork = &cli.StringFlag{
	Name:  "network",
	Value: devservices.DefaultNetwork,
	Usage: "network segment of the sample DIDs printed at startup",
}

func main() {
	app := &cli.App{
		Name:    "vcfiles-devservices",
		Usage:   "Run in-memory stand-ins for the file manager and presentation services",
		Flags:   append([]cli.Flag{flagFileManagerAddr, flagAuthAddr, flagAPIKey, flagNetwork, flags.LogServiceFlagFn("vcfiles-devservices")}, flags.CommonFlags...),
		Version: common.Version,
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			keys, err := devservices.NewKeys()
			if err != nil {
				logger.Error("Failed to generate signing keys", "err", err)
				return err
			}

			servers := []*http.Server{
				{
					Addr:              cCtx.String(flagFileManagerAddr.Name),
					Handler:           devservices.NewRouter(logger, devservices.NewFileManager(keys, logger)),
					ReadHeaderTimeout: 10 * time.Second,
				},
				{
					Addr:              cCtx.String(flagAuthAddr.Name),
					Handler:           devservices.NewRouter(logger, devservices.NewAuthService(cCtx.String(flagAPIKey.Name), keys, logger)),
					ReadHeaderTimeout: 10 * time.Second,
				},
			}

			for i := 0; i < 2; i++ {
				did, err := devservices.NewIdentity(cCtx.String(flagNetwork.Name))
				if err != nil {
					return err
				}
				logger.Info("Sample identity", slog.String("did", string(did)))
			}

			for _, srv := range servers {
				go func(srv *http.Server) {
					logger.Info("Starting dev service", "listenAddress", srv.Addr)
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("Dev service failed", "listenAddress", srv.Addr, "err", err)
					}
				}(srv)
			}

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
			<-exit

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			for _, srv := range servers {
				if err := srv.Shutdown(ctx); err != nil {
					logger.Error("Graceful shutdown failed", "listenAddress", srv.Addr, "err", err)
				}
			}
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
