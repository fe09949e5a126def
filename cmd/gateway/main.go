package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ruteri/vc-storage-client/blobstore"
	"github.com/ruteri/vc-storage-client/cmd/flags"
	"github.com/ruteri/vc-storage-client/common"
	"github.com/ruteri/vc-storage-client/flow"
	"github.com/ruteri/vc-storage-client/httpserver"
	"github.com/ruteri/vc-storage-client/interfaces"
	"github.com/ruteri/vc-storage-client/storage"
	"github.com/urfave/cli/v2"
)

var flagListenAddr = &cli.StringFlag{
	Name:    "listen-addr",
	Value:   "127.0.0.1:8080",
	EnvVars: []string{"VCFILES_LISTEN_ADDR"},
	Usage:   "address to listen on for the UI API",
}
var flagDisableExport = &cli.BoolFlag{
	Name:  "disable-export",
	Usage: "reject /ui/export requests",
}

func main() {
	app := &cli.App{
		Name:  "vcfiles-gateway",
		Usage: "Serve the VC file flows to a browser front end",
		Flags: append(append(append([]cli.Flag{
			flagListenAddr,
			flagDisableExport,
			flags.LogServiceFlagFn("vcfiles-gateway"),
			flags.IssuerDIDFlag,
			flags.OwnerDIDFlag,
			flags.ViewerDIDFlag,
		}, flags.CommonFlags...), flags.ServiceFlags...), flags.ServerFlags...),
		Version: common.Version,
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			source, err := flags.SecretSource(cCtx, logger)
			if err != nil {
				logger.Error("Failed to configure API key source", "err", err)
				return err
			}
			// A missing key only fails view-with-VC runs.
			if err := flags.CheckAPIKey(cCtx.Context, source); err != nil {
				logger.Warn("Presentation exchange will fail", "err", err)
			}

			blobs := blobstore.NewRegistry(logger)
			files, auth, err := flags.Clients(cCtx, logger, blobs, source)
			if err != nil {
				logger.Error("Failed to configure clients", "err", err)
				return err
			}

			controller := flow.NewController(flow.NewOrchestrator(auth, files, logger), blobs, logger)

			var exports interfaces.ArtifactStoreFactory
			if !cCtx.Bool(flagDisableExport.Name) {
				exports = storage.NewFactory(logger)
			}

			handler := httpserver.NewHandler(controller, blobs, exports, httpserver.FormDefaults{
				IssuerDID: interfaces.DID(cCtx.String(flags.IssuerDIDFlag.Name)),
				OwnerDID:  interfaces.DID(cCtx.String(flags.OwnerDIDFlag.Name)),
				ViewerDID: interfaces.DID(cCtx.String(flags.ViewerDIDFlag.Name)),
			}, logger)

			cfg := flags.ConfigureServer(cCtx, logger, cCtx.String(flagListenAddr.Name))
			server, err := httpserver.New(cfg, handler)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
			<-exit

			// Shutdown also closes the controller, releasing the displayed handle.
			server.Shutdown()
			logger.Info("Gateway shutdown complete", "liveHandles", blobs.Live())
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
