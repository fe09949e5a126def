package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ruteri/vc-storage-client/cmd/flags"
	"github.com/ruteri/vc-storage-client/common"
	"github.com/ruteri/vc-storage-client/flow"
	"github.com/ruteri/vc-storage-client/interfaces"
	"github.com/ruteri/vc-storage-client/storage"
	"github.com/urfave/cli/v2"
)

var flagCID = &cli.StringFlag{
	Name:     "cid",
	Required: true,
	Usage:    "content id of the file",
}
var flagFile = &cli.StringFlag{
	Name:     "file",
	Required: true,
	Usage:    "path of the file to upload",
}
var flagAccessLevel = &cli.StringFlag{
	Name:  "access-level",
	Value: string(interfaces.AccessPrivate),
	Usage: "access policy of the upload: private or public",
}
var flagVC = &cli.StringFlag{
	Name:    "vc",
	EnvVars: []string{"VCFILES_VC"},
	Usage:   "VC JWT granting access, omit to fetch anonymously",
}
var flagOutput = &cli.StringSliceFlag{
	Name:  "output",
	Usage: "export destination URI (file://dir, s3://bucket/prefix, ipfs://host:port), repeatable",
}

type runner struct {
	log          *slog.Logger
	orchestrator *flow.Orchestrator
	exports      *storage.Factory
}

func newApp(cCtx *cli.Context) (*runner, error) {
	logger := flags.SetupLogger(cCtx)

	source, err := flags.SecretSource(cCtx, logger)
	if err != nil {
		logger.Error("Failed to configure API key source", "err", err)
		return nil, err
	}

	files, auth, err := flags.Clients(cCtx, logger, nil, source)
	if err != nil {
		logger.Error("Failed to configure clients", "err", err)
		return nil, err
	}

	o := flow.NewOrchestrator(auth, files, logger)
	o.OnStage = func(cid interfaces.CID, stage flow.Stage) {
		logger.Debug("Retrieval stage", slog.String("cid", string(cid)), slog.String("stage", stage.String()))
	}

	return &runner{
		log:          logger,
		orchestrator: o,
		exports:      storage.NewFactory(logger),
	}, nil
}

func main() {
	app := &cli.App{
		Name:  "vcfiles",
		Usage: "Upload, mint credentials for and retrieve VC-gated files",
		Flags: append(append([]cli.Flag{flags.LogServiceFlagFn("vcfiles")}, flags.CommonFlags...), flags.ServiceFlags...),
		Commands: []*cli.Command{
			{
				Name:  "upload",
				Usage: "upload a file under an access policy",
				Flags: []cli.Flag{flagFile, flagAccessLevel, flags.IssuerDIDFlag, flags.OwnerDIDFlag},
				Action: func(cCtx *cli.Context) error {
					a, err := newApp(cCtx)
					if err != nil {
						return err
					}
					return a.upload(cCtx)
				},
			},
			{
				Name:  "view",
				Usage: "fetch a file as its issuer",
				Flags: []cli.Flag{flagCID, flags.IssuerDIDFlag, flagOutput},
				Action: func(cCtx *cli.Context) error {
					a, err := newApp(cCtx)
					if err != nil {
						return err
					}
					file, err := a.orchestrator.ViewAsIssuer(cCtx.Context, interfaces.CID(cCtx.String(flagCID.Name)), interfaces.DID(cCtx.String(flags.IssuerDIDFlag.Name)))
					if err != nil {
						return a.fail(flow.TabView, err)
					}
					return a.emit(cCtx.Context, file, cCtx.StringSlice(flagOutput.Name))
				},
			},
			{
				Name:  "create-vc",
				Usage: "mint a credential granting a viewer access to a file",
				Flags: []cli.Flag{flagCID, flags.IssuerDIDFlag, flags.OwnerDIDFlag, flags.ViewerDIDFlag},
				Action: func(cCtx *cli.Context) error {
					a, err := newApp(cCtx)
					if err != nil {
						return err
					}
					vc, err := a.orchestrator.CreateAccessibleVC(cCtx.Context, interfaces.AccessibleVCRequest{
						IssuerDID: interfaces.DID(cCtx.String(flags.IssuerDIDFlag.Name)),
						OwnerDID:  interfaces.DID(cCtx.String(flags.OwnerDIDFlag.Name)),
						CID:       interfaces.CID(cCtx.String(flagCID.Name)),
						HolderDID: interfaces.DID(cCtx.String(flags.ViewerDIDFlag.Name)),
					})
					if err != nil {
						return a.fail(flow.TabCreateVC, err)
					}
					fmt.Println(string(vc.Raw))
					return nil
				},
			},
			{
				Name:  "view-vc",
				Usage: "fetch a file with a credential, or anonymously without one",
				Flags: []cli.Flag{flagCID, flagVC, flags.ViewerDIDFlag, flagOutput},
				Action: func(cCtx *cli.Context) error {
					a, err := newApp(cCtx)
					if err != nil {
						return err
					}
					file, err := a.orchestrator.ViewByCredential(cCtx.Context, flow.ViewByCredentialRequest{
						CID:       interfaces.CID(cCtx.String(flagCID.Name)),
						HolderDID: interfaces.DID(cCtx.String(flags.ViewerDIDFlag.Name)),
						VCToken:   interfaces.VCToken(cCtx.String(flagVC.Name)),
					})
					if err != nil {
						return a.fail(flow.TabViewVC, err)
					}
					return a.emit(cCtx.Context, file, cCtx.StringSlice(flagOutput.Name))
				},
			},
		},
		Version: common.Version,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func (a *runner) upload(cCtx *cli.Context) error {
	path := cCtx.String(flagFile.Name)
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", path, err)
	}

	level, err := interfaces.ParseAccessLevel(cCtx.String(flagAccessLevel.Name))
	if err != nil {
		return a.fail(flow.TabUpload, err)
	}

	result, err := a.orchestrator.Upload(cCtx.Context, interfaces.UploadRequest{
		IssuerDID:   interfaces.DID(cCtx.String(flags.IssuerDIDFlag.Name)),
		OwnerDID:    interfaces.DID(cCtx.String(flags.OwnerDIDFlag.Name)),
		AccessLevel: level,
		Filename:    filepath.Base(path),
		Content:     content,
	})
	if err != nil {
		return a.fail(flow.TabUpload, err)
	}

	a.log.Info("Uploaded file", slog.String("cid", string(result.CID)))
	fmt.Println(string(result.Raw))
	return nil
}

// emit exports the file to every destination, or reports it when none is given.
func (a *runner) emit(ctx context.Context, file *interfaces.RetrievedFile, outputs []string) error {
	a.log.Info("Retrieved file",
		slog.String("cid", string(file.CID)),
		slog.String("filename", file.Filename),
		slog.String("mimeType", file.MIMEType),
		slog.Int("size", file.Size()),
		slog.Bool("viaCredential", file.ViaCredential))

	if len(outputs) == 0 {
		fmt.Printf("%s\t%s\t%d bytes\n", file.Filename, file.MIMEType, file.Size())
		return nil
	}

	store, err := a.exports.CreateMultiStore(outputs)
	if err != nil {
		return err
	}
	location, err := store.Put(ctx, file)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Println(location)
	return nil
}

// fail logs and returns the user-facing message of a flow error.
func (a *runner) fail(tab flow.Tab, err error) error {
	a.log.Error("Request failed", slog.String("flow", string(tab)), "err", err)
	return errors.New(flow.Message(tab, err))
}
