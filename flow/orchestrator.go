package flow

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ruteri/vc-storage-client/interfaces"
)

// Stage is a step of a retrieval run.
type Stage int

const (
	StageIdle Stage = iota
	StageExchangingPresentation
	StageFetchingFile
	StageSucceeded
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageExchangingPresentation:
		return "exchanging_presentation"
	case StageFetchingFile:
		return "fetching_file"
	case StageSucceeded:
		return "succeeded"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StageObserver is notified of every stage a retrieval run enters.
type StageObserver func(cid interfaces.CID, stage Stage)

// ViewByCredentialRequest is the input of a third-party retrieval.
// An empty VCToken means the file is fetched anonymously.
type ViewByCredentialRequest struct {
	CID       interfaces.CID
	HolderDID interfaces.DID
	VCToken   interfaces.VCToken
}

// Orchestrator runs the four flows against the remote services.
type Orchestrator struct {
	exchanger interfaces.PresentationExchanger
	files     interfaces.FileManager
	log       *slog.Logger

	// OnStage, when set, receives the stage transitions of retrieval runs.
	OnStage StageObserver
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(exchanger interfaces.PresentationExchanger, files interfaces.FileManager, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		exchanger: exchanger,
		files:     files,
		log:       log,
	}
}

func (o *Orchestrator) enter(cid interfaces.CID, stage Stage) {
	o.log.Debug("Retrieval stage", slog.String("cid", string(cid)), slog.String("stage", stage.String()))
	if o.OnStage != nil {
		o.OnStage(cid, stage)
	}
}

func trimCID(cid interfaces.CID) interfaces.CID {
	return interfaces.CID(strings.TrimSpace(string(cid)))
}

func trimDID(did interfaces.DID) interfaces.DID {
	return interfaces.DID(strings.TrimSpace(string(did)))
}

// ViewByCredential retrieves a file as a third party.
//
// Without a credential the file is fetched anonymously from the viewer path. With
// one, the credential is first exchanged for an authorization token which is then
// used once as the Authorization header of the fetch. A failed exchange ends the
// run; there is no anonymous fallback.
func (o *Orchestrator) ViewByCredential(ctx context.Context, req ViewByCredentialRequest) (*interfaces.RetrievedFile, error) {
	cid := trimCID(req.CID)
	if cid == "" {
		return nil, interfaces.Required("cid", "Please enter a CID")
	}
	vc := interfaces.VCToken(strings.TrimSpace(string(req.VCToken)))
	holder := trimDID(req.HolderDID)
	if vc != "" && holder == "" {
		return nil, interfaces.Required("holder_did", "Please enter a Holder DID")
	}

	start := time.Now()
	var mode interfaces.AuthMode = interfaces.Anonymous{}

	if vc != "" {
		o.enter(cid, StageExchangingPresentation)
		token, err := o.exchanger.ExchangePresentation(ctx, holder, vc)
		if err != nil {
			o.enter(cid, StageFailed)
			o.log.Info("Presentation exchange failed", slog.String("cid", string(cid)), "err", err)
			return nil, err
		}
		mode = interfaces.Bearer{Token: token}
	}

	o.enter(cid, StageFetchingFile)
	file, err := o.files.RetrieveFile(ctx, cid, mode)
	if err != nil {
		o.enter(cid, StageFailed)
		o.log.Info("File retrieval failed",
			slog.String("cid", string(cid)),
			slog.String("mode", mode.String()),
			"err", err)
		return nil, err
	}
	file.ViaCredential = vc != ""

	o.enter(cid, StageSucceeded)
	o.log.Info("Retrieved file",
		slog.String("cid", string(cid)),
		slog.Bool("viaCredential", file.ViaCredential),
		slog.Int("size", file.Size()),
		slog.Duration("duration", time.Since(start)))

	return file, nil
}

// ViewAsIssuer retrieves a file through the issuer-scoped path.
func (o *Orchestrator) ViewAsIssuer(ctx context.Context, cid interfaces.CID, issuer interfaces.DID) (*interfaces.RetrievedFile, error) {
	cid = trimCID(cid)
	if cid == "" {
		return nil, interfaces.Required("cid", "Please enter a CID")
	}
	issuer = trimDID(issuer)
	if issuer == "" {
		return nil, interfaces.Required("issuer_did", "Please enter an Issuer DID")
	}

	o.enter(cid, StageFetchingFile)
	file, err := o.files.RetrieveFile(ctx, cid, interfaces.IssuerIdentity{IssuerDID: issuer})
	if err != nil {
		o.enter(cid, StageFailed)
		return nil, err
	}
	o.enter(cid, StageSucceeded)
	return file, nil
}

// Upload uploads a file under the requested access policy.
func (o *Orchestrator) Upload(ctx context.Context, req interfaces.UploadRequest) (*interfaces.UploadResult, error) {
	if req.Content == nil {
		return nil, interfaces.Required("file", "Please select a file to upload")
	}
	if req.AccessLevel == "" {
		req.AccessLevel = interfaces.AccessPrivate
	}
	return o.files.Upload(ctx, req)
}

// CreateAccessibleVC mints a credential granting req.HolderDID access to req.CID.
func (o *Orchestrator) CreateAccessibleVC(ctx context.Context, req interfaces.AccessibleVCRequest) (*interfaces.AccessibleVC, error) {
	req.CID = trimCID(req.CID)
	req.OwnerDID = trimDID(req.OwnerDID)
	req.HolderDID = trimDID(req.HolderDID)

	switch {
	case req.CID == "":
		return nil, interfaces.Required("cid", "Please enter a CID")
	case req.OwnerDID == "":
		return nil, interfaces.Required("owner_did", "Please enter an Owner DID")
	case req.HolderDID == "":
		return nil, interfaces.Required("viewer_did", "Please enter a Viewer DID")
	}

	return o.files.IssueAccessibleVC(ctx, req)
}
