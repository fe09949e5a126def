package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ruteri/vc-storage-client/api"
	"github.com/ruteri/vc-storage-client/blobstore"
	"github.com/ruteri/vc-storage-client/flow"
	"github.com/ruteri/vc-storage-client/interfaces"
)

const (
	// maxBodySize bounds JSON request bodies (1MB).
	maxBodySize = 1024 * 1024

	// defaultMaxUploadSize bounds multipart uploads when not configured (32MB).
	defaultMaxUploadSize = 32 << 20
)

// FormDefaults prefill the forms of a front end.
type FormDefaults struct {
	IssuerDID interfaces.DID `json:"issuer_did"`
	OwnerDID  interfaces.DID `json:"owner_did"`
	ViewerDID interfaces.DID `json:"viewer_did"`
}

// FileView describes the displayed file.
type FileView struct {
	CID           interfaces.CID `json:"cid"`
	Filename      string         `json:"filename"`
	MIMEType      string         `json:"mime_type"`
	Size          int            `json:"size"`
	ViaCredential bool           `json:"via_credential"`
	URL           string         `json:"url,omitempty"`
}

// StateView is the JSON rendering of a tab's state.
type StateView struct {
	Tab      flow.Tab        `json:"tab"`
	Phase    flow.Phase      `json:"phase"`
	Busy     bool            `json:"busy"`
	Error    string          `json:"error,omitempty"`
	Upload   json.RawMessage `json:"upload,omitempty"`
	VC       json.RawMessage `json:"vc,omitempty"`
	File     *FileView       `json:"file,omitempty"`
	Defaults FormDefaults    `json:"defaults"`
}

// ViewRequest is the body of POST /ui/view.
type ViewRequest struct {
	CID       interfaces.CID `json:"cid"`
	IssuerDID interfaces.DID `json:"issuer_did"`
}

// CreateVCRequest is the body of POST /ui/createvc.
type CreateVCRequest struct {
	CID       interfaces.CID `json:"cid"`
	OwnerDID  interfaces.DID `json:"owner_did"`
	ViewerDID interfaces.DID `json:"viewer_did"`
	IssuerDID interfaces.DID `json:"issuer_did"`
}

// ViewVCRequest is the body of POST /ui/viewvc.
type ViewVCRequest struct {
	CID       interfaces.CID     `json:"cid"`
	JWTToken  interfaces.VCToken `json:"jwt_token"`
	HolderDID interfaces.DID     `json:"holder_did"`
}

// ExportRequest is the body of POST /ui/export.
type ExportRequest struct {
	Destinations []string `json:"destinations"`
}

// ExportResponse is the answer to POST /ui/export.
type ExportResponse struct {
	Location string `json:"location"`
}

// Handler serves the UI API on top of a flow controller.
type Handler struct {
	controller    *flow.Controller
	blobs         *blobstore.Registry
	exports       interfaces.ArtifactStoreFactory
	defaults      FormDefaults
	maxUploadSize int64
	log           *slog.Logger
}

// NewHandler creates the UI handler.
//
// Parameters:
//   - controller: Session controller driving the four flows
//   - blobs: Registry the file manager client allocates retrieved payloads into
//   - exports: Factory for export destinations, may be nil to disable /ui/export
//   - defaults: Form prefill values reported in every state
//   - log: Structured logger
func NewHandler(controller *flow.Controller, blobs *blobstore.Registry, exports interfaces.ArtifactStoreFactory, defaults FormDefaults, log *slog.Logger) *Handler {
	return &Handler{
		controller:    controller,
		blobs:         blobs,
		exports:       exports,
		defaults:      defaults,
		maxUploadSize: defaultMaxUploadSize,
		log:           log,
	}
}

// SetMaxUploadSize overrides the multipart limit of the upload route.
func (h *Handler) SetMaxUploadSize(n int64) {
	if n > 0 {
		h.maxUploadSize = n
	}
}

// HandleState returns the selected tab's state.
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	h.writeState(w, http.StatusOK, h.controller.State())
}

// HandleSelectTab switches tabs.
//
// Status codes:
//   - 200 OK: tab selected
//   - 400 Bad Request: unknown tab
func (h *Handler) HandleSelectTab(w http.ResponseWriter, r *http.Request) {
	state, err := h.controller.Select(flow.Tab(r.PathValue("tab")))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeState(w, http.StatusOK, state)
}

// HandleUpload runs the upload flow from a multipart form.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart body: %v", err))
		return
	}

	req := interfaces.UploadRequest{
		IssuerDID:   interfaces.DID(r.FormValue("issuer_did")),
		OwnerDID:    interfaces.DID(r.FormValue("owner_did")),
		AccessLevel: interfaces.AccessLevel(r.FormValue("access_level")),
	}

	if part, header, err := r.FormFile("data"); err == nil {
		defer part.Close()
		content, err := io.ReadAll(part)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "could not read uploaded file")
			return
		}
		req.Content = content
		req.Filename = header.Filename
	} else if !errors.Is(err, http.ErrMissingFile) {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid file field: %v", err))
		return
	}

	if req.AccessLevel != "" {
		level, err := interfaces.ParseAccessLevel(string(req.AccessLevel))
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.AccessLevel = level
	}

	state, err := h.controller.Upload(r.Context(), req)
	h.writeRun(w, flow.TabUpload, state, err)
}

// HandleView runs the issuer view flow.
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	var req ViewRequest
	if !h.decode(w, r, &req) {
		return
	}
	state, err := h.controller.ViewAsIssuer(r.Context(), req.CID, req.IssuerDID)
	h.writeRun(w, flow.TabView, state, err)
}

// HandleCreateVC runs the VC-mint flow.
func (h *Handler) HandleCreateVC(w http.ResponseWriter, r *http.Request) {
	var req CreateVCRequest
	if !h.decode(w, r, &req) {
		return
	}
	state, err := h.controller.CreateAccessibleVC(r.Context(), interfaces.AccessibleVCRequest{
		IssuerDID: req.IssuerDID,
		OwnerDID:  req.OwnerDID,
		CID:       req.CID,
		HolderDID: req.ViewerDID,
	})
	h.writeRun(w, flow.TabCreateVC, state, err)
}

// HandleViewVC runs the view-with-VC flow.
func (h *Handler) HandleViewVC(w http.ResponseWriter, r *http.Request) {
	var req ViewVCRequest
	if !h.decode(w, r, &req) {
		return
	}
	state, err := h.controller.ViewByCredential(r.Context(), flow.ViewByCredentialRequest{
		CID:       req.CID,
		HolderDID: req.HolderDID,
		VCToken:   req.JWTToken,
	})
	h.writeRun(w, flow.TabViewVC, state, err)
}

// HandleExport writes the displayed file to the requested destinations.
//
// Status codes:
//   - 200 OK: JSON ExportResponse
//   - 400 Bad Request: no or invalid destinations
//   - 404 Not Found: no file is displayed
//   - 502 Bad Gateway: every destination failed
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if h.exports == nil {
		h.writeError(w, http.StatusNotFound, "export is disabled")
		return
	}

	var req ExportRequest
	if !h.decode(w, r, &req) {
		return
	}
	if len(req.Destinations) == 0 {
		h.writeError(w, http.StatusBadRequest, "no destinations given")
		return
	}

	file := h.controller.DisplayedFile()
	if file == nil {
		h.writeError(w, http.StatusNotFound, "no file is displayed")
		return
	}

	store, err := h.exports.CreateMultiStore(req.Destinations)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	location, err := store.Put(r.Context(), file)
	if err != nil {
		h.log.Warn("Export failed", slog.String("cid", string(file.CID)), "err", err)
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, ExportResponse{Location: location})
}

// HandleBlob serves the payload behind a handle as an attachment.
func (h *Handler) HandleBlob(w http.ResponseWriter, r *http.Request) {
	blob, ok := h.blobs.Open(blobstore.ParseHandle(r.PathValue("handle")))
	if !ok {
		http.Error(w, "unknown handle", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", blob.MIMEType)
	w.Header().Set(api.ContentDispositionHeader, fmt.Sprintf("attachment; filename=%q", blob.Filename))
	w.Write(blob.Data)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *Handler) view(state flow.State) StateView {
	v := StateView{
		Tab:      state.Tab,
		Phase:    state.Phase,
		Busy:     h.controller.Busy(),
		Error:    flow.Message(state.Tab, state.Err),
		Defaults: h.defaults,
	}
	if state.Upload != nil {
		v.Upload = state.Upload.Raw
	}
	if state.VC != nil {
		v.VC = state.VC.Raw
	}
	if f := state.File; f != nil {
		v.File = &FileView{
			CID:           f.CID,
			Filename:      f.Filename,
			MIMEType:      f.MIMEType,
			Size:          f.Size(),
			ViaCredential: f.ViaCredential,
		}
		if f.Handle != "" {
			v.File.URL = "/blobs/" + blobstore.ID(f.Handle)
		}
	}
	return v
}

// writeRun renders the outcome of a run. Failed runs keep the state body and
// carry a status derived from the error.
func (h *Handler) writeRun(w http.ResponseWriter, tab flow.Tab, state flow.State, err error) {
	if err == nil {
		h.writeState(w, http.StatusOK, state)
		return
	}

	status := statusFor(err)
	if state.Tab == "" {
		// Busy or superseded: the run never produced a state of its own.
		v := h.view(h.controller.State())
		v.Error = flow.Message(tab, err)
		h.writeJSON(w, status, v)
		return
	}
	h.writeState(w, status, state)
}

func (h *Handler) writeState(w http.ResponseWriter, status int, state flow.State) {
	h.writeJSON(w, status, h.view(state))
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

func statusFor(err error) int {
	var reqErr *interfaces.RequestError
	switch {
	case errors.Is(err, interfaces.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, interfaces.ErrBusy), errors.Is(err, flow.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, interfaces.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, interfaces.ErrNetworkUnreachable), errors.Is(err, interfaces.ErrMalformedPresentationResponse), errors.As(err, &reqErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
