package devservices

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/vc-storage-client/api"
	"github.com/ruteri/vc-storage-client/interfaces"
)

// maxUploadSize bounds a single upload.
const maxUploadSize = 32 << 20

// CredentialValidity is the lifetime of minted VCs.
const CredentialValidity = 24 * time.Hour

// StoredFile is a file held by the dev file manager.
type StoredFile struct {
	CID         interfaces.CID
	Data        []byte
	Filename    string
	MIMEType    string
	IssuerDID   interfaces.DID
	OwnerDID    interfaces.DID
	AccessLevel interfaces.AccessLevel
	UploadedAt  time.Time
}

// UploadResponse is the JSON answer to an upload.
type UploadResponse struct {
	CID         interfaces.CID         `json:"cid"`
	Filename    string                 `json:"filename"`
	Size        int                    `json:"size"`
	AccessLevel interfaces.AccessLevel `json:"access_level"`
	OwnerDID    interfaces.DID         `json:"owner_did"`
	EncryptType string                 `json:"encrypt_type"`
}

// AccessibleVCResponse is the JSON answer to a VC-mint request.
type AccessibleVCResponse struct {
	VCJWT  string         `json:"vc_jwt"`
	CID    interfaces.CID `json:"cid"`
	Holder interfaces.DID `json:"holder"`
}

// FileManager serves the file manager endpoints from memory.
type FileManager struct {
	keys Keys
	log  *slog.Logger

	mu    sync.RWMutex
	files map[interfaces.CID]*StoredFile
}

// NewFileManager creates an empty file manager.
func NewFileManager(keys Keys, log *slog.Logger) *FileManager {
	return &FileManager{
		keys:  keys,
		log:   log,
		files: make(map[interfaces.CID]*StoredFile),
	}
}

// RegisterRoutes registers the file manager routes.
func (fm *FileManager) RegisterRoutes(r chi.Router) {
	r.Post(api.UploadPath, fm.HandleUpload)
	r.Get(api.IssuerFilePath+"{cid}", fm.HandleIssuerFile)
	r.Post(api.AccessibleVCPath, fm.HandleAccessibleVC)
	r.Get(api.ViewerFilePath+"{cid}", fm.HandleViewerFile)
}

// File returns a stored file.
func (fm *FileManager) File(cid interfaces.CID) (*StoredFile, bool) {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	f, ok := fm.files[cid]
	return f, ok
}

// Put stores a file directly and returns its CID.
func (fm *FileManager) Put(f StoredFile) (interfaces.CID, error) {
	id, err := ContentID(f.Data)
	if err != nil {
		return "", err
	}
	f.CID = id
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now()
	}

	fm.mu.Lock()
	fm.files[id] = &f
	fm.mu.Unlock()

	return id, nil
}

// HandleUpload stores a multipart upload.
//
// Status codes:
//   - 200 OK: file stored, JSON UploadResponse
//   - 400 Bad Request: missing issuer header or form field, unsupported access level or encryption
func (fm *FileManager) HandleUpload(w http.ResponseWriter, r *http.Request) {
	issuer := interfaces.DID(r.Header.Get(api.IssuerDIDHeader))
	if issuer == "" {
		http.Error(w, "missing x-issuer-did header", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, fmt.Sprintf("invalid multipart body: %v", err), http.StatusBadRequest)
		return
	}

	accessLevel, err := interfaces.ParseAccessLevel(r.FormValue(api.UploadFieldAccessLevel))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if encryptType := r.FormValue(api.UploadFieldEncryptType); encryptType != interfaces.EncryptType {
		http.Error(w, fmt.Sprintf("unsupported encrypt_type %q", encryptType), http.StatusBadRequest)
		return
	}
	owner := interfaces.DID(r.FormValue(api.UploadFieldOwnerDID))
	if owner == "" {
		http.Error(w, "missing owner_did", http.StatusBadRequest)
		return
	}

	part, header, err := r.FormFile(api.UploadFieldData)
	if err != nil {
		http.Error(w, "missing data file", http.StatusBadRequest)
		return
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		http.Error(w, "could not read data file", http.StatusBadRequest)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(header.Filename)); byExt != "" {
			mimeType = byExt
		} else {
			mimeType = http.DetectContentType(data)
		}
	}

	id, err := fm.Put(StoredFile{
		Data:        data,
		Filename:    header.Filename,
		MIMEType:    mimeType,
		IssuerDID:   issuer,
		OwnerDID:    owner,
		AccessLevel: accessLevel,
	})
	if err != nil {
		fm.log.Error("Failed to derive CID", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	fm.log.Info("Stored file",
		slog.String("cid", string(id)),
		slog.String("issuer", string(issuer)),
		slog.String("owner", string(owner)),
		slog.String("accessLevel", string(accessLevel)),
		slog.Int("size", len(data)))

	writeJSON(w, fm.log, UploadResponse{
		CID:         id,
		Filename:    header.Filename,
		Size:        len(data),
		AccessLevel: accessLevel,
		OwnerDID:    owner,
		EncryptType: interfaces.EncryptType,
	})
}

// HandleIssuerFile serves a file to its issuer or owner.
//
// Status codes:
//   - 200 OK: file bytes
//   - 401 Unauthorized: caller is neither issuer nor owner
//   - 404 Not Found: unknown CID
func (fm *FileManager) HandleIssuerFile(w http.ResponseWriter, r *http.Request) {
	f, ok := fm.File(interfaces.CID(r.PathValue("cid")))
	if !ok {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	caller := interfaces.DID(r.Header.Get(api.IssuerDIDHeader))
	if caller == "" || (caller != f.IssuerDID && caller != f.OwnerDID) {
		http.Error(w, "caller may not read this file", http.StatusUnauthorized)
		return
	}

	serveFile(w, f)
}

// HandleAccessibleVC mints a VC granting a holder read access to a file.
// The caller must be the file's issuer or owner.
//
// Status codes:
//   - 200 OK: JSON AccessibleVCResponse
//   - 400 Bad Request: malformed body
//   - 403 Forbidden: caller is neither issuer nor owner
//   - 404 Not Found: unknown CID
func (fm *FileManager) HandleAccessibleVC(w http.ResponseWriter, r *http.Request) {
	var req api.AccessibleVCRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.CID == "" || req.Holder == "" {
		http.Error(w, "cid and holder are required", http.StatusBadRequest)
		return
	}

	f, ok := fm.File(req.CID)
	if !ok {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	caller := interfaces.DID(r.Header.Get(api.IssuerDIDHeader))
	if caller == "" || (caller != f.IssuerDID && caller != f.OwnerDID) {
		http.Error(w, "caller may not grant access to this file", http.StatusForbidden)
		return
	}

	vc, err := signAccess(fm.keys.Credential, caller, req.Holder, req.CID, CredentialValidity)
	if err != nil {
		fm.log.Error("Failed to sign credential", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	fm.log.Info("Minted accessible VC",
		slog.String("cid", string(req.CID)),
		slog.String("issuer", string(caller)),
		slog.String("holder", string(req.Holder)))

	writeJSON(w, fm.log, AccessibleVCResponse{VCJWT: vc, CID: req.CID, Holder: req.Holder})
}

// HandleViewerFile serves public files to anyone and private files to the
// bearer of an authorization token bound to the CID.
//
// Status codes:
//   - 200 OK: file bytes
//   - 401 Unauthorized: private file without a valid token for it
//   - 404 Not Found: unknown CID
func (fm *FileManager) HandleViewerFile(w http.ResponseWriter, r *http.Request) {
	f, ok := fm.File(interfaces.CID(r.PathValue("cid")))
	if !ok {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	if f.AccessLevel != interfaces.AccessPublic {
		token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get(api.AuthorizationHeader), "Bearer "))
		if token == "" {
			http.Error(w, "authorization required", http.StatusUnauthorized)
			return
		}
		claims, err := verifyAccess(fm.keys.Authorization, token)
		if err != nil || interfaces.CID(claims.CID) != f.CID {
			fm.log.Info("Rejected viewer token", slog.String("cid", string(f.CID)), "err", err)
			http.Error(w, "invalid authorization", http.StatusUnauthorized)
			return
		}
	}

	serveFile(w, f)
}

func serveFile(w http.ResponseWriter, f *StoredFile) {
	w.Header().Set("Content-Type", f.MIMEType)
	if f.Filename != "" {
		w.Header().Set(api.ContentDispositionHeader, fmt.Sprintf("attachment; filename=%q", f.Filename))
	}
	w.Write(f.Data)
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "err", err)
	}
}
