package filemanager

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/ruteri/vc-storage-client/api"
	"github.com/ruteri/vc-storage-client/interfaces"
)

// Client talks to the file manager service. It implements interfaces.FileManager.
type Client struct {
	baseURL    string
	httpClient *http.Client
	handles    interfaces.HandleStore
	log        *slog.Logger
}

// NewClient creates a file manager client.
//
// Parameters:
//   - baseURL: The base URL of the file manager (e.g., "https://fmanager-dev.pila.vn")
//   - handles: Store that receives every retrieved payload, may be nil
//   - log: Structured logger, may be nil
//   - timeout: Request timeout (optional, default none: a hung call blocks until
//     the context is cancelled or the transport fails)
//
// Returns:
//   - Configured Client instance
func NewClient(baseURL string, handles interfaces.HandleStore, log *slog.Logger, timeout ...time.Duration) *Client {
	if log == nil {
		log = slog.Default()
	}

	httpClient := &http.Client{}
	if len(timeout) > 0 && timeout[0] > 0 {
		httpClient.Timeout = timeout[0]
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		handles:    handles,
		log:        log,
	}
}

// BaseURL returns the file manager base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Upload sends a file to the file manager under the requested access policy.
// The body is multipart with the fields data, access_level, owner_did and
// encrypt_type (always ecdh-es); the issuer is identified by the x-issuer-did header.
//
// Returns:
//   - UploadResult with the CID assigned to the file and the raw response body
//   - *interfaces.RequestError of kind ErrUploadFailed on a non-2xx response
func (c *Client) Upload(ctx context.Context, req interfaces.UploadRequest) (*interfaces.UploadResult, error) {
	start := time.Now()

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)

	filename := req.Filename
	if filename == "" {
		filename = api.DefaultFilename
	}
	part, err := form.CreateFormFile(api.UploadFieldData, filename)
	if err != nil {
		return nil, fmt.Errorf("could not build upload form: %w", err)
	}
	if _, err := part.Write(req.Content); err != nil {
		return nil, fmt.Errorf("could not build upload form: %w", err)
	}

	fields := [][2]string{
		{api.UploadFieldAccessLevel, string(req.AccessLevel)},
		{api.UploadFieldOwnerDID, string(req.OwnerDID)},
		{api.UploadFieldEncryptType, interfaces.EncryptType},
	}
	for _, field := range fields {
		if err := form.WriteField(field[0], field[1]); err != nil {
			return nil, fmt.Errorf("could not build upload form: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("could not build upload form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+api.UploadPath, body)
	if err != nil {
		return nil, fmt.Errorf("could not initialize request: %w", err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	httpReq.Header.Set(api.IssuerDIDHeader, string(req.IssuerDID))

	resp, err := api.Do(c.httpClient, httpReq, "upload")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !api.IsSuccess(resp) {
		reqErr := api.NewRequestError(interfaces.ErrUploadFailed, resp)
		c.log.Warn("Upload rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("filename", filename),
			slog.Duration("duration", time.Since(start)))
		return nil, reqErr
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read upload response: %w", err)
	}

	var result interfaces.UploadResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("could not parse upload response: %w", err)
	}
	result.Raw = raw

	c.log.Info("Uploaded file",
		slog.String("cid", string(result.CID)),
		slog.String("filename", filename),
		slog.String("accessLevel", string(req.AccessLevel)),
		slog.Int("size", len(req.Content)),
		slog.Duration("duration", time.Since(start)))

	return &result, nil
}

// RetrieveFile fetches the file named by cid.
//
// The endpoint and headers depend on mode:
//   - IssuerIdentity: GET /api/v1/issuer/files/{cid} with x-issuer-did
//   - Bearer: GET /api/v1/viewer/files/{cid} with the token as Authorization header
//   - Anonymous: GET /api/v1/viewer/files/{cid} without identity
//
// A 401 answer is reported as interfaces.ErrPermissionDenied, any other non-2xx as
// ErrFileRetrievalFailed. When the client has a HandleStore the payload is registered
// and the returned file carries its handle; the caller owns and must release it.
func (c *Client) RetrieveFile(ctx context.Context, cid interfaces.CID, mode interfaces.AuthMode) (*interfaces.RetrievedFile, error) {
	if cid == "" {
		return nil, interfaces.Required("cid", "Please enter a CID")
	}
	if mode == nil {
		mode = interfaces.Anonymous{}
	}
	start := time.Now()

	var url string
	header := http.Header{}
	switch m := mode.(type) {
	case interfaces.IssuerIdentity:
		url = api.JoinPath(c.baseURL, api.IssuerFilePath, string(cid))
		header.Set(api.IssuerDIDHeader, string(m.IssuerDID))
	case interfaces.Bearer:
		url = api.JoinPath(c.baseURL, api.ViewerFilePath, string(cid))
		header.Set(api.AuthorizationHeader, string(m.Token))
	case interfaces.Anonymous:
		url = api.JoinPath(c.baseURL, api.ViewerFilePath, string(cid))
	default:
		return nil, fmt.Errorf("unsupported auth mode %T", mode)
	}
	header.Set("Accept", "application/octet-stream")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not initialize request: %w", err)
	}
	req.Header = header

	resp, err := api.Do(c.httpClient, req, "fetch file")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Info("File access denied",
			slog.String("cid", string(cid)),
			slog.String("mode", mode.String()))
		return nil, api.NewRequestError(interfaces.ErrPermissionDenied, resp)
	}
	if !api.IsSuccess(resp) {
		c.log.Warn("File fetch failed",
			slog.String("cid", string(cid)),
			slog.String("mode", mode.String()),
			slog.Int("status", resp.StatusCode))
		return nil, api.NewRequestError(interfaces.ErrFileRetrievalFailed, resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("could not read file response: %w", ctxErr)
		}
		return nil, fmt.Errorf("could not read file response: %w", err)
	}

	file := &interfaces.RetrievedFile{
		CID:      cid,
		Data:     data,
		MIMEType: api.MediaType(resp),
		Filename: api.FilenameFromContentDisposition(resp.Header.Get(api.ContentDispositionHeader)),
	}
	if c.handles != nil {
		file.Handle = c.handles.Allocate(file.Data, file.MIMEType, file.Filename)
	}

	c.log.Debug("Fetched file",
		slog.String("cid", string(cid)),
		slog.String("mode", mode.String()),
		slog.String("filename", file.Filename),
		slog.String("mimeType", file.MIMEType),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return file, nil
}

// IssueAccessibleVC asks the file manager to mint a VC granting req.HolderDID access to req.CID.
// The request is authenticated by the x-issuer-did header.
//
// Returns:
//   - AccessibleVC with the JWT-encoded credential and the raw response body
//   - *interfaces.RequestError of kind ErrCredentialIssuanceFailed on a non-2xx response
func (c *Client) IssueAccessibleVC(ctx context.Context, req interfaces.AccessibleVCRequest) (*interfaces.AccessibleVC, error) {
	reqJSON, err := json.Marshal(&api.AccessibleVCRequest{
		CID:    interfaces.CID(strings.TrimSpace(string(req.CID))),
		Holder: interfaces.DID(strings.TrimSpace(string(req.HolderDID))),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+api.AccessibleVCPath, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("could not initialize request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(api.IssuerDIDHeader, string(req.IssuerDID))

	resp, err := api.Do(c.httpClient, httpReq, "create accessible vc")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !api.IsSuccess(resp) {
		return nil, api.NewRequestError(interfaces.ErrCredentialIssuanceFailed, resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read vc response: %w", err)
	}

	var vc interfaces.AccessibleVC
	if err := json.Unmarshal(raw, &vc); err != nil {
		return nil, fmt.Errorf("could not parse vc response: %w", err)
	}
	vc.Raw = raw

	c.log.Info("Created accessible VC",
		slog.String("cid", string(req.CID)),
		slog.String("holder", string(req.HolderDID)))

	return &vc, nil
}
