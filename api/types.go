package api

import "github.com/ruteri/vc-storage-client/interfaces"

// Header constants used in requests to the remote services.
const (
	// IssuerDIDHeader carries the issuer identity on issuer-scoped endpoints.
	IssuerDIDHeader = "x-issuer-did"

	// APIKeyHeader authenticates the client to the presentation service.
	APIKeyHeader = "x-api-key"

	// AuthorizationHeader carries the token obtained from a presentation exchange.
	AuthorizationHeader = "Authorization"

	// ContentDispositionHeader names the downloaded file.
	ContentDispositionHeader = "Content-Disposition"

	contentTypeJSON  = "application/json"
	contentTypeOctet = "application/octet-stream"
)

// Remote endpoint paths.
const (
	UploadPath        = "/api/v1/issuer/files/upload"
	IssuerFilePath    = "/api/v1/issuer/files/"
	ViewerFilePath    = "/api/v1/viewer/files/"
	AccessibleVCPath  = "/api/v1/files/accessible-vc"
	PresentationsPath = "/api/v2/presentations"
)

// Multipart field names of the upload request.
const (
	UploadFieldData        = "data"
	UploadFieldAccessLevel = "access_level"
	UploadFieldOwnerDID    = "owner_did"
	UploadFieldEncryptType = "encrypt_type"
)

// DefaultFilename is used when a response does not name the file.
const DefaultFilename = "download"

// AccessibleVCRequest is the JSON body of the VC-mint request.
type AccessibleVCRequest struct {
	CID    interfaces.CID `json:"cid"`
	Holder interfaces.DID `json:"holder"`
}

// PresentationResponse is the part of the presentation service response the client reads.
// Data is kept as a pointer so a missing field can be told apart from an empty one.
type PresentationResponse struct {
	Data *string `json:"data"`
}
