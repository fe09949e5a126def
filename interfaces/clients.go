package interfaces

import "context"

// PresentationExchanger turns a VC into a single-use authorization token.
type PresentationExchanger interface {
	ExchangePresentation(ctx context.Context, holder DID, vc VCToken) (AuthorizationToken, error)
}

// FileRetriever fetches file bytes by CID.
type FileRetriever interface {
	RetrieveFile(ctx context.Context, cid CID, mode AuthMode) (*RetrievedFile, error)
}

// FileUploader uploads a file under an access policy.
type FileUploader interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)
}

// CredentialIssuer mints VCs granting a holder access to a file.
type CredentialIssuer interface {
	IssueAccessibleVC(ctx context.Context, req AccessibleVCRequest) (*AccessibleVC, error)
}

// FileManager is the complete file manager surface.
type FileManager interface {
	FileRetriever
	FileUploader
	CredentialIssuer
}

// HandleStore hands out caller-owned handles for retrieved payloads.
// Every allocated handle must be released exactly once by its owner.
type HandleStore interface {
	Allocate(data []byte, mimeType, filename string) string
	Release(handle string) bool
}

// SecretSource provides the presentation service API key.
type SecretSource interface {
	APIKey(ctx context.Context) (string, error)
}
