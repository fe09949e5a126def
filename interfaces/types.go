package interfaces

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// CID is a content identifier naming an immutable file by content hash.
// It is treated as an opaque key and never parsed.
type CID string

// DID is a decentralized identifier naming an issuer, owner, holder or viewer.
// It is opaque to the client.
type DID string

// VCToken is a JWT-encoded Verifiable Credential. The client never decodes it.
type VCToken string

// AuthorizationToken is the opaque value returned by the presentation service.
// It is sent verbatim as the Authorization header of a single retrieval.
type AuthorizationToken string

// DIDFromAddress builds a did:nda identifier for an Ethereum address on the given network.
func DIDFromAddress(network string, address common.Address) DID {
	return DID(fmt.Sprintf("did:nda:%s:%s", network, strings.ToLower(address.Hex())))
}

// AccessLevel is the access policy a file is uploaded under.
type AccessLevel string

const (
	AccessPrivate AccessLevel = "private"
	AccessPublic  AccessLevel = "public"
)

// ParseAccessLevel accepts "private" or "public".
func ParseAccessLevel(s string) (AccessLevel, error) {
	switch AccessLevel(strings.ToLower(strings.TrimSpace(s))) {
	case AccessPrivate:
		return AccessPrivate, nil
	case AccessPublic:
		return AccessPublic, nil
	default:
		return "", &ValidationError{Field: "access_level", Message: fmt.Sprintf("unsupported access level %q", s)}
	}
}

// EncryptType is the only encryption scheme the file manager is asked to apply.
const EncryptType = "ecdh-es"

// PresentationType is the single type tag of every presentation built by the client.
const PresentationType = "VerifiablePresentation"

// Presentation wraps one VC for submission to the presentation service.
// It is built fresh for every retrieval attempt.
type Presentation struct {
	Holder               DID       `json:"holder"`
	Types                []string  `json:"types"`
	VerifiableCredential []VCToken `json:"verifiableCredential"`
}

// NewPresentation builds the presentation for a single credential.
func NewPresentation(holder DID, vc VCToken) *Presentation {
	return &Presentation{
		Holder:               holder,
		Types:                []string{PresentationType},
		VerifiableCredential: []VCToken{vc},
	}
}

// RetrievedFile is the payload of a successful retrieval.
type RetrievedFile struct {
	// CID the file was requested under.
	CID CID

	// Data is the binary payload.
	Data []byte

	// MIMEType is the declared content type of the response.
	MIMEType string

	// Filename is taken from Content-Disposition, "download" when absent.
	Filename string

	// ViaCredential is true iff a non-empty VC token was supplied for the request.
	// It does not say whether the server actually gated the file.
	ViaCredential bool

	// Handle names the caller-owned in-memory copy of Data, empty when no
	// HandleStore was configured. The owner must release it when superseded.
	Handle string
}

// Size returns the payload length in bytes.
func (f *RetrievedFile) Size() int {
	return len(f.Data)
}

// UploadRequest describes a file upload under an access policy.
type UploadRequest struct {
	IssuerDID   DID
	OwnerDID    DID
	AccessLevel AccessLevel
	Filename    string
	Content     []byte
}

// UploadResult is the file manager's upload response.
type UploadResult struct {
	CID CID `json:"cid"`

	// Raw is the complete response body, kept for display.
	Raw json.RawMessage `json:"-"`
}

// AccessibleVCRequest asks the file manager to mint a VC granting HolderDID access to CID.
type AccessibleVCRequest struct {
	IssuerDID DID
	OwnerDID  DID
	CID       CID
	HolderDID DID
}

// AccessibleVC is the file manager's VC-mint response.
type AccessibleVC struct {
	VCJWT VCToken `json:"vc_jwt"`

	// Raw is the complete response body, kept for display.
	Raw json.RawMessage `json:"-"`
}
