// Package interfaces defines core interfaces and types for the VC-gated file
// storage client, separating interface definitions from implementations.
//
// # Domain Types
//
// CID, DID, VCToken and AuthorizationToken are opaque strings: the client never
// parses or verifies them, trust is delegated to the remote services.
//
// Presentation wraps a single VC for the presentation service. RetrievedFile is
// the result of a successful retrieval and records whether it was obtained through
// a credential.
//
// # Client Interfaces
//
//   - PresentationExchanger: VC to authorization token
//   - FileRetriever, FileUploader, CredentialIssuer: the file manager endpoints
//   - HandleStore: caller-owned handles for retrieved payloads
//   - SecretSource: the presentation service API key
//
// # Storage Interfaces
//
// ArtifactStore exports a retrieved file to a file, S3 or IPFS destination.
//
// # Error Types
//
// Remote failures are *RequestError values whose Kind is one of the sentinel errors
// (ErrPresentationExchangeFailed, ErrFileRetrievalFailed, ...). Transport failures match
// ErrNetworkUnreachable, local input problems match ErrValidation.
package interfaces
