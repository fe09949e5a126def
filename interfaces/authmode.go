package interfaces

// AuthMode selects how a file retrieval identifies the caller.
// The implementations are Anonymous, IssuerIdentity and Bearer.
type AuthMode interface {
	authMode()
	String() string
}

// Anonymous fetches through the viewer path without any identity header.
type Anonymous struct{}

// IssuerIdentity fetches through the issuer path with the issuer DID in a header.
type IssuerIdentity struct {
	IssuerDID DID
}

// Bearer fetches through the viewer path with an authorization token.
type Bearer struct {
	Token AuthorizationToken
}

func (Anonymous) authMode()      {}
func (IssuerIdentity) authMode() {}
func (Bearer) authMode()         {}

func (Anonymous) String() string      { return "anonymous" }
func (IssuerIdentity) String() string { return "issuer" }
func (Bearer) String() string         { return "bearer" }
