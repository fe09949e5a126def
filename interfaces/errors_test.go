package interfaces

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestError(t *testing.T) {
	err := fmt.Errorf("view by credential: %w", &RequestError{
		Kind:       ErrPresentationExchangeFailed,
		StatusCode: 403,
		Status:     "Forbidden",
		Body:       "holder mismatch",
	})

	assert.ErrorIs(t, err, ErrPresentationExchangeFailed)
	assert.NotErrorIs(t, err, ErrFileRetrievalFailed)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 403, reqErr.StatusCode)
	assert.Equal(t, "presentation exchange failed: 403 Forbidden - holder mismatch", reqErr.Error())

	noBody := &RequestError{Kind: ErrFileRetrievalFailed, StatusCode: 500, Status: "Internal Server Error"}
	assert.Equal(t, "file retrieval failed: 500 Internal Server Error", noBody.Error())
}

func TestNetworkError(t *testing.T) {
	cause := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	err := &NetworkError{Op: "fetch file", Err: cause}

	assert.ErrorIs(t, err, ErrNetworkUnreachable)

	var opErr *net.OpError
	assert.ErrorAs(t, err, &opErr)
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Required("cid", "Please enter a CID"))

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "wrapped: Please enter a CID", err.Error())
}

func TestParseAccessLevel(t *testing.T) {
	level, err := ParseAccessLevel("Public")
	require.NoError(t, err)
	assert.Equal(t, AccessPublic, level)

	level, err = ParseAccessLevel(" private ")
	require.NoError(t, err)
	assert.Equal(t, AccessPrivate, level)

	_, err = ParseAccessLevel("restricted")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewPresentation(t *testing.T) {
	p := NewPresentation("did:x:holder", "eyJhbGciOi.x.y")
	assert.Equal(t, []string{"VerifiablePresentation"}, p.Types)
	assert.Equal(t, []VCToken{"eyJhbGciOi.x.y"}, p.VerifiableCredential)
	assert.Equal(t, DID("did:x:holder"), p.Holder)
}

func TestDIDFromAddress(t *testing.T) {
	addr := common.HexToAddress("0xD012EF45A753535BF3774CEF3A4884115C69B9BF")
	assert.Equal(t, DID("did:nda:testnet:0xd012ef45a753535bf3774cef3a4884115c69b9bf"), DIDFromAddress("testnet", addr))
}
