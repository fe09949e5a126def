package authservice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ruteri/vc-storage-client/interfaces"
	"github.com/ruteri/vc-storage-client/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{}

func (failingSource) APIKey(context.Context) (string, error) {
	return "", errors.New("vault sealed")
}

func newTestClient(url string) *Client {
	return NewClient(url, secrets.Static("test-api-key"), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExchangePresentation_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/presentations", r.URL.Path)
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		var presentation interfaces.Presentation
		require.NoError(t, json.NewDecoder(r.Body).Decode(&presentation))
		assert.Equal(t, interfaces.DID("did:x:viewer"), presentation.Holder)
		assert.Equal(t, []string{"VerifiablePresentation"}, presentation.Types)
		assert.Equal(t, []interfaces.VCToken{"eyJ.payload.sig"}, presentation.VerifiableCredential)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":"Bearer tok-123","expires_in":60}`))
	}))
	defer srv.Close()

	token, err := newTestClient(srv.URL).ExchangePresentation(context.Background(), "did:x:viewer", "eyJ.payload.sig")
	require.NoError(t, err)
	assert.Equal(t, interfaces.AuthorizationToken("Bearer tok-123"), token)
}

func TestExchangePresentation_Failures(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		expectedErr error
		checkErr    func(t *testing.T, err error)
	}{
		{
			name:        "forbidden",
			status:      http.StatusForbidden,
			body:        "holder mismatch",
			expectedErr: interfaces.ErrPresentationExchangeFailed,
			checkErr: func(t *testing.T, err error) {
				var reqErr *interfaces.RequestError
				require.ErrorAs(t, err, &reqErr)
				assert.Equal(t, http.StatusForbidden, reqErr.StatusCode)
				assert.Equal(t, "Forbidden", reqErr.Status)
				assert.Equal(t, "holder mismatch", reqErr.Body)
				assert.Equal(t, "presentation exchange failed: 403 Forbidden - holder mismatch", err.Error())
			},
		},
		{
			name:        "missing data field",
			status:      http.StatusOK,
			body:        `{"status":"ok"}`,
			expectedErr: interfaces.ErrMalformedPresentationResponse,
		},
		{
			name:        "null data field",
			status:      http.StatusOK,
			body:        `{"data":null}`,
			expectedErr: interfaces.ErrMalformedPresentationResponse,
		},
		{
			name:        "empty data field",
			status:      http.StatusOK,
			body:        `{"data":""}`,
			expectedErr: interfaces.ErrMalformedPresentationResponse,
		},
		{
			name:        "not json",
			status:      http.StatusOK,
			body:        `<html>ok</html>`,
			expectedErr: interfaces.ErrMalformedPresentationResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).ExchangePresentation(context.Background(), "did:x:viewer", "vc")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expectedErr)
			if tt.checkErr != nil {
				tt.checkErr(t, err)
			}
		})
	}
}

func TestExchangePresentation_Validation(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")

	_, err := client.ExchangePresentation(context.Background(), "", "vc")
	assert.ErrorIs(t, err, interfaces.ErrValidation)

	_, err = client.ExchangePresentation(context.Background(), "did:x:viewer", "")
	assert.ErrorIs(t, err, interfaces.ErrValidation)
}

func TestExchangePresentation_SecretFailure(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewClient(srv.URL, failingSource{}, nil)
	_, err := client.ExchangePresentation(context.Background(), "did:x:viewer", "vc")
	assert.ErrorContains(t, err, "vault sealed")
	assert.False(t, called)
}

func TestExchangePresentation_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).ExchangePresentation(context.Background(), "did:x:viewer", "vc")
	assert.ErrorIs(t, err, interfaces.ErrNetworkUnreachable)
}

func TestExchangePresentation_Cancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv.URL).ExchangePresentation(ctx, "did:x:viewer", "vc")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, interfaces.ErrNetworkUnreachable)
}
