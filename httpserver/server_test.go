package httpserver

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ruteri/vc-storage-client/api"
	"github.com/ruteri/vc-storage-client/blobstore"
	"github.com/ruteri/vc-storage-client/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, origins []string) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	blobs := blobstore.NewRegistry(logger)
	controller := flow.NewController(flow.NewOrchestrator(nil, nil, logger), blobs, logger)

	srv, err := New(&api.HTTPServerConfig{
		ListenAddr:     "127.0.0.1:0",
		Log:            logger,
		AllowedOrigins: origins,
	}, NewHandler(controller, blobs, nil, FormDefaults{}, logger))
	require.NoError(t, err)
	return srv
}

func TestNew_RequiresLogger(t *testing.T) {
	_, err := New(&api.HTTPServerConfig{}, nil)
	assert.Error(t, err)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	steps := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/livez", http.StatusOK, `{"status":"alive"}`},
		{"/readyz", http.StatusOK, `{"status":"ready"}`},
		{"/drain", http.StatusOK, `{"status":"draining"}`},
		{"/drain", http.StatusOK, `{"status":"already draining"}`},
		{"/readyz", http.StatusServiceUnavailable, `{"status":"not ready"}`},
		{"/livez", http.StatusOK, `{"status":"alive"}`},
		{"/undrain", http.StatusOK, `{"status":"ready"}`},
		{"/undrain", http.StatusOK, `{"status":"already ready"}`},
		{"/readyz", http.StatusOK, `{"status":"ready"}`},
	}

	for _, step := range steps {
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, step.path, nil))
		assert.Equal(t, step.wantStatus, rr.Code, step.path)
		assert.JSONEq(t, step.wantBody, rr.Body.String(), step.path)
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		wantOrigin string
		wantExpose string
	}{
		{name: "any origin", origin: "https://app.example", wantOrigin: "*", wantExpose: "Content-Disposition"},
		{name: "listed origin", origins: []string{"https://app.example"}, origin: "https://app.example", wantOrigin: "https://app.example", wantExpose: "Content-Disposition"},
		{name: "unlisted origin", origins: []string{"https://app.example"}, origin: "https://evil.example"},
		{name: "same origin", origins: []string{"https://app.example"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.origins)

			req := httptest.NewRequest(http.MethodGet, "/ui/state", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.wantOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantExpose, rr.Header().Get("Access-Control-Expose-Headers"))
			// Responses differ per origin, so caches must key on it whether or not it matched.
			assert.Contains(t, rr.Header().Values("Vary"), "Origin")
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	tests := []struct {
		name        string
		origin      string
		wantOrigin  string
		wantMethods bool
	}{
		{name: "listed origin", origin: "https://app.example", wantOrigin: "https://app.example", wantMethods: true},
		{name: "unlisted origin", origin: "https://evil.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, []string{"https://app.example"})

			req := httptest.NewRequest(http.MethodOptions, "/ui/viewvc", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rr := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rr, req)

			assert.True(t, rr.Code >= 200 && rr.Code < 300, "preflight status %d", rr.Code)
			assert.Equal(t, tt.wantOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantMethods {
				assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
			} else {
				assert.Empty(t, rr.Header().Get("Access-Control-Allow-Methods"))
			}
		})
	}
}

func TestHandleBlob_UnknownHandle(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/blobs/does-not-exist", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleExport_Disabled(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/ui/export", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
