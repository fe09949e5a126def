package api

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/ruteri/vc-storage-client/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilenameFromContentDisposition(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{"quoted filename", `attachment; filename="report.pdf"`, "report.pdf"},
		{"inline quoted", `inline; filename="photo 1.png"`, "photo 1.png"},
		{"no header", "", "download"},
		{"no filename", "attachment", "download"},
		{"unquoted filename", "attachment; filename=report.pdf", "report.pdf"},
		{"formatted by mime", mime.FormatMediaType("attachment", map[string]string{"filename": "report.pdf"}), "report.pdf"},
		{"quoted in malformed header", `attachment; filename="a.txt"; size=`, "a.txt"},
		{"empty quoted", `attachment; filename=""`, "download"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FilenameFromContentDisposition(tt.header))
		})
	}
}

func TestStatusText(t *testing.T) {
	resp := &http.Response{StatusCode: 403, Status: "403 Forbidden"}
	assert.Equal(t, "Forbidden", StatusText(resp))

	resp = &http.Response{StatusCode: 418, Status: "418 Custom Teapot"}
	assert.Equal(t, "Custom Teapot", StatusText(resp))

	resp = &http.Response{StatusCode: 404}
	assert.Equal(t, "Not Found", StatusText(resp))
}

func TestMediaType(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	assert.Equal(t, "application/octet-stream", MediaType(resp))

	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	assert.Equal(t, "text/plain; charset=utf-8", MediaType(resp))
}

func TestNewRequestError(t *testing.T) {
	resp := &http.Response{
		StatusCode: 500,
		Status:     "500 Internal Server Error",
		Body:       io.NopCloser(strings.NewReader("  boom \n")),
	}

	err := NewRequestError(interfaces.ErrFileRetrievalFailed, resp)
	assert.ErrorIs(t, err, interfaces.ErrFileRetrievalFailed)
	assert.Equal(t, 500, err.StatusCode)
	assert.Equal(t, "Internal Server Error", err.Status)
	assert.Equal(t, "boom", err.Body)
}

func TestNewRequestError_PartialBody(t *testing.T) {
	resp := &http.Response{
		StatusCode: 502,
		Status:     "502 Bad Gateway",
		Body:       io.NopCloser(io.MultiReader(strings.NewReader("upstream said"), iotest.ErrReader(errors.New("connection reset")))),
	}

	err := NewRequestError(interfaces.ErrFileRetrievalFailed, resp)
	assert.Equal(t, 502, err.StatusCode)
	assert.Equal(t, "upstream said (body read failed: connection reset)", err.Body)
}

func TestDo_NetworkUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)

	_, err = Do(nil, req, "fetch file")
	assert.ErrorIs(t, err, interfaces.ErrNetworkUnreachable)
}

func TestDo_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = Do(nil, req, "fetch file")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, interfaces.ErrNetworkUnreachable)
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "http://fm/api/v1/viewer/files/Qm123", JoinPath("http://fm/", ViewerFilePath, "Qm123"))
	assert.Equal(t, "http://fm/api/v1/issuer/files/Qm123", JoinPath("http://fm", IssuerFilePath, "Qm123"))
	assert.Equal(t, "http://fm/api/v1/viewer/files/a%2Fb", JoinPath("http://fm", ViewerFilePath, "a/b"))
}
