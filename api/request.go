package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/ruteri/vc-storage-client/interfaces"
)

// maxErrorBodySize bounds how much of a failed response body is kept for the error message.
const maxErrorBodySize = 64 * 1024

var filenamePattern = regexp.MustCompile(`filename="([^"]+)"`)

// Do sends req and turns transport failures into interfaces.NetworkError.
// Cancellation of the request context is returned as the context error.
func Do(client *http.Client, req *http.Request, op string) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", op, ctxErr)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return nil, &interfaces.NetworkError{Op: op, Err: err}
	}
	return resp, nil
}

// IsSuccess reports a 2xx status.
func IsSuccess(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// NewRequestError reads the body of a failed response into a RequestError of the given kind.
func NewRequestError(kind error, resp *http.Response) *interfaces.RequestError {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	text := strings.TrimSpace(string(body))
	if err != nil {
		// Keep what arrived and say the rest was lost.
		text = strings.TrimSpace(fmt.Sprintf("%s (body read failed: %v)", text, err))
	}
	return &interfaces.RequestError{
		Kind:       kind,
		StatusCode: resp.StatusCode,
		Status:     StatusText(resp),
		Body:       text,
	}
}

// StatusText returns the reason phrase of resp, e.g. "Forbidden".
func StatusText(resp *http.Response) string {
	code := fmt.Sprintf("%d ", resp.StatusCode)
	if text := strings.TrimPrefix(resp.Status, code); text != "" && text != resp.Status {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// FilenameFromContentDisposition extracts the filename parameter, returning
// DefaultFilename when the header is absent or has none. Headers the mime parser
// rejects are still searched for a quoted filename="..." value.
func FilenameFromContentDisposition(header string) string {
	if header == "" {
		return DefaultFilename
	}
	if _, params, err := mime.ParseMediaType(header); err == nil && params["filename"] != "" {
		return params["filename"]
	}
	m := filenamePattern.FindStringSubmatch(header)
	if m == nil {
		return DefaultFilename
	}
	return m[1]
}

// MediaType returns the declared content type of resp, defaulting to application/octet-stream.
func MediaType(resp *http.Response) string {
	declared := resp.Header.Get("Content-Type")
	if declared == "" {
		return contentTypeOctet
	}
	if mediaType, params, err := mime.ParseMediaType(declared); err == nil {
		return mime.FormatMediaType(mediaType, params)
	}
	return declared
}

// JoinPath appends an opaque path segment to a base URL. The segment is escaped, not interpreted.
func JoinPath(baseURL, prefix, segment string) string {
	return strings.TrimSuffix(baseURL, "/") + prefix + url.PathEscape(segment)
}
