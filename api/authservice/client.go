package authservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ruteri/vc-storage-client/api"
	"github.com/ruteri/vc-storage-client/interfaces"
)

// Client exchanges presentations for authorization tokens.
// It implements interfaces.PresentationExchanger.
type Client struct {
	baseURL    string
	httpClient *http.Client
	secrets    interfaces.SecretSource
	log        *slog.Logger
}

// NewClient creates a presentation service client.
//
// Parameters:
//   - baseURL: The base URL of the auth service (e.g., "https://auth-dev.pila.vn")
//   - secrets: Source of the x-api-key value
//   - log: Structured logger, may be nil
//   - timeout: Request timeout (optional, default none)
func NewClient(baseURL string, secrets interfaces.SecretSource, log *slog.Logger, timeout ...time.Duration) *Client {
	if log == nil {
		log = slog.Default()
	}

	httpClient := &http.Client{}
	if len(timeout) > 0 && timeout[0] > 0 {
		httpClient.Timeout = timeout[0]
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		secrets:    secrets,
		log:        log,
	}
}

// BaseURL returns the auth service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ExchangePresentation submits a presentation carrying vc on behalf of holder and
// returns the authorization token from the data field of the response.
//
// The token is returned verbatim. A non-2xx answer is a *interfaces.RequestError of
// kind ErrPresentationExchangeFailed; a 2xx answer without a usable data field is
// ErrMalformedPresentationResponse.
func (c *Client) ExchangePresentation(ctx context.Context, holder interfaces.DID, vc interfaces.VCToken) (interfaces.AuthorizationToken, error) {
	if holder == "" {
		return "", interfaces.Required("holder", "Please enter a Viewer DID")
	}
	if vc == "" {
		return "", interfaces.Required("vc", "Please enter a VC")
	}
	if c.secrets == nil {
		return "", fmt.Errorf("no api key source configured")
	}

	apiKey, err := c.secrets.APIKey(ctx)
	if err != nil {
		return "", fmt.Errorf("could not resolve api key: %w", err)
	}

	body, err := json.Marshal(interfaces.NewPresentation(holder, vc))
	if err != nil {
		return "", fmt.Errorf("failed to marshal presentation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+api.PresentationsPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("could not initialize request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(api.APIKeyHeader, apiKey)

	start := time.Now()
	resp, err := api.Do(c.httpClient, req, "exchange presentation")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if !api.IsSuccess(resp) {
		reqErr := api.NewRequestError(interfaces.ErrPresentationExchangeFailed, resp)
		c.log.Warn("Presentation rejected",
			slog.String("holder", string(holder)),
			slog.Int("status", resp.StatusCode),
			slog.Duration("duration", time.Since(start)))
		return "", reqErr
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("could not read presentation response: %w", err)
	}

	var parsed api.PresentationResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", interfaces.ErrMalformedPresentationResponse, err)
	}
	if parsed.Data == nil || *parsed.Data == "" {
		return "", interfaces.ErrMalformedPresentationResponse
	}

	c.log.Debug("Exchanged presentation",
		slog.String("holder", string(holder)),
		slog.Duration("duration", time.Since(start)))

	return interfaces.AuthorizationToken(*parsed.Data), nil
}
