package devservices

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/vc-storage-client/api"
	"github.com/ruteri/vc-storage-client/interfaces"
)

// AuthorizationValidity is the lifetime of issued authorization tokens.
const AuthorizationValidity = 5 * time.Minute

// AuthService serves the presentation endpoint.
type AuthService struct {
	apiKey string
	keys   Keys
	log    *slog.Logger
}

// NewAuthService creates a presentation service accepting apiKey.
func NewAuthService(apiKey string, keys Keys, log *slog.Logger) *AuthService {
	return &AuthService{
		apiKey: apiKey,
		keys:   keys,
		log:    log,
	}
}

// RegisterRoutes registers the presentation route.
func (s *AuthService) RegisterRoutes(r chi.Router) {
	r.Post(api.PresentationsPath, s.HandlePresentation)
}

// HandlePresentation verifies a presentation and answers {"data": <authorization token>}.
//
// Status codes:
//   - 200 OK: token issued
//   - 400 Bad Request: malformed presentation
//   - 401 Unauthorized: missing or wrong x-api-key
//   - 403 Forbidden: invalid credential or holder mismatch
func (s *AuthService) HandlePresentation(w http.ResponseWriter, r *http.Request) {
	if subtle.ConstantTimeCompare([]byte(r.Header.Get(api.APIKeyHeader)), []byte(s.apiKey)) != 1 {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
		return
	}

	var presentation interfaces.Presentation
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&presentation); err != nil {
		http.Error(w, "invalid presentation", http.StatusBadRequest)
		return
	}
	if !slices.Contains(presentation.Types, interfaces.PresentationType) || len(presentation.VerifiableCredential) != 1 {
		http.Error(w, "presentation must carry exactly one credential", http.StatusBadRequest)
		return
	}

	claims, err := verifyAccess(s.keys.Credential, string(presentation.VerifiableCredential[0]))
	if err != nil {
		s.log.Info("Rejected credential", "err", err)
		http.Error(w, "invalid credential", http.StatusForbidden)
		return
	}
	if interfaces.DID(claims.Subject) != presentation.Holder {
		s.log.Info("Holder mismatch",
			slog.String("holder", string(presentation.Holder)),
			slog.String("subject", claims.Subject))
		http.Error(w, "holder does not match credential subject", http.StatusForbidden)
		return
	}

	token, err := signAccess(s.keys.Authorization, interfaces.DID(claims.Issuer), presentation.Holder, interfaces.CID(claims.CID), AuthorizationValidity)
	if err != nil {
		s.log.Error("Failed to sign authorization", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	s.log.Info("Issued authorization",
		slog.String("holder", string(presentation.Holder)),
		slog.String("cid", claims.CID))

	writeJSON(w, s.log, map[string]string{"data": token})
}
