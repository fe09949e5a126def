package devservices

import (
	"log/slog"
	"net/http"

	"github.com/flashbots/go-utils/httplogger"
	"github.com/go-chi/chi/v5"
)

// RouteRegistrar is implemented by FileManager and AuthService.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

// NewRouter serves the given services behind the access-log middleware.
func NewRouter(log *slog.Logger, services ...RouteRegistrar) http.Handler {
	mux := chi.NewRouter()
	mux.Use(func(next http.Handler) http.Handler {
		return httplogger.LoggingMiddlewareSlog(log, next)
	})
	for _, service := range services {
		service.RegisterRoutes(mux)
	}
	return mux
}
