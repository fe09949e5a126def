package api

import (
	"log/slog"
	"time"
)

// HTTPServerConfig configures the gateway that fronts the file manager and
// presentation clients for a browser.
type HTTPServerConfig struct {
	// ListenAddr is the host:port the UI API binds to.
	ListenAddr string
	// EnablePprof mounts /debug/pprof.
	EnablePprof bool
	Log         *slog.Logger

	// AllowedOrigins are the browser origins echoed in Access-Control-Allow-Origin.
	// Empty allows any origin.
	AllowedOrigins []string
	// MaxUploadSize caps POST /ui/upload bodies, in bytes.
	MaxUploadSize int64

	// DrainDuration is how long /readyz reports not ready before shutdown proceeds.
	DrainDuration time.Duration
	// GracefulShutdownDuration caps the wait for in-flight requests on shutdown.
	GracefulShutdownDuration time.Duration

	ReadTimeout time.Duration
	// WriteTimeout of zero leaves retrievals bounded only by the client --timeout.
	WriteTimeout time.Duration
}
