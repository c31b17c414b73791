package bootstrap

import (
	"net/http"
	"time"

	"github.com/creamcroissant/ovenboard/internal/config"
)

// NewHTTPServer constructs a baseline http.Server with conservative
// defaults. WriteTimeout stays zero because the notification and elapsed
// streams are long-lived SSE responses.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MiB
	}
}
