package httpserver

import (
	"net/http"
	"time"
)

// New returns an http.Server with conservative timeouts for the console.
// WriteTimeout leaves room for the admin dashboard fan-out.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       90 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}
