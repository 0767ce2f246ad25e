// Package httpserver builds the engine's HTTP server. Socket-level timeouts
// are derived from the request timeout so the in-handler deadline always
// fires before the connection is torn down.
package httpserver

import (
	"net/http"
	"time"
)

// writeGrace is added on top of the request timeout so the error envelope
// for a timed-out request can still be written.
const writeGrace = 5 * time.Second

// New builds the server. requestTimeout must match the router's middleware
// timeout; non-positive values fall back to the router default.
func New(addr string, handler http.Handler, requestTimeout time.Duration) *http.Server {
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       requestTimeout,
		WriteTimeout:      requestTimeout + writeGrace,
		IdleTimeout:       60 * time.Second,
	}
}
