package httpserver

import (
	"net/http"
	"time"
)

// New builds the intake HTTP server. One submission runs to completion
// inside its request, so the write timeout must cover the issuance API and
// mail transport round-trips.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       time.Minute,
	}
}
