package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. Write and idle timeouts are generous because
// every mutating request waits its turn behind the serialized executor.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
