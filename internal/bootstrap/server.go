package bootstrap

import (
	"context"
	"net"
	"net/http"
	"time"
)

// NewServer returns an HTTP server whose request contexts derive from ctx,
// so long-lived streams end when ctx is cancelled.
func NewServer(ctx context.Context, addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}
