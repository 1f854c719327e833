// Package web provides an HTTP status server for the key-scan demo.
package web

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sweeney/tm16xx-scan/internal/status"
)

// Server exposes the key-scan tracker to a browser and to Prometheus.
//
//	/, /index.html  human readable page, refreshed every few seconds
//	/index.json     status.FormatJSON of the current snapshot
//	/metrics        poll, change and error counters plus Go runtime metrics
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
}

// New builds a Server on addr. Nothing listens until ListenAndServe or Serve.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.servePage)
	mux.HandleFunc("/index.html", s.servePage)
	mux.HandleFunc("/index.json", s.serveStatus)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// ListenAndServe blocks until Shutdown. It returns http.ErrServerClosed after
// a clean shutdown.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown stops accepting scrapes and waits for in-flight ones up to ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// servePage is also the catch-all route; any other path is a 404.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, s.tracker.Snapshot())
}

func (s *Server) serveStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(status.FormatJSON(s.tracker.Snapshot()))
}
