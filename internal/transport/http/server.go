// Package http wires the relay's external HTTP surface: the WebSocket
// upgrade route, the admin/introspection JSON endpoint, and the metrics
// exporter, co-served on one listener or split across two per
// SPEC_FULL.md section 6.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"

	"github.com/nplate/relay/internal/admin"
	wshandler "github.com/nplate/relay/internal/handler/ws"
)

// Config is the subset of application configuration the transport layer
// needs: the two listen ports (equal when co-serving, distinct otherwise).
type Config struct {
	Port        int
	MetricsPort int
}

// Servers is every net/http.Server the transport layer started; one entry
// when PORT == METRICS_PORT, two otherwise.
type Servers struct {
	servers []*http.Server
}

// Shutdown gracefully stops every underlying listener.
func (s *Servers) Shutdown(ctx context.Context) error {
	var firstErr error
	for _, srv := range s.servers {
		if err := srv.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func accessLogMiddleware(next http.Handler) http.Handler {
	return requestIDMiddleware(middleware.Logger(next))
}

// requestIDMiddleware stamps every request with a uuid-based correlation
// ID, echoed back on the response so a client pairing a "create" and a
// "connect" call across two connections can correlate their access log
// lines.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// mountWS registers the /ws upgrade route directly on r. It is not a
// separate sub-router mounted at "/" — chi.Mount replaces whatever else
// was previously mounted at the same pattern, so every route this
// transport serves is registered directly on one shared router instead.
func mountWS(r chi.Router, handler *wshandler.Handler, upgrader websocket.Upgrader) {
	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		handler.Serve(req.Context(), conn)
	})
}

func mountAdmin(r chi.Router, recent *admin.Recent) {
	r.Get("/admin/recent", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(recent.Snapshot())
	})
}

func mountMetrics(r chi.Router) {
	r.Handle("/metrics", promhttp.Handler())
}

// NewServers builds the HTTP listeners, not yet bound to a port (see
// [Servers.Start]). When cfg.Port == cfg.MetricsPort every route is
// registered on one chi.Router and one listener; when the ports differ,
// two independent net/http.Server instances are built instead, each with
// its own router. exporter is accepted purely to order fx construction
// after the OTel Prometheus exporter registers itself with the default
// Prometheus registerer promhttp.Handler reads from.
func NewServers(cfg Config, handler *wshandler.Handler, recent *admin.Recent, exporter *prometheus.Exporter) *Servers {
	_ = exporter
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	if cfg.Port == cfg.MetricsPort {
		root := chi.NewRouter()
		root.Use(accessLogMiddleware)
		mountWS(root, handler, upgrader)
		mountAdmin(root, recent)
		mountMetrics(root)
		return &Servers{servers: []*http.Server{
			{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: root},
		}}
	}

	main := chi.NewRouter()
	main.Use(accessLogMiddleware)
	mountWS(main, handler, upgrader)

	side := chi.NewRouter()
	side.Use(accessLogMiddleware)
	mountAdmin(side, recent)
	mountMetrics(side)

	return &Servers{servers: []*http.Server{
		{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: main},
		{Addr: fmt.Sprintf(":%d", cfg.MetricsPort), Handler: side},
	}}
}

// Start begins serving every listener in the background, reporting any
// immediate bind failure (e.g. both configured ports already in use)
// through errCh.
func (s *Servers) Start(errCh chan<- error) {
	for _, srv := range s.servers {
		srv := srv
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				select {
				case errCh <- fmt.Errorf("http: %s: %w", srv.Addr, err):
				default:
				}
			}
		}()
	}
}
