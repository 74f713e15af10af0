// Package metrics exposes probe outcomes as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maxvaer/apiprobe/internal/logging"
	"github.com/maxvaer/apiprobe/internal/scanner"
)

// Recorder holds the probe collectors in a private registry.
type Recorder struct {
	registry *prometheus.Registry

	probesTotal   *prometheus.CounterVec
	probeDuration *prometheus.HistogramVec
	pending       prometheus.Gauge
}

// New creates a recorder and registers its collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		probesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apiprobe_probes_total",
				Help: "Completed probes by HTTP status (\"failed\" for transport errors)",
			},
			[]string{"status"},
		),
		probeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "apiprobe_probe_duration_seconds",
				Help:    "Probe latency distribution in seconds",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"outcome"},
		),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "apiprobe_probes_pending",
			Help: "Probes dispatched but not yet completed",
		}),
	}
	r.registry.MustRegister(r.probesTotal, r.probeDuration, r.pending)
	return r
}

// Registry returns the registry the collectors live in.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Begin records that total probes are about to be dispatched.
func (r *Recorder) Begin(total int) {
	r.pending.Add(float64(total))
}

// Observe records one completed probe.
func (r *Recorder) Observe(res scanner.ScanResult) {
	key := scanner.KeyOf(&res)
	r.probesTotal.WithLabelValues(key.String()).Inc()

	outcome := "ok"
	if res.Failed() {
		outcome = "failed"
	}
	r.probeDuration.WithLabelValues(outcome).Observe(res.Duration.Seconds())
	r.pending.Dec()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Server serves /metrics for the duration of a run.
type Server struct {
	srv    *http.Server
	ln     net.Listener
	logger *slog.Logger
}

// Serve starts a metrics server on addr. The listener is bound before
// Serve returns so bind errors surface immediately.
func Serve(addr string, r *Recorder, logger *slog.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening for metrics on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	s := &Server{
		srv: &http.Server{
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		ln:     ln,
		logger: logging.OrDefault(logger),
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server stopped", "error", err)
		}
	}()
	s.logger.Info("serving metrics", "addr", ln.Addr().String())
	return s, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Close shuts the server down.
func (s *Server) Close(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
