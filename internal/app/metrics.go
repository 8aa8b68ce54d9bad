package app

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"dbgraph/core/graph"
)

type metricsServer struct {
	srv     *http.Server
	addr    string
	metrics *graph.Metrics
	log     logrus.FieldLogger
}

// serveMetrics exposes a fresh registry with the builder, Go runtime and
// process collectors on addr at /metrics.
func serveMetrics(addr string, log logrus.FieldLogger) (*metricsServer, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s", addr)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	s := &metricsServer{
		srv:     &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		addr:    ln.Addr().String(),
		metrics: graph.NewMetrics(reg),
		log:     log.WithField("action", "metrics"),
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("metrics server stopped")
		}
	}()
	s.log.Infof("serving metrics on http://%s/metrics", s.addr)
	return s, nil
}

func (s *metricsServer) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.log.WithError(err).Warn("metrics shutdown")
	}
}
