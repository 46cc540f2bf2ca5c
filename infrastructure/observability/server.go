package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// NewMetricsHandler exposes the provider's registry plus Go runtime collectors.
// Providers without a prometheus registry fall back to the default gatherer.
func NewMetricsHandler(mp *MetricsProvider) http.Handler {
	registry := mp.Registry()
	if registry == nil {
		return promhttp.Handler()
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// StartMetricsServer serves /metrics on addr until ctx is cancelled
func StartMetricsServer(ctx context.Context, addr string, mp *MetricsProvider) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", NewMetricsHandler(mp))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("Metrics server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Metrics server shutdown failed")
		}
	}()
}
