// Package service exposes the optional healthz and Prometheus metrics
// endpoints for long-running or CI-hosted sessions. Both servers are
// disabled unless an address is configured.
package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/flakescan/flakescan/metrics"
)

type Service struct {
	Healthz *HealthzServer
	Metrics *MetricsServer

	healthzAddr string
	metricsAddr string
	log         logrus.FieldLogger
}

// New creates a Service. Empty addresses disable the corresponding server.
func New(healthzAddr, metricsAddr string, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		Healthz:     &HealthzServer{},
		Metrics:     &MetricsServer{},
		healthzAddr: healthzAddr,
		metricsAddr: metricsAddr,
		log:         log,
	}
}

func (s *Service) Start(ctx context.Context) {
	if s.healthzAddr != "" {
		go func() {
			s.log.WithField("addr", s.healthzAddr).Info("starting healthz server")
			if err := s.Healthz.Start(ctx, s.healthzAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.WithError(err).Error("error starting healthz server")
				metrics.RecordErrorDetails("error starting healthz server", err)
			}
		}()
	}

	if s.metricsAddr != "" {
		go func() {
			s.log.WithField("addr", s.metricsAddr).Info("starting metrics server")
			if err := s.Metrics.Start(ctx, s.metricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.WithError(err).Error("error starting metrics server")
				metrics.RecordErrorDetails("error starting metrics server", err)
			}
		}()
	}
}

func (s *Service) Shutdown() {
	_ = s.Healthz.Shutdown()
	_ = s.Metrics.Shutdown()
	s.log.Info("service stopped")
}
