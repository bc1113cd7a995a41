// cmd/worker/startup.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"pagesmith-backend/pkg/container"
)

// startServices runs the startup checks and exposes the probe endpoints.
func startServices(c *container.Container) error {
	log.Info().Str("site", c.Config.Site.BaseURL()).Msg("Pagesmith worker starting")

	checks := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"Redis Connection", c.Redis.HealthCheck},
		{"Database", c.DB.HealthCheck},
		{"Object Storage", c.Storage.HealthCheck},
	}

	for _, check := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := check.fn(ctx)
		cancel()
		if err != nil {
			log.Error().Err(err).Str("check", check.name).Msg("startup check failed")
			return fmt.Errorf("%s failed: %w", check.name, err)
		}
		log.Info().Str("check", check.name).Msg("startup check ok")
	}

	go startHealthCheckServer(c)

	return nil
}

// startHealthCheckServer serves /health and /ready for orchestrator probes.
func startHealthCheckServer(c *container.Container) {
	addr := os.Getenv("WORKER_HEALTH_ADDR")
	if addr == "" {
		addr = ":9999"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"UP","service":"pagesmith-worker"}`))
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := c.Redis.HealthCheck(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"NOT_READY"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"READY"}`))
	})

	log.Info().Str("addr", addr).Msg("[Health] starting probe server")
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("[Health] probe server failed")
	}
}
