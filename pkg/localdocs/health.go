package localdocs

import (
	"context"
	"errors"
	"time"

	healthuc "github.com/kailas-cloud/localdocs/internal/usecase/health"
)

var errDegraded = errors.New("degraded")

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok" or "degraded"
	Checks map[string]string // store, collection, embedding → "ok"/"missing"/"error"
}

// Healthy reports whether every component passed.
func (h HealthStatus) Healthy() bool { return h.Status == string(healthuc.Healthy) }

// Health checks the store, the collection index and the embedding provider.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.health.Check(ctx)

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	status := HealthStatus{Status: string(report.Status), Checks: checks}

	var err error
	if !status.Healthy() {
		err = errDegraded
	}
	c.obs.observe(opHealth, start, noResults, err)
	return status
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
