package localdocs

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// operation names a public Client method in metrics and logs.
type operation string

const (
	opSemantic       operation = "semantic"
	opHybrid         operation = "hybrid"
	opFiltered       operation = "filtered"
	opDocument       operation = "document"
	opCollectionInfo operation = "collection_info"
	opHealth         operation = "health"
	opPing           operation = "ping"
)

// noResults marks operations that do not return passages.
const noResults = -1

// clientMetrics is registered once per registry and shared by every Client on it.
type clientMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	results    *prometheus.HistogramVec
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	m := &clientMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "localdocs",
			Subsystem: "client",
			Name:      "operations_total",
			Help:      "Client operations by operation and outcome (ok, invalid, not_found, degraded, provider_error, store_error, error).",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "localdocs",
			Subsystem: "client",
			Name:      "operation_duration_seconds",
			Help:      "Client operation duration in seconds, embedding and store round trips included.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		results: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "localdocs",
			Subsystem: "client",
			Name:      "results",
			Help:      "Passages returned per successful call.",
			Buckets:   []float64{0, 1, 3, 5, 10, 20, 50},
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.results); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or adopts the one already registered
// under the same name, so several clients can share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("localdocs: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("localdocs: register metric: %w", err)
	}
	return nil
}

// observer records metrics and logs for client calls. A nil observer is a no-op.
type observer struct {
	logger     *slog.Logger
	metrics    *clientMetrics
	collection string
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer, collection string) (*observer, error) {
	var m *clientMetrics
	if reg != nil {
		var err error
		m, err = newClientMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m, collection: collection}, nil
}

// observe records one call. results is the number of passages returned, or
// noResults for calls that return none.
func (o *observer) observe(op operation, start time.Time, results int, err error) {
	o.record(op, start, results, statusLabel(err), err)
}

// notFound records a document lookup that completed without a match.
func (o *observer) notFound(start time.Time) {
	o.record(opDocument, start, 0, "not_found", nil)
}

func (o *observer) record(op operation, start time.Time, results int, status string, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(string(op), status).Inc()
		o.metrics.duration.WithLabelValues(string(op)).Observe(dur.Seconds())
		if err == nil && results != noResults {
			o.metrics.results.WithLabelValues(string(op)).Observe(float64(results))
		}
	}

	if o.logger == nil {
		return
	}
	attrs := []any{"op", string(op), "collection", o.collection, "status", status, "duration", dur}
	switch status {
	case "ok", "not_found":
		if results != noResults {
			attrs = append(attrs, "results", results)
		}
		o.logger.Debug("operation completed", attrs...)
	case "invalid":
		// caller mistakes are the caller's to report
		o.logger.Debug("operation rejected", append(attrs, "error", err)...)
	default:
		o.logger.Warn("operation failed", append(attrs, "error", err)...)
	}
}

// statusLabel maps the domain sentinels onto metric outcomes.
func statusLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, errDegraded):
		return "degraded"
	case errors.Is(err, ErrProviderUnavailable):
		return "provider_error"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_error"
	default:
		return "error"
	}
}
