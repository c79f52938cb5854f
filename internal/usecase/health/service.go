package health

import (
	"context"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckMissing indicates the collection index does not exist.
	CheckMissing CheckResult = "missing"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names used as Report.Checks keys.
const (
	ComponentStore      = "store"
	ComponentCollection = "collection"
	ComponentEmbedding  = "embedding"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store      StorePinger
	collection CollectionChecker
	embedding  EmbeddingChecker
	logger     *zap.Logger
}

// New creates a Service. collection and embedding can be nil.
func New(
	store StorePinger, collection CollectionChecker, embedding EmbeddingChecker, logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, collection: collection, embedding: embedding, logger: logger}
}

// Check runs health checks against all components.
// The collection is only inspected when the store answers.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	storeOK := true
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("Store health check failed", zap.Error(err))
		checks[ComponentStore] = CheckError
		storeOK = false
	} else {
		checks[ComponentStore] = CheckOK
	}

	if s.collection != nil {
		checks[ComponentCollection] = s.checkCollection(ctx, storeOK)
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			s.logger.Warn("Embedding health check failed", zap.Error(err))
			checks[ComponentEmbedding] = CheckError
		} else {
			checks[ComponentEmbedding] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v != CheckOK {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) checkCollection(ctx context.Context, storeOK bool) CheckResult {
	if !storeOK {
		return CheckError
	}
	ok, err := s.collection.Exists(ctx)
	switch {
	case err != nil:
		s.logger.Warn("Collection health check failed", zap.Error(err))
		return CheckError
	case !ok:
		return CheckMissing
	default:
		return CheckOK
	}
}
