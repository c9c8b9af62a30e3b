// Package services hosts the request-facing facade over the explanation
// pipeline: validation, caching, metrics, and latency accounting.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/fundsight/explain-engine/internal/cache"
	"github.com/fundsight/explain-engine/internal/metrics"
	"github.com/fundsight/explain-engine/internal/models"
	"github.com/fundsight/explain-engine/internal/transform"
	"github.com/fundsight/explain-engine/internal/utils"
)

// Explainer is the pipeline behaviour the service depends on.
type Explainer interface {
	Explain(ctx context.Context, raw models.RawRecord) (models.Explanation, error)
	MissingFields(raw models.RawRecord) []string
}

// ExplainService validates records, consults the cache, and runs the
// pipeline. It is safe for concurrent use.
type ExplainService struct {
	logger    *slog.Logger
	pipeline  Explainer
	cache     cache.Provider
	cacheTTL  time.Duration
	latencies *utils.LatencyTracker
}

// NewExplainService constructs the facade. A nil cache disables
// memoization.
func NewExplainService(logger *slog.Logger, pipeline Explainer, cacheProvider cache.Provider, cacheTTL time.Duration) *ExplainService {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheProvider == nil {
		cacheProvider = cache.NoopProvider{}
	}
	return &ExplainService{
		logger:    logger,
		pipeline:  pipeline,
		cache:     cacheProvider,
		cacheTTL:  cacheTTL,
		latencies: utils.NewLatencyTracker(1024),
	}
}

// Explain produces a labelled, reasoned explanation for one record.
func (s *ExplainService) Explain(ctx context.Context, raw models.RawRecord) (models.Explanation, error) {
	if len(raw) == 0 {
		return models.Explanation{}, &models.ValidationError{Msg: "empty record"}
	}
	if missing := s.pipeline.MissingFields(raw); len(missing) > 0 {
		return models.Explanation{}, &models.ValidationError{Fields: missing, Msg: "missing required fields"}
	}

	key, err := recordKey(raw)
	if err == nil {
		if cached, cacheErr := s.cache.Get(ctx, key); cacheErr == nil {
			var explanation models.Explanation
			if json.Unmarshal(cached, &explanation) == nil {
				s.logger.Debug("explanation served from cache", slog.String("id", explanation.ID))
				return explanation, nil
			}
		}
	}

	start := time.Now()
	explanation, err := s.pipeline.Explain(ctx, raw)
	duration := time.Since(start)
	if err != nil {
		metrics.ObservePrediction(duration, outcomeFor(err))
		s.logger.Error("explanation failed", slog.Any("error", err))
		return models.Explanation{}, err
	}

	metrics.ObservePrediction(duration, metrics.OutcomeSuccess)
	s.latencies.Observe(duration)
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		s.logger.Info("explanation latency",
			slog.Duration("p95", s.latencies.Percentile(95)), slog.Int("samples", count))
	}

	if key != "" {
		if data, marshalErr := json.Marshal(explanation); marshalErr == nil {
			if cacheErr := s.cache.Set(ctx, key, data, s.cacheTTL); cacheErr != nil {
				s.logger.Warn("failed to cache explanation", slog.Any("error", cacheErr))
			}
		}
	}

	return explanation, nil
}

// LatencyP95 returns the current p95 explanation latency.
func (s *ExplainService) LatencyP95() time.Duration {
	return s.latencies.Percentile(95)
}

func outcomeFor(err error) string {
	var validation *models.ValidationError
	var unknown *transform.UnknownCategoryError
	if errors.As(err, &validation) || errors.As(err, &unknown) {
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeError
}

// recordKey hashes the record's canonical JSON form. Map keys marshal in
// sorted order, so equal records always hash equal.
func recordKey(raw models.RawRecord) (string, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return "explanation:" + hex.EncodeToString(sum[:]), nil
}
