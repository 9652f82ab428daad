// Package batch runs the scoring engine over many subjects with bounded
// concurrency. Per-subject failures are collected, never fatal: a partial
// batch still returns every record that scored cleanly.
package batch

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"

	"github.com/itsatony/mediabase-sub001/internal/domain"
	"github.com/itsatony/mediabase-sub001/internal/scoring"
)

// BundleProvider fetches the evidence bundle for a subject.
type BundleProvider interface {
	FetchBundle(ctx context.Context, subject string) (*domain.EvidenceBundle, error)
}

// Result holds the outcome of one batch run. Errors is keyed by subject;
// a subject appears in exactly one of Records or Errors.
type Result struct {
	Records []*domain.ScoreRecord
	Errors  map[string]error
}

// Runner scores batches of subjects concurrently. Identical subjects
// within and across runs are served from an in-memory LRU so the engine
// runs once per distinct subject.
type Runner struct {
	engine    *scoring.Engine
	provider  BundleProvider
	logger    *logrus.Logger
	semaphore chan struct{} // Limits concurrent scoring goroutines
	cache     *lru.Cache    // subject -> *domain.ScoreRecord
}

// NewRunner creates a batch runner. workers bounds concurrency, cacheSize
// bounds the memoization cache.
func NewRunner(engine *scoring.Engine, provider BundleProvider, workers, cacheSize int, logger *logrus.Logger) (*Runner, error) {
	if workers <= 0 {
		return nil, domain.NewConfigurationError("batch",
			fmt.Sprintf("invalid worker count: %d", workers))
	}
	if cacheSize <= 0 {
		cacheSize = 1024
	}

	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating batch cache: %w", err)
	}

	return &Runner{
		engine:    engine,
		provider:  provider,
		logger:    logger,
		semaphore: make(chan struct{}, workers),
		cache:     cache,
	}, nil
}

// Run fetches and scores every subject. Cancellation is honored at
// subject boundaries: in-flight subjects finish, unstarted ones fail with
// the context error.
func (r *Runner) Run(ctx context.Context, subjects []string) (*Result, error) {
	if r.provider == nil {
		return nil, domain.NewConfigurationError("batch", "bundle provider is required")
	}
	if len(subjects) == 0 {
		return &Result{Errors: make(map[string]error)}, nil
	}

	result := &Result{Errors: make(map[string]error)}
	var wg sync.WaitGroup
	var mu sync.Mutex

	r.logger.WithField("batch_size", len(subjects)).Info("Starting batch scoring")

	for _, subject := range subjects {
		wg.Add(1)
		go func(subject string) {
			defer wg.Done()

			select {
			case r.semaphore <- struct{}{}:
				defer func() { <-r.semaphore }()
			case <-ctx.Done():
				mu.Lock()
				result.Errors[subject] = ctx.Err()
				mu.Unlock()
				return
			}

			record, err := r.scoreSubject(ctx, subject)

			mu.Lock()
			if err != nil {
				result.Errors[subject] = err
			} else {
				result.Records = append(result.Records, record)
			}
			mu.Unlock()
		}(subject)
	}

	wg.Wait()

	r.logger.WithFields(logrus.Fields{
		"batch_size": len(subjects),
		"successful": len(result.Records),
		"failed":     len(result.Errors),
	}).Info("Completed batch scoring")

	return result, nil
}

// ScoreBundles scores pre-fetched bundles, bypassing the provider. Used
// by the CLI, which reads bundles from a file instead of a service.
func (r *Runner) ScoreBundles(ctx context.Context, bundles []*domain.EvidenceBundle) (*Result, error) {
	result := &Result{Errors: make(map[string]error)}
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, bundle := range bundles {
		if bundle == nil {
			result.Errors[fmt.Sprintf("bundle[%d]", i)] = domain.NewValidationError(
				"bundle", "evidence bundle is required", nil)
			continue
		}

		wg.Add(1)
		go func(bundle *domain.EvidenceBundle) {
			defer wg.Done()

			select {
			case r.semaphore <- struct{}{}:
				defer func() { <-r.semaphore }()
			case <-ctx.Done():
				mu.Lock()
				result.Errors[bundle.Subject] = ctx.Err()
				mu.Unlock()
				return
			}

			record, err := r.engine.ScoreSubject(bundle)

			mu.Lock()
			if err != nil {
				result.Errors[bundle.Subject] = err
			} else {
				result.Records = append(result.Records, record)
			}
			mu.Unlock()
		}(bundle)
	}

	wg.Wait()
	return result, nil
}

// scoreSubject serves from the memoization cache when possible.
func (r *Runner) scoreSubject(ctx context.Context, subject string) (*domain.ScoreRecord, error) {
	if cached, ok := r.cache.Get(subject); ok {
		r.logger.WithField("subject", subject).Debug("Batch cache hit")
		return cached.(*domain.ScoreRecord), nil
	}

	bundle, err := r.provider.FetchBundle(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("fetching evidence for %s: %w", subject, err)
	}

	record, err := r.engine.ScoreSubject(bundle)
	if err != nil {
		return nil, err
	}

	r.cache.Add(subject, record)
	return record, nil
}

// InvalidateCache drops a subject from the memoization cache, forcing a
// fresh fetch and score on next use.
func (r *Runner) InvalidateCache(subject string) {
	r.cache.Remove(subject)
}
