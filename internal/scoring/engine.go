package scoring

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/itsatony/mediabase-sub001/internal/domain"
)

// defaultMinConfidence flags subjects scored on very thin evidence.
const defaultMinConfidence = 0.2

// Options configures an Engine. Zero values fall back to defaults.
type Options struct {
	// CapOverrides replaces per-type point caps, keyed by evidence type name.
	CapOverrides map[string]float64

	// MinConfidenceThreshold flags (never excludes) subjects whose mean
	// scorer confidence falls below it.
	MinConfidenceThreshold float64
}

// Engine orchestrates scoring for a single subject across all four use
// cases. The five scorers run exactly once per subject; their outputs are
// reused for every use case. The engine holds no mutable state between
// calls and is safe for concurrent use.
type Engine struct {
	log         *logrus.Logger
	caps        Caps
	reliability *SourceReliabilityRegistry
	weights     *UseCaseWeightTable
	calculator  *CompositeScoreCalculator

	clinical    *ClinicalScorer
	mechanistic *MechanisticScorer
	publication *PublicationScorer
	genomic     *GenomicScorer
	safety      *SafetyScorer

	minConfidence float64
}

// NewEngine constructs the engine, validating both static tables. A
// ConfigurationError here indicates a broken deployment and must abort
// before any subject is processed.
func NewEngine(logger *logrus.Logger, opts Options) (*Engine, error) {
	caps, err := DefaultCaps().WithOverrides(opts.CapOverrides)
	if err != nil {
		return nil, fmt.Errorf("building cap table: %w", err)
	}

	weights, err := NewUseCaseWeightTable()
	if err != nil {
		return nil, fmt.Errorf("building weight table: %w", err)
	}

	reliability := NewSourceReliabilityRegistry()

	minConfidence := opts.MinConfidenceThreshold
	if minConfidence == 0 {
		minConfidence = defaultMinConfidence
	}

	engine := &Engine{
		log:           logger,
		caps:          caps,
		reliability:   reliability,
		weights:       weights,
		calculator:    NewCompositeScoreCalculator(caps, weights, logger),
		clinical:      NewClinicalScorer(caps, logger),
		mechanistic:   NewMechanisticScorer(caps, logger),
		publication:   NewPublicationScorer(caps, reliability, logger),
		genomic:       NewGenomicScorer(caps, logger),
		safety:        NewSafetyScorer(caps, logger),
		minConfidence: minConfidence,
	}

	logger.WithFields(logrus.Fields{
		"use_cases":       len(domain.UseCases),
		"evidence_types":  len(domain.EvidenceTypes),
		"min_confidence":  engine.minConfidence,
		"scoring_version": domain.ScoringVersion,
	}).Info("Initialized evidence scoring engine")

	return engine, nil
}

// ScoreEvidence runs the five per-type scorers once over a bundle. Exposed
// so callers can inspect per-type scores without composite aggregation.
func (e *Engine) ScoreEvidence(bundle *domain.EvidenceBundle) map[domain.EvidenceType]domain.EvidenceScore {
	return map[domain.EvidenceType]domain.EvidenceScore{
		domain.CLINICAL:    e.clinical.Score(bundle),
		domain.MECHANISTIC: e.mechanistic.Score(bundle),
		domain.PUBLICATION: e.publication.Score(bundle),
		domain.GENOMIC:     e.genomic.Score(bundle),
		domain.SAFETY:      e.safety.Score(bundle),
	}
}

// ScoreSubject produces the full output record for one subject: the five
// evidence scores composed once per use case. The computation is
// deterministic and side-effect-free; partial batches may persist records
// as-is.
func (e *Engine) ScoreSubject(bundle *domain.EvidenceBundle) (*domain.ScoreRecord, error) {
	if bundle == nil {
		return nil, domain.NewValidationError("bundle", "evidence bundle is required", nil)
	}

	scores := e.ScoreEvidence(bundle)

	record := &domain.ScoreRecord{
		ID:             uuid.NewString(),
		Subject:        bundle.Subject,
		UseCaseScores:  make(map[domain.UseCase]*domain.CompositeScore, len(domain.UseCases)),
		ScoringVersion: domain.ScoringVersion,
		ScoredAt:       time.Now().UTC(),
	}

	for _, uc := range domain.UseCases {
		composite, err := e.calculator.Calculate(uc, scores)
		if err != nil {
			return nil, fmt.Errorf("calculating composite for %s: %w", uc, err)
		}
		record.UseCaseScores[uc] = composite
	}

	var confSum float64
	for _, t := range domain.EvidenceTypes {
		confSum += scores[t].Confidence
	}
	record.MeanConfidence = confSum / float64(len(domain.EvidenceTypes))
	record.LowConfidence = record.MeanConfidence < e.minConfidence

	bestUC, bestScore := record.BestScore()
	e.log.WithFields(logrus.Fields{
		"subject":         bundle.Subject,
		"best_use_case":   bestUC,
		"best_score":      bestScore,
		"mean_confidence": record.MeanConfidence,
		"low_confidence":  record.LowConfidence,
	}).Info("Subject scoring completed")

	return record, nil
}

// Caps returns the engine's cap table. Read-only.
func (e *Engine) Caps() Caps {
	return e.caps
}

// Reliability returns the engine's source reliability registry. Read-only.
func (e *Engine) Reliability() *SourceReliabilityRegistry {
	return e.reliability
}
