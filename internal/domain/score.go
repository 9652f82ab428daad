package domain

import (
	"time"
)

// ScoringVersion identifies the scoring algorithm revision emitted in
// every output record.
const ScoringVersion = "1.0.0"

// ContributingFactor is one labeled point contribution inside an
// EvidenceScore, in the order the scorer accrued it.
type ContributingFactor struct {
	Label  string  `json:"label"`
	Points float64 `json:"points"`
}

// EvidenceScore is the output of one per-type scorer. Value is always in
// [0, cap(type)]; Confidence is the scorer's self-assessed reliability of
// its own value in [0, 1] (zero inputs yield confidence 0).
type EvidenceScore struct {
	Type       EvidenceType         `json:"type"`
	Value      float64              `json:"value"`
	Confidence float64              `json:"confidence"`
	Factors    []ContributingFactor `json:"contributing_factors,omitempty"`

	// SourceReliability is the count-weighted mean reliability of the
	// sources feeding this score, 1.0 for types without source attribution.
	SourceReliability float64 `json:"source_reliability"`
}

// ConfidenceInterval is a 95% uncertainty band around an overall score.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// CompositeScore is the result for one (subject, use case) pair.
type CompositeScore struct {
	UseCase            UseCase            `json:"use_case"`
	OverallScore       float64            `json:"overall_score"`
	ConfidenceInterval ConfidenceInterval `json:"confidence_interval"`
	ComponentScores    map[string]float64 `json:"component_scores"`
	EvidenceQuality    float64            `json:"evidence_quality"`
}

// ScoreRecord is the full output for one subject: one composite score per
// use case plus the scoring version, in the shape consumed by the external
// persistence collaborator.
type ScoreRecord struct {
	ID             string                      `json:"id,omitempty"`
	Subject        string                      `json:"subject"`
	UseCaseScores  map[UseCase]*CompositeScore `json:"use_case_scores"`
	ScoringVersion string                      `json:"scoring_version"`

	// MeanConfidence averages the five scorer confidences; LowConfidence
	// flags subjects below the configured threshold without excluding them.
	MeanConfidence float64   `json:"mean_confidence"`
	LowConfidence  bool      `json:"low_confidence,omitempty"`
	ScoredAt       time.Time `json:"scored_at,omitempty"`
}

// BestScore returns the highest overall score across use cases and the
// use case that produced it.
func (r *ScoreRecord) BestScore() (UseCase, float64) {
	var bestUC UseCase
	best := -1.0
	for _, uc := range UseCases {
		cs, ok := r.UseCaseScores[uc]
		if !ok {
			continue
		}
		if cs.OverallScore > best {
			best = cs.OverallScore
			bestUC = uc
		}
	}
	if best < 0 {
		return "", 0
	}
	return bestUC, best
}
