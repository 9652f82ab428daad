package scoring

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/itsatony/mediabase-sub001/internal/domain"
)

// ciZScore is the z-value for a 95% confidence interval.
const ciZScore = 1.96

// CompositeScoreCalculator combines five per-type evidence scores under a
// use case's weight vector into an overall score with a 95% confidence
// interval and an evidence quality metric.
type CompositeScoreCalculator struct {
	caps    Caps
	weights *UseCaseWeightTable
	log     *logrus.Logger
}

// NewCompositeScoreCalculator creates a composite calculator over validated
// static tables.
func NewCompositeScoreCalculator(caps Caps, weights *UseCaseWeightTable, logger *logrus.Logger) *CompositeScoreCalculator {
	return &CompositeScoreCalculator{caps: caps, weights: weights, log: logger}
}

// Calculate produces the composite score for one use case from the five
// evidence scores. The weight table is validated at startup, so a lookup
// failure here indicates an unknown use case, not a malformed vector.
func (c *CompositeScoreCalculator) Calculate(uc domain.UseCase, scores map[domain.EvidenceType]domain.EvidenceScore) (*domain.CompositeScore, error) {
	weights, err := c.weights.Weights(uc)
	if err != nil {
		return nil, err
	}

	var overall float64
	var variance float64
	var quality float64
	components := make(map[string]float64, len(domain.EvidenceTypes))

	for _, t := range domain.EvidenceTypes {
		score := scores[t]
		w := weights[t]

		normalized := score.Value / c.caps[t]
		overall += w * normalized
		components[t.Key()] = score.Value

		// Uncertainty propagation: each type contributes the points it
		// could plausibly be off by, scaled by its weight.
		term := (1 - score.Confidence) * score.Value * w
		variance += term * term

		quality += score.Confidence * score.SourceReliability * w
	}

	overall = clamp(overall*100, 0, 100)
	margin := ciZScore * math.Sqrt(variance)

	composite := &domain.CompositeScore{
		UseCase:      uc,
		OverallScore: overall,
		ConfidenceInterval: domain.ConfidenceInterval{
			Lower: clamp(overall-margin, 0, 100),
			Upper: clamp(overall+margin, 0, 100),
		},
		ComponentScores: components,
		EvidenceQuality: clamp(quality, 0, 1),
	}

	c.log.WithFields(logrus.Fields{
		"use_case":         uc,
		"overall_score":    composite.OverallScore,
		"ci_lower":         composite.ConfidenceInterval.Lower,
		"ci_upper":         composite.ConfidenceInterval.Upper,
		"evidence_quality": composite.EvidenceQuality,
	}).Debug("Calculated composite score")

	return composite, nil
}
