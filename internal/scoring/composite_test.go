package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsatony/mediabase-sub001/internal/domain"
)

func newTestCalculator(t *testing.T) *CompositeScoreCalculator {
	t.Helper()
	weights, err := NewUseCaseWeightTable()
	require.NoError(t, err)
	return NewCompositeScoreCalculator(DefaultCaps(), weights, testLogger())
}

func fullConfidenceScores(values map[domain.EvidenceType]float64) map[domain.EvidenceType]domain.EvidenceScore {
	scores := make(map[domain.EvidenceType]domain.EvidenceScore, len(domain.EvidenceTypes))
	for _, et := range domain.EvidenceTypes {
		scores[et] = domain.EvidenceScore{
			Type:              et,
			Value:             values[et],
			Confidence:        1.0,
			SourceReliability: 1.0,
		}
	}
	return scores
}

func TestCompositeCalculator_PerfectEvidenceScoresHundred(t *testing.T) {
	calc := newTestCalculator(t)

	scores := fullConfidenceScores(map[domain.EvidenceType]float64{
		domain.CLINICAL:    domain.ClinicalCap,
		domain.MECHANISTIC: domain.MechanisticCap,
		domain.PUBLICATION: domain.PublicationCap,
		domain.GENOMIC:     domain.GenomicCap,
		domain.SAFETY:      domain.SafetyCap,
	})

	for _, uc := range domain.UseCases {
		composite, err := calc.Calculate(uc, scores)
		require.NoError(t, err)
		assert.InDelta(t, 100.0, composite.OverallScore, 1e-9)
		assert.InDelta(t, 100.0, composite.ConfidenceInterval.Lower, 1e-9,
			"full confidence evidence leaves no uncertainty")
		assert.InDelta(t, 1.0, composite.EvidenceQuality, 1e-9)
	}
}

func TestCompositeCalculator_IntervalContainsScore(t *testing.T) {
	calc := newTestCalculator(t)

	scores := map[domain.EvidenceType]domain.EvidenceScore{
		domain.CLINICAL:    {Type: domain.CLINICAL, Value: 18, Confidence: 0.6, SourceReliability: 1.0},
		domain.MECHANISTIC: {Type: domain.MECHANISTIC, Value: 10, Confidence: 0.4, SourceReliability: 1.0},
		domain.PUBLICATION: {Type: domain.PUBLICATION, Value: 7, Confidence: 0.5, SourceReliability: 0.8},
		domain.GENOMIC:     {Type: domain.GENOMIC, Value: 4, Confidence: 0.3, SourceReliability: 1.0},
		domain.SAFETY:      {Type: domain.SAFETY, Value: 8, Confidence: 0.8, SourceReliability: 1.0},
	}

	for _, uc := range domain.UseCases {
		composite, err := calc.Calculate(uc, scores)
		require.NoError(t, err)

		ci := composite.ConfidenceInterval
		assert.GreaterOrEqual(t, ci.Lower, 0.0)
		assert.LessOrEqual(t, ci.Lower, composite.OverallScore)
		assert.GreaterOrEqual(t, ci.Upper, composite.OverallScore)
		assert.LessOrEqual(t, ci.Upper, 100.0)
		assert.True(t, composite.EvidenceQuality >= 0 && composite.EvidenceQuality <= 1)
	}
}

func TestCompositeCalculator_VariancePropagation(t *testing.T) {
	calc := newTestCalculator(t)

	scores := map[domain.EvidenceType]domain.EvidenceScore{
		domain.CLINICAL:    {Type: domain.CLINICAL, Value: 30, Confidence: 0.8, SourceReliability: 1.0},
		domain.MECHANISTIC: {Type: domain.MECHANISTIC, SourceReliability: 1.0},
		domain.PUBLICATION: {Type: domain.PUBLICATION, SourceReliability: 1.0},
		domain.GENOMIC:     {Type: domain.GENOMIC, SourceReliability: 1.0},
		domain.SAFETY:      {Type: domain.SAFETY, Value: 8, Confidence: 0.8, SourceReliability: 1.0},
	}

	composite, err := calc.Calculate(domain.THERAPEUTIC_TARGETING, scores)
	require.NoError(t, err)

	// variance = (0.2*30*0.30)^2 + (0.2*8*0.10)^2
	variance := math.Pow(0.2*30*0.30, 2) + math.Pow(0.2*8*0.10, 2)
	margin := ciZScore * math.Sqrt(variance)

	assert.InDelta(t, composite.OverallScore-margin, composite.ConfidenceInterval.Lower, 1e-9)
	assert.InDelta(t, composite.OverallScore+margin, composite.ConfidenceInterval.Upper, 1e-9)
}

func TestCompositeCalculator_ComponentScoresRaw(t *testing.T) {
	calc := newTestCalculator(t)

	scores := fullConfidenceScores(map[domain.EvidenceType]float64{
		domain.CLINICAL: 12.5,
		domain.SAFETY:   6.0,
	})

	composite, err := calc.Calculate(domain.DRUG_REPURPOSING, scores)
	require.NoError(t, err)

	assert.Equal(t, 12.5, composite.ComponentScores["clinical"])
	assert.Equal(t, 6.0, composite.ComponentScores["safety"])
	assert.Equal(t, 0.0, composite.ComponentScores["genomic"])
	assert.Len(t, composite.ComponentScores, 5)
}

func TestCompositeCalculator_UnknownUseCase(t *testing.T) {
	calc := newTestCalculator(t)

	_, err := calc.Calculate(domain.UseCase("CLINICAL_TRIALS"), fullConfidenceScores(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidUseCase)
}

func TestCompositeCalculator_PublicationReliabilityInQuality(t *testing.T) {
	calc := newTestCalculator(t)

	reliable := fullConfidenceScores(map[domain.EvidenceType]float64{domain.PUBLICATION: 10})
	discounted := fullConfidenceScores(map[domain.EvidenceType]float64{domain.PUBLICATION: 10})
	pub := discounted[domain.PUBLICATION]
	pub.SourceReliability = 0.5
	discounted[domain.PUBLICATION] = pub

	a, err := calc.Calculate(domain.BIOMARKER_DISCOVERY, reliable)
	require.NoError(t, err)
	b, err := calc.Calculate(domain.BIOMARKER_DISCOVERY, discounted)
	require.NoError(t, err)

	assert.Equal(t, a.OverallScore, b.OverallScore,
		"source reliability feeds quality, not the score itself")
	assert.Greater(t, a.EvidenceQuality, b.EvidenceQuality)
}
