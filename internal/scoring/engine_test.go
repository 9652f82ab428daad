package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsatony/mediabase-sub001/internal/domain"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(testLogger(), Options{})
	require.NoError(t, err)
	return engine
}

// approvedDrugBundle is the reference scenario: a gene with a single
// high-tier clinical annotation, an approved drug, two strong
// pharmacogenomic variants and a clean FDA-approved safety profile,
// but no mechanistic, publication or genomic evidence at all.
func approvedDrugBundle() *domain.EvidenceBundle {
	return &domain.EvidenceBundle{
		Subject: "BRAF",
		Annotations: []domain.ClinicalAnnotation{
			{Tier: domain.TIER_1A, SignificanceBonus: 1.5, Source: "PharmGKB"},
		},
		Trials: []domain.TrialRecord{
			{TrialID: "NCT00949702", Phase: domain.PHASE_APPROVED},
		},
		Variants: []domain.PharmacogenomicVariant{
			{VariantID: "rs113488022", ImpactScore: 85, IsActionable: true, IsCancerRelevant: true},
			{VariantID: "rs121913227", ImpactScore: 85, IsActionable: true, IsCancerRelevant: true},
		},
		Safety: &domain.SafetyProfile{IsFDAApproved: true},
	}
}

func TestEngine_ApprovedDrugScenario(t *testing.T) {
	engine := newTestEngine(t)

	record, err := engine.ScoreSubject(approvedDrugBundle())
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, "BRAF", record.Subject)
	assert.Equal(t, domain.ScoringVersion, record.ScoringVersion)
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.ScoredAt.IsZero())
	require.Len(t, record.UseCaseScores, len(domain.UseCases))

	tt := record.UseCaseScores[domain.THERAPEUTIC_TARGETING]
	require.NotNil(t, tt)

	// clinical saturates its cap, safety reaches 8.0, everything else
	// is zero: 0.30*(30/30)*100 + 0.10*(8/10)*100 = 38.
	assert.Equal(t, 30.0, tt.ComponentScores["clinical"])
	assert.Equal(t, 8.0, tt.ComponentScores["safety"])
	assert.Equal(t, 0.0, tt.ComponentScores["mechanistic"])
	assert.InDelta(t, 38.0, tt.OverallScore, 1e-9)
	assert.InDelta(t, 34.458, tt.ConfidenceInterval.Lower, 0.001)
	assert.InDelta(t, 41.542, tt.ConfidenceInterval.Upper, 0.001)
}

func TestEngine_EmptyBundleScoresZero(t *testing.T) {
	engine := newTestEngine(t)

	record, err := engine.ScoreSubject(&domain.EvidenceBundle{Subject: "GENE_X"})
	require.NoError(t, err)

	for _, uc := range domain.UseCases {
		composite := record.UseCaseScores[uc]
		require.NotNil(t, composite, "use case %s", uc)
		assert.Zero(t, composite.OverallScore)
		assert.Zero(t, composite.ConfidenceInterval.Lower)
		assert.Zero(t, composite.ConfidenceInterval.Upper)
		assert.Zero(t, composite.EvidenceQuality)
	}
	assert.Zero(t, record.MeanConfidence)
	assert.True(t, record.LowConfidence)
}

func TestEngine_Deterministic(t *testing.T) {
	engine := newTestEngine(t)

	first, err := engine.ScoreSubject(approvedDrugBundle())
	require.NoError(t, err)
	second, err := engine.ScoreSubject(approvedDrugBundle())
	require.NoError(t, err)

	for _, uc := range domain.UseCases {
		assert.Equal(t, first.UseCaseScores[uc].OverallScore, second.UseCaseScores[uc].OverallScore)
		assert.Equal(t, first.UseCaseScores[uc].ConfidenceInterval, second.UseCaseScores[uc].ConfidenceInterval)
		assert.Equal(t, first.UseCaseScores[uc].ComponentScores, second.UseCaseScores[uc].ComponentScores)
	}
	assert.Equal(t, first.MeanConfidence, second.MeanConfidence)
}

// Adding a valid record to any of the list-typed evidence collections
// must never decrease that type's score. Safety is excluded: toxicity
// and interaction counts penalize by design.
func TestEngine_MonotoneUnderAddedEvidence(t *testing.T) {
	engine := newTestEngine(t)

	baseScores := engine.ScoreEvidence(approvedDrugBundle())

	grown := approvedDrugBundle()
	grown.Annotations = append(grown.Annotations, domain.ClinicalAnnotation{Tier: domain.TIER_2B, Source: "PharmGKB"})
	grown.Pathways = append(grown.Pathways, domain.PathwayMembership{
		PathwayID: "PA165110622", Name: "Vemurafenib Pathway", Source: domain.PATHWAY_PHARMGKB,
	})
	grown.Publications = append(grown.Publications, domain.PublicationCount{Source: "PubMed", Count: 12})
	grown.Ontology = append(grown.Ontology, domain.OntologyTermCount{
		Aspect: domain.ASPECT_MOLECULAR_FUNCTION, Count: 5,
	})
	grown.CancerHits = 2

	grownScores := engine.ScoreEvidence(grown)

	for _, et := range []domain.EvidenceType{domain.CLINICAL, domain.MECHANISTIC, domain.PUBLICATION, domain.GENOMIC} {
		assert.GreaterOrEqual(t, grownScores[et].Value, baseScores[et].Value, "type %s", et)
		assert.GreaterOrEqual(t, grownScores[et].Confidence, baseScores[et].Confidence, "type %s", et)
	}
}

func TestEngine_LowConfidenceFlag(t *testing.T) {
	engine, err := NewEngine(testLogger(), Options{MinConfidenceThreshold: 0.9})
	require.NoError(t, err)

	record, err := engine.ScoreSubject(approvedDrugBundle())
	require.NoError(t, err)
	assert.True(t, record.LowConfidence)

	engine, err = NewEngine(testLogger(), Options{MinConfidenceThreshold: 0.1})
	require.NoError(t, err)

	record, err = engine.ScoreSubject(approvedDrugBundle())
	require.NoError(t, err)
	assert.False(t, record.LowConfidence)
}

func TestEngine_CapOverridesValidated(t *testing.T) {
	_, err := NewEngine(testLogger(), Options{
		CapOverrides: map[string]float64{"clinical": -5},
	})
	require.Error(t, err)

	var cfgErr *domain.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)

	_, err = NewEngine(testLogger(), Options{
		CapOverrides: map[string]float64{"clinical": 40, "publication": 10},
	})
	assert.NoError(t, err)
}

func TestEngine_NilBundleRejected(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.ScoreSubject(nil)
	require.Error(t, err)

	var valErr *domain.ValidationError
	assert.ErrorAs(t, err, &valErr)
}
