package scoring

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/itsatony/mediabase-sub001/internal/domain"
)

// Mechanistic point rates.
const (
	pharmgkbPathwayPoints  = 2.0
	reactomePathwayPoints  = 0.5
	validatedTargetPoints  = 1.5
	cancerPathwayBonusRate = 1.0
	cancerPathwayBonusCap  = 5.0
)

// MechanisticScorer scores pathway memberships and drug-target
// interactions, capped at the mechanistic point budget.
type MechanisticScorer struct {
	caps Caps
	log  *logrus.Logger
}

// NewMechanisticScorer creates a mechanistic scorer.
func NewMechanisticScorer(caps Caps, logger *logrus.Logger) *MechanisticScorer {
	return &MechanisticScorer{caps: caps, log: logger}
}

// Score computes the mechanistic evidence score for one subject's bundle.
func (s *MechanisticScorer) Score(bundle *domain.EvidenceBundle) domain.EvidenceScore {
	score := domain.EvidenceScore{Type: domain.MECHANISTIC, SourceReliability: 1.0}
	skipped := 0
	validInputs := 0

	var pharmgkb, reactome, cancerRelevant int
	for _, pw := range bundle.Pathways {
		switch pw.Source {
		case domain.PATHWAY_PHARMGKB:
			pharmgkb++
		case domain.PATHWAY_REACTOME:
			reactome++
		default:
			s.log.WithFields(logrus.Fields{
				"subject": bundle.Subject,
				"source":  pw.Source,
				"pathway": pw.Name,
			}).Warn("Skipping pathway membership with unknown source")
			skipped++
			continue
		}
		if pw.CancerRelevant {
			cancerRelevant++
		}
		validInputs++
	}

	var validated int
	for _, ix := range bundle.Interactions {
		if ix.Validated {
			validated++
		}
		validInputs++
	}

	pathwayPoints := pharmgkbPathwayPoints*float64(pharmgkb) + reactomePathwayPoints*float64(reactome)
	targetPoints := validatedTargetPoints * float64(validated)
	cancerBonus := math.Min(cancerPathwayBonusCap, cancerPathwayBonusRate*float64(cancerRelevant))

	if skipped > 0 {
		s.log.WithFields(logrus.Fields{
			"subject":  bundle.Subject,
			"evidence": domain.MECHANISTIC,
			"skipped":  skipped,
		}).Debug("Skipped invalid mechanistic sub-records")
	}

	if validInputs == 0 {
		return score
	}

	score.Factors = []domain.ContributingFactor{
		{Label: "pathway_memberships", Points: pathwayPoints},
		{Label: "validated_interactions", Points: targetPoints},
		{Label: "cancer_pathway_bonus", Points: cancerBonus},
	}
	score.Value = clamp(pathwayPoints+targetPoints+cancerBonus, 0, s.caps[domain.MECHANISTIC])
	score.Confidence = countConfidence(validInputs, 0.15)
	return score
}
