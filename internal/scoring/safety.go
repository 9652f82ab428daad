package scoring

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/itsatony/mediabase-sub001/internal/domain"
)

// Safety scoring constants. The neutral base represents "unknown safety"
// so that absence of negative findings never drives the score to zero.
const (
	safetyNeutralBase      = 5.0
	fdaApprovalPoints      = 3.0
	toxicityPenaltyRate    = 0.5
	interactionPenaltyRate = 0.2
	interactionPenaltyCap  = 3.0
)

// SafetyScorer scores approval status, toxicity annotations and drug
// interaction counts, capped at the safety point budget.
type SafetyScorer struct {
	caps Caps
	log  *logrus.Logger
}

// NewSafetyScorer creates a safety scorer.
func NewSafetyScorer(caps Caps, logger *logrus.Logger) *SafetyScorer {
	return &SafetyScorer{caps: caps, log: logger}
}

// Score computes the safety evidence score for one subject's bundle.
// A nil profile means no safety evidence at all and scores zero with zero
// confidence; a present profile scores from the neutral base.
func (s *SafetyScorer) Score(bundle *domain.EvidenceBundle) domain.EvidenceScore {
	score := domain.EvidenceScore{Type: domain.SAFETY, SourceReliability: 1.0}
	profile := bundle.Safety
	if profile == nil {
		return score
	}

	toxicity := profile.ToxicityCount
	if toxicity < 0 {
		s.log.WithFields(logrus.Fields{
			"subject": bundle.Subject,
			"count":   toxicity,
		}).Warn("Ignoring negative toxicity count")
		toxicity = 0
	}
	interactions := profile.DrugInteractionCount
	if interactions < 0 {
		s.log.WithFields(logrus.Fields{
			"subject": bundle.Subject,
			"count":   interactions,
		}).Warn("Ignoring negative drug interaction count")
		interactions = 0
	}

	var approvalPoints float64
	if profile.IsFDAApproved {
		approvalPoints = fdaApprovalPoints
	}
	toxicityPenalty := toxicityPenaltyRate * float64(toxicity)
	interactionPenalty := math.Min(interactionPenaltyCap, interactionPenaltyRate*float64(interactions))

	score.Factors = []domain.ContributingFactor{
		{Label: "neutral_base", Points: safetyNeutralBase},
		{Label: "fda_approval", Points: approvalPoints},
		{Label: "toxicity_penalty", Points: -toxicityPenalty},
		{Label: "interaction_penalty", Points: -interactionPenalty},
	}
	score.Value = clamp(safetyNeutralBase+approvalPoints-toxicityPenalty-interactionPenalty, 0, s.caps[domain.SAFETY])

	confidence := 0.5
	if profile.IsFDAApproved {
		confidence += 0.3
	}
	confidence += math.Min(0.2, 0.05*float64(toxicity+interactions))
	score.Confidence = clamp(confidence, 0, 1)
	return score
}
