package scoring

import (
	"github.com/sirupsen/logrus"

	"github.com/itsatony/mediabase-sub001/internal/domain"
)

// Publication scoring constants.
const (
	publicationPointRate = 0.5
	volumeBonusThreshold = 20
	volumeBonusPoints    = 2.0
)

// PublicationScorer scores per-source publication counts, discounted by
// source reliability and capped at the publication point budget.
type PublicationScorer struct {
	caps        Caps
	reliability *SourceReliabilityRegistry
	log         *logrus.Logger
}

// NewPublicationScorer creates a publication scorer.
func NewPublicationScorer(caps Caps, reliability *SourceReliabilityRegistry, logger *logrus.Logger) *PublicationScorer {
	return &PublicationScorer{caps: caps, reliability: reliability, log: logger}
}

// Score computes the publication evidence score for one subject's bundle.
// The score's SourceReliability is the count-weighted mean reliability of
// the contributing sources, feeding the composite evidence quality metric.
func (s *PublicationScorer) Score(bundle *domain.EvidenceBundle) domain.EvidenceScore {
	score := domain.EvidenceScore{Type: domain.PUBLICATION, SourceReliability: 1.0}
	skipped := 0

	var raw float64
	var totalCount int
	var weightedReliability float64
	for _, pub := range bundle.Publications {
		if pub.Count < 0 {
			s.log.WithFields(logrus.Fields{
				"subject": bundle.Subject,
				"source":  pub.Source,
				"count":   pub.Count,
			}).Warn("Skipping publication count below zero")
			skipped++
			continue
		}
		rel := s.reliability.Reliability(pub.Source)
		raw += float64(pub.Count) * rel * publicationPointRate
		weightedReliability += float64(pub.Count) * rel
		totalCount += pub.Count
	}

	if skipped > 0 {
		s.log.WithFields(logrus.Fields{
			"subject":  bundle.Subject,
			"evidence": domain.PUBLICATION,
			"skipped":  skipped,
		}).Debug("Skipped invalid publication sub-records")
	}

	if totalCount == 0 {
		return score
	}

	var volumeBonus float64
	if totalCount > volumeBonusThreshold {
		volumeBonus = volumeBonusPoints
	}

	score.Factors = []domain.ContributingFactor{
		{Label: "reliability_weighted_counts", Points: raw},
		{Label: "volume_bonus", Points: volumeBonus},
	}
	score.Value = clamp(raw+volumeBonus, 0, s.caps[domain.PUBLICATION])
	score.SourceReliability = weightedReliability / float64(totalCount)
	score.Confidence = clamp(float64(totalCount)*0.1, 0, 1) * score.SourceReliability
	return score
}
