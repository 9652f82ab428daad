package scoring

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/itsatony/mediabase-sub001/internal/domain"
)

// tierBasePoints maps each annotation tier to its base point value.
var tierBasePoints = map[domain.AnnotationTier]float64{
	domain.TIER_1A: 8.0,
	domain.TIER_1B: 6.0,
	domain.TIER_2A: 4.0,
	domain.TIER_2B: 2.0,
	domain.TIER_3:  1.0,
	domain.TIER_4:  0.0,
}

// phasePoints maps each trial phase to its point value. Only the single
// best trial counts, so repeated low-value trials cannot inflate the score
// past an approved therapy's ceiling.
var phasePoints = map[domain.TrialPhase]float64{
	domain.PHASE_APPROVED:    15.0,
	domain.PHASE_III:         10.0,
	domain.PHASE_II:          6.0,
	domain.PHASE_I:           3.0,
	domain.PHASE_PRECLINICAL: 1.0,
}

// ClinicalScorer scores clinical annotations, pharmacogenomic variants and
// clinical trial records, capped at the clinical point budget.
type ClinicalScorer struct {
	caps Caps
	log  *logrus.Logger
}

// NewClinicalScorer creates a clinical scorer.
func NewClinicalScorer(caps Caps, logger *logrus.Logger) *ClinicalScorer {
	return &ClinicalScorer{caps: caps, log: logger}
}

// Score computes the clinical evidence score for one subject's bundle.
// Malformed sub-records are skipped with a warning; a bundle whose clinical
// inputs are all absent or invalid scores value 0 with confidence 0.
func (s *ClinicalScorer) Score(bundle *domain.EvidenceBundle) domain.EvidenceScore {
	score := domain.EvidenceScore{Type: domain.CLINICAL, SourceReliability: 1.0}
	skipped := 0
	validInputs := 0

	// Annotation points: tier base plus per-annotation significance bonus.
	var annotationPoints float64
	for _, ann := range bundle.Annotations {
		if !ann.Tier.IsValid() {
			s.warnSkip("tier", string(ann.Tier), bundle.Subject)
			skipped++
			continue
		}
		if ann.SignificanceBonus < 0 || ann.SignificanceBonus > 2.0 || math.IsNaN(ann.SignificanceBonus) {
			s.warnSkip("significance_bonus", ann.SignificanceBonus, bundle.Subject)
			skipped++
			continue
		}
		annotationPoints += tierBasePoints[ann.Tier] + ann.SignificanceBonus
		validInputs++
	}

	// PGx points: sub-capped contributions per variant property plus a
	// bonus keyed to the single highest impact score.
	var highImpact, actionable, cyp450, cancerRelevant int
	maxImpact := 0.0
	for _, v := range bundle.Variants {
		if v.ImpactScore < 0 || v.ImpactScore > 100 || math.IsNaN(v.ImpactScore) {
			s.warnSkip("impact_score", v.ImpactScore, bundle.Subject)
			skipped++
			continue
		}
		if v.ImpactScore >= 70 {
			highImpact++
		}
		if v.IsActionable {
			actionable++
		}
		if v.IsCYP450 {
			cyp450++
		}
		if v.IsCancerRelevant {
			cancerRelevant++
		}
		if v.ImpactScore > maxImpact {
			maxImpact = v.ImpactScore
		}
		validInputs++
	}
	pgxPoints := math.Min(8.0, 0.5*float64(highImpact)) +
		math.Min(6.0, 1.0*float64(actionable)) +
		impactBonus(maxImpact) +
		math.Min(3.0, 0.3*float64(cyp450)) +
		math.Min(5.0, 0.8*float64(cancerRelevant))

	// Trial points: the single best trial only.
	var trialPoints float64
	for _, trial := range bundle.Trials {
		if !trial.Phase.IsValid() {
			s.warnSkip("phase", string(trial.Phase), bundle.Subject)
			skipped++
			continue
		}
		if pts := phasePoints[trial.Phase]; pts > trialPoints {
			trialPoints = pts
		}
		validInputs++
	}

	if skipped > 0 {
		s.log.WithFields(logrus.Fields{
			"subject":      bundle.Subject,
			"evidence":     domain.CLINICAL,
			"skipped":      skipped,
			"valid_inputs": validInputs,
		}).Debug("Skipped invalid clinical sub-records")
	}

	if validInputs == 0 {
		return score
	}

	score.Factors = []domain.ContributingFactor{
		{Label: "clinical_annotations", Points: annotationPoints},
		{Label: "pgx_variants", Points: pgxPoints},
		{Label: "best_trial_phase", Points: trialPoints},
	}
	score.Value = clamp(annotationPoints+pgxPoints+trialPoints, 0, s.caps[domain.CLINICAL])
	score.Confidence = countConfidence(validInputs, 0.2)
	return score
}

// impactBonus grades the single highest PGx impact score.
func impactBonus(maxImpact float64) float64 {
	switch {
	case maxImpact >= 80:
		return 4.0
	case maxImpact >= 70:
		return 2.0
	case maxImpact >= 60:
		return 1.0
	default:
		return 0.0
	}
}

func (s *ClinicalScorer) warnSkip(field string, value interface{}, subject string) {
	verr := domain.NewValidationError(field, fmt.Sprintf("out of domain for %s evidence", domain.CLINICAL), value)
	s.log.WithFields(logrus.Fields{
		"subject": subject,
		"field":   verr.Field,
		"value":   verr.Value,
	}).Warn("Skipping invalid clinical sub-record")
}

// countConfidence derives a scorer's self-assessed confidence from its
// valid input count: each input contributes perItem until saturation at 1.0.
func countConfidence(validInputs int, perItem float64) float64 {
	return clamp(float64(validInputs)*perItem, 0, 1)
}
