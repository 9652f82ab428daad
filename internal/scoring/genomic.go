package scoring

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/itsatony/mediabase-sub001/internal/domain"
)

// Genomic scoring constants.
const (
	termCountRate         = 0.2
	molecularFunctionRate = 0.4
	cancerKeywordRate     = 0.8
	cancerKeywordBonusCap = 4.0
)

// CancerKeywords is the fixed cancer-relevance keyword list applied by the
// evidence-extraction collaborator when counting keyword hits in ontology
// term text. Exposed for collaborators and tests.
var CancerKeywords = []string{
	"apoptosis",
	"cell cycle",
	"dna repair",
	"tumor suppressor",
	"oncogene",
	"metastasis",
	"angiogenesis",
	"proliferation",
	"signal transduction",
	"growth factor",
}

// GenomicScorer scores ontology term counts by aspect plus cancer keyword
// hits, capped at the genomic point budget.
type GenomicScorer struct {
	caps Caps
	log  *logrus.Logger
}

// NewGenomicScorer creates a genomic scorer.
func NewGenomicScorer(caps Caps, logger *logrus.Logger) *GenomicScorer {
	return &GenomicScorer{caps: caps, log: logger}
}

// Score computes the genomic evidence score for one subject's bundle.
func (s *GenomicScorer) Score(bundle *domain.EvidenceBundle) domain.EvidenceScore {
	score := domain.EvidenceScore{Type: domain.GENOMIC, SourceReliability: 1.0}
	skipped := 0

	var totalTerms, molecularFunction int
	for _, term := range bundle.Ontology {
		if !term.Aspect.IsValid() || term.Count < 0 {
			s.log.WithFields(logrus.Fields{
				"subject": bundle.Subject,
				"aspect":  term.Aspect,
				"count":   term.Count,
			}).Warn("Skipping invalid ontology term count")
			skipped++
			continue
		}
		totalTerms += term.Count
		if term.Aspect == domain.ASPECT_MOLECULAR_FUNCTION {
			molecularFunction += term.Count
		}
	}

	cancerHits := bundle.CancerHits
	if cancerHits < 0 {
		s.log.WithFields(logrus.Fields{
			"subject": bundle.Subject,
			"hits":    cancerHits,
		}).Warn("Ignoring negative cancer keyword hit count")
		cancerHits = 0
	}

	if skipped > 0 {
		s.log.WithFields(logrus.Fields{
			"subject":  bundle.Subject,
			"evidence": domain.GENOMIC,
			"skipped":  skipped,
		}).Debug("Skipped invalid genomic sub-records")
	}

	if totalTerms == 0 && cancerHits == 0 {
		return score
	}

	termPoints := termCountRate * float64(totalTerms)
	functionPoints := molecularFunctionRate * float64(molecularFunction)
	cancerBonus := math.Min(cancerKeywordBonusCap, cancerKeywordRate*float64(cancerHits))

	score.Factors = []domain.ContributingFactor{
		{Label: "ontology_terms", Points: termPoints},
		{Label: "molecular_function_terms", Points: functionPoints},
		{Label: "cancer_keyword_bonus", Points: cancerBonus},
	}
	score.Value = clamp(termPoints+functionPoints+cancerBonus, 0, s.caps[domain.GENOMIC])
	score.Confidence = clamp(float64(totalTerms)*0.05+float64(cancerHits)*0.1, 0, 1)
	return score
}
