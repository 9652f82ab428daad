package domain

import (
	"time"
)

// EvidenceBundle represents all evidence gathered for one subject
// (a gene, or a gene/drug pair). Sub-record slices may be empty or nil;
// a missing category denotes "no evidence of that type", never an error.
type EvidenceBundle struct {
	Subject      string                  `json:"subject"`
	Annotations  []ClinicalAnnotation    `json:"clinical_annotations,omitempty"`
	Variants     []PharmacogenomicVariant `json:"pgx_variants,omitempty"`
	Trials       []TrialRecord           `json:"trials,omitempty"`
	Pathways     []PathwayMembership     `json:"pathways,omitempty"`
	Interactions []DrugTargetInteraction `json:"drug_target_interactions,omitempty"`
	Publications []PublicationCount      `json:"publication_counts,omitempty"`
	Ontology     []OntologyTermCount     `json:"ontology_term_counts,omitempty"`
	CancerHits   int                     `json:"cancer_keyword_hits,omitempty"`
	Safety       *SafetyProfile          `json:"safety,omitempty"`
	GatheredAt   time.Time               `json:"gathered_at,omitempty"`
}

// IsEmpty reports whether the bundle carries no evidence of any type.
func (b *EvidenceBundle) IsEmpty() bool {
	return len(b.Annotations) == 0 &&
		len(b.Variants) == 0 &&
		len(b.Trials) == 0 &&
		len(b.Pathways) == 0 &&
		len(b.Interactions) == 0 &&
		len(b.Publications) == 0 &&
		len(b.Ontology) == 0 &&
		b.CancerHits == 0 &&
		b.Safety == nil
}

// ClinicalAnnotation represents a curated clinical annotation with an
// evidence tier and an optional significance bonus in [0, 2.0].
type ClinicalAnnotation struct {
	Tier              AnnotationTier `json:"tier"`
	SignificanceBonus float64        `json:"significance_bonus"`
	Source            string         `json:"source,omitempty"`
}

// PharmacogenomicVariant represents one PGx variant annotation.
type PharmacogenomicVariant struct {
	VariantID        string  `json:"variant_id,omitempty"`
	ImpactScore      float64 `json:"impact_score"` // [0, 100]
	IsActionable     bool    `json:"is_actionable"`
	IsCYP450         bool    `json:"is_cyp450"`
	IsCancerRelevant bool    `json:"is_cancer_relevant"`
}

// TrialRecord represents a clinical trial at a given development phase.
type TrialRecord struct {
	TrialID string     `json:"trial_id,omitempty"`
	Phase   TrialPhase `json:"phase"`
}

// PathwayMembership represents the subject's membership in a biological
// pathway, tagged by source database.
type PathwayMembership struct {
	PathwayID      string        `json:"pathway_id,omitempty"`
	Name           string        `json:"name,omitempty"`
	Source         PathwaySource `json:"source"`
	CancerRelevant bool          `json:"cancer_relevant"`
}

// DrugTargetInteraction represents a drug-target interaction record.
type DrugTargetInteraction struct {
	DrugName  string `json:"drug_name,omitempty"`
	Validated bool   `json:"validated"`
}

// PublicationCount represents the number of publications attributed to
// one evidence source.
type PublicationCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// OntologyTermCount represents the number of ontology terms annotated to
// the subject for one GO aspect.
type OntologyTermCount struct {
	Aspect OntologyAspect `json:"aspect"`
	Count  int            `json:"count"`
}

// SafetyProfile represents safety evidence for the subject. A nil profile
// on the bundle means no safety evidence at all; a present profile with
// zero counts means "neutral/unknown safety" and scores the neutral base.
type SafetyProfile struct {
	IsFDAApproved        bool `json:"is_fda_approved"`
	ToxicityCount        int  `json:"toxicity_count"`
	DrugInteractionCount int  `json:"drug_interaction_count"`
}
