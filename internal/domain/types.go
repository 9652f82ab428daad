// Package domain contains core business entities and types for gene/drug
// evidence scoring. Evidence from heterogeneous biomedical sources (clinical
// annotations, pathway memberships, literature counts, ontology terms, safety
// flags) is normalized into five fixed evidence types and combined into
// use-case-specific composite scores on a 0-100 scale.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// EvidenceType classifies evidence into one of five fixed categories.
// Each type carries an immutable point cap; the caps sum to 100, the scale
// of the composite overall score.
type EvidenceType string

const (
	CLINICAL    EvidenceType = "CLINICAL"
	MECHANISTIC EvidenceType = "MECHANISTIC"
	PUBLICATION EvidenceType = "PUBLICATION"
	GENOMIC     EvidenceType = "GENOMIC"
	SAFETY      EvidenceType = "SAFETY"
)

// EvidenceTypes lists all evidence types in canonical order.
var EvidenceTypes = []EvidenceType{CLINICAL, MECHANISTIC, PUBLICATION, GENOMIC, SAFETY}

// Default point caps per evidence type. The caps sum to 100.
const (
	ClinicalCap    = 30.0
	MechanisticCap = 25.0
	PublicationCap = 20.0
	GenomicCap     = 15.0
	SafetyCap      = 10.0
)

// UseCase identifies the research intent a composite score is tailored to.
type UseCase string

const (
	DRUG_REPURPOSING      UseCase = "DRUG_REPURPOSING"
	BIOMARKER_DISCOVERY   UseCase = "BIOMARKER_DISCOVERY"
	PATHWAY_ANALYSIS      UseCase = "PATHWAY_ANALYSIS"
	THERAPEUTIC_TARGETING UseCase = "THERAPEUTIC_TARGETING"
)

// UseCases lists all use cases in canonical order.
var UseCases = []UseCase{DRUG_REPURPOSING, BIOMARKER_DISCOVERY, PATHWAY_ANALYSIS, THERAPEUTIC_TARGETING}

// AnnotationTier represents the clinical annotation evidence level,
// following PharmGKB tier conventions.
type AnnotationTier string

const (
	TIER_1A AnnotationTier = "1A"
	TIER_1B AnnotationTier = "1B"
	TIER_2A AnnotationTier = "2A"
	TIER_2B AnnotationTier = "2B"
	TIER_3  AnnotationTier = "3"
	TIER_4  AnnotationTier = "4"
)

// TrialPhase represents the development stage of a clinical trial.
type TrialPhase string

const (
	PHASE_PRECLINICAL TrialPhase = "PRECLINICAL"
	PHASE_I           TrialPhase = "I"
	PHASE_II          TrialPhase = "II"
	PHASE_III         TrialPhase = "III"
	PHASE_APPROVED    TrialPhase = "IV_APPROVED"
)

// PathwaySource identifies the database a pathway membership came from.
type PathwaySource string

const (
	PATHWAY_PHARMGKB PathwaySource = "PharmGKB"
	PATHWAY_REACTOME PathwaySource = "Reactome"
)

// OntologyAspect identifies the GO aspect of an ontology term count.
type OntologyAspect string

const (
	ASPECT_BIOLOGICAL_PROCESS OntologyAspect = "biological_process"
	ASPECT_MOLECULAR_FUNCTION OntologyAspect = "molecular_function"
	ASPECT_CELLULAR_COMPONENT OntologyAspect = "cellular_component"
)

// Validation errors for evidence data integrity.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidEvidenceType = errors.New("invalid evidence type")
	ErrInvalidUseCase      = errors.New("invalid use case")
	ErrInvalidTier         = errors.New("invalid annotation tier")
	ErrInvalidPhase        = errors.New("invalid trial phase")
)

// IsValid validates the evidence type.
func (t EvidenceType) IsValid() bool {
	switch t {
	case CLINICAL, MECHANISTIC, PUBLICATION, GENOMIC, SAFETY:
		return true
	default:
		return false
	}
}

// String returns the string representation of the evidence type.
func (t EvidenceType) String() string {
	return string(t)
}

// Key returns the lowercase key used for this type in output records.
func (t EvidenceType) Key() string {
	switch t {
	case CLINICAL:
		return "clinical"
	case MECHANISTIC:
		return "mechanistic"
	case PUBLICATION:
		return "publication"
	case GENOMIC:
		return "genomic"
	case SAFETY:
		return "safety"
	default:
		return "unknown"
	}
}

// IsValid validates the use case.
func (u UseCase) IsValid() bool {
	switch u {
	case DRUG_REPURPOSING, BIOMARKER_DISCOVERY, PATHWAY_ANALYSIS, THERAPEUTIC_TARGETING:
		return true
	default:
		return false
	}
}

// String returns the string representation of the use case.
func (u UseCase) String() string {
	return string(u)
}

// LogFields returns structured logging fields for audit trails.
func (u UseCase) LogFields() map[string]any {
	return map[string]any{
		"use_case": string(u),
		"is_valid": u.IsValid(),
	}
}

// IsValid validates the annotation tier.
func (at AnnotationTier) IsValid() bool {
	switch at {
	case TIER_1A, TIER_1B, TIER_2A, TIER_2B, TIER_3, TIER_4:
		return true
	default:
		return false
	}
}

// IsValid validates the trial phase.
func (tp TrialPhase) IsValid() bool {
	switch tp {
	case PHASE_PRECLINICAL, PHASE_I, PHASE_II, PHASE_III, PHASE_APPROVED:
		return true
	default:
		return false
	}
}

// IsValid validates the pathway source.
func (ps PathwaySource) IsValid() bool {
	switch ps {
	case PATHWAY_PHARMGKB, PATHWAY_REACTOME:
		return true
	default:
		return false
	}
}

// IsValid validates the ontology aspect.
func (oa OntologyAspect) IsValid() bool {
	switch oa {
	case ASPECT_BIOLOGICAL_PROCESS, ASPECT_MOLECULAR_FUNCTION, ASPECT_CELLULAR_COMPONENT:
		return true
	default:
		return false
	}
}

// ParseUseCase converts a string into a validated UseCase.
func ParseUseCase(s string) (UseCase, error) {
	u := UseCase(strings.ToUpper(strings.TrimSpace(s)))
	if !u.IsValid() {
		return "", fmt.Errorf("parsing use case %q: %w", s, ErrInvalidUseCase)
	}
	return u, nil
}

// ParseEvidenceType converts a string into a validated EvidenceType.
func ParseEvidenceType(s string) (EvidenceType, error) {
	t := EvidenceType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("parsing evidence type %q: %w", s, ErrInvalidEvidenceType)
	}
	return t, nil
}
