package scoring

import (
	"fmt"
	"math"

	"github.com/itsatony/mediabase-sub001/internal/domain"
)

// weightSumTolerance is the allowed deviation of a weight vector's sum
// from 1.0.
const weightSumTolerance = 1e-9

// WeightVector assigns one weight per evidence type. A valid vector sums
// to 1.0 within tolerance and contains no negative weights.
type WeightVector map[domain.EvidenceType]float64

// Sum returns the total of all weights.
func (w WeightVector) Sum() float64 {
	var sum float64
	for _, v := range w {
		sum += v
	}
	return sum
}

// Validate checks that the vector covers all five evidence types, sums to
// 1.0 and carries no negative weight.
func (w WeightVector) Validate() error {
	for _, t := range domain.EvidenceTypes {
		v, ok := w[t]
		if !ok {
			return fmt.Errorf("missing weight for evidence type %s", t)
		}
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("invalid weight %f for evidence type %s", v, t)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weights sum to %.12f, must sum to 1.0", sum)
	}
	return nil
}

// UseCaseWeightTable maps each use case to its weight vector. The table is
// validated at construction and immutable afterwards; a violation is a
// broken deployment, surfaced as ConfigurationError before any subject is
// scored.
type UseCaseWeightTable struct {
	vectors map[domain.UseCase]WeightVector
}

// defaultUseCaseWeights holds the per-use-case weight distribution.
func defaultUseCaseWeights() map[domain.UseCase]WeightVector {
	return map[domain.UseCase]WeightVector{
		domain.DRUG_REPURPOSING: {
			domain.CLINICAL:    0.35,
			domain.MECHANISTIC: 0.25,
			domain.PUBLICATION: 0.15,
			domain.GENOMIC:     0.10,
			domain.SAFETY:      0.15,
		},
		domain.BIOMARKER_DISCOVERY: {
			domain.CLINICAL:    0.25,
			domain.MECHANISTIC: 0.15,
			domain.PUBLICATION: 0.20,
			domain.GENOMIC:     0.30,
			domain.SAFETY:      0.10,
		},
		domain.PATHWAY_ANALYSIS: {
			domain.CLINICAL:    0.15,
			domain.MECHANISTIC: 0.40,
			domain.PUBLICATION: 0.15,
			domain.GENOMIC:     0.25,
			domain.SAFETY:      0.05,
		},
		domain.THERAPEUTIC_TARGETING: {
			domain.CLINICAL:    0.30,
			domain.MECHANISTIC: 0.25,
			domain.PUBLICATION: 0.15,
			domain.GENOMIC:     0.20,
			domain.SAFETY:      0.10,
		},
	}
}

// NewUseCaseWeightTable constructs and validates the default weight table.
func NewUseCaseWeightTable() (*UseCaseWeightTable, error) {
	return newWeightTable(defaultUseCaseWeights())
}

// newWeightTable validates an arbitrary vector set. Exposed for tests.
func newWeightTable(vectors map[domain.UseCase]WeightVector) (*UseCaseWeightTable, error) {
	for _, uc := range domain.UseCases {
		vector, ok := vectors[uc]
		if !ok {
			return nil, domain.NewConfigurationError("weight_table",
				fmt.Sprintf("missing weight vector for use case %s", uc))
		}
		if err := vector.Validate(); err != nil {
			return nil, domain.NewConfigurationError("weight_table",
				fmt.Sprintf("use case %s: %v", uc, err))
		}
	}
	return &UseCaseWeightTable{vectors: vectors}, nil
}

// Weights returns the weight vector for a use case.
func (t *UseCaseWeightTable) Weights(uc domain.UseCase) (WeightVector, error) {
	vector, ok := t.vectors[uc]
	if !ok {
		return nil, fmt.Errorf("weight table lookup: %w", domain.ErrInvalidUseCase)
	}
	return vector, nil
}

// Caps maps each evidence type to its point cap. Scores are clamped to
// [0, cap] at the type level only; sub-formula point budgets are design
// targets, not hard per-term ceilings.
type Caps map[domain.EvidenceType]float64

// DefaultCaps returns the standard cap table (sums to 100).
func DefaultCaps() Caps {
	return Caps{
		domain.CLINICAL:    domain.ClinicalCap,
		domain.MECHANISTIC: domain.MechanisticCap,
		domain.PUBLICATION: domain.PublicationCap,
		domain.GENOMIC:     domain.GenomicCap,
		domain.SAFETY:      domain.SafetyCap,
	}
}

// Validate checks the cap table covers all types with positive finite caps.
func (c Caps) Validate() error {
	for _, t := range domain.EvidenceTypes {
		cap, ok := c[t]
		if !ok {
			return domain.NewConfigurationError("cap_table",
				fmt.Sprintf("missing cap for evidence type %s", t))
		}
		if cap <= 0 || math.IsNaN(cap) || math.IsInf(cap, 0) {
			return domain.NewConfigurationError("cap_table",
				fmt.Sprintf("invalid cap %f for evidence type %s", cap, t))
		}
	}
	return nil
}

// WithOverrides returns a copy of the cap table with per-type overrides
// applied. Unknown type keys are rejected.
func (c Caps) WithOverrides(overrides map[string]float64) (Caps, error) {
	out := make(Caps, len(c))
	for t, cap := range c {
		out[t] = cap
	}
	for key, cap := range overrides {
		t, err := domain.ParseEvidenceType(key)
		if err != nil {
			return nil, domain.NewConfigurationError("cap_table",
				fmt.Sprintf("unknown cap override key %q", key))
		}
		out[t] = cap
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
