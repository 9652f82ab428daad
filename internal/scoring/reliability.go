// Package scoring implements the evidence scoring engine: per-type scorers,
// the source reliability model, use-case-specific composite aggregation and
// the statistical confidence computation. The engine is purely functional;
// the two static tables are built once at startup and shared read-only
// across any number of concurrent callers.
package scoring

// SourceReliabilityRegistry maps evidence-source identifiers to trust
// weights in [0, 1]. The registry is immutable after construction.
type SourceReliabilityRegistry struct {
	weights map[string]float64
	def     float64
}

// defaultSourceReliability holds the trust weight per known source.
var defaultSourceReliability = map[string]float64{
	"FDA":      1.0,
	"PharmGKB": 0.95,
	"ClinVar":  0.90,
	"ChEMBL":   0.85,
	"Reactome": 0.85,
	"GO":       0.80,
	"DrugBank": 0.80,
	"PubMed":   0.70,
	"Preprint": 0.40,
}

// unknownSourceReliability is the weight applied to sources not present
// in the registry.
const unknownSourceReliability = 0.5

// NewSourceReliabilityRegistry constructs the default registry.
func NewSourceReliabilityRegistry() *SourceReliabilityRegistry {
	weights := make(map[string]float64, len(defaultSourceReliability))
	for src, w := range defaultSourceReliability {
		weights[src] = w
	}
	return &SourceReliabilityRegistry{
		weights: weights,
		def:     unknownSourceReliability,
	}
}

// Reliability returns the trust weight for a source identifier, falling
// back to the unknown-source default.
func (r *SourceReliabilityRegistry) Reliability(source string) float64 {
	if w, ok := r.weights[source]; ok {
		return w
	}
	return r.def
}

// Known reports whether the source has an explicit registry entry.
func (r *SourceReliabilityRegistry) Known(source string) bool {
	_, ok := r.weights[source]
	return ok
}

// Sources returns the identifiers with explicit entries.
func (r *SourceReliabilityRegistry) Sources() []string {
	sources := make([]string, 0, len(r.weights))
	for src := range r.weights {
		sources = append(sources, src)
	}
	return sources
}
