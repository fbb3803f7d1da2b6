package analysis

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/padel-insights/market-cli/internal/model"
)

// neutralWeight is the fallback normalized value whenever a factor cannot be
// meaningfully compared: missing data, a single data point, zero variance.
const neutralWeight = 0.5

// normalizeEpsilon guards the min-max denominator and doubles as the
// zero-variance threshold.
const normalizeEpsilon = 1e-6

// weightSumTolerance bounds how far the four factor weights may drift from
// summing to exactly 1.0.
const weightSumTolerance = 1e-4

// Weights holds the four factor weights of the composite score.
type Weights struct {
	Population    float64
	Saturation    float64
	QualityGap    float64
	GeographicGap float64
}

// DefaultWeights returns the production weighting: demand 20%, competition
// 30%, quality gap 20%, geographic gap 30%.
func DefaultWeights() Weights {
	return Weights{
		Population:    0.20,
		Saturation:    0.30,
		QualityGap:    0.20,
		GeographicGap: 0.30,
	}
}

// Sum returns the total of the four weights.
func (w Weights) Sum() float64 {
	return w.Population + w.Saturation + w.QualityGap + w.GeographicGap
}

// Scorer combines four per-city signals into one comparable 0-100 score.
// Population, saturation, and quality gap are min-max normalized across the
// current city set on every run; the geographic gap uses an absolute
// distance scale so a city's isolation score does not shift when unrelated
// cities change.
type Scorer struct {
	weights Weights
}

// NewScorer validates the weights and builds a Scorer. Weights that do not
// sum to 1.0 (within 1e-4) are a configuration error and fail construction;
// they are never silently renormalized.
func NewScorer(w Weights) (*Scorer, error) {
	if math.Abs(w.Sum()-1.0) > weightSumTolerance {
		return nil, eris.Errorf(
			"scorer: weights must sum to 1.0 (±%.4g), got %.4f (population=%.2f saturation=%.2f quality_gap=%.2f geographic_gap=%.2f)",
			weightSumTolerance, w.Sum(), w.Population, w.Saturation, w.QualityGap, w.GeographicGap,
		)
	}
	return &Scorer{weights: w}, nil
}

// Apply computes the four factor weights and the composite score for every
// entry of stats, in place, and returns the same slice. An empty slice is
// returned unchanged.
func (s *Scorer) Apply(stats []model.CityStats) []model.CityStats {
	if len(stats) == 0 {
		return stats
	}

	populations := make([]*float64, len(stats))
	saturations := make([]*float64, len(stats))
	ratings := make([]*float64, len(stats))
	for i := range stats {
		if stats[i].Population != nil {
			p := float64(*stats[i].Population)
			populations[i] = &p
		}
		saturations[i] = stats[i].FacilitiesPerCapita
		ratings[i] = stats[i].AvgRating
	}

	for i := range stats {
		c := &stats[i]

		// Higher population, more potential players.
		c.PopulationWeight = minMaxNormalize(populations[i], populations, false)
		// Lower facilities per capita, less competition.
		c.SaturationWeight = minMaxNormalize(saturations[i], saturations, true)
		// Lower average rating, room for a better offering.
		c.QualityGapWeight = minMaxNormalize(ratings[i], ratings, true)
		// Farther from the nearest court, bigger coverage hole.
		c.GeographicGapWeight = geographicGapWeight(c.AvgDistanceToNearest)

		c.OpportunityScore = c.CompositeScore(s.weights.Population,
			s.weights.Saturation, s.weights.QualityGap, s.weights.GeographicGap)
	}

	return stats
}

// minMaxNormalize maps value into [0,1] against the spread of all values.
// Neutral 0.5 when the value is nil, fewer than two non-nil values exist,
// or the spread is below the variance threshold.
func minMaxNormalize(value *float64, all []*float64, invert bool) float64 {
	if value == nil {
		return neutralWeight
	}

	var valid []float64
	for _, v := range all {
		if v != nil {
			valid = append(valid, *v)
		}
	}
	if len(valid) < 2 {
		return neutralWeight
	}

	minV, maxV := valid[0], valid[0]
	for _, v := range valid[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if maxV-minV < normalizeEpsilon {
		return neutralWeight
	}

	normalized := (*value - minV) / (maxV - minV + normalizeEpsilon)
	if invert {
		return 1.0 - normalized
	}
	return normalized
}

// geographicGapWeight maps an absolute distance to the nearest external
// facility onto a step scale. Unlike the other factors it does not depend
// on the rest of the city set. Intervals are half-open on the right.
func geographicGapWeight(km *float64) float64 {
	if km == nil || *km < 0 {
		return neutralWeight
	}
	switch {
	case *km < 5:
		return 0.25
	case *km < 10:
		return 0.50
	case *km < 20:
		return 0.75
	default:
		return 1.0
	}
}
