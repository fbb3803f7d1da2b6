package analysis

import (
	"sort"

	"go.uber.org/zap"

	"github.com/padel-insights/market-cli/internal/model"
	"github.com/padel-insights/market-cli/internal/roster"
)

// Pipeline sequences the three analysis stages over one facility snapshot:
// aggregate, measure geographic gaps, score. Each run produces a fresh
// CityStats slice owned by the caller; nothing is shared between runs.
type Pipeline struct {
	aggregator *Aggregator
	distance   DistanceCalculator
	scorer     *Scorer
}

// NewPipeline builds a Pipeline over the given roster and scoring weights.
// Invalid weights fail here, before any data is touched.
func NewPipeline(r *roster.Roster, w Weights) (*Pipeline, error) {
	scorer, err := NewScorer(w)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		aggregator: NewAggregator(r),
		scorer:     scorer,
	}, nil
}

// Run executes aggregate -> distances -> scores and returns the city table
// sorted by opportunity score descending, ties broken by city name so the
// ranking is deterministic.
func (p *Pipeline) Run(facilities []model.Facility) []model.CityStats {
	stats := p.aggregator.Aggregate(facilities)
	stats = p.distance.Apply(stats, facilities)
	stats = p.scorer.Apply(stats)

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].OpportunityScore != stats[j].OpportunityScore {
			return stats[i].OpportunityScore > stats[j].OpportunityScore
		}
		return stats[i].City < stats[j].City
	})

	zap.L().Info("analysis: pipeline complete",
		zap.Int("facilities", len(facilities)),
		zap.Int("cities", len(stats)),
	)

	return stats
}
