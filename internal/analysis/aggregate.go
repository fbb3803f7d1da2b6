// Package analysis implements the opportunity-scoring pipeline: facility
// aggregation into per-municipality statistics, geographic gap measurement,
// and the weighted composite score.
package analysis

import (
	"sort"

	"github.com/padel-insights/market-cli/internal/model"
	"github.com/padel-insights/market-cli/internal/roster"
)

// perCapitaScale expresses saturation as facilities per 10,000 residents.
const perCapitaScale = 10000.0

// Aggregator groups facilities by municipality and computes city-level
// statistics. Every roster city appears in the output exactly once,
// regardless of data coverage; cities observed in the input but missing
// from the roster are appended with unknown population.
type Aggregator struct {
	roster *roster.Roster
}

// NewAggregator creates an Aggregator over the given municipality roster.
func NewAggregator(r *roster.Roster) *Aggregator {
	return &Aggregator{roster: r}
}

// Aggregate turns a flat facility list into one CityStats per municipality.
// Pure computation: it never fails for a validated facility list, including
// the empty one.
func (a *Aggregator) Aggregate(facilities []model.Facility) []model.CityStats {
	groups := make(map[string][]model.Facility)
	for _, f := range facilities {
		groups[f.City] = append(groups[f.City], f)
	}

	observed := make(map[string]model.CityStats, len(groups))
	for city, group := range groups {
		observed[city] = a.aggregateCity(city, group)
	}

	out := make([]model.CityStats, 0, a.roster.Size()+len(groups))

	// Roster cities first, in stable order. Absent ones get zero-valued
	// rows anchored at the reference center.
	for _, city := range a.roster.Cities() {
		if stats, ok := observed[city]; ok {
			out = append(out, stats)
			continue
		}
		pop, _ := a.roster.Population(city)
		center, _ := a.roster.Center(city)
		zero := 0.0
		p := pop
		out = append(out, model.CityStats{
			City:                city,
			TotalFacilities:     0,
			TotalReviews:        0,
			CenterLat:           center.Lat,
			CenterLng:           center.Lng,
			Population:          &p,
			FacilitiesPerCapita: &zero, // population known, so the rate is a real 0
		})
	}

	// Off-roster cities with facilities, appended alphabetically.
	var extra []string
	for city := range observed {
		if !a.roster.Contains(city) {
			extra = append(extra, city)
		}
	}
	sort.Strings(extra)
	for _, city := range extra {
		out = append(out, observed[city])
	}

	return out
}

// aggregateCity computes the statistics for one non-empty facility group.
func (a *Aggregator) aggregateCity(city string, group []model.Facility) model.CityStats {
	stats := model.CityStats{
		City:            city,
		TotalFacilities: len(group),
	}

	var ratings []float64
	var latSum, lngSum float64
	for _, f := range group {
		latSum += f.Latitude
		lngSum += f.Longitude
		stats.TotalReviews += f.ReviewCount
		if f.Rating != nil {
			ratings = append(ratings, *f.Rating)
		}
	}

	n := float64(len(group))
	stats.CenterLat = latSum / n
	stats.CenterLng = lngSum / n

	// Rating statistics cover rated facilities only; an unrated facility is
	// not a zero-star one.
	if len(ratings) > 0 {
		avg := mean(ratings)
		med := median(ratings)
		stats.AvgRating = &avg
		stats.MedianRating = &med
	}

	if pop, ok := a.roster.Population(city); ok {
		p := pop
		stats.Population = &p
		rate := 0.0
		if pop > 0 {
			rate = (float64(len(group)) / float64(pop)) * perCapitaScale
		}
		stats.FacilitiesPerCapita = &rate
	}

	return stats
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// median returns the middle value, averaging the two central elements for
// even-sized input. The input slice is not modified.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
