package analysis

import (
	"math"

	"github.com/padel-insights/market-cli/internal/geo"
	"github.com/padel-insights/market-cli/internal/model"
)

// DistanceCalculator measures each city's geographic isolation: the geodesic
// distance from its reference point to the nearest facility located in a
// different city.
type DistanceCalculator struct{}

// Apply sets AvgDistanceToNearest on every entry of stats and returns the
// same slice.
//
// For a city with facilities the reference point is the centroid of its own
// facilities and the search covers facilities in other cities only. For a
// city with zero facilities the roster reference center (already on the
// stats row) is the reference point and the search covers every facility in
// the region; without this the empty municipalities would report 0.0 and
// look fully served instead of underserved. With no facilities anywhere, or
// no facility outside the city, the distance is 0.0 rather than an error.
func (DistanceCalculator) Apply(stats []model.CityStats, facilities []model.Facility) []model.CityStats {
	for i := range stats {
		d := nearestExternalKM(&stats[i], facilities)
		stats[i].AvgDistanceToNearest = &d
	}
	return stats
}

func nearestExternalKM(city *model.CityStats, facilities []model.Facility) float64 {
	if len(facilities) == 0 {
		return 0.0
	}

	refLat, refLng := city.CenterLat, city.CenterLng
	excludeOwn := false

	if own := facilitiesIn(city.City, facilities); len(own) > 0 {
		// Recompute the centroid from the facility list itself; the stats
		// row carries the same mean but the distance stage must not depend
		// on aggregation ordering.
		var latSum, lngSum float64
		for _, f := range own {
			latSum += f.Latitude
			lngSum += f.Longitude
		}
		refLat = latSum / float64(len(own))
		refLng = lngSum / float64(len(own))
		excludeOwn = true
	}

	minKM := math.Inf(1)
	for _, f := range facilities {
		if excludeOwn && f.City == city.City {
			continue
		}
		if d := geo.DistanceKM(refLat, refLng, f.Latitude, f.Longitude); d < minKM {
			minKM = d
		}
	}
	if math.IsInf(minKM, 1) {
		// The city holds every facility in the region; no external
		// reference exists.
		return 0.0
	}

	return math.Round(minKM*100) / 100
}

func facilitiesIn(city string, facilities []model.Facility) []model.Facility {
	var out []model.Facility
	for _, f := range facilities {
		if f.City == city {
			out = append(out, f)
		}
	}
	return out
}

// TravelRadiusKM estimates how far residents will travel for a court based
// on municipality size: big cities expect local options, small towns travel
// further. Both boundaries are inclusive to the middle band. Informational
// only; the opportunity score does not consume it.
func TravelRadiusKM(population int) float64 {
	switch {
	case population > 50000:
		return 5.0
	case population >= 20000:
		return 10.0
	default:
		return 15.0
	}
}
