package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padel-insights/market-cli/internal/model"
	"github.com/padel-insights/market-cli/internal/roster"
)

var facSeq int

func fac(city string, lat, lng float64, rating *float64, reviews int) model.Facility {
	facSeq++
	return model.Facility{
		PlaceID:     fmt.Sprintf("place-%d", facSeq),
		Name:        fmt.Sprintf("Padel Club %d", facSeq),
		Address:     "Rua dos Testes 1",
		City:        city,
		Latitude:    lat,
		Longitude:   lng,
		Rating:      rating,
		ReviewCount: reviews,
	}
}

func fptr(v float64) *float64 { return &v }

func findCity(t *testing.T, stats []model.CityStats, city string) model.CityStats {
	t.Helper()
	for _, s := range stats {
		if s.City == city {
			return s
		}
	}
	t.Fatalf("city %q not found in stats", city)
	return model.CityStats{}
}

func TestAggregate_EmptyInput(t *testing.T) {
	r := roster.Algarve()
	stats := NewAggregator(r).Aggregate(nil)

	require.Len(t, stats, r.Size())
	seen := make(map[string]int)
	for _, s := range stats {
		seen[s.City]++
	}
	for _, city := range r.Cities() {
		assert.Equal(t, 1, seen[city], "roster city %s must appear exactly once", city)
	}
}

func TestAggregate_ZeroFacilityDefaults(t *testing.T) {
	r := roster.Algarve()
	stats := NewAggregator(r).Aggregate([]model.Facility{
		fac("Albufeira", 37.09, -8.25, fptr(4.5), 10),
	})

	loule := findCity(t, stats, "Loulé")
	assert.Equal(t, 0, loule.TotalFacilities)
	assert.Nil(t, loule.AvgRating)
	assert.Nil(t, loule.MedianRating)
	require.NotNil(t, loule.FacilitiesPerCapita)
	assert.Zero(t, *loule.FacilitiesPerCapita)

	center, ok := r.Center("Loulé")
	require.True(t, ok)
	assert.Equal(t, center.Lat, loule.CenterLat)
	assert.Equal(t, center.Lng, loule.CenterLng)

	pop, ok := r.Population("Loulé")
	require.True(t, ok)
	require.NotNil(t, loule.Population)
	assert.Equal(t, pop, *loule.Population)
}

func TestAggregate_UnratedExcludedFromRatingStats(t *testing.T) {
	stats := NewAggregator(roster.Algarve()).Aggregate([]model.Facility{
		fac("Faro", 37.02, -7.93, fptr(4.5), 100),
		fac("Faro", 37.03, -7.94, nil, 0),
	})

	faro := findCity(t, stats, "Faro")
	assert.Equal(t, 2, faro.TotalFacilities)
	require.NotNil(t, faro.AvgRating)
	assert.InDelta(t, 4.5, *faro.AvgRating, 1e-9)
	require.NotNil(t, faro.MedianRating)
	assert.InDelta(t, 4.5, *faro.MedianRating, 1e-9)
}

func TestAggregate_PerCapita(t *testing.T) {
	stats := NewAggregator(roster.Algarve()).Aggregate([]model.Facility{
		fac("Faro", 37.02, -7.93, fptr(4.0), 10),
		fac("Faro", 37.03, -7.94, fptr(4.2), 20),
	})

	faro := findCity(t, stats, "Faro")
	require.NotNil(t, faro.FacilitiesPerCapita)
	assert.InDelta(t, (2.0/64560.0)*10000.0, *faro.FacilitiesPerCapita, 1e-3)
}

func TestAggregate_CenterIsFacilityMean(t *testing.T) {
	stats := NewAggregator(roster.Algarve()).Aggregate([]model.Facility{
		fac("Faro", 37.00, -7.90, nil, 0),
		fac("Faro", 37.10, -8.00, nil, 0),
	})

	faro := findCity(t, stats, "Faro")
	assert.InDelta(t, 37.05, faro.CenterLat, 1e-9)
	assert.InDelta(t, -7.95, faro.CenterLng, 1e-9)
}

func TestAggregate_ReviewsSumOverAllFacilities(t *testing.T) {
	stats := NewAggregator(roster.Algarve()).Aggregate([]model.Facility{
		fac("Faro", 37.02, -7.93, fptr(4.5), 150),
		fac("Faro", 37.03, -7.94, nil, 80),
	})

	faro := findCity(t, stats, "Faro")
	assert.Equal(t, 230, faro.TotalReviews)
}

func TestAggregate_OffRosterCity(t *testing.T) {
	r := roster.Algarve()
	stats := NewAggregator(r).Aggregate([]model.Facility{
		fac("Lisboa", 38.72, -9.14, fptr(4.8), 500),
	})

	require.Len(t, stats, r.Size()+1)
	lisboa := findCity(t, stats, "Lisboa")
	assert.Equal(t, 1, lisboa.TotalFacilities)
	assert.Nil(t, lisboa.Population)
	assert.Nil(t, lisboa.FacilitiesPerCapita)
	// Off-roster rows come after the roster block.
	assert.Equal(t, "Lisboa", stats[len(stats)-1].City)
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"single", []float64{4.5}, 4.5},
		{"odd", []float64{3.0, 5.0, 4.0}, 4.0},
		{"even", []float64{4.2, 4.5}, 4.35},
		{"even unsorted", []float64{5.0, 3.0, 4.0, 2.0}, 3.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, median(tt.values), 1e-9)
		})
	}
}

func TestMedian_DoesNotModifyInput(t *testing.T) {
	values := []float64{5.0, 3.0, 4.0}
	median(values)
	assert.Equal(t, []float64{5.0, 3.0, 4.0}, values)
}
