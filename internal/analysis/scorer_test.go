package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padel-insights/market-cli/internal/model"
)

func TestNewScorer_WeightValidation(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		wantErr bool
	}{
		{"defaults", DefaultWeights(), false},
		{"equal quarters", Weights{0.25, 0.25, 0.25, 0.25}, false},
		{"within tolerance", Weights{0.20005, 0.30, 0.20, 0.30}, false},
		{"sum too low", Weights{0.20, 0.30, 0.20, 0.29}, true},
		{"sum too high", Weights{0.30, 0.30, 0.30, 0.30}, true},
		{"all zero", Weights{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScorer(tt.weights)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, s)
		})
	}
}

func TestScorer_SingleEntryIsNeutral(t *testing.T) {
	scorer, err := NewScorer(DefaultWeights())
	require.NoError(t, err)

	pop := 50000
	stats := []model.CityStats{{
		City:                 "Faro",
		Population:           &pop,
		FacilitiesPerCapita:  fptr(0.4),
		AvgRating:            fptr(4.2),
		AvgDistanceToNearest: fptr(5.0),
	}}
	stats = scorer.Apply(stats)

	s := stats[0]
	assert.Equal(t, 0.5, s.PopulationWeight)
	assert.Equal(t, 0.5, s.SaturationWeight)
	assert.Equal(t, 0.5, s.QualityGapWeight)
	assert.Equal(t, 0.50, s.GeographicGapWeight)
	assert.InDelta(t, 50.0, s.OpportunityScore, 1e-9)
}

func TestScorer_EmptyInput(t *testing.T) {
	scorer, err := NewScorer(DefaultWeights())
	require.NoError(t, err)
	assert.Empty(t, scorer.Apply(nil))
}

func TestScorer_ScoreBounds(t *testing.T) {
	scorer, err := NewScorer(DefaultWeights())
	require.NoError(t, err)

	pops := []int{64560, 42388, 11662, 72162}
	stats := []model.CityStats{
		{City: "Faro", Population: &pops[0], FacilitiesPerCapita: fptr(0.31), AvgRating: fptr(4.7), AvgDistanceToNearest: fptr(2.5)},
		{City: "Albufeira", Population: &pops[1], FacilitiesPerCapita: fptr(0.47), AvgRating: fptr(4.35), AvgDistanceToNearest: fptr(29.05)},
		{City: "Alcoutim", Population: &pops[2], FacilitiesPerCapita: fptr(0.0), AvgDistanceToNearest: fptr(45.0)},
		{City: "Loulé", Population: &pops[3], FacilitiesPerCapita: fptr(0.0), AvgDistanceToNearest: fptr(15.0)},
	}
	stats = scorer.Apply(stats)

	for _, s := range stats {
		assert.GreaterOrEqual(t, s.OpportunityScore, 0.0, "city %s", s.City)
		assert.LessOrEqual(t, s.OpportunityScore, 100.0, "city %s", s.City)
	}
}

func TestScorer_SaturationIsInverted(t *testing.T) {
	scorer, err := NewScorer(DefaultWeights())
	require.NoError(t, err)

	pops := []int{50000, 50000}
	stats := []model.CityStats{
		{City: "Saturated", Population: &pops[0], FacilitiesPerCapita: fptr(1.0), AvgDistanceToNearest: fptr(1.0)},
		{City: "Empty", Population: &pops[1], FacilitiesPerCapita: fptr(0.0), AvgDistanceToNearest: fptr(1.0)},
	}
	stats = scorer.Apply(stats)

	saturated := findCity(t, stats, "Saturated")
	empty := findCity(t, stats, "Empty")
	assert.Greater(t, empty.SaturationWeight, saturated.SaturationWeight)
}

func TestMinMaxNormalize(t *testing.T) {
	low, high := 10.0, 20.0
	all := []*float64{&low, &high}

	t.Run("nil value", func(t *testing.T) {
		assert.Equal(t, 0.5, minMaxNormalize(nil, all, false))
	})
	t.Run("min maps near zero", func(t *testing.T) {
		assert.InDelta(t, 0.0, minMaxNormalize(&low, all, false), 1e-6)
	})
	t.Run("max maps near one", func(t *testing.T) {
		assert.InDelta(t, 1.0, minMaxNormalize(&high, all, false), 1e-6)
	})
	t.Run("invert flips", func(t *testing.T) {
		assert.InDelta(t, 1.0, minMaxNormalize(&low, all, true), 1e-6)
	})
	t.Run("single valid value", func(t *testing.T) {
		v := 5.0
		assert.Equal(t, 0.5, minMaxNormalize(&v, []*float64{&v, nil, nil}, false))
	})
	t.Run("zero variance", func(t *testing.T) {
		a, b := 3.0, 3.0
		assert.Equal(t, 0.5, minMaxNormalize(&a, []*float64{&a, &b}, false))
	})
}

func TestGeographicGapWeight(t *testing.T) {
	tests := []struct {
		name string
		km   *float64
		want float64
	}{
		{"nil", nil, 0.5},
		{"negative", fptr(-1.0), 0.5},
		{"zero", fptr(0.0), 0.25},
		{"just under 5", fptr(4.99), 0.25},
		{"exactly 5", fptr(5.0), 0.50},
		{"just under 10", fptr(9.99), 0.50},
		{"exactly 10", fptr(10.0), 0.75},
		{"just under 20", fptr(19.99), 0.75},
		{"exactly 20", fptr(20.0), 1.0},
		{"far", fptr(120.0), 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, geographicGapWeight(tt.km))
		})
	}
}
