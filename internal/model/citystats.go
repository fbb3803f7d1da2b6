package model

// CityStats is one row of the per-municipality opportunity table. A fresh
// slice is produced on every pipeline run: the aggregator creates the rows,
// the distance stage fills AvgDistanceToNearest, and the scorer fills the
// four component weights and the final score.
type CityStats struct {
	City string `json:"city" csv:"city"`

	TotalFacilities int      `json:"total_facilities" csv:"total_facilities"`
	AvgRating       *float64 `json:"avg_rating,omitempty" csv:"avg_rating,omitempty"`
	MedianRating    *float64 `json:"median_rating,omitempty" csv:"median_rating,omitempty"`
	TotalReviews    int      `json:"total_reviews" csv:"total_reviews"`

	// Mean facility coordinate, or the fixed roster reference point for a
	// city with zero facilities.
	CenterLat float64 `json:"center_lat" csv:"center_lat"`
	CenterLng float64 `json:"center_lng" csv:"center_lng"`

	// Population is nil for cities outside the reference roster.
	Population *int `json:"population,omitempty" csv:"population,omitempty"`

	// Facilities per 10,000 residents. Nil when population is unknown;
	// 0.0 for a known-population city with zero facilities.
	FacilitiesPerCapita *float64 `json:"facilities_per_capita,omitempty" csv:"facilities_per_capita,omitempty"`

	// Kilometers from the city's reference point to the nearest facility in
	// a different city, rounded to 2 decimals. Nil until computed.
	AvgDistanceToNearest *float64 `json:"avg_distance_to_nearest,omitempty" csv:"avg_distance_to_nearest,omitempty"`

	// Normalized 0-1 factor contributions, kept for breakdown display.
	PopulationWeight    float64 `json:"population_weight" csv:"population_weight"`
	SaturationWeight    float64 `json:"saturation_weight" csv:"saturation_weight"`
	QualityGapWeight    float64 `json:"quality_gap_weight" csv:"quality_gap_weight"`
	GeographicGapWeight float64 `json:"geographic_gap_weight" csv:"geographic_gap_weight"`

	// Composite 0-100 score.
	OpportunityScore float64 `json:"opportunity_score" csv:"opportunity_score"`
}

// HasFacilities reports whether any facility was observed in the city.
func (c *CityStats) HasFacilities() bool {
	return c.TotalFacilities > 0
}

// CompositeScore combines the four normalized factor weights into the 0-100
// opportunity score using the given factor importances.
func (c *CityStats) CompositeScore(population, saturation, qualityGap, geographicGap float64) float64 {
	return (c.PopulationWeight*population +
		c.SaturationWeight*saturation +
		c.QualityGapWeight*qualityGap +
		c.GeographicGapWeight*geographicGap) * 100
}
