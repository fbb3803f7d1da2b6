// Package model defines the core data records for the market analysis
// pipeline: observed padel facilities and per-municipality statistics.
package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CourtType classifies a facility's courts.
type CourtType string

const (
	CourtTypeIndoor  CourtType = "indoor"
	CourtTypeOutdoor CourtType = "outdoor"
	CourtTypeBoth    CourtType = "both"
	CourtTypeUnknown CourtType = ""
)

// NormalizeCity trims whitespace and converts a free-text city label to
// Title Case. The result is the grouping key for all downstream aggregation,
// so " faro " and "FARO" collapse to the same "Faro" bucket. A fresh Caser
// is built per call: cases.Caser carries state and is not safe to share
// between goroutines, and collection normalizes from concurrent workers.
func NormalizeCity(name string) string {
	return cases.Title(language.Portuguese).String(strings.TrimSpace(name))
}

// ParseCourtType maps a free-text court type label to a CourtType.
func ParseCourtType(s string) (CourtType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "indoor":
		return CourtTypeIndoor, true
	case "outdoor":
		return CourtTypeOutdoor, true
	case "both":
		return CourtTypeBoth, true
	case "", "unknown":
		return CourtTypeUnknown, true
	}
	return CourtTypeUnknown, false
}

// Facility is one observed padel venue. Instances are validated once at the
// ingestion boundary via NewFacility and treated as immutable afterwards.
type Facility struct {
	PlaceID     string     `json:"place_id" csv:"place_id"`
	Name        string     `json:"name" csv:"name"`
	Address     string     `json:"address" csv:"address"`
	City        string     `json:"city" csv:"city"`
	PostalCode  string     `json:"postal_code,omitempty" csv:"postal_code,omitempty"`
	Latitude    float64    `json:"latitude" csv:"latitude"`
	Longitude   float64    `json:"longitude" csv:"longitude"`
	Rating      *float64   `json:"rating,omitempty" csv:"rating,omitempty"`
	ReviewCount int        `json:"review_count" csv:"review_count"`
	GoogleURL   string     `json:"google_url,omitempty" csv:"google_url,omitempty"`
	CourtType   CourtType  `json:"court_type,omitempty" csv:"court_type,omitempty"`
	Phone       string     `json:"phone,omitempty" csv:"phone,omitempty"`
	Website     string     `json:"website,omitempty" csv:"website,omitempty"`
	CollectedAt time.Time  `json:"collected_at" csv:"collected_at"`
}

// NewFacility builds a validated Facility. The city label is normalized to
// Title Case; coordinates and rating are range-checked here so the analysis
// core can trust its input without re-validating.
func NewFacility(placeID, name, address, city string, lat, lng float64) (*Facility, error) {
	f := &Facility{
		PlaceID:     placeID,
		Name:        name,
		Address:     address,
		City:        NormalizeCity(city),
		Latitude:    lat,
		Longitude:   lng,
		CollectedAt: time.Now().UTC(),
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks the record's invariants.
func (f *Facility) Validate() error {
	if f.PlaceID == "" {
		return eris.New("model: facility place_id is required")
	}
	if f.Name == "" {
		return eris.New("model: facility name is required")
	}
	if f.City == "" {
		return eris.New("model: facility city is required")
	}
	if f.Latitude < -90 || f.Latitude > 90 {
		return eris.Errorf("model: facility %s latitude %.4f out of range [-90,90]", f.PlaceID, f.Latitude)
	}
	if f.Longitude < -180 || f.Longitude > 180 {
		return eris.Errorf("model: facility %s longitude %.4f out of range [-180,180]", f.PlaceID, f.Longitude)
	}
	if f.Rating != nil && (*f.Rating < 0 || *f.Rating > 5) {
		return eris.Errorf("model: facility %s rating %.2f out of range [0,5]", f.PlaceID, *f.Rating)
	}
	if f.ReviewCount < 0 {
		return eris.Errorf("model: facility %s review_count %d must be >= 0", f.PlaceID, f.ReviewCount)
	}
	return nil
}

// SetRating attaches a rating, validating the range. A nil pointer stays
// "unrated", which is distinct from a rating of 0.
func (f *Facility) SetRating(rating float64, reviews int) error {
	if rating < 0 || rating > 5 {
		return eris.Errorf("model: rating %.2f out of range [0,5]", rating)
	}
	if reviews < 0 {
		return eris.Errorf("model: review_count %d must be >= 0", reviews)
	}
	r := rating
	f.Rating = &r
	f.ReviewCount = reviews
	return nil
}
