package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padel-insights/market-cli/internal/model"
	"github.com/padel-insights/market-cli/internal/store"
)

func newServeTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestServe_Health(t *testing.T) {
	router := newRouter(newServeTestStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServe_Cities_NoSnapshot(t *testing.T) {
	router := newRouter(newServeTestStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cities", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServe_Cities(t *testing.T) {
	st := newServeTestStore(t)
	_, err := st.SaveSnapshot(context.Background(), []model.CityStats{
		{City: "Loulé", OpportunityScore: 72.1},
		{City: "Faro", OpportunityScore: 61.2},
	})
	require.NoError(t, err)

	router := newRouter(st)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cities", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var snap store.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Cities, 2)
	assert.Equal(t, "Loulé", snap.Cities[0].City)
}

func TestServe_CityByName(t *testing.T) {
	st := newServeTestStore(t)
	_, err := st.SaveSnapshot(context.Background(), []model.CityStats{
		{City: "Faro", OpportunityScore: 61.2},
	})
	require.NoError(t, err)

	router := newRouter(st)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cities/Faro", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var city model.CityStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &city))
	assert.InDelta(t, 61.2, city.OpportunityScore, 1e-9)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cities/Atlantis", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServe_Facilities_FilterByCity(t *testing.T) {
	st := newServeTestStore(t)
	_, err := st.UpsertFacilities(context.Background(), []model.Facility{
		{
			PlaceID: "p1", Name: "Faro Padel", Address: "Rua 1", City: "Faro",
			Latitude: 37.02, Longitude: -7.93, CollectedAt: time.Now().UTC(),
		},
		{
			PlaceID: "p2", Name: "Lagos Padel", Address: "Rua 2", City: "Lagos",
			Latitude: 37.10, Longitude: -8.67, CollectedAt: time.Now().UTC(),
		},
	})
	require.NoError(t, err)

	router := newRouter(st)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/facilities?city=Faro", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var facilities []model.Facility
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &facilities))
	require.Len(t, facilities, 1)
	assert.Equal(t, "p1", facilities[0].PlaceID)
}
