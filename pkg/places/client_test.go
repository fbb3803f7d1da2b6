package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/places:searchText", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.rating")
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.location")

		var body SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "padel courts in Faro, Portugal", body.TextQuery)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SearchResponse{
			Places: []Place{
				{
					ID:               "ChIJ-padel1",
					DisplayName:      DisplayName{Text: "Faro Padel Center"},
					FormattedAddress: "Rua do Desporto 10, 8000-000 Faro, Portugal",
					Location:         &LatLng{Latitude: 37.02, Longitude: -7.93},
					Rating:           4.5,
					UserRatingCount:  127,
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), SearchRequest{TextQuery: "padel courts in Faro, Portugal"})

	require.NoError(t, err)
	require.Len(t, resp.Places, 1)
	assert.Equal(t, "ChIJ-padel1", resp.Places[0].ID)
	assert.Equal(t, "Faro Padel Center", resp.Places[0].DisplayName.Text)
	assert.InDelta(t, 4.5, resp.Places[0].Rating, 0.001)
	assert.Equal(t, 127, resp.Places[0].UserRatingCount)
	require.NotNil(t, resp.Places[0].Location)
	assert.InDelta(t, 37.02, resp.Places[0].Location.Latitude, 0.001)
}

func TestTextSearch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "invalid API key"}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), SearchRequest{TextQuery: "test"})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "403")
}

func TestTextSearch_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		// Simulate slow response — context should cancel first.
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately.

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(ctx, SearchRequest{TextQuery: "test"})

	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestSearchAll_Pagination(t *testing.T) {
	callCount := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		var body SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		if body.PageToken == "" {
			_ = json.NewEncoder(w).Encode(SearchResponse{
				Places:        []Place{{ID: "place-1", DisplayName: DisplayName{Text: "First"}}},
				NextPageToken: "page-2-token",
			})
		} else {
			assert.Equal(t, "page-2-token", body.PageToken)
			_ = json.NewEncoder(w).Encode(SearchResponse{
				Places: []Place{{ID: "place-2", DisplayName: DisplayName{Text: "Second"}}},
			})
		}
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	all, err := client.SearchAll(context.Background(), "padel courts in Loulé, Portugal")

	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "place-1", all[0].ID)
	assert.Equal(t, "place-2", all[1].ID)
	assert.Equal(t, 2, callCount)
}

func TestSearchAll_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SearchResponse{})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	all, err := client.SearchAll(context.Background(), "nonexistent")

	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPlace_AddressComponents(t *testing.T) {
	p := Place{AddressComponents: []AddressComponent{
		{LongText: "Faro", Types: []string{"locality", "political"}},
		{LongText: "8000-123", Types: []string{"postal_code"}},
	}}

	assert.Equal(t, "Faro", p.Locality())
	assert.Equal(t, "8000-123", p.PostalCode())
	assert.Empty(t, Place{}.Locality())
}

func TestWithRateLimit_AppliesBetweenCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SearchResponse{})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(1000))
	for i := 0; i < 3; i++ {
		_, err := client.TextSearch(context.Background(), SearchRequest{TextQuery: "q"})
		require.NoError(t, err)
	}
}
