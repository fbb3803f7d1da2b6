// Package places provides a Google Places API (new) text-search client for
// facility discovery.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

const fieldMask = "places.id,places.displayName,places.formattedAddress,places.addressComponents," +
	"places.location,places.rating,places.userRatingCount,places.googleMapsUri," +
	"places.internationalPhoneNumber,places.websiteUri,nextPageToken"

// Client performs Google Places API operations.
type Client interface {
	// TextSearch fetches one page of text-search results.
	TextSearch(ctx context.Context, req SearchRequest) (*SearchResponse, error)

	// SearchAll follows nextPageToken until the result set is exhausted.
	SearchAll(ctx context.Context, query string) ([]Place, error)
}

// SearchRequest is the Places Text Search request body.
type SearchRequest struct {
	TextQuery string `json:"textQuery"`
	PageToken string `json:"pageToken,omitempty"`
}

// SearchResponse is the response from Places Text Search.
type SearchResponse struct {
	Places        []Place `json:"places"`
	NextPageToken string  `json:"nextPageToken"`
}

// Place represents a place returned by the API. A zero Rating means the
// place has no rating; the API omits the field entirely in that case.
type Place struct {
	ID                       string             `json:"id"`
	DisplayName              DisplayName        `json:"displayName"`
	FormattedAddress         string             `json:"formattedAddress"`
	AddressComponents        []AddressComponent `json:"addressComponents"`
	Location                 *LatLng            `json:"location"`
	Rating                   float64            `json:"rating"`
	UserRatingCount          int                `json:"userRatingCount"`
	GoogleMapsURI            string             `json:"googleMapsUri"`
	InternationalPhoneNumber string             `json:"internationalPhoneNumber"`
	WebsiteURI               string             `json:"websiteUri"`
}

// DisplayName holds the place's display name.
type DisplayName struct {
	Text string `json:"text"`
}

// AddressComponent is one structured piece of the place's address.
type AddressComponent struct {
	LongText string   `json:"longText"`
	Types    []string `json:"types"`
}

// LatLng holds a WGS-84 coordinate.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PostalCode returns the postal_code address component, if present.
func (p Place) PostalCode() string {
	return p.component("postal_code")
}

// Locality returns the locality address component, if present.
func (p Place) Locality() string {
	return p.component("locality")
}

func (p Place) component(typ string) string {
	for _, c := range p.AddressComponents {
		for _, t := range c.Types {
			if t == typ {
				return c.LongText
			}
		}
	}
	return ""
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the requests-per-second rate limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) TextSearch(ctx context.Context, sreq SearchRequest) (*SearchResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "places: rate limit wait")
		}
	}

	body, err := json.Marshal(sreq)
	if err != nil {
		return nil, eris.Wrap(err, "places: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "places: create request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal response")
	}

	return &result, nil
}

func (c *httpClient) SearchAll(ctx context.Context, query string) ([]Place, error) {
	var (
		all       []Place
		pageToken string
	)
	for {
		resp, err := c.TextSearch(ctx, SearchRequest{TextQuery: query, PageToken: pageToken})
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Places...)
		if resp.NextPageToken == "" {
			return all, nil
		}
		pageToken = resp.NextPageToken
	}
}
