// Package collect discovers padel facilities city by city through the Places
// API and persists them.
package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/padel-insights/market-cli/internal/model"
	"github.com/padel-insights/market-cli/internal/roster"
	"github.com/padel-insights/market-cli/internal/store"
	"github.com/padel-insights/market-cli/pkg/places"
)

// Collector fans out one text search per roster city, caches raw API
// responses in the store, and upserts the discovered facilities.
type Collector struct {
	client      places.Client
	store       store.Store
	roster      *roster.Roster
	concurrency int
	cacheTTL    time.Duration
}

// New creates a Collector.
func New(client places.Client, st store.Store, r *roster.Roster, concurrency int, cacheTTL time.Duration) *Collector {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Collector{
		client:      client,
		store:       st,
		roster:      r,
		concurrency: concurrency,
		cacheTTL:    cacheTTL,
	}
}

// Run searches every roster city and returns the collected facilities,
// already persisted. A failed city aborts the run; partially collected
// cities stay cached so a retry is cheap.
func (c *Collector) Run(ctx context.Context) ([]model.Facility, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	var mu sync.Mutex
	var all []model.Facility

	for _, city := range c.roster.Cities() {
		g.Go(func() error {
			facilities, err := c.collectCity(gctx, city)
			if err != nil {
				return eris.Wrapf(err, "collect: city %s", city)
			}
			mu.Lock()
			all = append(all, facilities...)
			mu.Unlock()

			zap.L().Info("collect: city done",
				zap.String("city", city),
				zap.Int("facilities", len(facilities)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].City != all[j].City {
			return all[i].City < all[j].City
		}
		return all[i].PlaceID < all[j].PlaceID
	})

	n, err := c.store.UpsertFacilities(ctx, all)
	if err != nil {
		return nil, err
	}
	zap.L().Info("collect: run complete",
		zap.Int("cities", c.roster.Size()),
		zap.Int("facilities", n),
	)
	return all, nil
}

func (c *Collector) collectCity(ctx context.Context, city string) ([]model.Facility, error) {
	results, err := c.searchCached(ctx, city)
	if err != nil {
		return nil, err
	}

	var facilities []model.Facility
	for _, p := range results {
		f, err := placeToFacility(p, city)
		if err != nil {
			zap.L().Warn("collect: skipping place",
				zap.String("place_id", p.ID),
				zap.String("city", city),
				zap.Error(err),
			)
			continue
		}
		facilities = append(facilities, *f)
	}
	return facilities, nil
}

func (c *Collector) searchCached(ctx context.Context, city string) ([]places.Place, error) {
	key := fmt.Sprintf("textsearch:%s", city)

	cached, err := c.store.GetCachedResponse(ctx, key)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		var results []places.Place
		if err := json.Unmarshal(cached, &results); err != nil {
			return nil, eris.Wrapf(err, "collect: unmarshal cached results for %s", city)
		}
		return results, nil
	}

	results, err := c.client.SearchAll(ctx, searchQuery(city))
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(results)
	if err != nil {
		return nil, eris.Wrapf(err, "collect: marshal results for %s", city)
	}
	if err := c.store.SetCachedResponse(ctx, key, data, c.cacheTTL); err != nil {
		return nil, err
	}
	return results, nil
}

func searchQuery(city string) string {
	return fmt.Sprintf("padel courts in %s, Portugal", city)
}

// placeToFacility converts an API place into a validated facility. The
// searched city is the grouping key regardless of the address locality; a
// court found by the Loulé query counts for Loulé.
func placeToFacility(p places.Place, city string) (*model.Facility, error) {
	if p.Location == nil {
		return nil, eris.Errorf("collect: place %s has no location", p.ID)
	}

	f, err := model.NewFacility(p.ID, p.DisplayName.Text, p.FormattedAddress, city,
		p.Location.Latitude, p.Location.Longitude)
	if err != nil {
		return nil, err
	}

	f.PostalCode = p.PostalCode()
	f.GoogleURL = p.GoogleMapsURI
	f.Phone = p.InternationalPhoneNumber
	f.Website = p.WebsiteURI
	f.ReviewCount = p.UserRatingCount
	// The API omits rating for unrated places, surfacing as 0 here.
	if p.Rating > 0 {
		if err := f.SetRating(p.Rating, p.UserRatingCount); err != nil {
			return nil, err
		}
	}
	return f, nil
}
