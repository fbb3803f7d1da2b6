package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/padel-insights/market-cli/internal/analysis"
	"github.com/padel-insights/market-cli/internal/geo"
	"github.com/padel-insights/market-cli/internal/model"
	"github.com/padel-insights/market-cli/internal/roster"
	"github.com/padel-insights/market-cli/internal/store"
)

// env bundles the resources shared by most commands.
type env struct {
	Store  store.Store
	Roster *roster.Roster
}

func initEnv(ctx context.Context) (*env, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	r, err := loadRoster()
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}

	return &env{Store: st, Roster: r}, nil
}

func (e *env) Close() {
	e.Store.Close() //nolint:errcheck
}

func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	}
	return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
}

// loadRoster resolves the municipality roster: the built-in Algarve tables
// by default, a YAML file when configured, with reference centers optionally
// replaced by municipality boundary centroids from a shapefile.
func loadRoster() (*roster.Roster, error) {
	r := roster.Algarve()
	if cfg.Roster.Path != "" {
		var err error
		r, err = roster.LoadYAML(cfg.Roster.Path)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Roster.Shapefile == "" {
		return r, nil
	}

	centroids, err := geo.CentersFromShapefile(cfg.Roster.Shapefile, cfg.Roster.ShapefileField, model.NormalizeCity)
	if err != nil {
		return nil, err
	}

	populations := make(map[string]int, r.Size())
	centers := make(map[string]roster.Center, r.Size())
	for _, city := range r.Cities() {
		pop, _ := r.Population(city)
		center, _ := r.Center(city)
		if c, ok := centroids[city]; ok {
			center = c
		}
		populations[city] = pop
		centers[city] = center
	}
	return roster.New(populations, centers)
}

func scoringWeights() analysis.Weights {
	return analysis.Weights{
		Population:    cfg.Scoring.PopulationWeight,
		Saturation:    cfg.Scoring.SaturationWeight,
		QualityGap:    cfg.Scoring.QualityGapWeight,
		GeographicGap: cfg.Scoring.GeographicGapWeight,
	}
}
