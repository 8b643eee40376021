package main

import (
	"context"

	"github.com/pawmetric/survey-cli/internal/catalog"
	"github.com/pawmetric/survey-cli/internal/cost"
	"github.com/pawmetric/survey-cli/internal/model"
	"github.com/pawmetric/survey-cli/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func initCalculator() *cost.Calculator {
	return cost.NewCalculator(cost.Rates{
		NearbySearch: cfg.Pricing.NearbySearch,
		PlaceDetails: cfg.Pricing.PlaceDetails,
	})
}

func loadCatalog(zonesPath, queriesPath string) ([]model.Zone, []model.Query, error) {
	zones, err := catalog.Zones(zonesPath)
	if err != nil {
		return nil, nil, err
	}
	queries, err := catalog.Queries(queriesPath)
	if err != nil {
		return nil, nil, err
	}
	return zones, queries, nil
}
