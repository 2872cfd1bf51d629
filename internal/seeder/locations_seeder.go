package seeder

import (
	"context"
	"fmt"

	"workforce-grid/internal/graph"
)

// LocationsSeeder installs the Kenyan anchor towns used by geospatial search.
type LocationsSeeder struct{}

func (LocationsSeeder) Name() string { return "locations" }

func (LocationsSeeder) Run(ctx context.Context, deps Deps) error {
	items := []struct {
		Name      string
		Latitude  float64
		Longitude float64
	}{
		{Name: "Nairobi CBD", Latitude: -1.286389, Longitude: 36.817223},
		{Name: "Mombasa", Latitude: -4.043477, Longitude: 39.668206},
		{Name: "Kisumu", Latitude: -0.091702, Longitude: 34.767956},
		{Name: "Nakuru", Latitude: -0.3031, Longitude: 36.08},
		{Name: "Eldoret", Latitude: 0.5143, Longitude: 35.2698},
	}

	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := deps.Graph.UpsertLocation(it.Name, graph.LocationAttrs{Latitude: it.Latitude, Longitude: it.Longitude}); err != nil {
			return fmt.Errorf("location %s: %w", it.Name, err)
		}
	}
	return nil
}
