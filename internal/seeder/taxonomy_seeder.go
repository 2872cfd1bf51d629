package seeder

import (
	"context"
	"fmt"

	"workforce-grid/internal/graph"
)

// TaxonomySeeder installs the vocational skill vocabulary and its
// prerequisite lattice. Running it twice leaves the graph unchanged.
type TaxonomySeeder struct{}

func (TaxonomySeeder) Name() string { return "taxonomy" }

func (TaxonomySeeder) Run(ctx context.Context, deps Deps) error {
	items := []struct {
		Name       string
		Category   string
		Complexity int
	}{
		{Name: "Plumbing", Category: "Construction", Complexity: 2},
		{Name: "Electrical Wiring", Category: "Construction", Complexity: 3},
		{Name: "Solar Installation", Category: "Renewable Energy", Complexity: 3},
		{Name: "Carpentry", Category: "Construction", Complexity: 2},
		{Name: "Masonry", Category: "Construction", Complexity: 2},
		{Name: "Welding", Category: "Manufacturing", Complexity: 3},
		{Name: "Automotive Repair", Category: "Automotive", Complexity: 3},
		{Name: "Driving", Category: "Transport", Complexity: 1},
		{Name: "Hairdressing", Category: "Beauty", Complexity: 1},
		{Name: "Tailoring", Category: "Fashion", Complexity: 2},
	}

	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := deps.Graph.UpsertSkill(it.Name, graph.SkillAttrs{Category: it.Category, Complexity: it.Complexity}); err != nil {
			return fmt.Errorf("skill %s: %w", it.Name, err)
		}
	}

	prereqs := []graph.PrerequisitePair{
		{Prerequisite: "Electrical Wiring", Dependent: "Solar Installation"},
		{Prerequisite: "Driving", Dependent: "Automotive Repair"},
	}
	if err := deps.Taxonomy.AddPrerequisites(prereqs); err != nil {
		return fmt.Errorf("prerequisites: %w", err)
	}
	return nil
}
