package seeder

import (
	"context"
	"fmt"

	"workforce-grid/internal/graph"
)

// CentersSeeder installs accredited training centers, their course offerings
// and their location anchors. It expects LocationsSeeder and TaxonomySeeder
// to have run first.
type CentersSeeder struct{}

func (CentersSeeder) Name() string { return "training_centers" }

func (CentersSeeder) Run(ctx context.Context, deps Deps) error {
	type course struct {
		Name          string
		Skill         string
		DurationWeeks int
		CostKES       int
	}
	items := []struct {
		Name          string
		Accreditation string
		Location      string
		Courses       []course
	}{
		{
			Name:          "Nairobi Technical Training Institute",
			Accreditation: "TVETA",
			Location:      "Nairobi CBD",
			Courses: []course{
				{Name: "Plumbing Certificate", Skill: "Plumbing", DurationWeeks: 26, CostKES: 25000},
				{Name: "Electrical Installation", Skill: "Electrical Wiring", DurationWeeks: 35, CostKES: 30000},
			},
		},
		{
			Name:          "Mombasa Youth Polytechnic",
			Accreditation: "KNEC",
			Location:      "Mombasa",
			Courses: []course{
				{Name: "Solar Installation Diploma", Skill: "Solar Installation", DurationWeeks: 52, CostKES: 45000},
				{Name: "Carpentry Level 2", Skill: "Carpentry", DurationWeeks: 26, CostKES: 20000},
			},
		},
		{
			Name:          "Kisumu National Polytechnic",
			Accreditation: "TVETA",
			Location:      "Kisumu",
			Courses: []course{
				{Name: "Automotive Mechanics", Skill: "Automotive Repair", DurationWeeks: 52, CostKES: 40000},
				{Name: "Welding Technology", Skill: "Welding", DurationWeeks: 35, CostKES: 35000},
			},
		},
	}

	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := deps.Graph.UpsertCenter(it.Name, graph.CenterAttrs{Accreditation: it.Accreditation}); err != nil {
			return fmt.Errorf("center %s: %w", it.Name, err)
		}
		if err := deps.Graph.UpsertLocatedIn(graph.CenterRef(it.Name), it.Location); err != nil {
			return fmt.Errorf("center %s location: %w", it.Name, err)
		}
		for _, c := range it.Courses {
			err := deps.Graph.UpsertTeaches(it.Name, c.Skill, graph.TeachesAttrs{
				Course:        c.Name,
				DurationWeeks: c.DurationWeeks,
				CostKES:       c.CostKES,
			})
			if err != nil {
				return fmt.Errorf("center %s course %s: %w", it.Name, c.Name, err)
			}
		}
	}
	return nil
}
