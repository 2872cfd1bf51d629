package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"workforce-grid/internal/graph"
)

// JobsSeeder installs demo job postings. Required skills outside the
// taxonomy are not edges the graph can hold; they go to the unresolved
// reporter instead of being dropped on the floor.
type JobsSeeder struct{}

func (JobsSeeder) Name() string { return "jobs" }

// seedJobID derives a stable id from the posting identity so re-seeding
// upserts instead of duplicating.
func seedJobID(title, company string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:workforce-grid:seed-job:"+title+"@"+company)).String()
}

func (JobsSeeder) Run(ctx context.Context, deps Deps) error {
	postedAt := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	items := []struct {
		Title          string
		Company        string
		Description    string
		RequiredSkills []string
		Location       string
		SalaryMin      int
		SalaryMax      int
	}{
		{
			Title:          "Senior Plumber",
			Company:        "KenWater Solutions Ltd",
			Description:    "Experienced plumber needed for residential and commercial projects in Nairobi. Must have 3+ years experience.",
			RequiredSkills: []string{"Plumbing", "Pipe Fitting"},
			Location:       "Nairobi CBD",
			SalaryMin:      45000,
			SalaryMax:      65000,
		},
		{
			Title:          "Certified Electrician",
			Company:        "PowerGrid Kenya",
			Description:    "Licensed electrician for commercial installations. ERC license required.",
			RequiredSkills: []string{"Electrical Wiring", "Troubleshooting"},
			Location:       "Mombasa",
			SalaryMin:      50000,
			SalaryMax:      75000,
		},
		{
			Title:          "Solar Installation Technician",
			Company:        "SunPower Africa",
			Description:    "Install and maintain solar panel systems for residential clients.",
			RequiredSkills: []string{"Solar Installation", "Electrical Wiring"},
			Location:       "Kisumu",
			SalaryMin:      55000,
			SalaryMax:      80000,
		},
		{
			Title:          "Furniture Carpenter",
			Company:        "WoodCraft Ltd",
			Description:    "Skilled carpenter for custom furniture manufacturing.",
			RequiredSkills: []string{"Carpentry", "Wood Working"},
			Location:       "Nakuru",
			SalaryMin:      35000,
			SalaryMax:      55000,
		},
		{
			Title:          "Auto Mechanic",
			Company:        "AutoFix Garage",
			Description:    "Experienced mechanic for vehicle diagnostics and repairs.",
			RequiredSkills: []string{"Automotive Repair", "Diagnostics"},
			Location:       "Nairobi CBD",
			SalaryMin:      40000,
			SalaryMax:      70000,
		},
	}

	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		id := seedJobID(it.Title, it.Company)
		_, err := deps.Graph.UpsertJob(id, graph.JobAttrs{
			Title:       it.Title,
			Company:     it.Company,
			Description: it.Description,
			SalaryMin:   it.SalaryMin,
			SalaryMax:   it.SalaryMax,
			Currency:    "KES",
			Source:      "seed",
			PostedAt:    postedAt,
			IsActive:    true,
		})
		if err != nil {
			return fmt.Errorf("job %s: %w", it.Title, err)
		}
		if err := deps.Graph.UpsertLocatedIn(graph.JobRef(id), it.Location); err != nil {
			return fmt.Errorf("job %s location: %w", it.Title, err)
		}

		for _, skill := range it.RequiredSkills {
			err := deps.Graph.UpsertRequires(id, skill, graph.RequiresAttrs{})
			if err == nil {
				continue
			}
			if !errors.Is(err, graph.ErrNotFound) {
				return fmt.Errorf("job %s skill %s: %w", it.Title, skill, err)
			}
			if deps.Unresolved == nil {
				deps.Logger.Printf("[Seeder] job=%q skill=%q status=unresolved", it.Title, skill)
				continue
			}
			reason := fmt.Sprintf("job %q requires a skill outside the taxonomy", it.Title)
			if rerr := deps.Unresolved.ReportUnresolved(ctx, "JOB_REQUIREMENT", id, skill, reason, postedAt); rerr != nil {
				return fmt.Errorf("job %s unresolved skill %s: %w", it.Title, skill, rerr)
			}
		}
	}
	return nil
}
