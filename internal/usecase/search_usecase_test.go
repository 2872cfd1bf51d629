package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"workforce-grid/internal/geo"
	"workforce-grid/internal/graph"
)

func seedNearby(t *testing.T) *Search {
	t.Helper()
	s, _ := testGraph(t)
	ctx := context.Background()

	jobs := NewJobsUsecase(s, nil, discardLogger())
	if _, err := jobs.UpsertJob(ctx, JobInput{
		ID:           "job-nairobi",
		Title:        "Welder",
		PostedAt:     time.Now(),
		Location:     "Nairobi CBD",
		Requirements: []JobRequirementInput{{Skill: "Welding", MinTrust: 40}},
	}); err != nil {
		t.Fatalf("seed job: %v", err)
	}
	if _, err := jobs.UpsertJob(ctx, JobInput{
		ID:       "job-mombasa",
		Title:    "Plumber",
		PostedAt: time.Now(),
		Location: "Mombasa",
	}); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	if _, err := s.UpsertCenter("Nairobi Technical Institute", graph.CenterAttrs{Accreditation: "TVETA"}); err != nil {
		t.Fatalf("seed center: %v", err)
	}
	if err := s.UpsertLocatedIn(graph.CenterRef("Nairobi Technical Institute"), "Nairobi CBD"); err != nil {
		t.Fatalf("anchor center: %v", err)
	}
	if err := s.UpsertTeaches("Nairobi Technical Institute", "Welding", graph.TeachesAttrs{
		Course:        "Arc Welding Certificate",
		DurationWeeks: 26,
		CostKES:       45000,
	}); err != nil {
		t.Fatalf("seed course: %v", err)
	}

	return NewSearchUsecase(s)
}

func TestSearchUsecase_Nearby_DefaultRadiusFindsOnlyLocalResults(t *testing.T) {
	uc := seedNearby(t)

	// Near Nairobi; Mombasa is roughly 440 km away, outside the default 50.
	res, err := uc.Nearby(context.Background(), NearbyParams{Latitude: -1.30, Longitude: 36.82})
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if res.RadiusKM != 50 {
		t.Fatalf("expected default radius 50, got %.1f", res.RadiusKM)
	}
	if len(res.Jobs) != 1 || res.Jobs[0].ID != "job-nairobi" {
		t.Fatalf("expected only the Nairobi job, got %+v", res.Jobs)
	}
	if len(res.Centers) != 1 || res.Centers[0].Name != "Nairobi Technical Institute" {
		t.Fatalf("expected the Nairobi center, got %+v", res.Centers)
	}
	if res.Jobs[0].DistanceKM <= 0 || res.Jobs[0].DistanceKM > 5 {
		t.Fatalf("unexpected distance %.2f", res.Jobs[0].DistanceKM)
	}
}

func TestSearchUsecase_Nearby_RadiusIsCapped(t *testing.T) {
	uc := seedNearby(t)

	res, err := uc.Nearby(context.Background(), NearbyParams{
		Latitude:  -1.30,
		Longitude: 36.82,
		RadiusKM:  10000,
	})
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if res.RadiusKM != 200 {
		t.Fatalf("expected radius capped at 200, got %.1f", res.RadiusKM)
	}
	for _, j := range res.Jobs {
		if j.ID == "job-mombasa" {
			t.Fatalf("Mombasa job should stay outside the capped radius")
		}
	}
}

func TestSearchUsecase_Nearby_SkillFilter(t *testing.T) {
	uc := seedNearby(t)
	ctx := context.Background()

	res, err := uc.Nearby(ctx, NearbyParams{
		Latitude:  -1.30,
		Longitude: 36.82,
		RadiusKM:  200,
		Skill:     "Welding",
	})
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(res.Jobs) != 1 || res.Jobs[0].ID != "job-nairobi" {
		t.Fatalf("expected only the welding job, got %+v", res.Jobs)
	}
	if len(res.Centers) != 1 {
		t.Fatalf("expected the welding center, got %+v", res.Centers)
	}
	if len(res.Centers[0].Courses) != 1 || res.Centers[0].Courses[0].Course != "Arc Welding Certificate" {
		t.Fatalf("expected the welding course, got %+v", res.Centers[0].Courses)
	}

	if _, err := uc.Nearby(ctx, NearbyParams{Latitude: -1.30, Longitude: 36.82, Skill: "Pipe Fitting"}); !errors.Is(err, graph.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown skill, got %v", err)
	}
}

func TestSearchUsecase_Nearby_KindFilter(t *testing.T) {
	uc := seedNearby(t)
	ctx := context.Background()

	res, err := uc.Nearby(ctx, NearbyParams{Latitude: -1.30, Longitude: 36.82, Kind: "jobs"})
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(res.Jobs) != 1 || len(res.Centers) != 0 {
		t.Fatalf("expected jobs only, got jobs=%d centers=%d", len(res.Jobs), len(res.Centers))
	}

	if _, err := uc.Nearby(ctx, NearbyParams{Latitude: -1.30, Longitude: 36.82, Kind: "warehouses"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown kind, got %v", err)
	}
}

func TestSearchUsecase_Nearby_RejectsBadCoordinates(t *testing.T) {
	uc := seedNearby(t)

	if _, err := uc.Nearby(context.Background(), NearbyParams{Latitude: 91, Longitude: 36.82}); !errors.Is(err, geo.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
	if _, err := uc.Nearby(context.Background(), NearbyParams{Latitude: -1.3, Longitude: 36.82, RadiusKM: -4}); !errors.Is(err, geo.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate for negative radius, got %v", err)
	}
}
