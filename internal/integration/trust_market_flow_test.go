package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"testing"

	"workforce-grid/internal/delivery/http/handler"
	"workforce-grid/internal/delivery/http/middleware"
	"workforce-grid/internal/delivery/http/routes"
	v1 "workforce-grid/internal/delivery/http/routes/v1"
	"workforce-grid/internal/domain/gap"
	"workforce-grid/internal/graph"
	"workforce-grid/internal/repository"
	"workforce-grid/internal/seeder"
	"workforce-grid/internal/taxonomy"
	"workforce-grid/internal/trust"
	"workforce-grid/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type semanticResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type standingData struct {
	UserID   string  `json:"user_id"`
	Skill    string  `json:"skill"`
	Trust    float64 `json:"trust"`
	Verified bool    `json:"verified"`
	Evidence int     `json:"evidence"`
	Version  uint64  `json:"version"`
}

type skillCheckData struct {
	Skill    string  `json:"skill"`
	Trust    float64 `json:"trust"`
	Verified bool    `json:"verified"`
	Meets    bool    `json:"meets"`
}

type qualificationData struct {
	UserID    string           `json:"user_id"`
	Skill     string           `json:"skill"`
	MinTrust  float64          `json:"min_trust"`
	Qualified bool             `json:"qualified"`
	Missing   []string         `json:"missing"`
	Checks    []skillCheckData `json:"checks"`
}

type unresolvedData struct {
	Kind   string `json:"kind"`
	Skill  string `json:"skill"`
	Reason string `json:"reason"`
}

type jobData struct {
	JobID        string `json:"job_id"`
	Title        string `json:"title"`
	Location     string `json:"location"`
	IsActive     bool   `json:"is_active"`
	Requirements []struct {
		Skill    string  `json:"skill"`
		MinTrust float64 `json:"min_trust"`
	} `json:"requirements"`
}

type gapItemData struct {
	Skill      string  `json:"skill"`
	Category   string  `json:"category"`
	Complexity int     `json:"complexity"`
	Demand     int     `json:"demand"`
	Supply     int     `json:"supply"`
	Gap        int     `json:"gap"`
	UnmetJobs  int     `json:"unmet_jobs"`
	Score      float64 `json:"score"`
}

type gapReportData struct {
	Revision uint64        `json:"revision"`
	MinTrust float64       `json:"min_trust"`
	Cached   bool          `json:"cached"`
	Items    []gapItemData `json:"items"`
}

type nearbyData struct {
	RadiusKM float64 `json:"radius_km"`
	Jobs     []struct {
		JobID    string `json:"job_id"`
		Title    string `json:"title"`
		Location string `json:"location"`
	} `json:"jobs"`
	Centers []struct {
		Name          string `json:"name"`
		Accreditation string `json:"accreditation"`
		Location      string `json:"location"`
		Courses       []struct {
			Skill  string `json:"skill"`
			Course string `json:"course"`
		} `json:"courses"`
	} `json:"centers"`
}

type healthData struct {
	Status     string `json:"status"`
	Nodes      int    `json:"nodes"`
	Components map[string]struct {
		Status string `json:"status"`
	} `json:"components"`
}

func TestIntegration_Claim_Verification_Qualification(t *testing.T) {
	app := newTestApp(t)

	sr := doJSON(t, app, "POST", "/api/v1/events/claims", map[string]any{
		"user_id":     "user-wanjiku",
		"skill":       "Welding",
		"confidence":  1.0,
		"source":      "self",
		"occurred_at": "2026-03-01T09:00:00Z",
	})
	if sr.Status != 200 {
		t.Fatalf("claim: expected status=200, got %d (message=%s)", sr.Status, sr.Message)
	}
	var claimed standingData
	mustUnmarshal(t, sr.Data, &claimed, "claim")
	if claimed.Trust != 15 {
		t.Fatalf("claim: expected trust=15, got %v", claimed.Trust)
	}
	if claimed.Verified {
		t.Fatalf("claim: expected verified=false")
	}
	if claimed.Version != 2 || claimed.Evidence != 1 {
		t.Fatalf("claim: expected version=2 evidence=1, got version=%d evidence=%d", claimed.Version, claimed.Evidence)
	}

	sr = doJSON(t, app, "POST", "/api/v1/events/verifications", map[string]any{
		"user_id":     "user-wanjiku",
		"skill":       "Welding",
		"outcome":     "pass",
		"quality":     1.0,
		"source":      "nita-assessment",
		"occurred_at": "2026-03-02T09:00:00Z",
	})
	if sr.Status != 200 {
		t.Fatalf("verification: expected status=200, got %d (message=%s)", sr.Status, sr.Message)
	}
	var verified standingData
	mustUnmarshal(t, sr.Data, &verified, "verification")
	if verified.Trust != 45 {
		t.Fatalf("verification: expected trust=45, got %v", verified.Trust)
	}
	if !verified.Verified {
		t.Fatalf("verification: expected verified=true")
	}
	if verified.Version != 3 || verified.Evidence != 2 {
		t.Fatalf("verification: expected version=3 evidence=2, got version=%d evidence=%d", verified.Version, verified.Evidence)
	}

	sr = doJSON(t, app, "GET", "/api/v1/users/user-wanjiku/qualification?skill=Welding&min_trust=40", nil)
	if sr.Status != 200 {
		t.Fatalf("qualification: expected status=200, got %d (message=%s)", sr.Status, sr.Message)
	}
	var q qualificationData
	mustUnmarshal(t, sr.Data, &q, "qualification")
	if !q.Qualified {
		t.Fatalf("qualification: expected qualified=true at min_trust=40, missing=%v", q.Missing)
	}
	if len(q.Checks) != 1 || q.Checks[0].Skill != "Welding" || !q.Checks[0].Meets {
		t.Fatalf("qualification: expected one passing check for Welding, got %+v", q.Checks)
	}

	sr = doJSON(t, app, "GET", "/api/v1/users/user-wanjiku/qualification?skill=Welding&min_trust=60", nil)
	mustUnmarshal(t, sr.Data, &q, "qualification strict")
	if q.Qualified {
		t.Fatalf("qualification strict: expected qualified=false at min_trust=60")
	}
	if len(q.Missing) != 1 || q.Missing[0] != "Welding" {
		t.Fatalf("qualification strict: expected missing=[Welding], got %v", q.Missing)
	}

	// Solar Installation pulls in Electrical Wiring through the lattice; the
	// user holds neither.
	sr = doJSON(t, app, "GET", "/api/v1/users/user-wanjiku/qualification?skill=Solar+Installation", nil)
	mustUnmarshal(t, sr.Data, &q, "qualification closure")
	if q.Qualified {
		t.Fatalf("qualification closure: expected qualified=false")
	}
	if len(q.Missing) != 2 || q.Missing[0] != "Electrical Wiring" || q.Missing[1] != "Solar Installation" {
		t.Fatalf("qualification closure: expected missing=[Electrical Wiring, Solar Installation], got %v", q.Missing)
	}

	sr = doJSON(t, app, "POST", "/api/v1/events/claims", map[string]any{
		"user_id":    "user-wanjiku",
		"skill":      "Quantum Plumbing",
		"confidence": 0.8,
		"source":     "self",
	})
	if sr.Status != 404 {
		t.Fatalf("unknown skill claim: expected status=404, got %d (message=%s)", sr.Status, sr.Message)
	}

	sr = doJSON(t, app, "GET", "/api/v1/events/unresolved", nil)
	if sr.Status != 200 {
		t.Fatalf("unresolved: expected status=200, got %d (message=%s)", sr.Status, sr.Message)
	}
	var parked []unresolvedData
	mustUnmarshal(t, sr.Data, &parked, "unresolved")
	if len(parked) != 1 {
		t.Fatalf("unresolved: expected 1 parked event, got %d", len(parked))
	}
	if parked[0].Skill != "Quantum Plumbing" || parked[0].Reason != "skill not in taxonomy" {
		t.Fatalf("unresolved: unexpected item %+v", parked[0])
	}
}

func TestIntegration_JobUpsert_GapReport_NearbySearch(t *testing.T) {
	app := newTestApp(t)

	submitEvidence(t, app, "user-otieno", "Welding")

	sr := doJSON(t, app, "POST", "/api/v1/jobs", map[string]any{
		"title":    "Fabrication Welder",
		"company":  "Bahari Steel Works",
		"source":   "manual",
		"location": "Nairobi CBD",
		"requirements": []map[string]any{
			{"skill": "Welding", "min_trust": 50},
		},
	})
	if sr.Status != 201 {
		t.Fatalf("job upsert: expected status=201, got %d (message=%s)", sr.Status, sr.Message)
	}
	var job jobData
	mustUnmarshal(t, sr.Data, &job, "job upsert")
	if job.JobID == "" {
		t.Fatalf("job upsert: expected generated job_id")
	}
	if !job.IsActive {
		t.Fatalf("job upsert: expected is_active=true")
	}
	if len(job.Requirements) != 1 || job.Requirements[0].Skill != "Welding" || job.Requirements[0].MinTrust != 50 {
		t.Fatalf("job upsert: unexpected requirements %+v", job.Requirements)
	}

	// Default threshold: any positive trust counts as supply, but the job's
	// own 50 bar is above the user's 45, so the posting stays unmet.
	sr = doJSON(t, app, "GET", "/api/v1/market/gaps", nil)
	if sr.Status != 200 {
		t.Fatalf("gap report: expected status=200, got %d (message=%s)", sr.Status, sr.Message)
	}
	var report gapReportData
	mustUnmarshal(t, sr.Data, &report, "gap report")
	if report.Cached {
		t.Fatalf("gap report: expected cached=false without a cache")
	}
	if len(report.Items) != 1 {
		t.Fatalf("gap report: expected 1 item, got %d", len(report.Items))
	}
	it := report.Items[0]
	if it.Skill != "Welding" || it.Category != "Manufacturing" || it.Complexity != 3 {
		t.Fatalf("gap report: unexpected item identity %+v", it)
	}
	if it.Demand != 1 || it.Supply != 1 || it.Gap != 0 || it.UnmetJobs != 1 {
		t.Fatalf("gap report: expected demand=1 supply=1 gap=0 unmet=1, got %+v", it)
	}

	sr = doJSON(t, app, "GET", "/api/v1/market/gaps?min_trust=50", nil)
	mustUnmarshal(t, sr.Data, &report, "gap report strict")
	if report.MinTrust != 50 {
		t.Fatalf("gap report strict: expected min_trust=50, got %v", report.MinTrust)
	}
	if len(report.Items) != 1 || report.Items[0].Supply != 0 || report.Items[0].Gap != 1 {
		t.Fatalf("gap report strict: expected supply=0 gap=1, got %+v", report.Items)
	}

	// From the Nairobi CBD anchor the job is in range; the only center
	// teaching Welding sits in Kisumu, far outside the default radius.
	sr = doJSON(t, app, "GET", "/api/v1/search/nearby?lat=-1.286389&lng=36.817223&skill=Welding", nil)
	if sr.Status != 200 {
		t.Fatalf("nearby nairobi: expected status=200, got %d (message=%s)", sr.Status, sr.Message)
	}
	var near nearbyData
	mustUnmarshal(t, sr.Data, &near, "nearby nairobi")
	if near.RadiusKM != 50 {
		t.Fatalf("nearby nairobi: expected default radius_km=50, got %v", near.RadiusKM)
	}
	if len(near.Jobs) != 1 || near.Jobs[0].JobID != job.JobID || near.Jobs[0].Location != "Nairobi CBD" {
		t.Fatalf("nearby nairobi: expected the posted job, got %+v", near.Jobs)
	}
	if len(near.Centers) != 0 {
		t.Fatalf("nearby nairobi: expected no welding centers in range, got %+v", near.Centers)
	}

	sr = doJSON(t, app, "GET", "/api/v1/search/nearby?lat=-0.091702&lng=34.767956&skill=Welding", nil)
	mustUnmarshal(t, sr.Data, &near, "nearby kisumu")
	if len(near.Jobs) != 0 {
		t.Fatalf("nearby kisumu: expected no jobs in range, got %+v", near.Jobs)
	}
	if len(near.Centers) != 1 || near.Centers[0].Name != "Kisumu National Polytechnic" {
		t.Fatalf("nearby kisumu: expected Kisumu National Polytechnic, got %+v", near.Centers)
	}
	courses := near.Centers[0].Courses
	if len(courses) != 1 || courses[0].Skill != "Welding" || courses[0].Course != "Welding Technology" {
		t.Fatalf("nearby kisumu: expected the welding course only, got %+v", courses)
	}

	sr = doJSON(t, app, "GET", "/health", nil)
	if sr.Status != 200 {
		t.Fatalf("health: expected status=200, got %d (message=%s)", sr.Status, sr.Message)
	}
	var h healthData
	mustUnmarshal(t, sr.Data, &h, "health")
	if h.Status != "ok" {
		t.Fatalf("health: expected status=ok, got %s", h.Status)
	}
	if h.Nodes == 0 {
		t.Fatalf("health: expected a populated graph")
	}
	if h.Components["journal"].Status != "disabled" || h.Components["cache"].Status != "disabled" {
		t.Fatalf("health: expected journal and cache disabled, got %+v", h.Components)
	}
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := log.New(io.Discard, "", 0)
	store := graph.NewStore()
	resolver := taxonomy.NewResolver(store)
	engine := trust.NewEngine(store, trust.DefaultPolicy(), nil, logger)
	journal := repository.NewMemoryEventJournal()

	run := seeder.Runner{Seeders: []seeder.Seeder{
		seeder.TaxonomySeeder{},
		seeder.LocationsSeeder{},
		seeder.CentersSeeder{},
	}}
	if err := run.Run(context.Background(), seeder.Deps{Graph: store, Taxonomy: resolver, Logger: logger}); err != nil {
		t.Fatalf("seed graph: %v", err)
	}

	deps := v1.Dependencies{
		Ingest:        usecase.NewIngestUsecase(engine, journal, logger),
		Jobs:          usecase.NewJobsUsecase(store, journal, logger),
		Gap:           usecase.NewGapUsecase(store, resolver, nil, gap.Options{}, logger),
		Search:        usecase.NewSearchUsecase(store),
		Qualification: usecase.NewQualificationUsecase(store, resolver),
		Taxonomy:      usecase.NewTaxonomyUsecase(store, resolver),
		Reports:       usecase.NewReportUsecase(store),
		Maintenance:   usecase.NewMaintenanceUsecase(engine, nil, logger),
	}

	app := fiber.New(fiber.Config{})
	errMw := middleware.NewErrorMiddleware()
	app.Use(errMw.Middleware())

	health := handler.NewHealthHandler(store, nil, nil)
	routes.NewRegistry(deps, health, nil).Register(app)
	return app
}

func submitEvidence(t *testing.T, app *fiber.App, userID, skill string) {
	t.Helper()

	sr := doJSON(t, app, "POST", "/api/v1/events/claims", map[string]any{
		"user_id":     userID,
		"skill":       skill,
		"confidence":  1.0,
		"source":      "self",
		"occurred_at": "2026-03-01T09:00:00Z",
	})
	if sr.Status != 200 {
		t.Fatalf("submit claim: expected status=200, got %d (message=%s)", sr.Status, sr.Message)
	}
	sr = doJSON(t, app, "POST", "/api/v1/events/verifications", map[string]any{
		"user_id":     userID,
		"skill":       skill,
		"outcome":     "pass",
		"quality":     1.0,
		"source":      "nita-assessment",
		"occurred_at": "2026-03-02T09:00:00Z",
	})
	if sr.Status != 200 {
		t.Fatalf("submit verification: expected status=200, got %d (message=%s)", sr.Status, sr.Message)
	}
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body map[string]any) semanticResponse {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("%s %s: marshal body: %v", method, path, err)
		}
		rd = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: request error: %v", method, path, err)
	}
	defer resp.Body.Close()

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		t.Fatalf("%s %s: decode error: %v", method, path, err)
	}
	return sr
}

func mustUnmarshal(t *testing.T, raw json.RawMessage, dst any, what string) {
	t.Helper()

	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("%s: data unmarshal error: %v", what, err)
	}
}
