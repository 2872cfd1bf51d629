package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"workforce-grid/internal/config"
	"workforce-grid/internal/database"
	"workforce-grid/internal/database/migration"
	dbpostgres "workforce-grid/internal/database/postgres"
	"workforce-grid/internal/domain/gap"
	"workforce-grid/internal/graph"
	"workforce-grid/internal/infrastructure/cache"
	"workforce-grid/internal/queues"
	"workforce-grid/internal/repository"
	"workforce-grid/internal/seeder"
	"workforce-grid/internal/taxonomy"
	"workforce-grid/internal/trust"
	"workforce-grid/internal/usecase"
	"workforce-grid/internal/ws"
	"workforce-grid/migrations"

	"github.com/google/uuid"
)

// Container owns the long-lived pieces of one grid node: the in-memory
// graph, the trust engine, the event journal and the usecases on top.
// Construction seeds the graph and replays the journal, so a returned
// container is ready to serve.
type Container struct {
	Config config.Config
	Logger *log.Logger

	Store    *graph.Store
	Resolver *taxonomy.Resolver
	Engine   *trust.Engine
	Hub      *ws.Hub

	// DB is nil when no journal database is configured; the node then
	// keeps events in memory only.
	DB      database.DB
	Cache   *cache.Cache
	Journal repository.EventJournal

	Ingest        usecase.IngestUsecase
	Jobs          usecase.JobsUsecase
	Gap           usecase.GapUsecase
	Search        usecase.SearchUsecase
	Qualification usecase.QualificationUsecase
	Taxonomy      usecase.TaxonomyUsecase
	Reports       usecase.ReportUsecase
	Maintenance   usecase.MaintenanceUsecase

	// Consumer is nil when AMQP_URL is unset or the broker was
	// unreachable at boot.
	Consumer *queues.Consumer

	journalCloser interface{ Close() error }
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}

	store := graph.NewStore()
	resolver := taxonomy.NewResolver(store)

	hub := ws.NewHub(logger)
	go hub.Run()

	policy := policyFromConfig(cfg.Trust)
	engine := trust.NewEngine(store, policy, ws.NewNotifier(hub), logger)

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Resolver: resolver,
		Engine:   engine,
		Hub:      hub,
		Cache:    cache.New(logger),
	}

	if cfg.Database.Enabled() {
		if err := c.openJournalDatabase(); err != nil {
			return nil, err
		}
	} else {
		logger.Printf("[App] no journal database configured, events stay in memory")
		c.Journal = repository.NewMemoryEventJournal()
	}

	c.Ingest = usecase.NewIngestUsecase(engine, c.Journal, logger)
	c.Jobs = usecase.NewJobsUsecase(store, c.Journal, logger)
	c.Gap = usecase.NewGapUsecase(store, resolver, c.Cache, gap.Options{
		DefaultMinTrust:  policy.DefaultMinTrust,
		ComplexityWeight: cfg.Gap.ComplexityWeight,
		Workers:          cfg.Gap.Workers,
	}, logger)
	c.Search = usecase.NewSearchUsecase(store)
	c.Qualification = usecase.NewQualificationUsecase(store, resolver)
	c.Taxonomy = usecase.NewTaxonomyUsecase(store, resolver)
	c.Reports = usecase.NewReportUsecase(store)
	c.Maintenance = usecase.NewMaintenanceUsecase(engine, c.Cache, logger)

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer seedCancel()
	if err := c.seed(seedCtx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("seed graph: %w", err)
	}

	replayCtx, replayCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer replayCancel()
	if _, _, err := c.Ingest.Replay(replayCtx); err != nil {
		logger.Printf("[App] journal replay failed, serving from seeds: %v", err)
	}

	if cfg.AMQP.Enabled() {
		consumer, err := queues.NewConsumer(cfg.AMQP.URL, cfg.AMQP.Queue, c.Ingest, logger)
		if err != nil {
			logger.Printf("[App] AMQP consumer unavailable: %v", err)
		} else {
			c.Consumer = consumer
		}
	}

	return c, nil
}

func (c *Container) openJournalDatabase() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := dbpostgres.Connect(ctx, c.Config.Database)
	if err != nil {
		return fmt.Errorf("connect journal database: %w", err)
	}

	migCtx, migCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer migCancel()
	if err := (migration.Runner{FS: migrations.FS}).Run(migCtx, conn.SQLDB()); err != nil {
		_ = conn.Close()
		return fmt.Errorf("migrate journal database: %w", err)
	}

	async := repository.NewAsyncJournal(repository.NewPostgresEventJournal(conn), 1024, c.Logger)
	c.DB = conn
	c.Journal = async
	c.journalCloser = async
	return nil
}

func (c *Container) seed(ctx context.Context) error {
	seeders := []seeder.Seeder{
		seeder.TaxonomySeeder{},
		seeder.LocationsSeeder{},
		seeder.CentersSeeder{},
	}
	if c.Config.Seed.DemoJobs {
		seeders = append(seeders, seeder.JobsSeeder{})
	}

	return seeder.Runner{Seeders: seeders}.Run(ctx, seeder.Deps{
		Graph:      c.Store,
		Taxonomy:   c.Resolver,
		Unresolved: journalReporter{journal: c.Journal},
		Logger:     c.Logger,
	})
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}

	if c.Consumer != nil {
		c.Consumer.Close()
	}

	var firstErr error
	if c.journalCloser != nil {
		if err := c.journalCloser.Close(); err != nil {
			firstErr = err
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// policyFromConfig folds operator overrides into the default scoring
// policy. Zero config values keep the defaults.
func policyFromConfig(tc config.TrustConfig) trust.Policy {
	p := trust.DefaultPolicy()
	if tc.ClaimDelta > 0 {
		p.ClaimDelta = tc.ClaimDelta
	}
	if tc.ProvisionalCeiling > 0 {
		p.ProvisionalCeiling = tc.ProvisionalCeiling
	}
	if tc.PassDelta > 0 {
		p.PassDelta = tc.PassDelta
	}
	if tc.FailPenalty > 0 {
		p.FailPenalty = tc.FailPenalty
	}
	if tc.DecayAfterDays > 0 {
		p.DecayAfter = time.Duration(tc.DecayAfterDays) * 24 * time.Hour
	}
	if tc.DecayIntervalDays > 0 {
		p.DecayInterval = time.Duration(tc.DecayIntervalDays) * 24 * time.Hour
	}
	if tc.DecayStep > 0 {
		p.DecayStep = tc.DecayStep
	}
	return p
}

// journalReporter lets seeders park out-of-taxonomy references in the
// same unresolved ledger the ingest path uses.
type journalReporter struct {
	journal repository.EventJournal
}

func (r journalReporter) ReportUnresolved(ctx context.Context, kind, subject, skill, reason string, occurredAt time.Time) error {
	if r.journal == nil {
		return nil
	}
	return r.journal.MarkUnresolved(ctx, repository.UnresolvedEvent{
		ID:         uuid.New(),
		Kind:       kind,
		Subject:    subject,
		Skill:      skill,
		Reason:     reason,
		OccurredAt: occurredAt,
	})
}
