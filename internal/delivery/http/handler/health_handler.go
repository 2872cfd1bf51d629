package handler

import (
	"context"
	"time"

	"workforce-grid/internal/database"
	"workforce-grid/internal/delivery/http/dto"
	"workforce-grid/internal/graph"
	"workforce-grid/internal/infrastructure/cache"
	"workforce-grid/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// HealthHandler reports the graph census plus the state of the optional
// backing services. A missing journal database or a bypassed cache is
// "disabled", not unhealthy; the node serves from memory either way.
type HealthHandler struct {
	store *graph.Store
	db    database.DB
	cache *cache.Cache
}

func NewHealthHandler(store *graph.Store, db database.DB, c *cache.Cache) *HealthHandler {
	return &HealthHandler{store: store, db: db, cache: c}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	stats := h.store.Stats()
	nodes, edges := 0, 0
	for _, n := range stats.Nodes {
		nodes += n
	}
	for _, n := range stats.Edges {
		edges += n
	}

	res := dto.HealthResponse{
		Status:     "ok",
		Components: map[string]dto.HealthComponent{},
		Nodes:      nodes,
		Edges:      edges,
		Revision:   stats.Revision,
	}
	res.Components["journal"] = h.journalStatus(ctx)
	res.Components["cache"] = h.cacheStatus(ctx)

	status := fiber.StatusOK
	for _, comp := range res.Components {
		if comp.Status == "down" {
			res.Status = "degraded"
			status = fiber.StatusServiceUnavailable
		}
	}
	return response.Success(c, status, res.Status, res)
}

func (h *HealthHandler) journalStatus(ctx context.Context) dto.HealthComponent {
	if h.db == nil {
		return dto.HealthComponent{Status: "disabled"}
	}
	if err := h.db.Ping(ctx); err != nil {
		return dto.HealthComponent{Status: "down", Detail: err.Error()}
	}
	return dto.HealthComponent{Status: "up"}
}

func (h *HealthHandler) cacheStatus(ctx context.Context) dto.HealthComponent {
	if h.cache == nil || !h.cache.Enabled() {
		return dto.HealthComponent{Status: "disabled"}
	}
	if err := h.cache.Ping(ctx); err != nil {
		return dto.HealthComponent{Status: "down", Detail: err.Error()}
	}
	return dto.HealthComponent{Status: "up"}
}
