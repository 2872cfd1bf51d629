package routes

import (
	"workforce-grid/internal/delivery/http/handler"
	v1 "workforce-grid/internal/delivery/http/routes/v1"
	"workforce-grid/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	deps   v1.Dependencies
	health *handler.HealthHandler
	feed   *ws.Handler
}

func NewRegistry(deps v1.Dependencies, health *handler.HealthHandler, feed *ws.Handler) *Registry {
	return &Registry{deps: deps, health: health, feed: feed}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerFeed(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.health != nil {
		r.health.RegisterRoutes(app)
	}
}

func (r *Registry) registerFeed(app *fiber.App) {
	if r.feed != nil {
		r.feed.RegisterRoutes(app)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.deps)
}
