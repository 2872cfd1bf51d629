package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"workforce-grid/internal/config"
	"workforce-grid/internal/delivery/http/handler"
	"workforce-grid/internal/delivery/http/middleware"
	"workforce-grid/internal/delivery/http/routes"
	v1 "workforce-grid/internal/delivery/http/routes/v1"
	"workforce-grid/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c.Logger)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap builds the container and the HTTP app, then starts the
// background pieces: the AMQP consumer and the periodic decay sweep. The
// returned cleanup stops both and closes the container.
func Bootstrap(cfg config.Config) (*App, func() error, error) {
	logger := log.Default()

	c, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	app := New(c)

	runCtx, stop := context.WithCancel(context.Background())

	if c.Consumer != nil {
		if err := c.Consumer.Start(runCtx); err != nil {
			logger.Printf("[App] AMQP consumer start failed: %v", err)
		}
	}

	startDecaySweeps(runCtx, c)

	cleanup := func() error {
		stop()
		return c.Close()
	}
	return app, cleanup, nil
}

// The access log wraps the error middleware so it records the status the
// client actually received.
func registerGlobalMiddleware(app *fiber.App, logger *log.Logger) {
	if app == nil {
		return
	}

	accessMw := middleware.NewAccessLogMiddleware(logger)
	app.Use(accessMw.Middleware())

	errMw := middleware.NewErrorMiddleware()
	app.Use(errMw.Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil || c == nil {
		return
	}

	deps := v1.Dependencies{
		Ingest:        c.Ingest,
		Jobs:          c.Jobs,
		Gap:           c.Gap,
		Search:        c.Search,
		Qualification: c.Qualification,
		Taxonomy:      c.Taxonomy,
		Reports:       c.Reports,
		Maintenance:   c.Maintenance,
	}
	health := handler.NewHealthHandler(c.Store, c.DB, c.Cache)
	feed := ws.NewHandler(c.Hub, c.Logger)

	routes.NewRegistry(deps, health, feed).Register(app)
}

// startDecaySweeps erodes stale trust on a timer. Every node runs the
// ticker; the sweep lock in the maintenance usecase keeps replicas that
// share a Redis from sweeping at the same time.
func startDecaySweeps(ctx context.Context, c *Container) {
	interval := c.Config.Trust.SweepInterval
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweepCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
				if _, err := c.Maintenance.RunDecay(sweepCtx); err != nil {
					c.Logger.Printf("[App] decay sweep failed: %v", err)
				}
				cancel()
			}
		}
	}()
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
