package v1

import (
	"workforce-grid/internal/delivery/http/handler"
	"workforce-grid/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// Dependencies carries the usecases the API surface is built from. The app
// container owns their construction; some of them are shared with the queue
// consumer and the boot-time replay.
type Dependencies struct {
	Ingest        usecase.IngestUsecase
	Jobs          usecase.JobsUsecase
	Gap           usecase.GapUsecase
	Search        usecase.SearchUsecase
	Qualification usecase.QualificationUsecase
	Taxonomy      usecase.TaxonomyUsecase
	Reports       usecase.ReportUsecase
	Maintenance   usecase.MaintenanceUsecase
}

func Register(r fiber.Router, d Dependencies) {
	if r == nil {
		return
	}

	handler.NewEventHandler(d.Ingest).RegisterRoutes(r)
	handler.NewTaxonomyHandler(d.Taxonomy).RegisterRoutes(r)
	handler.NewJobsHandler(d.Jobs).RegisterRoutes(r)
	handler.NewUserHandler(d.Qualification).RegisterRoutes(r)
	handler.NewGapHandler(d.Gap).RegisterRoutes(r)
	handler.NewSearchHandler(d.Search).RegisterRoutes(r)
	handler.NewReportHandler(d.Reports).RegisterRoutes(r)
	handler.NewMaintenanceHandler(d.Maintenance).RegisterRoutes(r)
}
