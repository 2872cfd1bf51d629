package handler

import (
	"workforce-grid/internal/delivery/http/dto"
	"workforce-grid/internal/delivery/http/middleware"
	"workforce-grid/internal/pkg/response"
	"workforce-grid/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type GapHandler struct {
	uc usecase.GapUsecase
}

func NewGapHandler(uc usecase.GapUsecase) *GapHandler {
	return &GapHandler{uc: uc}
}

func (h *GapHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/market")
	grp.Get("/gaps", h.Report)
}

func (h *GapHandler) Report(c fiber.Ctx) error {
	minTrust, err := parseQueryFloat(c, "min_trust", 0)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	weight, err := parseQueryFloat(c, "complexity_weight", 0)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	limit, err := parseQueryInt(c, "limit", 0)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	report, cached, err := h.uc.Report(c.Context(), usecase.GapParams{
		MinTrust:         minTrust,
		ComplexityWeight: weight,
		Limit:            limit,
	})
	if err != nil {
		return err
	}

	items := make([]dto.GapItemResponse, 0, len(report.Items))
	for _, it := range report.Items {
		items = append(items, dto.GapItemResponse{
			Skill:      it.Skill,
			Category:   it.Category,
			Complexity: it.Complexity,
			Demand:     it.Demand,
			Supply:     it.Supply,
			Gap:        it.Gap,
			UnmetJobs:  it.UnmetJobs,
			Score:      it.Score,
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.GapReportResponse{
		GeneratedAt: report.GeneratedAt,
		Revision:    report.Revision,
		MinTrust:    report.MinTrust,
		Cached:      cached,
		Items:       items,
	})
}
