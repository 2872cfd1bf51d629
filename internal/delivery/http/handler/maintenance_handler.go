package handler

import (
	"workforce-grid/internal/delivery/http/dto"
	"workforce-grid/internal/pkg/response"
	"workforce-grid/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type MaintenanceHandler struct {
	uc usecase.MaintenanceUsecase
}

func NewMaintenanceHandler(uc usecase.MaintenanceUsecase) *MaintenanceHandler {
	return &MaintenanceHandler{uc: uc}
}

func (h *MaintenanceHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/maintenance")
	grp.Post("/decay", h.RunDecay)
}

func (h *MaintenanceHandler) RunDecay(c fiber.Ctx) error {
	sum, err := h.uc.RunDecay(c.Context())
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.DecayResponse{
		At:        sum.At,
		Scanned:   sum.Scanned,
		Decayed:   sum.Decayed,
		Conflicts: sum.Conflicts,
		TookMS:    sum.Took.Milliseconds(),
		Skipped:   sum.Skipped,
	})
}
