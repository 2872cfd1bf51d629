package handler

import (
	"workforce-grid/internal/delivery/http/dto"
	"workforce-grid/internal/delivery/http/middleware"
	"workforce-grid/internal/pkg/response"
	"workforce-grid/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type UserHandler struct {
	uc usecase.QualificationUsecase
}

func NewUserHandler(uc usecase.QualificationUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

func (h *UserHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/users")
	grp.Get("/:id/skills", h.Skills)
	grp.Get("/:id/qualification", h.Qualification)
}

func (h *UserHandler) Skills(c fiber.Ctx) error {
	standings, err := h.uc.UserSkills(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}

	out := make([]dto.SkillStandingResponse, 0, len(standings))
	for _, s := range standings {
		out = append(out, standingResponse(s))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *UserHandler) Qualification(c fiber.Ctx) error {
	skill := c.Query("skill")
	minTrust, err := parseQueryFloat(c, "min_trust", 0)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	res, err := h.uc.Check(c.Context(), c.Params("id"), skill, minTrust)
	if err != nil {
		return err
	}

	checks := make([]dto.SkillCheckResponse, 0, len(res.Checks))
	for _, chk := range res.Checks {
		checks = append(checks, dto.SkillCheckResponse{
			Skill:    chk.Skill,
			Trust:    chk.Trust,
			Verified: chk.Verified,
			Meets:    chk.Meets,
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.QualificationResponse{
		UserID:    res.UserID,
		Skill:     res.Skill,
		MinTrust:  res.MinTrust,
		Qualified: res.Qualified,
		Missing:   res.Missing,
		Checks:    checks,
	})
}
