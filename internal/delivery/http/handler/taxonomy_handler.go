package handler

import (
	"net/url"

	"workforce-grid/internal/delivery/http/dto"
	"workforce-grid/internal/delivery/http/middleware"
	"workforce-grid/internal/pkg/response"
	"workforce-grid/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type TaxonomyHandler struct {
	uc usecase.TaxonomyUsecase
}

type addSkillRequest struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	Complexity int    `json:"complexity"`
}

type addPrerequisitesRequest struct {
	Pairs []prerequisitePairRequest `json:"pairs"`
}

type prerequisitePairRequest struct {
	Prerequisite string `json:"prerequisite"`
	Dependent    string `json:"dependent"`
}

func NewTaxonomyHandler(uc usecase.TaxonomyUsecase) *TaxonomyHandler {
	return &TaxonomyHandler{uc: uc}
}

func (h *TaxonomyHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/skills")
	grp.Get("/", h.List)
	grp.Post("/", h.Add)
	grp.Post("/prerequisites", h.AddPrerequisites)
	grp.Get("/:name", h.Detail)
	grp.Get("/:name/closure", h.Closure)
}

func (h *TaxonomyHandler) List(c fiber.Ctx) error {
	items, err := h.uc.ListSkills(c.Context(), c.Query("category"))
	if err != nil {
		return err
	}

	out := make([]dto.SkillResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.SkillResponse{
			Name:       it.Name,
			Category:   it.Category,
			Complexity: it.Complexity,
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *TaxonomyHandler) Add(c fiber.Ctx) error {
	var req addSkillRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	item, err := h.uc.AddSkill(c.Context(), req.Name, req.Category, req.Complexity)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusCreated, "created", dto.SkillResponse{
		Name:       item.Name,
		Category:   item.Category,
		Complexity: item.Complexity,
	})
}

func (h *TaxonomyHandler) Detail(c fiber.Ctx) error {
	name, err := skillParam(c)
	if err != nil {
		return err
	}

	d, err := h.uc.Skill(c.Context(), name)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.SkillDetailResponse{
		Name:          d.Name,
		Category:      d.Category,
		Complexity:    d.Complexity,
		Prerequisites: d.Prerequisites,
		Dependents:    d.Dependents,
		Closure:       d.Closure,
		TaughtBy:      d.TaughtBy,
		RequiredBy:    d.RequiredBy,
	})
}

func (h *TaxonomyHandler) Closure(c fiber.Ctx) error {
	name, err := skillParam(c)
	if err != nil {
		return err
	}

	closure, err := h.uc.Closure(c.Context(), name)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.ClosureResponse{
		Skill:   name,
		Closure: closure,
	})
}

func (h *TaxonomyHandler) AddPrerequisites(c fiber.Ctx) error {
	var req addPrerequisitesRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	pairs := make([]usecase.PrerequisitePairInput, 0, len(req.Pairs))
	for _, p := range req.Pairs {
		pairs = append(pairs, usecase.PrerequisitePairInput{
			Prerequisite: p.Prerequisite,
			Dependent:    p.Dependent,
		})
	}

	version, err := h.uc.AddPrerequisites(c.Context(), pairs)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusCreated, "created", dto.PrerequisitesResponse{
		Added:           len(pairs),
		TaxonomyVersion: version,
	})
}

// skillParam decodes the :name segment; skill names routinely carry spaces.
func skillParam(c fiber.Ctx) (string, error) {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return "", middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	return name, nil
}
