package handler

import (
	"time"

	"workforce-grid/internal/delivery/http/dto"
	"workforce-grid/internal/delivery/http/middleware"
	"workforce-grid/internal/pkg/response"
	"workforce-grid/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type JobsHandler struct {
	uc usecase.JobsUsecase
}

type upsertJobRequest struct {
	ID           string                  `json:"id"`
	Title        string                  `json:"title"`
	Company      string                  `json:"company"`
	Description  string                  `json:"description"`
	SalaryMin    int                     `json:"salary_min"`
	SalaryMax    int                     `json:"salary_max"`
	Currency     string                  `json:"currency"`
	Source       string                  `json:"source"`
	PostedAt     time.Time               `json:"posted_at"`
	Location     string                  `json:"location"`
	Requirements []jobRequirementRequest `json:"requirements"`
}

type jobRequirementRequest struct {
	Skill    string  `json:"skill"`
	MinTrust float64 `json:"min_trust"`
}

type setJobActiveRequest struct {
	Active bool `json:"active"`
}

func NewJobsHandler(uc usecase.JobsUsecase) *JobsHandler {
	return &JobsHandler{uc: uc}
}

func (h *JobsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/jobs")
	grp.Get("/", h.List)
	grp.Post("/", h.Upsert)
	grp.Get("/:id", h.Get)
	grp.Patch("/:id/active", h.SetActive)
}

func (h *JobsHandler) List(c fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit", 20)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	offset, err := parseQueryInt(c, "offset", 0)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	items, err := h.uc.ListJobs(c.Context(), usecase.JobListParams{
		Skill:    c.Query("skill"),
		Location: c.Query("location"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}

	out := make([]dto.JobResponse, 0, len(items))
	for _, it := range items {
		out = append(out, jobResponse(it))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *JobsHandler) Get(c fiber.Ctx) error {
	item, err := h.uc.Job(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, jobResponse(item))
}

func (h *JobsHandler) Upsert(c fiber.Ctx) error {
	var req upsertJobRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	in := usecase.JobInput{
		ID:          req.ID,
		Title:       req.Title,
		Company:     req.Company,
		Description: req.Description,
		SalaryMin:   req.SalaryMin,
		SalaryMax:   req.SalaryMax,
		Currency:    req.Currency,
		Source:      req.Source,
		PostedAt:    req.PostedAt,
		Location:    req.Location,
	}
	for _, r := range req.Requirements {
		in.Requirements = append(in.Requirements, usecase.JobRequirementInput{
			Skill:    r.Skill,
			MinTrust: r.MinTrust,
		})
	}

	item, err := h.uc.UpsertJob(c.Context(), in)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusCreated, "created", jobResponse(item))
}

func (h *JobsHandler) SetActive(c fiber.Ctx) error {
	var req setJobActiveRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	item, err := h.uc.SetActive(c.Context(), c.Params("id"), req.Active)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, jobResponse(item))
}

func jobResponse(it usecase.JobItem) dto.JobResponse {
	posted := ""
	if !it.PostedAt.IsZero() {
		posted = it.PostedAt.UTC().Format(time.RFC3339)
	}

	reqs := make([]dto.JobRequirementResponse, 0, len(it.Requirements))
	for _, r := range it.Requirements {
		reqs = append(reqs, dto.JobRequirementResponse{Skill: r.Skill, MinTrust: r.MinTrust})
	}

	return dto.JobResponse{
		JobID:        it.ID,
		Title:        it.Title,
		Company:      it.Company,
		Description:  it.Description,
		SalaryMin:    it.SalaryMin,
		SalaryMax:    it.SalaryMax,
		Currency:     it.Currency,
		Source:       it.Source,
		PostedDate:   posted,
		Location:     it.Location,
		IsActive:     it.IsActive,
		Requirements: reqs,
		Unresolved:   it.Unresolved,
	}
}
