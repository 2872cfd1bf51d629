package handler

import (
	"workforce-grid/internal/delivery/http/dto"
	"workforce-grid/internal/pkg/response"
	"workforce-grid/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ReportHandler struct {
	uc usecase.ReportUsecase
}

func NewReportHandler(uc usecase.ReportUsecase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

func (h *ReportHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/reports")
	grp.Get("/skills", h.SkillDistribution)
	grp.Get("/trust", h.TrustHistogram)
	grp.Get("/overview", h.Overview)
}

func (h *ReportHandler) SkillDistribution(c fiber.Ctx) error {
	items, err := h.uc.SkillDistribution(c.Context())
	if err != nil {
		return err
	}

	out := make([]dto.SkillDistributionResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.SkillDistributionResponse{
			Skill:      it.Skill,
			Category:   it.Category,
			Complexity: it.Complexity,
			Holders:    it.Holders,
			Verified:   it.Verified,
			AvgTrust:   it.AvgTrust,
			Demand:     it.Demand,
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *ReportHandler) TrustHistogram(c fiber.Ctx) error {
	hist, err := h.uc.TrustHistogram(c.Context())
	if err != nil {
		return err
	}

	buckets := make([]dto.TrustBucketResponse, 0, len(hist.Buckets))
	for _, b := range hist.Buckets {
		buckets = append(buckets, dto.TrustBucketResponse{Range: b.Range, Count: b.Count})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.TrustHistogramResponse{
		Users:   hist.Users,
		Buckets: buckets,
	})
}

func (h *ReportHandler) Overview(c fiber.Ctx) error {
	ov, err := h.uc.Overview(c.Context())
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.OverviewResponse{
		Nodes:           ov.Nodes,
		Edges:           ov.Edges,
		ActiveJobs:      ov.ActiveJobs,
		TaxonomyVersion: ov.TaxonomyVersion,
		Revision:        ov.Revision,
	})
}
