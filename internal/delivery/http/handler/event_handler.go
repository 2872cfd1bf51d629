package handler

import (
	"time"

	"workforce-grid/internal/delivery/http/dto"
	"workforce-grid/internal/delivery/http/middleware"
	"workforce-grid/internal/pkg/response"
	"workforce-grid/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type EventHandler struct {
	uc usecase.IngestUsecase
}

type submitClaimRequest struct {
	UserID     string    `json:"user_id"`
	Skill      string    `json:"skill"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source"`
	OccurredAt time.Time `json:"occurred_at"`
}

type submitVerificationRequest struct {
	UserID     string    `json:"user_id"`
	Skill      string    `json:"skill"`
	Outcome    string    `json:"outcome"`
	Quality    float64   `json:"quality"`
	Source     string    `json:"source"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewEventHandler(uc usecase.IngestUsecase) *EventHandler {
	return &EventHandler{uc: uc}
}

func (h *EventHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/events")
	grp.Post("/claims", h.SubmitClaim)
	grp.Post("/verifications", h.SubmitVerification)
	grp.Get("/unresolved", h.Unresolved)
}

func (h *EventHandler) SubmitClaim(c fiber.Ctx) error {
	var req submitClaimRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	standing, err := h.uc.SubmitClaim(c.Context(), usecase.ClaimInput{
		UserID:     req.UserID,
		Skill:      req.Skill,
		Confidence: req.Confidence,
		Source:     req.Source,
		OccurredAt: req.OccurredAt,
	})
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, standingResponse(standing))
}

func (h *EventHandler) SubmitVerification(c fiber.Ctx) error {
	var req submitVerificationRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	standing, err := h.uc.SubmitVerification(c.Context(), usecase.VerificationInput{
		UserID:     req.UserID,
		Skill:      req.Skill,
		Outcome:    req.Outcome,
		Quality:    req.Quality,
		Source:     req.Source,
		OccurredAt: req.OccurredAt,
	})
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, standingResponse(standing))
}

func (h *EventHandler) Unresolved(c fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit", 50)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	items, err := h.uc.Unresolved(c.Context(), limit)
	if err != nil {
		return err
	}

	out := make([]dto.UnresolvedEventResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.UnresolvedEventResponse{
			ID:         it.ID.String(),
			Kind:       it.Kind,
			Subject:    it.Subject,
			Skill:      it.Skill,
			Reason:     it.Reason,
			OccurredAt: it.OccurredAt,
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func standingResponse(s usecase.SkillStanding) dto.SkillStandingResponse {
	return dto.SkillStandingResponse{
		UserID:    s.UserID,
		Skill:     s.Skill,
		Trust:     s.Trust,
		Verified:  s.Verified,
		Evidence:  s.Evidence,
		Failures:  s.Failures,
		LastEvent: s.LastEvent,
		Version:   s.Version,
	}
}
