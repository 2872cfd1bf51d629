package handler

import (
	"math"

	"workforce-grid/internal/delivery/http/dto"
	"workforce-grid/internal/delivery/http/middleware"
	"workforce-grid/internal/pkg/response"
	"workforce-grid/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type SearchHandler struct {
	uc usecase.SearchUsecase
}

func NewSearchHandler(uc usecase.SearchUsecase) *SearchHandler {
	return &SearchHandler{uc: uc}
}

func (h *SearchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/search")
	grp.Get("/nearby", h.Nearby)
}

func (h *SearchHandler) Nearby(c fiber.Ctx) error {
	if c.Query("lat") == "" || c.Query("lng") == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "lat and lng are required", nil, nil)
	}
	lat, err := parseQueryFloat(c, "lat", 0)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	lng, err := parseQueryFloat(c, "lng", 0)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	radius, err := parseQueryFloat(c, "radius_km", 0)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	res, err := h.uc.Nearby(c.Context(), usecase.NearbyParams{
		Latitude:  lat,
		Longitude: lng,
		RadiusKM:  radius,
		Kind:      c.Query("kind"),
		Skill:     c.Query("skill"),
	})
	if err != nil {
		return err
	}

	jobs := make([]dto.NearbyJobResponse, 0, len(res.Jobs))
	for _, j := range res.Jobs {
		jobs = append(jobs, dto.NearbyJobResponse{
			JobID:      j.ID,
			Title:      j.Title,
			Company:    j.Company,
			Location:   j.Location,
			DistanceKM: roundKM(j.DistanceKM),
		})
	}

	centers := make([]dto.NearbyCenterResponse, 0, len(res.Centers))
	for _, ce := range res.Centers {
		courses := make([]dto.NearbyCourseResponse, 0, len(ce.Courses))
		for _, co := range ce.Courses {
			courses = append(courses, dto.NearbyCourseResponse{
				Skill:         co.Skill,
				Course:        co.Course,
				DurationWeeks: co.DurationWeeks,
				CostKES:       co.CostKES,
			})
		}
		centers = append(centers, dto.NearbyCenterResponse{
			Name:          ce.Name,
			Accreditation: ce.Accreditation,
			Location:      ce.Location,
			DistanceKM:    roundKM(ce.DistanceKM),
			Courses:       courses,
		})
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NearbyResponse{
		RadiusKM: res.RadiusKM,
		Jobs:     jobs,
		Centers:  centers,
	})
}

func roundKM(km float64) float64 {
	return math.Round(km*100) / 100
}
