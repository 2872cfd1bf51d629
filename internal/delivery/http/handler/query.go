package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
)

// Query parsing shared by the handlers. Absent keys fall back to the default;
// present-but-malformed values are errors rather than silent zeroes.

func parseQueryInt(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(s)
}

func parseQueryFloat(c fiber.Ctx, key string, defaultVal float64) (float64, error) {
	s := c.Query(key)
	if s == "" {
		return defaultVal, nil
	}
	return strconv.ParseFloat(s, 64)
}
