package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// ok writes the standard success envelope.
func ok(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// okMessage writes a success envelope with a human message and no data.
func okMessage(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

func parsePositiveInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

// pagination reads page/page_size query params into limit and offset.
func pagination(c *fiber.Ctx) (limit, offset int) {
	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("page_size"), 20)
	return pageSize, (page - 1) * pageSize
}
