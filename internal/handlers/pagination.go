package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/kmagued/beachamp-training-sub001/internal/models"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func parsePageParams(c *fiber.Ctx) (page, limit int) {
	page = 1
	limit = defaultPageLimit
	if value, err := strconv.Atoi(c.Query("page")); err == nil && value > 0 {
		page = value
	}
	if value, err := strconv.Atoi(c.Query("limit")); err == nil && value > 0 {
		limit = value
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func buildPaginationMeta(page, limit, total int) models.PaginationMeta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return models.PaginationMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
