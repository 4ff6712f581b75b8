package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page number placeholders returned by GetPageNumbers.
const (
	EllipsisPrev = -1
	EllipsisNext = -2
)

// Pagination holds pagination parameters.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePagination reads page and limit query params with sane defaults.
// Limits above MaxPageSize are clamped.
func ParsePagination(c *fiber.Ctx) Pagination {
	page := parseInt(c.Query("page", "1"), 1)
	limit := parseInt(c.Query("limit", strconv.Itoa(DefaultPageSize)), DefaultPageSize)
	return NewPagination(page, limit)
}

// NewPagination normalises page and limit and derives the offset.
func NewPagination(page, limit int) Pagination {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}

	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// TotalPages returns the number of pages needed for total items.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// Meta renders the pagination block of list responses.
func (p Pagination) Meta(total int64) fiber.Map {
	totalPages := TotalPages(total, p.Limit)
	return fiber.Map{
		"current_page":   p.Page,
		"items_per_page": p.Limit,
		"total_items":    total,
		"total_pages":    totalPages,
		"pages":          GetPageNumbers(p.Page, totalPages),
	}
}

// GetPageNumbers lists the page links a pager should show. Up to seven
// pages are listed in full; beyond that the first and last page are
// always shown around a window of one page either side of the current
// one, with EllipsisPrev/EllipsisNext marking the gaps.
func GetPageNumbers(page, totalPages int) []int {
	if totalPages <= 0 {
		return []int{}
	}
	if totalPages <= 7 {
		pages := make([]int, totalPages)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := max(2, page-1)
	end := min(totalPages-1, page+1)

	pages := []int{1}
	if start > 2 {
		pages = append(pages, EllipsisPrev)
	}
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	if end < totalPages-1 {
		pages = append(pages, EllipsisNext)
	}
	return append(pages, totalPages)
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	return fallback
}
