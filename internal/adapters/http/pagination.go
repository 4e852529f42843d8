package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination contains offset-based pagination info.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// SetLinkHeaders adds RFC 8288 Link headers for paginated responses.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	base := c.Path()
	link := func(offset int, rel string) string {
		return fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel="%s"`, base, offset, p.Limit, rel)
	}

	links := []string{link(0, "first")}
	if p.Offset > 0 {
		links = append(links, link(max(p.Offset-p.Limit, 0), "prev"))
	}
	if p.Offset+p.Limit < p.Total {
		links = append(links, link(p.Offset+p.Limit, "next"))
	}
	links = append(links, link(max(p.Total-p.Limit, 0), "last"))

	c.Set("Link", strings.Join(links, ", "))
}
