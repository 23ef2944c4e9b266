package api

import (
	"strconv"

	"foodbridge/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

func parsePagination(c *gin.Context) (*queries.Cursor, int) {
	var after *queries.Cursor
	if raw := c.Query("after"); raw != "" {
		after = &queries.Cursor{After: raw}
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	return after, limit
}

func nextCursorString(next *queries.Cursor) *string {
	if next == nil {
		return nil
	}
	return &next.After
}
