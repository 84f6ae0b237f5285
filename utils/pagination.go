package utils

import (
	"math"

	"github.com/gin-gonic/gin"
)

// maxSkip bounds the number of documents a page may skip so (page-1)*limit
// never overflows and stays within what the database accepts.
const maxSkip = math.MaxInt32

type PageQuery struct {
	Page  int
	Limit int
}

func (q PageQuery) Skip() int64 {
	return int64((q.Page - 1) * q.Limit)
}

// ParsePageQuery reads page and limit from the query string, clamping page to
// at least 1 and limit to [1, maxLimit]. Pages past the skip bound are pinned
// to the last reachable page.
func ParsePageQuery(c *gin.Context, defaultLimit, maxLimit int) PageQuery {
	return NewPageQuery(
		ParseIntDefault(c.Query("page"), 1),
		ParseIntDefault(c.Query("limit"), defaultLimit),
		maxLimit,
	)
}

func NewPageQuery(page, limit, maxLimit int) PageQuery {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	if limit > maxSkip {
		limit = maxSkip
	}
	if maxPage := maxSkip/limit + 1; page > maxPage {
		page = maxPage
	}
	return PageQuery{Page: page, Limit: limit}
}

// Page is one slice of a paginated result plus the total number of matches.
type Page[T any] struct {
	Items []T
	Total int64
}

type PageMetadata struct {
	Page      int   `json:"page"`
	TotalPage int   `json:"totalPage"`
	Limit     int   `json:"limit"`
	Total     int64 `json:"total"`
}

func NewPageMetadata(q PageQuery, total int64) PageMetadata {
	totalPage := 1
	if q.Limit > 0 && total > 0 {
		totalPage = int((total + int64(q.Limit) - 1) / int64(q.Limit))
	}
	return PageMetadata{Page: q.Page, TotalPage: totalPage, Limit: q.Limit, Total: total}
}
