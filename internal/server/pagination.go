package server

import (
	"slices"

	"flipquiz/internal/web"

	"github.com/gin-gonic/gin"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

type pageQuery struct {
	Page    int `form:"page"`
	PerPage int `form:"per_page"`
}

// parsePagination reads page and per_page, falling back to the first page of
// defaultPerPage for values that are missing or not positive.
func parsePagination(c *gin.Context) (page, perPage int) {
	var query pageQuery
	_ = c.ShouldBindQuery(&query)
	page, perPage = max(query.Page, 1), query.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	return page, min(perPage, maxPerPage)
}

func buildPaginationData(basePath string, page, perPage, total int) web.PaginationData {
	if perPage <= 0 {
		perPage = 1
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page <= 0 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	data := web.PaginationData{
		BasePath:   basePath,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
	data.HasPrev = page > 1
	data.HasNext = page < totalPages
	if data.HasPrev {
		data.PrevPage = page - 1
		data.PrevURL = web.PageURL(basePath, data.PrevPage, perPage)
	}
	if data.HasNext {
		data.NextPage = page + 1
		data.NextURL = web.PageURL(basePath, data.NextPage, perPage)
	}
	return data
}

// paginate returns the slice of items on the requested page, newest first.
func paginate[T any](c *gin.Context, basePath string, items []T) ([]T, web.PaginationData) {
	page, perPage := parsePagination(c)
	data := buildPaginationData(basePath, page, perPage, len(items))
	reversed := append(make([]T, 0, len(items)), items...)
	slices.Reverse(reversed)
	start := (data.Page - 1) * data.PerPage
	if start > len(reversed) {
		start = len(reversed)
	}
	end := start + data.PerPage
	if end > len(reversed) {
		end = len(reversed)
	}
	return reversed[start:end], data
}
