package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

const msgInvalidPage = "Invalid page."

// pagination reads the 1-based page query parameter. It answers 404 for a
// page that is not a positive integer.
func pagination(c *gin.Context, size int) (service.Pagination, bool) {
	p := service.Pagination{Page: 1, Size: size}
	raw := c.Query("page")
	if raw == "" {
		return p, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": msgInvalidPage})
		return p, false
	}
	p.Page = page
	return p, true
}

// writePage answers with one page of results, or 404 when p is past the end.
func writePage[T any](c *gin.Context, p service.Pagination, total int64, results []T) {
	if p.Page > 1 && int64(p.Offset()) >= total {
		c.JSON(http.StatusNotFound, gin.H{"error": msgInvalidPage})
		return
	}
	if results == nil {
		results = []T{}
	}

	out := types.Page[T]{Count: total, Results: results}
	if int64(p.Page*p.Size) < total {
		next := pageURL(c, p.Page+1)
		out.Next = &next
	}
	if p.Page > 1 {
		prev := pageURL(c, p.Page-1)
		out.Previous = &prev
	}
	c.JSON(http.StatusOK, out)
}

// pageURL is the absolute URL of the current request moved to page.
func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := c.Request.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: q.Encode()}
	return u.String()
}

// recipesLimit reads the recipes_limit query parameter. An absent or negative
// value keeps every recipe; zero keeps none.
func recipesLimit(c *gin.Context) (int, bool) {
	raw := c.Query("recipes_limit")
	if raw == "" {
		return service.AllRecipes, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  msgInvalidInput,
			"fields": map[string]string{"recipes_limit": "A valid integer is required."},
		})
		return 0, false
	}
	if n < 0 {
		return service.AllRecipes, true
	}
	return n, true
}

// pathID reads the :id path parameter. A malformed id is answered like an
// unknown one.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
		return 0, false
	}
	return uint(id), true
}
