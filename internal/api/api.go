package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	domainerrors "github.com/pageza/foodgram/backend/internal/errors"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// respondError renders err through the shared error envelope.
func respondError(c *gin.Context, err error) {
	middleware.WriteError(c, err)
}

// bindJSON decodes the request body into req, writing a 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, validation.FromBindingError(err))
		return false
	}
	return true
}

// parseID reads a positive integer path parameter. Anything else is treated
// as a missing resource.
func parseID(c *gin.Context, name, notFound string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		respondError(c, domainerrors.NotFound(notFound))
		return 0, false
	}
	return uint(id), true
}

func positiveQuery(c *gin.Context, key string) (int, bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, true, domainerrors.FieldError(key, "A valid positive integer is required.")
	}
	return n, true, nil
}

// parsePage reads the page and limit query parameters.
func parsePage(c *gin.Context) (types.PageRequest, bool) {
	var page types.PageRequest
	var err error
	if page.Page, _, err = positiveQuery(c, "page"); err != nil {
		respondError(c, domainerrors.NotFound("Invalid page."))
		return page, false
	}
	if page.Limit, _, err = positiveQuery(c, "limit"); err != nil {
		respondError(c, err)
		return page, false
	}
	return page.Normalize(), true
}

// parseRecipesLimit reads recipes_limit. Absent means no limit.
func parseRecipesLimit(c *gin.Context) (int, bool) {
	raw := strings.TrimSpace(c.Query("recipes_limit"))
	if raw == "" {
		return service.NoRecipesLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		respondError(c, domainerrors.FieldError("recipes_limit", "A valid non-negative integer is required."))
		return 0, false
	}
	return n, true
}

// flagQuery reports whether a boolean filter such as is_favorited=1 is set.
func flagQuery(c *gin.Context, key string) bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(key))) {
	case "1", "true":
		return true
	}
	return false
}

// paginator builds absolute next/previous links. An empty baseURL derives
// scheme and host from the request.
type paginator struct {
	baseURL string
}

func (p paginator) link(c *gin.Context, page int) *string {
	u := *c.Request.URL
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()

	base := p.baseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}
	origin, err := url.Parse(base)
	if err != nil {
		s := u.RequestURI()
		return &s
	}
	u.Scheme = origin.Scheme
	u.Host = origin.Host
	u.Path = strings.TrimRight(origin.Path, "/") + u.Path
	s := u.String()
	return &s
}

func paginate[T any](p paginator, c *gin.Context, page types.PageRequest, total int64, results []T) types.Page[T] {
	if results == nil {
		results = []T{}
	}
	out := types.Page[T]{Count: total, Results: results}
	if int64(page.Page*page.Limit) < total {
		out.Next = p.link(c, page.Page+1)
	}
	if page.Page > 1 {
		out.Previous = p.link(c, page.Page-1)
	}
	return out
}
