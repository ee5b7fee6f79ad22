package internal

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100

	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListQuery carries pagination, search and sorting parameters for store
// listings. Sort fields go through a per-store allow-list; anything outside
// it silently falls back to the store default.
type ListQuery struct {
	Page          int    `json:"-"`
	PerPage       int    `json:"-"`
	Search        string `json:"search"`
	SortBy        string `json:"sort_by"`
	SortDirection string `json:"sort_direction"`
}

// Normalize clamps paging values and applies the sort allow-list. The
// returned query always has a valid sort field and direction.
func (q ListQuery) Normalize(allowedSortFields []string, defaultSortBy, defaultDirection string) ListQuery {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}

	allowed := false
	for _, f := range allowedSortFields {
		if q.SortBy == f {
			allowed = true
			break
		}
	}
	direction := strings.ToLower(q.SortDirection)
	if direction != SortAsc && direction != SortDesc {
		direction = ""
	}
	if !allowed || direction == "" {
		q.SortBy = defaultSortBy
		direction = defaultDirection
	}
	q.SortDirection = direction

	return q
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}

// PageLink is one entry of the pager rendered by the UI.
type PageLink struct {
	URL    *string `json:"url"`
	Label  string  `json:"label"`
	Active bool    `json:"active"`
}

// Page is the paginated result envelope returned by every listing endpoint.
type Page[T any] struct {
	Data        []T        `json:"data"`
	CurrentPage int        `json:"current_page"`
	LastPage    int        `json:"last_page"`
	PerPage     int        `json:"per_page"`
	Total       int64      `json:"total"`
	From        int        `json:"from"`
	To          int        `json:"to"`
	Links       []PageLink `json:"links"`
}

// NewPage builds the envelope for one page of results. basePath is the
// listing URL; search and sort parameters are preserved in every link.
func NewPage[T any](data []T, q ListQuery, total int64, basePath string) Page[T] {
	if data == nil {
		data = []T{}
	}

	lastPage := int(math.Ceil(float64(total) / float64(q.PerPage)))
	if lastPage < 1 {
		lastPage = 1
	}

	from, to := 0, 0
	if len(data) > 0 {
		from = q.Offset() + 1
		to = q.Offset() + len(data)
	}

	return Page[T]{
		Data:        data,
		CurrentPage: q.Page,
		LastPage:    lastPage,
		PerPage:     q.PerPage,
		Total:       total,
		From:        from,
		To:          to,
		Links:       buildLinks(q, lastPage, basePath),
	}
}

func buildLinks(q ListQuery, lastPage int, basePath string) []PageLink {
	links := make([]PageLink, 0, lastPage+2)

	prev := PageLink{Label: "&laquo; Previous"}
	if q.Page > 1 {
		prev.URL = pageURL(basePath, q, q.Page-1)
	}
	links = append(links, prev)

	for p := 1; p <= lastPage; p++ {
		links = append(links, PageLink{
			URL:    pageURL(basePath, q, p),
			Label:  strconv.Itoa(p),
			Active: p == q.Page,
		})
	}

	next := PageLink{Label: "Next &raquo;"}
	if q.Page < lastPage {
		next.URL = pageURL(basePath, q, q.Page+1)
	}
	links = append(links, next)

	return links
}

func pageURL(basePath string, q ListQuery, page int) *string {
	values := url.Values{}
	values.Set("page", strconv.Itoa(page))
	values.Set("per_page", strconv.Itoa(q.PerPage))
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.SortBy != "" {
		values.Set("sort_by", q.SortBy)
		values.Set("sort_direction", q.SortDirection)
	}
	u := basePath + "?" + values.Encode()
	return &u
}
