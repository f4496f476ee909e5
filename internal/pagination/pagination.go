// Package pagination turns the admin table query string (search, page,
// per_page, sort_field, sort_direction) into a bounded SQL query and the
// paginated envelope.
package pagination

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.einride.tech/aip/ordering"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/storefront/internal/httpresp"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Spec describes what a resource allows clients to search and sort on.
type Spec struct {
	// Sortable maps public sort field names to columns.
	Sortable map[string]string
	// Searchable columns are matched with a case-insensitive LIKE.
	Searchable []string

	DefaultSort string
	DefaultDesc bool

	// TieBreaker keeps page boundaries stable when sort values repeat.
	TieBreaker string
}

type Params struct {
	Search  string
	Page    int
	PerPage int
	OrderBy ordering.OrderBy
}

// Offset is the first row of the page. ok is false when the page starts
// beyond any row a table can hold.
func (p Params) Offset() (offset int, ok bool) {
	if p.Page < 1 || p.PerPage < 1 {
		return 0, true
	}
	if int64(p.Page-1) > math.MaxInt32/int64(p.PerPage) {
		return 0, false
	}
	return (p.Page - 1) * p.PerPage, true
}

// Parse reads the query string. Invalid values fall back to defaults.
func Parse(c *gin.Context, spec Spec) Params {
	p := Params{
		Search:  strings.TrimSpace(c.Query("search")),
		Page:    atoiDefault(c.Query("page"), 1),
		PerPage: atoiDefault(c.Query("per_page"), DefaultPerPage),
	}

	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = 1
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}

	p.OrderBy = parseOrder(c, spec)
	return p
}

func parseOrder(c *gin.Context, spec Spec) ordering.OrderBy {
	raw := strings.TrimSpace(c.Query("order_by"))
	if raw == "" {
		field := strings.TrimSpace(c.Query("sort_field"))
		if field != "" {
			raw = field
			if strings.EqualFold(strings.TrimSpace(c.Query("sort_direction")), "desc") {
				raw += " desc"
			}
		}
	}

	var ob ordering.OrderBy
	if raw != "" {
		if err := ob.UnmarshalString(raw); err == nil && len(ob.Fields) > 0 {
			if err := ob.ValidateForPaths(spec.sortPaths()...); err == nil {
				return ob
			}
		}
	}

	if spec.DefaultSort == "" {
		return ordering.OrderBy{}
	}
	return ordering.OrderBy{Fields: []ordering.Field{{Path: spec.DefaultSort, Desc: spec.DefaultDesc}}}
}

func (s Spec) sortPaths() []string {
	paths := make([]string, 0, len(s.Sortable))
	for k := range s.Sortable {
		paths = append(paths, k)
	}
	return paths
}

// ApplySearch adds the search filter to q.
func (s Spec) ApplySearch(q *gorm.DB, search string) *gorm.DB {
	if search == "" || len(s.Searchable) == 0 {
		return q
	}

	like := "%" + strings.ToLower(search) + "%"
	conds := make([]string, 0, len(s.Searchable))
	args := make([]any, 0, len(s.Searchable))
	for _, col := range s.Searchable {
		conds = append(conds, "LOWER("+col+") LIKE ?")
		args = append(args, like)
	}

	return q.Where("("+strings.Join(conds, " OR ")+")", args...)
}

func (s Spec) applyOrder(q *gorm.DB, ob ordering.OrderBy) *gorm.DB {
	for _, f := range ob.Fields {
		col, ok := s.Sortable[f.Path]
		if !ok {
			continue
		}
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: f.Desc})
	}
	if s.TieBreaker != "" {
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: s.TieBreaker}})
	}
	return q
}

// Paginate counts and fetches one page of q (which must already carry its
// filters). fetch scopes (preloads, selects) apply to the row query only.
func Paginate[T any](
	ctx context.Context,
	q *gorm.DB,
	spec Spec,
	p Params,
	fetch ...func(*gorm.DB) *gorm.DB,
) (httpresp.Page[T], error) {

	base := spec.ApplySearch(q.WithContext(ctx).Model(new(T)), p.Search).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return httpresp.Page[T]{}, err
	}

	rows := make([]T, 0, p.PerPage)
	if offset, ok := p.Offset(); ok && total > int64(offset) {
		if err := spec.applyOrder(base, p.OrderBy).
			Scopes(fetch...).
			Limit(p.PerPage).
			Offset(offset).
			Find(&rows).Error; err != nil {
			return httpresp.Page[T]{}, err
		}
	}

	return httpresp.NewPage(rows, p.Page, p.PerPage, total), nil
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// Preload is a fetch scope for Paginate.
func Preload(query string, args ...any) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Preload(query, args...)
	}
}
