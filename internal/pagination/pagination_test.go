package pagination_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/storefront/internal/models"
	"github.com/BruksfildServices01/storefront/internal/pagination"
	"github.com/BruksfildServices01/storefront/internal/testutil"
)

var categorySpec = pagination.Spec{
	Sortable: map[string]string{
		"name":       "name",
		"slug":       "slug",
		"created_at": "created_at",
	},
	Searchable:  []string{"name", "slug", "description"},
	DefaultSort: "name",
	TieBreaker:  "id",
}

func ctxWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParseDefaults(t *testing.T) {
	p := pagination.Parse(ctxWithQuery(""), categorySpec)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.PerPage)
	offset, ok := p.Offset()
	assert.True(t, ok)
	assert.Equal(t, 0, offset)
	require.Len(t, p.OrderBy.Fields, 1)
	assert.Equal(t, "name", p.OrderBy.Fields[0].Path)
	assert.False(t, p.OrderBy.Fields[0].Desc)
}

func TestParseClampsAndFallsBack(t *testing.T) {
	p := pagination.Parse(ctxWithQuery("page=-3&per_page=1000&sort_field=password&sort_direction=desc"), categorySpec)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PerPage)
	require.Len(t, p.OrderBy.Fields, 1)
	assert.Equal(t, "name", p.OrderBy.Fields[0].Path)
	assert.False(t, p.OrderBy.Fields[0].Desc)

	p = pagination.Parse(ctxWithQuery("per_page=0"), categorySpec)
	assert.Equal(t, 1, p.PerPage)

	p = pagination.Parse(ctxWithQuery("per_page=-5"), categorySpec)
	assert.Equal(t, 1, p.PerPage)

	p = pagination.Parse(ctxWithQuery("per_page=lots"), categorySpec)
	assert.Equal(t, 10, p.PerPage)
}

func TestOffsetOfHugePage(t *testing.T) {
	p := pagination.Parse(ctxWithQuery("page=9223372036854775807&per_page=10"), categorySpec)

	_, ok := p.Offset()
	assert.False(t, ok)
}

func TestParseSortFieldAndOrderBy(t *testing.T) {
	p := pagination.Parse(ctxWithQuery("sort_field=slug&sort_direction=DESC&page=3&per_page=5"), categorySpec)
	assert.Equal(t, 3, p.Page)
	offset, ok := p.Offset()
	assert.True(t, ok)
	assert.Equal(t, 10, offset)
	require.Len(t, p.OrderBy.Fields, 1)
	assert.Equal(t, "slug", p.OrderBy.Fields[0].Path)
	assert.True(t, p.OrderBy.Fields[0].Desc)

	p = pagination.Parse(ctxWithQuery("order_by=created_at%20desc,name"), categorySpec)
	require.Len(t, p.OrderBy.Fields, 2)
	assert.Equal(t, "created_at", p.OrderBy.Fields[0].Path)
	assert.True(t, p.OrderBy.Fields[0].Desc)
	assert.Equal(t, "name", p.OrderBy.Fields[1].Path)
}

func TestParseUnknownDirectionIsAscending(t *testing.T) {
	p := pagination.Parse(ctxWithQuery("sort_field=slug&sort_direction=sideways"), categorySpec)
	require.Len(t, p.OrderBy.Fields, 1)
	assert.False(t, p.OrderBy.Fields[0].Desc)
}

func TestPaginateEnvelope(t *testing.T) {
	gdb := testutil.NewDB(t)
	for i := 1; i <= 23; i++ {
		testutil.Category(t, gdb, fmt.Sprintf("Category %02d", i), fmt.Sprintf("category-%02d", i))
	}

	p := pagination.Parse(ctxWithQuery("page=3&per_page=10"), categorySpec)
	page, err := pagination.Paginate[models.Category](context.Background(), gdb, categorySpec, p)
	require.NoError(t, err)

	assert.Equal(t, 3, page.CurrentPage)
	assert.Equal(t, 10, page.PerPage)
	assert.EqualValues(t, 23, page.Total)
	assert.Equal(t, 3, page.LastPage)
	require.Len(t, page.Data, 3)
	assert.Equal(t, "Category 21", page.Data[0].Name)
}

func TestPaginatePastTheEnd(t *testing.T) {
	gdb := testutil.NewDB(t)
	testutil.Category(t, gdb, "Shirts", "shirts")

	p := pagination.Parse(ctxWithQuery("page=9"), categorySpec)
	page, err := pagination.Paginate[models.Category](context.Background(), gdb, categorySpec, p)
	require.NoError(t, err)

	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, 1, page.LastPage)

	p = pagination.Parse(ctxWithQuery("page=9223372036854775807&per_page=10"), categorySpec)
	page, err = pagination.Paginate[models.Category](context.Background(), gdb, categorySpec, p)
	require.NoError(t, err)

	assert.Empty(t, page.Data)
	assert.Equal(t, 9223372036854775807, page.CurrentPage)
	assert.EqualValues(t, 1, page.Total)
}

func TestPaginateSearchAndSort(t *testing.T) {
	gdb := testutil.NewDB(t)
	testutil.Category(t, gdb, "Summer Shirts", "summer-shirts")
	testutil.Category(t, gdb, "Winter Coats", "winter-coats")
	testutil.Category(t, gdb, "Shirts", "shirts")

	p := pagination.Parse(ctxWithQuery("search=SHIRT&sort_field=name&sort_direction=desc"), categorySpec)
	page, err := pagination.Paginate[models.Category](context.Background(), gdb, categorySpec, p)
	require.NoError(t, err)

	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Summer Shirts", page.Data[0].Name)
	assert.Equal(t, "Shirts", page.Data[1].Name)
}

func TestPaginateFetchScopesSkipCount(t *testing.T) {
	gdb := testutil.NewDB(t)
	testutil.Category(t, gdb, "Shirts", "shirts")

	p := pagination.Parse(ctxWithQuery(""), categorySpec)
	page, err := pagination.Paginate[models.Category](
		context.Background(),
		gdb.Where("is_active = ?", true),
		categorySpec,
		p,
		pagination.Preload("Sizes"),
	)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "shirts", page.Data[0].Slug)
}
