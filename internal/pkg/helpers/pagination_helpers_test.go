package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewPaginationInfo(t *testing.T) {
	cases := []struct {
		name       string
		totalItems int64
		page       int
		size       int
		wantPage   int
		wantPages  int
	}{
		{"first of many", 45, 1, 20, 1, 3},
		{"exact boundary", 40, 2, 20, 2, 2},
		{"empty listing on page one", 0, 1, 20, 1, 1},
		{"page past the end clamps", 10, 5, 20, 1, 1},
		{"zero size falls back to default", 45, 1, 0, 1, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			info := NewPaginationInfo(tc.totalItems, tc.page, tc.size)
			assert.Equal(t, tc.wantPage, info.CurrentPage)
			assert.Equal(t, tc.wantPages, info.TotalPages)
			assert.Equal(t, tc.totalItems, info.TotalItems)
		})
	}
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name     string
		query    string
		wantPage int
		wantSize int
	}{
		{"defaults", "", 1, DefaultPageSize},
		{"explicit", "page=3&limit=10", 3, 10},
		{"garbage page", "page=abc&limit=10", 1, 10},
		{"limit over the cap", "page=1&limit=500", 1, DefaultPageSize},
		{"negative values", "page=-2&limit=-5", 1, DefaultPageSize},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/?"+tc.query, nil)

			page, size := ParsePaginationParams(c)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantSize, size)
		})
	}
}

func TestPageOf(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page := PageOf(items, 2, 2)
	assert.Equal(t, []int{3, 4}, page.Items)
	assert.Equal(t, 2, page.Pagination.CurrentPage)
	assert.Equal(t, 3, page.Pagination.TotalPages)

	tail := PageOf(items, 3, 2)
	assert.Equal(t, []int{5}, tail.Items)

	past := PageOf(items, 9, 2)
	assert.Empty(t, past.Items)
}
