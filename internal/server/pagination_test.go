package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func testContext(target string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		target  string
		page    int
		perPage int
	}{
		{"/x", 1, defaultPerPage},
		{"/x?page=3&per_page=5", 3, 5},
		{"/x?page=-2&per_page=0", 1, defaultPerPage},
		{"/x?per_page=5000", 1, maxPerPage},
	}
	for _, tc := range cases {
		page, perPage := parsePagination(testContext(tc.target))
		if page != tc.page || perPage != tc.perPage {
			t.Errorf("%s: got page=%d per_page=%d, want %d/%d", tc.target, page, perPage, tc.page, tc.perPage)
		}
	}
}

func TestPaginateNewestFirst(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, data := paginate(testContext("/h?page=1&per_page=2"), "/h", items)
	if len(page) != 2 || page[0] != 5 || page[1] != 4 {
		t.Fatalf("unexpected first page %v", page)
	}
	if !data.HasNext || data.NextURL != "/h?page=2&per_page=2" || data.TotalPages != 3 {
		t.Fatalf("unexpected pagination %#v", data)
	}

	page, data = paginate(testContext("/h?page=9&per_page=2"), "/h", items)
	if len(page) != 1 || page[0] != 1 || data.Page != 3 || data.HasNext {
		t.Fatalf("expected clamped last page, got %v %#v", page, data)
	}

	empty, data := paginate(testContext("/h"), "/h", []int(nil))
	if empty == nil || len(empty) != 0 || data.Total != 0 {
		t.Fatalf("expected empty non-nil page, got %#v", empty)
	}
	if items[0] != 1 {
		t.Fatalf("paginate must not reorder its input")
	}
}
