package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	return FromContext(c)
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		limit  int
		offset int
	}{
		{"defaults", "", DefaultLimit, 0},
		{"explicit", "limit=50&offset=10", 50, 10},
		{"limit capped", "limit=500", MaxLimit, 0},
		{"negative ignored", "limit=-1&offset=-5", DefaultLimit, 0},
		{"garbage ignored", "limit=abc&offset=xyz", DefaultLimit, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := paramsFor(t, tc.query)
			if p.Limit != tc.limit || p.Offset != tc.offset {
				t.Errorf("params = %+v, want limit=%d offset=%d", p, tc.limit, tc.offset)
			}
		})
	}
}

func TestNewResponse(t *testing.T) {
	resp := NewResponse([]int{1, 2}, 10, 2, 4)
	if !resp.HasMore {
		t.Error("has_more should be true at offset 4 of 10")
	}
	resp = NewResponse([]int{1, 2}, 10, 2, 8)
	if resp.HasMore {
		t.Error("has_more should be false on the last page")
	}
}

func TestParamsHelpers(t *testing.T) {
	p := Params{Limit: 20, Offset: 40}
	if p.SQL() != "LIMIT 20 OFFSET 40" {
		t.Errorf("SQL = %q", p.SQL())
	}
	if p.NextOffset() != 60 {
		t.Errorf("NextOffset = %d", p.NextOffset())
	}
	if !p.HasNext(100) || p.HasNext(60) {
		t.Error("HasNext boundary wrong")
	}
}
