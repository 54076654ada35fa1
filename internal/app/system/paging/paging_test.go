package paging

import (
	"net/http/httptest"
	"testing"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Params
	}{
		{
			name:  "defaults",
			query: "",
			want:  Params{Page: 1, PageSize: DefaultPageSize},
		},
		{
			name:  "explicit page and size",
			query: "?page=3&page_size=25",
			want:  Params{Page: 3, PageSize: 25},
		},
		{
			name:  "search term",
			query: "?search=smith",
			want:  Params{Page: 1, PageSize: DefaultPageSize, Search: "smith"},
		},
		{
			name:  "zero page falls back",
			query: "?page=0",
			want:  Params{Page: 1, PageSize: DefaultPageSize},
		},
		{
			name:  "negative page falls back",
			query: "?page=-2",
			want:  Params{Page: 1, PageSize: DefaultPageSize},
		},
		{
			name:  "non-numeric page falls back",
			query: "?page=abc",
			want:  Params{Page: 1, PageSize: DefaultPageSize},
		},
		{
			name:  "page_size above cap falls back",
			query: "?page_size=500",
			want:  Params{Page: 1, PageSize: DefaultPageSize},
		},
		{
			name:  "page_size at cap kept",
			query: "?page_size=100",
			want:  Params{Page: 1, PageSize: MaxPageSize},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/members"+tt.query, nil)
			got := FromRequest(r)
			if got != tt.want {
				t.Errorf("FromRequest() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSkip(t *testing.T) {
	tests := []struct {
		page, size, want int64
	}{
		{1, 10, 0},
		{2, 10, 10},
		{3, 25, 50},
	}
	for _, tt := range tests {
		p := Params{Page: tt.page, PageSize: tt.size}
		if got := p.Skip(); got != tt.want {
			t.Errorf("Skip(page=%d, size=%d) = %d, want %d", tt.page, tt.size, got, tt.want)
		}
	}
}

func TestNewEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		params     Params
		total      int64
		wantPages  int64
		wantNext   *int64
		wantPrev   *int64
		wantSearch *string
	}{
		{
			name:      "first of three pages",
			params:    Params{Page: 1, PageSize: 10},
			total:     25,
			wantPages: 3,
			wantNext:  ptr(int64(2)),
			wantPrev:  nil,
		},
		{
			name:      "middle page",
			params:    Params{Page: 2, PageSize: 10},
			total:     25,
			wantPages: 3,
			wantNext:  ptr(int64(3)),
			wantPrev:  ptr(int64(1)),
		},
		{
			name:      "last page",
			params:    Params{Page: 3, PageSize: 10},
			total:     25,
			wantPages: 3,
			wantNext:  nil,
			wantPrev:  ptr(int64(2)),
		},
		{
			name:      "exact fit has no next",
			params:    Params{Page: 2, PageSize: 10},
			total:     20,
			wantPages: 2,
			wantNext:  nil,
			wantPrev:  ptr(int64(1)),
		},
		{
			name:      "empty collection",
			params:    Params{Page: 1, PageSize: 10},
			total:     0,
			wantPages: 0,
			wantNext:  nil,
			wantPrev:  nil,
		},
		{
			name:       "search term echoed",
			params:     Params{Page: 1, PageSize: 10, Search: "smith"},
			total:      1,
			wantPages:  1,
			wantNext:   nil,
			wantPrev:   nil,
			wantSearch: ptr("smith"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := NewEnvelope([]string{}, tt.params, tt.total)
			meta := env.Pagination

			if meta.TotalItems != tt.total {
				t.Errorf("TotalItems = %d, want %d", meta.TotalItems, tt.total)
			}
			if meta.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", meta.TotalPages, tt.wantPages)
			}
			if meta.CurrentPage != tt.params.Page {
				t.Errorf("CurrentPage = %d, want %d", meta.CurrentPage, tt.params.Page)
			}
			checkOptInt(t, "NextPage", meta.NextPage, tt.wantNext)
			checkOptInt(t, "PrevPage", meta.PrevPage, tt.wantPrev)
			checkOptStr(t, "SearchTerm", meta.SearchTerm, tt.wantSearch)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func checkOptInt(t *testing.T, field string, got, want *int64) {
	t.Helper()
	switch {
	case got == nil && want == nil:
	case got == nil || want == nil:
		t.Errorf("%s = %v, want %v", field, fmtOpt(got), fmtOpt(want))
	case *got != *want:
		t.Errorf("%s = %d, want %d", field, *got, *want)
	}
}

func checkOptStr(t *testing.T, field string, got, want *string) {
	t.Helper()
	switch {
	case got == nil && want == nil:
	case got == nil || want == nil:
		t.Errorf("%s = %v, want %v", field, got, want)
	case *got != *want:
		t.Errorf("%s = %q, want %q", field, *got, *want)
	}
}

func fmtOpt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
