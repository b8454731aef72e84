package listing

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

type row struct {
	status string
	title  string
}

func TestMatchOption(t *testing.T) {
	assert.True(t, MatchOption("", "Open"))
	assert.True(t, MatchOption(All, "Open"))
	assert.True(t, MatchOption("Open", "Open"))
	assert.False(t, MatchOption("Open", "Closed"))
	assert.False(t, MatchOption("open", "Open"), "enum filters are exact")
}

func TestMatchSearch(t *testing.T) {
	assert.True(t, MatchSearch("", "anything"))
	assert.True(t, MatchSearch("LOGIN", "Failed login attempt"))
	assert.True(t, MatchSearch("jane", "Billing", "Jane Doe"))
	assert.False(t, MatchSearch("refund", "Billing", "Jane Doe"))
	assert.False(t, MatchSearch("x"))
}

func TestFilter_Conjunctive(t *testing.T) {
	rows := []row{
		{"Open", "Cannot log in"},
		{"Closed", "Cannot log in again"},
		{"Open", "Refund request"},
	}
	keep := func(r row) bool {
		return MatchOption("Open", r.status) && MatchSearch("log in", r.title)
	}

	got := Filter(rows, keep)

	assert.Equal(t, []row{{"Open", "Cannot log in"}}, got)
}

func TestFilter_PreservesOrderAndNeverNil(t *testing.T) {
	got := Filter([]int{3, 1, 2}, func(int) bool { return false })
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = Filter([]int{3, 1, 2, 4}, func(n int) bool { return n > 1 })
	assert.Equal(t, []int{3, 2, 4}, got)
}

func TestPaginate(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	assert.Equal(t, items[0:10], Paginate(items, Page{Index: 0, Size: 10}))
	assert.Equal(t, items[20:23], Paginate(items, Page{Index: 2, Size: 10}))
	assert.Empty(t, Paginate(items, Page{Index: 3, Size: 10}))
	assert.Equal(t, items[0:10], Paginate(items, Page{Index: -4, Size: 7}), "invalid size falls back to default")
}

func TestPaginate_SlicesFilteredSet(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22}
	even := Filter(items, func(n int) bool { return n%2 == 0 })

	got := Paginate(even, Page{Index: 1, Size: 10})

	assert.Equal(t, []int{22}, got)
}

func TestNewPageInfo(t *testing.T) {
	pi := NewPageInfo(Page{Index: 1, Size: 10}, 23)
	assert.Equal(t, 3, pi.TotalPages)
	assert.Equal(t, 11, pi.StartRow())
	assert.Equal(t, 20, pi.EndRow())
	assert.True(t, pi.HasPrev())
	assert.True(t, pi.HasNext())

	empty := NewPageInfo(Page{}, 0)
	assert.Equal(t, 1, empty.TotalPages)
	assert.Equal(t, 0, empty.StartRow())
	assert.False(t, empty.HasNext())
}

func TestState_FilterChangeResetsPage(t *testing.T) {
	type filter struct{ status, search string }
	var s State[filter]

	assert.Equal(t, 2, s.Apply(filter{status: "Open"}, Page{Index: 2, Size: 10}).Index)
	assert.Equal(t, 3, s.Apply(filter{status: "Open"}, Page{Index: 3, Size: 10}).Index)

	p := s.Apply(filter{status: "Open", search: "a"}, Page{Index: 3, Size: 10})
	assert.Equal(t, 0, p.Index)

	p = s.Apply(filter{status: "Open", search: "a"}, Page{Index: 1, Size: 25})
	assert.Equal(t, 0, p.Index, "changing rows per page also resets")
	assert.Equal(t, 25, p.Size)
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, Page{Index: 2, Size: 25}, ParsePage(url.Values{"page": {"2"}, "per_page": {"25"}}))
	assert.Equal(t, Page{Index: 0, Size: DefaultPageSize}, ParsePage(url.Values{"page": {"-1"}, "per_page": {"7"}}))
}
