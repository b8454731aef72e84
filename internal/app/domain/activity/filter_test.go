package activity

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/listing"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
)

func TestApply(t *testing.T) {
	items := []models.Activity{
		{ActivityID: 1, Type: "Login Attempt", Description: "Signed in", UserName: "Casey Morgan"},
		{ActivityID: 2, Type: "Profile Updated", Description: "Changed phone", UserName: "Jordan Reyes"},
		{ActivityID: 3, Type: "Login Attempt", Description: "Failed sign-in", UserName: "Jordan Reyes"},
	}

	ids := func(as []models.Activity) []int64 {
		var out []int64
		for _, a := range as {
			out = append(out, a.ActivityID)
		}
		return out
	}

	assert.Equal(t, []int64{1, 2, 3}, ids(Apply(items, Filter{Type: "All"}, false)))
	assert.Equal(t, []int64{1, 3}, ids(Apply(items, Filter{Type: "Login Attempt"}, false)))
	assert.Equal(t, []int64{3}, ids(Apply(items, Filter{Type: "Login Attempt", Search: "FAILED"}, false)))
	assert.Empty(t, Apply(items, Filter{Search: "jordan"}, false))
	assert.Equal(t, []int64{2, 3}, ids(Apply(items, Filter{Search: "jordan"}, true)))
}

func TestFilterValuesRoundTrip(t *testing.T) {
	f := Filter{Type: "Login Attempt", Search: "x"}
	assert.Equal(t, f, ParseFilter(f.Values()))
	assert.Equal(t, url.Values{}, Filter{}.Values())
	assert.Equal(t, url.Values{}, Filter{Type: listing.All}.Values())
}

func TestParseFilterTreatsEmptyTypeAsAll(t *testing.T) {
	empty := ParseFilter(url.Values{"type": {""}})
	assert.Equal(t, Filter{Type: listing.All}, empty)
	assert.Equal(t, empty, ParseFilter(url.Values{}))
	assert.Equal(t, empty, ParseFilter(url.Values{"type": {"All"}}))

	var s listing.State[Filter]
	s.Apply(empty, listing.Page{Index: 2, Size: 10})
	p := s.Apply(ParseFilter(url.Values{"type": {"All"}}), listing.Page{Index: 2, Size: 10})
	assert.Equal(t, 2, p.Index)
}
