package activity

import (
	"net/url"
	"strconv"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/listing"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
)

// Types are the activity types offered by the type filter.
var Types = []string{
	"Feedback Submitted",
	"Support Ticket Opened",
	"Profile Updated",
	"Password Changed",
	"Login Attempt",
}

var typeColors = map[string]string{
	"Feedback Submitted":    "info",
	"Support Ticket Opened": "warning",
	"Profile Updated":       "success",
	"Password Changed":      "secondary",
	"Login Attempt":         "default",
}

// Filter holds the activity list criteria.
type Filter struct {
	Type   string
	Search string
}

// ParseFilter reads the criteria from q. A missing or empty type reads as
// listing.All so both spellings of "no filter" compare equal.
func ParseFilter(q url.Values) Filter {
	return Filter{Type: listing.OrAll(q.Get("type")), Search: q.Get("search")}
}

// Values encodes f for pagination links.
func (f Filter) Values() url.Values {
	q := url.Values{}
	if f.Type != "" && f.Type != listing.All {
		q.Set("type", f.Type)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}

// Apply keeps the activities matching every criterion of f. Search covers
// description, type and id, and the submitter name for admins.
func Apply(items []models.Activity, f Filter, isAdmin bool) []models.Activity {
	return listing.Filter(items, func(a models.Activity) bool {
		if !listing.MatchOption(f.Type, a.Type) {
			return false
		}
		fields := []string{a.Description, a.Type, strconv.FormatInt(a.ActivityID, 10)}
		if isAdmin {
			fields = append(fields, a.UserName)
		}
		return listing.MatchSearch(f.Search, fields...)
	})
}
