package support

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/listing"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
)

var (
	Statuses   = []string{"Open", "In Progress", "Closed", "Resolved"}
	Priorities = []string{"Low", "Medium", "High"}
)

var statusColors = map[string]string{
	"Open":        "info",
	"In Progress": "warning",
	"Closed":      "success",
}

var priorityColors = map[string]string{
	"High":   "warning",
	"Medium": "info",
	"Low":    "success",
}

// Filter holds the ticket list criteria.
type Filter struct {
	Status   string
	Priority string
	Search   string
}

// ParseFilter reads the criteria from q, reading empty enum values as
// listing.All.
func ParseFilter(q url.Values) Filter {
	return Filter{
		Status:   listing.OrAll(q.Get("status")),
		Priority: listing.OrAll(q.Get("priority")),
		Search:   q.Get("search"),
	}
}

func (f Filter) Values() url.Values {
	q := url.Values{}
	for k, v := range map[string]string{"status": f.Status, "priority": f.Priority, "search": f.Search} {
		if v != "" && v != listing.All {
			q.Set(k, v)
		}
	}
	return q
}

// Apply keeps the tickets matching every criterion of f. Search covers the
// subject and the ticket id, and the submitter name for admins.
func Apply(items []models.Ticket, f Filter, isAdmin bool) []models.Ticket {
	search := strings.TrimSpace(f.Search)
	return listing.Filter(items, func(t models.Ticket) bool {
		if !listing.MatchOption(f.Status, t.Status) || !listing.MatchOption(f.Priority, t.Priority) {
			return false
		}
		fields := []string{t.Subject, strconv.FormatInt(t.TicketID, 10)}
		if isAdmin {
			fields = append(fields, t.UserName)
		}
		return listing.MatchSearch(search, fields...)
	})
}
