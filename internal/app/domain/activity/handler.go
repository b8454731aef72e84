package activity

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/listing"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/session"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/tabs"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/views"
)

const loadError = "Failed to load activity data"

// Handler renders the activity log tab.
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

var _ tabs.Content = (*Handler)(nil)

// Render fetches the activities when the panel renders and shows the page
// selected by the request query.
func (h *Handler) Render(c *gin.Context, sel models.Selection) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		activities, err := h.service.FetchActivities(ctx, sel.UserID, sel.IsAdmin())
		if err != nil {
			return views.Alert(views.SeverityError, loadError).Render(ctx, w)
		}

		q := c.Request.URL.Query()
		filter := ParseFilter(q)
		page := listing.ParsePage(q)
		if ws, ok := session.FromContext(c); ok {
			page = session.ApplyListing(ws, tabs.Activity, filter, page)
		}

		filtered := Apply(activities, filter, sel.IsAdmin())
		info := listing.NewPageInfo(page, len(filtered))
		return activityView(filtered, listing.Paginate(filtered, page), filter, info, sel.IsAdmin()).Render(ctx, w)
	})
}

func activityView(filtered, rows []models.Activity, f Filter, info listing.PageInfo, isAdmin bool) templ.Component {
	action := views.PanelURL(tabs.Activity)

	cols := []views.Column{{Label: "Date"}, {Label: "Type"}, {Label: "Description"}}
	if isAdmin {
		cols = append(cols, views.Column{Label: "User"})
	}
	cells := make([][]views.Cell, 0, len(rows))
	for _, a := range rows {
		row := []views.Cell{
			{Text: views.FormatDateTime(a.Date)},
			{Node: views.Chip(a.Type, typeColors[a.Type])},
			{Text: a.Description},
		}
		if isAdmin {
			row = append(row, views.Cell{Text: a.UserName})
		}
		cells = append(cells, row)
	}

	body := views.Empty("No activities found")
	if len(filtered) > 0 {
		body = views.Group(
			views.Table("activity log table", cols, cells),
			views.Pagination(action, f.Values(), info),
		)
	}

	return views.Group(
		views.Heading("Recent Activity"),
		views.FilterForm(action,
			views.Select("type", "Type", listing.OrAll(f.Type), views.EnumOptions(Types)),
			views.SearchInput("search", "Search activities", f.Search),
			views.PageSizeSelect(info.Size),
		),
		body,
	)
}
