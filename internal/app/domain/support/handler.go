package support

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/listing"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/session"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/tabs"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/views"
)

const loadError = "Failed to load support tickets"

// Handler renders the support tickets tab.
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

var _ tabs.Content = (*Handler)(nil)

func (h *Handler) Render(c *gin.Context, sel models.Selection) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		tickets, err := h.service.FetchTickets(ctx, sel.UserID, sel.IsAdmin())
		if err != nil {
			return views.Alert(views.SeverityError, loadError).Render(ctx, w)
		}

		q := c.Request.URL.Query()
		filter := ParseFilter(q)
		page := listing.ParsePage(q)
		if ws, ok := session.FromContext(c); ok {
			page = session.ApplyListing(ws, tabs.Support, filter, page)
		}

		filtered := Apply(tickets, filter, sel.IsAdmin())
		info := listing.NewPageInfo(page, len(filtered))
		return ticketsView(listing.Paginate(filtered, page), len(filtered), filter, info, sel.IsAdmin()).Render(ctx, w)
	})
}

func ticketsView(rows []models.Ticket, total int, f Filter, info listing.PageInfo, isAdmin bool) templ.Component {
	action := views.PanelURL(tabs.Support)

	var cols []views.Column
	if isAdmin {
		cols = append(cols, views.Column{Label: "User"})
	}
	cols = append(cols,
		views.Column{Label: "Ticket ID"},
		views.Column{Label: "Subject"},
		views.Column{Label: "Status"},
		views.Column{Label: "Priority"},
		views.Column{Label: "Created"},
	)

	cells := make([][]views.Cell, 0, len(rows))
	for _, t := range rows {
		var row []views.Cell
		if isAdmin {
			row = append(row, views.Cell{Text: t.UserName})
		}
		row = append(row,
			views.Cell{Text: strconv.FormatInt(t.TicketID, 10)},
			views.Cell{Text: t.Subject},
			views.Cell{Node: views.Chip(t.Status, statusColors[t.Status])},
			views.Cell{Node: views.Chip(t.Priority, priorityColors[t.Priority])},
			views.Cell{Text: views.FormatDateTime(t.CreatedAt)},
		)
		cells = append(cells, row)
	}

	body := views.Empty("No tickets found")
	if total > 0 {
		body = views.Group(
			views.Table("support tickets table", cols, cells),
			views.Pagination(action, f.Values(), info),
		)
	}

	return views.Group(
		views.Heading("Support Tickets"),
		views.FilterForm(action,
			views.Select("status", "Status", listing.OrAll(f.Status), views.EnumOptions(Statuses)),
			views.Select("priority", "Priority", listing.OrAll(f.Priority), views.EnumOptions(Priorities)),
			views.SearchInput("search", "Subject or ticket id", f.Search),
			views.PageSizeSelect(info.Size),
		),
		body,
	)
}
