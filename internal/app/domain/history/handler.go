package history

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/tabs"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/views"
)

const loadError = "Failed to load purchase history"

// Handler renders the purchase history tab.
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

var _ tabs.Content = (*Handler)(nil)

func (h *Handler) Render(_ *gin.Context, sel models.Selection) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		entries, err := h.service.FetchHistory(ctx, sel.UserID)
		if err != nil {
			return views.Alert(views.SeverityError, loadError).Render(ctx, w)
		}
		return historyView(entries).Render(ctx, w)
	})
}

func historyView(entries []models.HistoryEntry) templ.Component {
	if len(entries) == 0 {
		return views.Group(views.Heading("Purchase & Interaction History"), views.Empty("No purchases yet"))
	}
	cols := []views.Column{
		{Label: "Type"},
		{Label: "Description"},
		{Label: "Cost", Align: "right"},
		{Label: "Date", Align: "right"},
	}
	rows := make([][]views.Cell, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []views.Cell{
			{Node: views.Chip(e.Type, "primary")},
			{Text: e.Description},
			{Text: views.FormatPrice(e.PurchaseCost), Align: "right"},
			{Text: views.FormatDate(e.Date), Align: "right"},
		})
	}
	return views.Group(
		views.Heading("Purchase & Interaction History"),
		views.Table("purchases table", cols, rows),
	)
}
