package rewards

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/tabs"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/views"
)

const loadError = "Failed to load rewards"

// Handler renders the rewards tab.
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
		summary, err := h.service.FetchRewards(ctx, sel.UserID)
		if err != nil {
			return views.Alert(views.SeverityError, loadError).Render(ctx, w)
		}
		return views.Group(overview(summary), historyTable(summary.History)).Render(ctx, w)
	})
}

func overview(s models.RewardsSummary) templ.Component {
	return views.Card("Sustainability Rewards", overviewBody(s))
}

func historyTable(entries []models.RewardEntry) templ.Component {
	if len(entries) == 0 {
		return views.Card("Reward History", views.Empty("No reward activity yet"))
	}
	cols := []views.Column{{Label: "Description"}, {Label: "Points", Align: "right"}, {Label: "Type"}, {Label: "Date", Align: "right"}}
	rows := make([][]views.Cell, 0, len(entries))
	for _, e := range entries {
		points, label, color := fmt.Sprintf("-%d", e.PointsRedeemed), "Redeemed", "primary"
		if e.IsEarned() {
			points, label, color = fmt.Sprintf("+%d", e.PointsEarned), "Earned", "success"
		}
		rows = append(rows, []views.Cell{
			{Text: e.Description},
			{Text: points, Align: "right"},
			{Node: views.Chip(label, color)},
			{Text: views.FormatDate(e.CreatedAt), Align: "right"},
		})
	}
	return views.Card("Reward History", views.Table("reward history table", cols, rows))
}
