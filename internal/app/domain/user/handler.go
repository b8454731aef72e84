package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/domain"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/session"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/views"
)

const loadError = "Failed to load users"

type Handler struct {
	*domain.BaseHandler
	service Service
}

func NewHandler(base *domain.BaseHandler, service Service) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

// Options renders the user selector with the current selection chosen.
func (h *Handler) Options(c *gin.Context) {
	choices, err := h.service.Choices(c.Request.Context())
	if err != nil {
		h.RenderError(c, err, loadError)
		return
	}

	current := ""
	if ws, ok := session.FromContext(c); ok {
		current = strconv.FormatInt(ws.Selection().UserID, 10)
	}
	opts := make([]views.Option, len(choices))
	for i, ch := range choices {
		opts[i] = views.Option{Value: strconv.FormatInt(ch.UserID, 10), Label: ch.Label}
	}
	h.RenderComponent(c, http.StatusOK, views.UserSelector(current, opts))
}

type selectRequest struct {
	UserID int64  `form:"user_id" binding:"required,gt=0"`
	Role   string `form:"role"`
}

// Select switches the workspace to another user. The role is resolved from
// the stored user, so a posted role only has to agree with it.
func (h *Handler) Select(c *gin.Context) {
	ws, ok := session.FromContext(c)
	if !ok {
		h.RenderError(c, models.ErrBadRequest, "No active session")
		return
	}
	var req selectRequest
	if err := c.ShouldBind(&req); err != nil {
		h.RenderError(c, errors.Join(models.ErrBadRequest, err), "Invalid user")
		return
	}

	sel, err := h.service.Lookup(c.Request.Context(), req.UserID)
	if err != nil {
		h.RenderError(c, err, "Unknown user")
		return
	}
	if req.Role != "" && models.ParseRole(req.Role) != sel.Role {
		h.RenderError(c, models.ErrBadRequest, "Role does not match user")
		return
	}

	ws.SetSelection(sel)

	if domain.IsHTMX(c) {
		c.Header("HX-Refresh", "true")
		c.Status(http.StatusOK)
		return
	}
	c.Redirect(http.StatusSeeOther, "/account")
}
