package domain

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/session"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/views"
)

type BaseHandler struct {
	Logger *zap.Logger
}

func NewBaseHandler(logger *zap.Logger) *BaseHandler {
	return &BaseHandler{Logger: logger}
}

func (h *BaseHandler) newLayoutData(c *gin.Context, title, activeNav string, content templ.Component) models.LayoutTempl {
	data := models.LayoutTempl{
		Title:     title,
		Content:   content,
		Nav:       models.MainNav,
		Secondary: models.AccountNav,
		ActiveNav: activeNav,
	}
	if ws, ok := session.FromContext(c); ok {
		data.Selection = ws.Selection()
	}
	return data
}

// RenderComponent writes component with status. Render errors after the
// header is sent can only be logged.
func (h *BaseHandler) RenderComponent(c *gin.Context, status int, component templ.Component) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		h.Logger.Error("Failed to render component", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
}

// RenderPage renders content alone for htmx requests and inside the full
// layout otherwise.
func (h *BaseHandler) RenderPage(c *gin.Context, title, activeNav string, content templ.Component) {
	if IsHTMX(c) {
		h.RenderComponent(c, http.StatusOK, content)
		return
	}
	h.RenderComponent(c, http.StatusOK, views.Layout(h.newLayoutData(c, title, activeNav, content)))
}

// RenderError maps err onto a status code and renders an alert.
func (h *BaseHandler) RenderError(c *gin.Context, err error, message string) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	} else {
		h.Logger.Warn("Request rejected", zap.String("path", c.Request.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	h.RenderComponent(c, status, views.Alert(views.SeverityError, message))
}

func IsHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

// StatusFor translates domain errors into HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrBadRequest),
		errors.Is(err, models.ErrUnknownTab),
		errors.Is(err, models.ErrUserIDRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
