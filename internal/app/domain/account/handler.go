// Package account serves the tabbed account page: the tab strip, the lazily
// loaded tab panels with their error boundaries and the address bar sync.
package account

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/domain"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/session"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/tabs"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/views"
)

const (
	pageTitle  = "My Account - GreenGrove"
	noSession  = "Your session has expired. Reload the page."
	tabMissing = "This tab is not available"
)

type Handler struct {
	*domain.BaseHandler
}

func NewHandler(base *domain.BaseHandler) *Handler {
	return &Handler{BaseHandler: base}
}

func (h *Handler) workspace(c *gin.Context) (*session.Workspace, bool) {
	ws, ok := session.FromContext(c)
	if !ok {
		h.RenderError(c, models.ErrBadRequest, noSession)
	}
	return ws, ok
}

// Page handles GET /account. Every page load mounts a fresh tab
// synchronizer, which takes the active tab from the tab query parameter.
func (h *Handler) Page(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	active, descs := ws.MountPage(c.Request.URL.Path, c.Request.URL.Query())
	content := views.Group(
		views.Heading("My Account"),
		views.TabStrip(descs, active),
		views.LocationPoller(),
	)
	h.RenderPage(c, pageTitle, "Dashboard", content)
}

// SelectTab handles POST /account/tabs/:id, where id is the position of the
// tab in the strip, and redraws the strip.
func (h *Handler) SelectTab(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	i, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.RenderError(c, fmt.Errorf("tab index %q: %w", c.Param("id"), models.ErrBadRequest), tabMissing)
		return
	}
	if _, err := ws.SetActive(i); err != nil {
		h.RenderError(c, fmt.Errorf("tab index %d: %w", i, err), tabMissing)
		return
	}
	active, descs := ws.Active()
	h.RenderComponent(c, http.StatusOK, views.TabStrip(descs, active))
}

// Panel handles GET /account/tabs/:id/panel.
func (h *Handler) Panel(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	h.renderPanel(c, ws)
}

// Retry handles POST /account/tabs/:id/retry: the boundary is cleared and
// the panel rendered again, fetching its data anew.
func (h *Handler) Retry(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	d, err := h.descriptor(c, ws)
	if err != nil {
		h.RenderError(c, err, tabMissing)
		return
	}
	ws.Boundary(d.ID).Retry()
	h.renderPanel(c, ws)
}

func (h *Handler) renderPanel(c *gin.Context, ws *session.Workspace) {
	d, err := h.descriptor(c, ws)
	if err != nil {
		h.RenderError(c, err, tabMissing)
		return
	}
	b := ws.Boundary(d.ID)
	h.RenderComponent(c, http.StatusOK, b.Wrap(d.Content.Render(c, ws.Selection())))
}

// descriptor finds the tab named by the :id parameter among the tabs of the
// selected role.
func (h *Handler) descriptor(c *gin.Context, ws *session.Workspace) (tabs.Descriptor, error) {
	id, err := tabs.ParseID(c.Param("id"))
	if err != nil {
		return tabs.Descriptor{}, err
	}
	descs := ws.Tabs()
	i := tabs.IndexOf(descs, id)
	if i < 0 || descs[i].Content == nil {
		return tabs.Descriptor{}, fmt.Errorf("tab %s for this role: %w", id, models.ErrNotFound)
	}
	return descs[i], nil
}

// Location handles GET /account/location. It answers HX-Replace-Url when
// the server-side location differs from the browser's current URL.
func (h *Handler) Location(c *gin.Context) {
	ws, ok := session.FromContext(c)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	loc := ws.Location()
	// Nothing written since the page loaded: the address bar already matches.
	if loc.Writes() == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	target := loc.URL()
	current := c.GetHeader("HX-Current-URL")

	same, err := sameLocation(current, target)
	if err != nil {
		h.Logger.Debug("Unparseable current URL", zap.String("current", current), zap.Error(err))
	}
	if !same {
		c.Header("HX-Replace-Url", target)
	}
	c.Status(http.StatusOK)
}

// sameLocation compares path and query of two URLs, ignoring scheme, host and
// query parameter order.
func sameLocation(current, target string) (bool, error) {
	if current == "" {
		return false, nil
	}
	cu, err := url.Parse(current)
	if err != nil {
		return false, err
	}
	tu, err := url.Parse(target)
	if err != nil {
		return false, errors.Join(models.ErrBadRequest, err)
	}
	return cu.Path == tu.Path && cu.Query().Encode() == tu.Query().Encode(), nil
}
