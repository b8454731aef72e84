package account

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/domain"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/session"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/tabs"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/tabsync"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type manualTask struct {
	f       func()
	stopped bool
}

func (t *manualTask) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) tabsync.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTask{f: f}
	s.tasks = append(s.tasks, t)
	return t
}

func (s *manualScheduler) fire() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()
	for _, t := range tasks {
		if !t.stopped {
			t.f()
		}
	}
}

func text(s string) tabs.Content {
	return tabs.ContentFunc(func(*gin.Context, models.Selection) templ.Component {
		return templ.Raw(`<p class="content">` + s + `</p>`)
	})
}

type fixture struct {
	router  *gin.Engine
	ws      *session.Workspace
	sched   *manualScheduler
	failing *atomic.Bool
}

func newFixture(t *testing.T, sel models.Selection) *fixture {
	t.Helper()
	failing := &atomic.Bool{}
	contents := map[tabs.ID]tabs.Content{
		tabs.Profile:  text("profile"),
		tabs.Activity: text("activity"),
		tabs.Support: tabs.ContentFunc(func(*gin.Context, models.Selection) templ.Component {
			return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
				if failing.Load() {
					return errors.New("tickets unavailable")
				}
				_, err := io.WriteString(w, `<p class="content">support</p>`)
				return err
			})
		}),
		tabs.Rewards:   text("rewards"),
		tabs.Purchases: text("purchases"),
	}
	sched := &manualScheduler{}
	ws := session.NewWorkspace("ws", sel, tabs.NewComposer(contents), nil, tabsync.WithScheduler(sched))
	t.Cleanup(ws.Close)

	h := NewHandler(domain.NewBaseHandler(zap.NewNop()))
	r := gin.New()
	r.Use(func(c *gin.Context) {
		session.WithWorkspace(c, ws)
		c.Next()
	})
	r.GET("/account", h.Page)
	r.POST("/account/tabs/:id", h.SelectTab)
	r.GET("/account/tabs/:id/panel", h.Panel)
	r.POST("/account/tabs/:id/retry", h.Retry)
	r.GET("/account/location", h.Location)
	return &fixture{router: r, ws: ws, sched: sched, failing: failing}
}

func (f *fixture) do(method, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func parse(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	return doc
}

var customer = models.Selection{UserID: 3, Role: models.RoleCustomer}

func TestPage_HydratesActiveTabFromQuery(t *testing.T) {
	f := newFixture(t, customer)

	w := f.do(http.MethodGet, "/account?tab=support", nil)
	require.Equal(t, http.StatusOK, w.Code)

	doc := parse(t, w)
	assert.Equal(t, 1, doc.Find("html").Length(), "full page outside htmx")
	assert.Equal(t, 5, doc.Find(`[role="tab"]`).Length())
	assert.Equal(t, "support", doc.Find(`[role="tab"][aria-selected="true"]`).AttrOr("data-tab", ""))
	assert.Equal(t, "/account/tabs/support/panel", doc.Find("[data-tab-panel]").AttrOr("hx-get", ""))
	assert.Equal(t, 1, doc.Find("#location-sync").Length())

	active, _ := f.ws.Active()
	assert.Equal(t, 2, active)
}

func TestPage_HTMXRendersFragment(t *testing.T) {
	f := newFixture(t, customer)
	doc := parse(t, f.do(http.MethodGet, "/account", map[string]string{"HX-Request": "true"}))
	assert.Equal(t, 0, doc.Find("header").Length())
	assert.Equal(t, 1, doc.Find("#account-tabs").Length())
}

func TestSelectTab(t *testing.T) {
	f := newFixture(t, customer)
	f.do(http.MethodGet, "/account", nil)

	w := f.do(http.MethodPost, "/account/tabs/3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rewards", parse(t, w).Find(`[aria-selected="true"]`).AttrOr("data-tab", ""))

	f.sched.fire()
	assert.Equal(t, "rewards", f.ws.Location().Get(tabsync.Param))

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/account/tabs/9", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/account/tabs/x", nil).Code)
}

func TestPanel(t *testing.T) {
	t.Run("renders the tab content", func(t *testing.T) {
		f := newFixture(t, customer)
		w := f.do(http.MethodGet, "/account/tabs/activity/panel", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "activity", parse(t, w).Find(".content").Text())
	})

	t.Run("admin has no rewards tab", func(t *testing.T) {
		f := newFixture(t, models.Selection{UserID: 1, Role: models.RoleAdmin})
		assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/account/tabs/rewards/panel", nil).Code)
	})

	t.Run("unknown tab", func(t *testing.T) {
		f := newFixture(t, customer)
		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/account/tabs/settings/panel", nil).Code)
	})
}

func TestPanel_BoundaryAndRetry(t *testing.T) {
	f := newFixture(t, customer)
	f.failing.Store(true)

	doc := parse(t, f.do(http.MethodGet, "/account/tabs/support/panel", nil))
	assert.Equal(t, 0, doc.Find(".content").Length())
	assert.Equal(t, "/account/tabs/support/retry", doc.Find("button[hx-post]").AttrOr("hx-post", ""))

	f.failing.Store(false)
	doc = parse(t, f.do(http.MethodGet, "/account/tabs/support/panel", nil))
	assert.Equal(t, 0, doc.Find(".content").Length(), "the captured failure sticks until retry")

	w := f.do(http.MethodPost, "/account/tabs/support/retry", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "support", parse(t, w).Find(".content").Text())

	other := parse(t, f.do(http.MethodGet, "/account/tabs/profile/panel", nil))
	assert.Equal(t, "profile", other.Find(".content").Text(), "other tabs are unaffected")
}

func TestLocation(t *testing.T) {
	f := newFixture(t, customer)
	f.do(http.MethodGet, "/account", nil)
	f.sched.fire()

	w := f.do(http.MethodGet, "/account/location", map[string]string{"HX-Current-URL": "http://localhost:8091/account"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/account?tab=profile", w.Header().Get("HX-Replace-Url"))

	w = f.do(http.MethodGet, "/account/location", map[string]string{"HX-Current-URL": "http://localhost:8091/account?tab=profile"})
	assert.Empty(t, w.Header().Get("HX-Replace-Url"))
}

func TestLocationBeforeFirstWrite(t *testing.T) {
	f := newFixture(t, customer)
	f.do(http.MethodGet, "/account?tab=support", nil)

	w := f.do(http.MethodGet, "/account/location", map[string]string{"HX-Current-URL": "http://localhost:8091/account?tab=support"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("HX-Replace-Url"))

	f.sched.fire()
	assert.Equal(t, 0, f.ws.Location().Writes(), "hydrating from the query writes nothing")
	_, err := f.ws.SetActive(3)
	require.NoError(t, err)
	f.sched.fire()

	w = f.do(http.MethodGet, "/account/location", map[string]string{"HX-Current-URL": "http://localhost:8091/account?tab=support"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/account?tab=rewards", w.Header().Get("HX-Replace-Url"))
}

func TestSameLocation(t *testing.T) {
	tests := []struct {
		current, target string
		want            bool
	}{
		{"http://h/account?tab=support&page=2", "/account?page=2&tab=support", true},
		{"http://h/account?tab=support", "/account?tab=rewards", false},
		{"http://h/users", "/account", false},
		{"", "/account", false},
	}
	for _, tt := range tests {
		got, err := sameLocation(tt.current, tt.target)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s vs %s", tt.current, tt.target)
	}
}
