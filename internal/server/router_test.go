package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/session"
	"github.com/FACorreiaa/greengrove-accounts/internal/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerPort:      "8091",
		SessionSecret:   "test-secret",
		DefaultUserID:   3,
		TabSyncDebounce: 10 * time.Millisecond,
		WorkspaceTTL:    time.Minute,
	}
}

func newTestRouter(t *testing.T) (*gin.Engine, pgxmock.PgxPoolIface) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	pool, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return SetupRouter(pool, testConfig(), zap.NewNop()), pool
}

func TestHealthz(t *testing.T) {
	r, pool := newTestRouter(t)

	pool.ExpectExec("SELECT 1").WillReturnResult(pgxmock.NewResult("SELECT", 1))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies(), "health checks do not open a session")
	assert.JSONEq(t, `{"status":"ok","workspaces":0,"workspace_cache":{"hits":0,"misses":0,"sets":0,"evictions":0}}`, w.Body.String())

	pool.ExpectExec("SELECT 1").WillReturnError(errors.New("down"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthzCountsWorkspaces(t *testing.T) {
	r, pool := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/account", nil))
	require.Equal(t, http.StatusOK, w.Code)

	pool.ExpectExec("SELECT 1").WillReturnResult(pgxmock.NewResult("SELECT", 1))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Workspaces int `json:"workspaces"`
		Cache      struct {
			Sets int64 `json:"sets"`
		} `json:"workspace_cache"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Workspaces)
	assert.Equal(t, int64(1), body.Cache.Sets)
}

func TestRootRedirectsToAccount(t *testing.T) {
	r, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/account", w.Header().Get("Location"))
}

func TestAccountPageKeepsWorkspaceAcrossRequests(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/account?tab=rewards", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, "rewards", doc.Find(`[role="tab"][aria-selected="true"]`).AttrOr("data-tab", ""))

	req := httptest.NewRequest(http.MethodPost, "/account/tabs/1", nil)
	req.AddCookie(sessionCookie)
	req.Header.Set("HX-Request", "true")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	doc, err = goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, "activity", doc.Find(`[aria-selected="true"]`).AttrOr("data-tab", ""))
	assert.Empty(t, w.Result().Cookies(), "an existing workspace is reused")
}
