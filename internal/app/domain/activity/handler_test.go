package activity

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) FetchActivities(ctx context.Context, userID int64, isAdmin bool) ([]models.Activity, error) {
	args := m.Called(ctx, userID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Activity), args.Error(1)
}

func renderPanel(t *testing.T, h *Handler, target string, sel models.Selection) *goquery.Document {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)

	var buf bytes.Buffer
	require.NoError(t, h.Render(c, sel).Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func sampleActivities(n int) []models.Activity {
	out := make([]models.Activity, n)
	for i := range out {
		typ := Types[i%len(Types)]
		out[i] = models.Activity{
			ActivityID:  int64(i + 1),
			UserID:      3,
			Type:        typ,
			Description: fmt.Sprintf("entry %d", i+1),
			Date:        time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			UserName:    "Casey Morgan",
		}
	}
	return out
}

var customer = models.Selection{UserID: 3, Role: models.RoleCustomer}

func TestRender_PaginatesAndFilters(t *testing.T) {
	svc := new(MockService)
	svc.On("FetchActivities", mock.Anything, int64(3), false).Return(sampleActivities(30), nil)
	h := NewHandler(svc, zap.NewNop())

	doc := renderPanel(t, h, "/account/tabs/activity/panel", customer)
	assert.Equal(t, 10, doc.Find("tbody tr").Length())
	assert.Equal(t, "1–10 of 30", doc.Find(".rows").Text())
	assert.Equal(t, 3, doc.Find("thead th").Length())

	doc = renderPanel(t, h, "/account/tabs/activity/panel?type=Login+Attempt", customer)
	assert.Equal(t, 6, doc.Find("tbody tr").Length())
	doc.Find("tbody tr .chip").Each(func(_ int, s *goquery.Selection) {
		assert.Equal(t, "Login Attempt", s.Text())
	})

	doc = renderPanel(t, h, "/account/tabs/activity/panel?search=ENTRY+2&per_page=25", customer)
	// entry 2, entry 20..29
	assert.Equal(t, 11, doc.Find("tbody tr").Length())
}

func TestRender_AdminSeesUserColumn(t *testing.T) {
	svc := new(MockService)
	admin := models.Selection{UserID: 1, Role: models.RoleAdmin}
	svc.On("FetchActivities", mock.Anything, int64(1), true).Return(sampleActivities(2), nil)
	h := NewHandler(svc, zap.NewNop())

	doc := renderPanel(t, h, "/account/tabs/activity/panel?search=casey", admin)
	assert.Equal(t, 4, doc.Find("thead th").Length())
	assert.Equal(t, 2, doc.Find("tbody tr").Length())
}

func TestRender_EmptyAndError(t *testing.T) {
	svc := new(MockService)
	svc.On("FetchActivities", mock.Anything, int64(3), false).Return([]models.Activity{}, nil).Once()
	svc.On("FetchActivities", mock.Anything, int64(3), false).Return(nil, errors.New("db down")).Once()
	h := NewHandler(svc, zap.NewNop())

	doc := renderPanel(t, h, "/account/tabs/activity/panel", customer)
	assert.Equal(t, "No activities found", doc.Find(".empty").Text())

	doc = renderPanel(t, h, "/account/tabs/activity/panel", customer)
	alert := doc.Find(`[role=alert]`)
	assert.Equal(t, loadError, alert.Text())
	sev, _ := alert.Attr("data-severity")
	assert.Equal(t, "error", sev)
}
