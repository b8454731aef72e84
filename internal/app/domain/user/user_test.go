package user

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/domain"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/session"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/tabs"
)

const nonAdminSQL = "SELECT p.user_id, p.first_name, p.last_name, u.role FROM user_profile p JOIN users u ON u.user_id = p.user_id WHERE u.role <> $1 ORDER BY p.first_name"

func init() {
	gin.SetMode(gin.TestMode)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FetchNonAdminUsers(ctx context.Context) ([]models.UserSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserSummary), args.Error(1)
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) FetchAllUsers(ctx context.Context) ([]models.UserRef, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserRef), args.Error(1)
}

var (
	customers = []models.UserSummary{
		{UserID: 3, FirstName: "Casey", LastName: "Morgan", Role: models.RoleCustomer},
		{UserID: 2, FirstName: "Jordan", LastName: "Reyes", Role: models.RoleCustomer},
	}
	everyone = []models.UserRef{
		{ProfileID: 10, UserID: 1, Name: "Avery Stone", Role: models.RoleAdmin},
		{ProfileID: 11, UserID: 2, Name: "Jordan Reyes", Role: models.RoleCustomer},
		{ProfileID: 12, UserID: 3, Name: "Casey Morgan", Role: models.RoleCustomer},
	}
)

func TestRepositoryFetchNonAdminUsers(t *testing.T) {
	pool, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer pool.Close()

	pool.ExpectQuery(nonAdminSQL).WithArgs("admin").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "first_name", "last_name", "role"}).
			AddRow(int64(3), "Casey", "Morgan", "customer").
			AddRow(int64(2), "Jordan", "Reyes", "customer"))

	got, err := NewRepositoryImpl(pool, zap.NewNop()).FetchNonAdminUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, customers, got)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestServiceChoices(t *testing.T) {
	t.Run("customers first then admins", func(t *testing.T) {
		repo, dir := new(MockRepository), new(MockDirectory)
		repo.On("FetchNonAdminUsers", mock.Anything).Return(customers, nil).Once()
		dir.On("FetchAllUsers", mock.Anything).Return(everyone, nil).Once()

		got, err := NewService(repo, dir, zap.NewNop()).Choices(context.Background())
		require.NoError(t, err)
		labels := make([]string, len(got))
		for i, c := range got {
			labels[i] = c.Label
		}
		assert.Equal(t, []string{"Casey Morgan (Customer)", "Jordan Reyes (Customer)", "Avery Stone (Admin)"}, labels)
	})

	t.Run("either fetch failing fails the whole", func(t *testing.T) {
		repo, dir := new(MockRepository), new(MockDirectory)
		repo.On("FetchNonAdminUsers", mock.Anything).Return(customers, nil).Maybe()
		dir.On("FetchAllUsers", mock.Anything).Return(nil, errors.New("down")).Once()

		_, err := NewService(repo, dir, zap.NewNop()).Choices(context.Background())
		assert.ErrorContains(t, err, "fetch all users")
	})
}

func TestServiceLookup(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("FetchAllUsers", mock.Anything).Return(everyone, nil)
	svc := NewService(new(MockRepository), dir, zap.NewNop())

	sel, err := svc.Lookup(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.Selection{UserID: 1, Role: models.RoleAdmin}, sel)

	_, err = svc.Lookup(context.Background(), 77)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestServiceKeysOnUserIDNotProfileID(t *testing.T) {
	directory := []models.UserRef{
		{ProfileID: 1, UserID: 5, Name: "Casey Morgan", Role: models.RoleCustomer},
		{ProfileID: 2, UserID: 9, Name: "Avery Stone", Role: models.RoleAdmin},
	}
	repo, dir := new(MockRepository), new(MockDirectory)
	repo.On("FetchNonAdminUsers", mock.Anything).Return([]models.UserSummary{
		{UserID: 5, FirstName: "Casey", LastName: "Morgan", Role: models.RoleCustomer},
	}, nil)
	dir.On("FetchAllUsers", mock.Anything).Return(directory, nil)
	svc := NewService(repo, dir, zap.NewNop())

	sel, err := svc.Lookup(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, models.Selection{UserID: 5, Role: models.RoleCustomer}, sel)

	sel, err = svc.Lookup(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, models.Selection{UserID: 9, Role: models.RoleAdmin}, sel)

	_, err = svc.Lookup(context.Background(), 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.Lookup(context.Background(), 2)
	assert.ErrorIs(t, err, models.ErrNotFound)

	choices, err := svc.Choices(context.Background())
	require.NoError(t, err)
	require.Len(t, choices, 2)
	assert.Equal(t, Choice{UserID: 9, Label: "Avery Stone (Admin)", Role: models.RoleAdmin}, choices[1])
}

func setup(t *testing.T) (*gin.Engine, *session.Workspace) {
	t.Helper()
	repo, dir := new(MockRepository), new(MockDirectory)
	repo.On("FetchNonAdminUsers", mock.Anything).Return(customers, nil)
	dir.On("FetchAllUsers", mock.Anything).Return(everyone, nil)
	h := NewHandler(domain.NewBaseHandler(zap.NewNop()), NewService(repo, dir, zap.NewNop()))

	ws := session.NewWorkspace("ws", models.Selection{UserID: 3, Role: models.RoleCustomer}, tabs.NewComposer(nil), nil)
	t.Cleanup(ws.Close)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		session.WithWorkspace(c, ws)
		c.Next()
	})
	r.GET("/users/options", h.Options)
	r.POST("/users/select", h.Select)
	return r, ws
}

func TestHandlerOptions(t *testing.T) {
	r, _ := setup(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/options", nil))
	require.Equal(t, http.StatusOK, w.Code)

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Find(`select[name="user_id"] option`).Length())
	assert.Equal(t, "Casey Morgan (Customer)", doc.Find(`option[selected]`).Text())
	assert.Equal(t, "/users/select", doc.Find("form").AttrOr("hx-post", ""))
}

func TestHandlerSelect(t *testing.T) {
	post := func(r http.Handler, form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/users/select", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("HX-Request", "true")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("switches to admin and refreshes", func(t *testing.T) {
		r, ws := setup(t)
		w := post(r, url.Values{"user_id": {"1"}})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "true", w.Header().Get("HX-Refresh"))
		assert.Equal(t, models.Selection{UserID: 1, Role: models.RoleAdmin}, ws.Selection())
	})

	t.Run("unknown user leaves the selection alone", func(t *testing.T) {
		r, ws := setup(t)
		w := post(r, url.Values{"user_id": {"77"}})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, int64(3), ws.Selection().UserID)
	})

	t.Run("mismatched role is rejected", func(t *testing.T) {
		r, ws := setup(t)
		w := post(r, url.Values{"user_id": {"2"}, "role": {"admin"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, int64(3), ws.Selection().UserID)
	})

	t.Run("missing id", func(t *testing.T) {
		r, _ := setup(t)
		assert.Equal(t, http.StatusBadRequest, post(r, url.Values{}).Code)
	})
}
