package profile

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/domain"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/session"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/tabs"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/validators"
)

const (
	profileSQL = "SELECT p.profile_id, p.user_id, p.first_name, p.last_name, p.email, COALESCE(p.contact_number, ''), COALESCE(p.address, ''), COALESCE(u.role, ''), p.created_at, p.updated_at, p.preferences FROM user_profile p LEFT JOIN users u ON u.user_id = p.user_id WHERE p.profile_id = $1"
	updateSQL  = "UPDATE user_profile SET first_name = $1, last_name = $2, email = $3, contact_number = $4, address = $5, updated_at = now() WHERE profile_id = $6"
	prefsSQL   = "UPDATE user_profile SET preferences = $1, updated_at = now() WHERE profile_id = $2"
	usersSQL   = "SELECT p.profile_id, p.user_id, p.first_name, p.last_name, COALESCE(u.role, '') FROM user_profile p LEFT JOIN users u ON u.user_id = p.user_id ORDER BY p.profile_id"
)

var profileCols = []string{"profile_id", "user_id", "first_name", "last_name", "email", "contact_number", "address", "role", "created_at", "updated_at", "preferences"}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validators.RegisterBindings(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type MockService struct {
	mock.Mock
}

func (m *MockService) FetchProfile(ctx context.Context, profileID int64) (models.Profile, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).(models.Profile), args.Error(1)
}

func (m *MockService) UpdateProfile(ctx context.Context, profileID int64, upd models.ProfileUpdate) error {
	return m.Called(ctx, profileID, upd).Error(0)
}

func (m *MockService) UpdatePreferences(ctx context.Context, profileID int64, prefs models.Preferences) error {
	return m.Called(ctx, profileID, prefs).Error(0)
}

func (m *MockService) FetchAllUsers(ctx context.Context) ([]models.UserRef, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserRef), args.Error(1)
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestRepositoryFetchProfile(t *testing.T) {
	created := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("merges stored preferences over defaults", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectQuery(profileSQL).WithArgs(int64(3)).
			WillReturnRows(pgxmock.NewRows(profileCols).
				AddRow(int64(3), int64(3), "Casey", "Morgan", "casey@example.com", "", "12 Elm St", "customer", created, created, []byte(`{"smsNotifications":true,"marketingEmails":false}`)))

		p, err := NewRepositoryImpl(pool, zap.NewNop()).FetchProfile(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, "Casey Morgan", p.FullName())
		assert.Equal(t, models.RoleCustomer, p.Role)
		assert.True(t, p.Preferences.SMSNotifications)
		assert.False(t, p.Preferences.MarketingEmails)
		assert.True(t, p.Preferences.EmailNotifications, "keys absent from storage keep their default")
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("missing row is not found", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectQuery(profileSQL).WithArgs(int64(99)).WillReturnError(pgx.ErrNoRows)

		_, err := NewRepositoryImpl(pool, zap.NewNop()).FetchProfile(context.Background(), 99)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestRepositoryUpdates(t *testing.T) {
	upd := models.ProfileUpdate{FirstName: "Casey", LastName: "Morgan", Email: "c@example.com", Phone: "555-123-4567", Address: "1 Oak"}

	t.Run("profile columns in order", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectExec(updateSQL).
			WithArgs("Casey", "Morgan", "c@example.com", "555-123-4567", "1 Oak", int64(3)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, NewRepositoryImpl(pool, zap.NewNop()).UpdateProfile(context.Background(), 3, upd))
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("no rows affected is not found", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectExec(updateSQL).
			WithArgs("Casey", "Morgan", "c@example.com", "555-123-4567", "1 Oak", int64(42)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := NewRepositoryImpl(pool, zap.NewNop()).UpdateProfile(context.Background(), 42, upd)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("preferences as json", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectExec(prefsSQL).
			WithArgs(pgxmock.AnyArg(), int64(3)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, NewRepositoryImpl(pool, zap.NewNop()).UpdatePreferences(context.Background(), 3, models.DefaultPreferences()))
		assert.NoError(t, pool.ExpectationsWereMet())
	})
}

func TestRepositoryFetchAllUsers(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery(usersSQL).
		WillReturnRows(pgxmock.NewRows([]string{"profile_id", "user_id", "first_name", "last_name", "role"}).
			AddRow(int64(1), int64(5), "Avery", "Stone", "admin").
			AddRow(int64(2), int64(9), "Jordan", "Reyes", "customer"))

	users, err := NewRepositoryImpl(pool, zap.NewNop()).FetchAllUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.UserRef{
		{ProfileID: 1, UserID: 5, Name: "Avery Stone", Role: models.RoleAdmin},
		{ProfileID: 2, UserID: 9, Name: "Jordan Reyes", Role: models.RoleCustomer},
	}, users)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FetchProfile(ctx context.Context, profileID int64) (models.Profile, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).(models.Profile), args.Error(1)
}

func (m *MockRepository) UpdateProfile(ctx context.Context, profileID int64, upd models.ProfileUpdate) error {
	return m.Called(ctx, profileID, upd).Error(0)
}

func (m *MockRepository) UpdatePreferences(ctx context.Context, profileID int64, prefs models.Preferences) error {
	return m.Called(ctx, profileID, prefs).Error(0)
}

func (m *MockRepository) FetchAllUsers(ctx context.Context) ([]models.UserRef, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.UserRef), args.Error(1)
}

func TestServiceUpdateProfile(t *testing.T) {
	valid := models.ProfileUpdate{FirstName: "A", LastName: "B", Email: "a@b.com"}

	tests := []struct {
		name    string
		id      int64
		upd     models.ProfileUpdate
		wantErr error
	}{
		{name: "zero id", id: 0, upd: valid, wantErr: models.ErrUserIDRequired},
		{name: "bad email", id: 3, upd: models.ProfileUpdate{Email: "not-an-email"}, wantErr: models.ErrValidation},
		{name: "short phone", id: 3, upd: models.ProfileUpdate{Email: "a@b.com", Phone: "123"}, wantErr: models.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			err := NewService(repo, zap.NewNop()).UpdateProfile(context.Background(), tt.id, tt.upd)
			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("valid update reaches the repository", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("UpdateProfile", mock.Anything, int64(3), valid).Return(nil).Once()
		require.NoError(t, NewService(repo, zap.NewNop()).UpdateProfile(context.Background(), 3, valid))
		repo.AssertExpectations(t)
	})
}

func TestServiceFetchProfileWrapsErrors(t *testing.T) {
	repo := new(MockRepository)
	repoErr := errors.New("conn reset")
	repo.On("FetchProfile", mock.Anything, int64(3)).Return(models.Profile{}, repoErr).Once()

	_, err := NewService(repo, zap.NewNop()).FetchProfile(context.Background(), 3)
	assert.ErrorIs(t, err, repoErr)
	assert.ErrorContains(t, err, "fetch profile")
}

func newRouter(h *Handler, ws *session.Workspace) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		session.WithWorkspace(c, ws)
		c.Next()
	})
	r.POST("/account/profile", h.UpdateProfile)
	r.POST("/account/preferences", h.UpdatePreferences)
	return r
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlerUpdateProfile(t *testing.T) {
	sel := models.Selection{UserID: 3, Role: models.RoleCustomer}
	ws := session.NewWorkspace("ws", sel, tabs.NewComposer(nil), nil)
	t.Cleanup(ws.Close)

	t.Run("invalid fields are annotated and nothing is saved", func(t *testing.T) {
		svc := new(MockService)
		r := newRouter(NewHandler(domain.NewBaseHandler(zap.NewNop()), svc), ws)

		w := postForm(r, "/account/profile", url.Values{
			"firstname": {"Casey"}, "lastname": {"Morgan"}, "email": {"nope"}, "phone": {"123"},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		doc, err := goquery.NewDocumentFromReader(w.Body)
		require.NoError(t, err)
		assert.Equal(t, 1, doc.Find(`#profile-form`).Length())
		assert.Equal(t, "Enter a valid email address", doc.Find(`.field-error[data-field="email"]`).Text())
		assert.Contains(t, doc.Find(`.field-error[data-field="phone"]`).Text(), "at least 10 digits")
		assert.Equal(t, "true", doc.Find(`input[name="email"]`).AttrOr("aria-invalid", ""))
		svc.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("valid form saves and confirms", func(t *testing.T) {
		svc := new(MockService)
		want := models.ProfileUpdate{FirstName: "Casey", LastName: "Morgan", Email: "casey@example.com", Phone: "(555) 123-4567"}
		svc.On("UpdateProfile", mock.Anything, int64(3), want).Return(nil).Once()
		r := newRouter(NewHandler(domain.NewBaseHandler(zap.NewNop()), svc), ws)

		w := postForm(r, "/account/profile", url.Values{
			"firstname": {" Casey "}, "lastname": {"Morgan"}, "email": {"casey@example.com"}, "phone": {"(555) 123-4567"},
		})
		assert.Equal(t, http.StatusOK, w.Code)

		doc, err := goquery.NewDocumentFromReader(w.Body)
		require.NoError(t, err)
		assert.Equal(t, "Profile updated successfully!", doc.Find(`[role="alert"][data-severity="success"]`).Text())
		assert.Equal(t, "Casey", doc.Find(`input[name="firstname"]`).AttrOr("value", ""))
		svc.AssertExpectations(t)
	})
}

func TestHandlerUpdatePreferences(t *testing.T) {
	ws := session.NewWorkspace("ws", models.Selection{UserID: 3}, tabs.NewComposer(nil), nil)
	t.Cleanup(ws.Close)

	svc := new(MockService)
	svc.On("UpdatePreferences", mock.Anything, int64(3), models.Preferences{SMSNotifications: true, EventReminders: true}).Return(nil).Once()
	r := newRouter(NewHandler(domain.NewBaseHandler(zap.NewNop()), svc), ws)

	w := postForm(r, "/account/preferences", url.Values{"smsNotifications": {"true"}, "eventReminders": {"true"}})
	assert.Equal(t, http.StatusOK, w.Code)

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, "Preferences updated successfully!", doc.Find(`[role="alert"]`).Text())
	assert.Equal(t, 2, doc.Find(`input[type="checkbox"][checked]`).Length())
	svc.AssertExpectations(t)
}

func TestHandlerRender(t *testing.T) {
	svc := new(MockService)
	svc.On("FetchProfile", mock.Anything, int64(3)).Return(models.Profile{
		ProfileID: 3, FirstName: "casey", LastName: "morgan", Email: "casey@example.com",
		Role: models.RoleCustomer, DateCreated: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		Preferences: models.DefaultPreferences(),
	}, nil).Once()
	svc.On("FetchProfile", mock.Anything, int64(4)).Return(models.Profile{}, errors.New("down")).Once()
	h := NewHandler(domain.NewBaseHandler(zap.NewNop()), svc)

	var buf strings.Builder
	require.NoError(t, h.Render(nil, models.Selection{UserID: 3}).Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, "CM", doc.Find(".avatar").Text())
	assert.Equal(t, "Member since Jan 15, 2023", doc.Find(".member-since").Text())
	assert.Contains(t, doc.Find("legend").Text(), "Notification Methods")
	assert.Contains(t, doc.Find("legend").Text(), "Communication Preferences")
	assert.Equal(t, 4, doc.Find(`#preferences-form input[type="checkbox"][checked]`).Length())

	buf.Reset()
	require.NoError(t, h.Render(nil, models.Selection{UserID: 4}).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), loadError)
}
