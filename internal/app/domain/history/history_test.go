package history

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
)

const historySQL = "SELECT history_id, user_id, activity_type, COALESCE(activity_description, ''), activity_date, COALESCE(purchase_cost, 0)::float8 FROM history_log WHERE user_id = $1 ORDER BY activity_date DESC"

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FetchHistory(ctx context.Context, userID int64) ([]models.HistoryEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoryEntry), args.Error(1)
}

func TestRepositoryFetchHistory(t *testing.T) {
	pool, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer pool.Close()
	when := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	pool.ExpectQuery(historySQL).WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"history_id", "user_id", "activity_type", "activity_description", "activity_date", "purchase_cost"}).
			AddRow(int64(1), int64(3), "Purchase", "Compost", when, 24.99).
			AddRow(int64(2), int64(3), "Workshop", "Planting", when, 0.0))

	repo := NewRepositoryImpl(pool, zap.NewNop())
	got, err := repo.FetchHistory(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 24.99, got[0].PurchaseCost)
	assert.Equal(t, "Workshop", got[1].Type)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestServiceFetchHistory(t *testing.T) {
	t.Run("requires a user id", func(t *testing.T) {
		repo := new(MockRepository)
		_, err := NewService(repo, zap.NewNop()).FetchHistory(context.Background(), 0)
		assert.ErrorIs(t, err, models.ErrUserIDRequired)
		repo.AssertNotCalled(t, "FetchHistory", mock.Anything, mock.Anything)
	})

	t.Run("wraps repository errors", func(t *testing.T) {
		repo := new(MockRepository)
		repoErr := errors.New("timeout")
		repo.On("FetchHistory", mock.Anything, int64(3)).Return(nil, repoErr).Once()
		_, err := NewService(repo, zap.NewNop()).FetchHistory(context.Background(), 3)
		assert.ErrorIs(t, err, repoErr)
		assert.ErrorContains(t, err, "fetch history")
	})
}

func TestHandlerRender(t *testing.T) {
	svc := NewService(new(MockRepository), zap.NewNop())
	repo := svc.repo.(*MockRepository)
	repo.On("FetchHistory", mock.Anything, int64(3)).Return([]models.HistoryEntry{
		{HistoryID: 1, Type: "Refund", Description: "Hose reel", PurchaseCost: -19.95, Date: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)},
	}, nil).Once()
	repo.On("FetchHistory", mock.Anything, int64(3)).Return(nil, errors.New("down")).Once()

	h := NewHandler(svc, zap.NewNop())
	sel := models.Selection{UserID: 3}

	var buf bytes.Buffer
	require.NoError(t, h.Render(nil, sel).Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	cells := doc.Find("tbody td")
	assert.Equal(t, "-$19.95", cells.Eq(2).Text())
	assert.Equal(t, "Apr 2, 2024", cells.Eq(3).Text())

	buf.Reset()
	require.NoError(t, h.Render(nil, sel).Render(context.Background(), &buf))
	doc, err = goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, loadError, doc.Find("[role=alert]").Text())
}
