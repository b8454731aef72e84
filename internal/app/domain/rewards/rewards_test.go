package rewards

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

const rewardsSQL = "SELECT reward_id, user_id, COALESCE(reward_description, ''), COALESCE(points_earned, 0), COALESCE(points_redeemed, 0), created_at FROM rewards WHERE user_id = $1 ORDER BY created_at DESC"

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FetchRewards(ctx context.Context, userID int64) ([]models.RewardEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RewardEntry), args.Error(1)
}

var sample = []models.RewardEntry{
	{RewardID: 4, Description: "Purchase points", PointsEarned: 85},
	{RewardID: 3, Description: "Voucher", PointsRedeemed: 200},
	{RewardID: 2, Description: "Workshop", PointsEarned: 150},
	{RewardID: 1, Description: "Welcome bonus", PointsEarned: 500},
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample)
	assert.Equal(t, int64(735), s.TotalPointsEarned)
	assert.Equal(t, int64(200), s.TotalPointsRedeemed)
	assert.Equal(t, s.TotalPointsEarned-s.TotalPointsRedeemed, s.TotalPoints)
	assert.InDelta(t, 53.5, s.TierProgress(), 0.001)

	empty := Summarize(nil)
	assert.Zero(t, empty.TotalPoints)
	assert.Zero(t, empty.TierProgress())
}

func TestRepositoryFetchRewards(t *testing.T) {
	pool, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer pool.Close()
	when := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	pool.ExpectQuery(rewardsSQL).WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"reward_id", "user_id", "reward_description", "points_earned", "points_redeemed", "created_at"}).
			AddRow(int64(1), int64(3), "Welcome bonus", int64(500), int64(0), when))

	got, err := NewRepositoryImpl(pool, zap.NewNop()).FetchRewards(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(500), got[0].PointsEarned)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestServiceFetchRewards(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, zap.NewNop())

	_, err := svc.FetchRewards(context.Background(), 0)
	assert.ErrorIs(t, err, models.ErrUserIDRequired)

	repo.On("FetchRewards", mock.Anything, int64(3)).Return(sample, nil).Once()
	s, err := svc.FetchRewards(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(535), s.TotalPoints)
	assert.Len(t, s.History, 4)

	repo.On("FetchRewards", mock.Anything, int64(3)).Return(nil, errors.New("down")).Once()
	_, err = svc.FetchRewards(context.Background(), 3)
	assert.ErrorContains(t, err, "fetch rewards")
}

type stubService struct {
	summary models.RewardsSummary
	err     error
}

func (s stubService) FetchRewards(context.Context, int64) (models.RewardsSummary, error) {
	return s.summary, s.err
}

func renderDoc(t *testing.T, h *Handler) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, h.Render(nil, models.Selection{UserID: 3}).Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestHandlerRender(t *testing.T) {
	doc := renderDoc(t, NewHandler(stubService{summary: Summarize(sample)}, zap.NewNop()))

	assert.Equal(t, "Available Points: 535", doc.Find(".available").Text())
	assert.Equal(t, "Progress to next tier: 535/1000 points", doc.Find(".tier").Text())
	now, _ := doc.Find("[role=progressbar]").Attr("aria-valuenow")
	assert.Equal(t, "54", now)

	rows := doc.Find("tbody tr")
	require.Equal(t, 4, rows.Length())
	assert.Equal(t, "+85", rows.Eq(0).Find("td").Eq(1).Text())
	assert.Equal(t, "-200", rows.Eq(1).Find("td").Eq(1).Text())
	assert.Equal(t, "Redeemed", rows.Eq(1).Find(".chip").Text())
}

func TestHandlerRender_CapsProgress(t *testing.T) {
	big := Summarize([]models.RewardEntry{{PointsEarned: 2500}})
	doc := renderDoc(t, NewHandler(stubService{summary: big}, zap.NewNop()))
	now, _ := doc.Find("[role=progressbar]").Attr("aria-valuenow")
	assert.Equal(t, "100", now)
}

func TestHandlerRender_Error(t *testing.T) {
	doc := renderDoc(t, NewHandler(stubService{err: errors.New("down")}, zap.NewNop()))
	assert.Equal(t, loadError, doc.Find("[role=alert]").Text())
	assert.Equal(t, 0, doc.Find("table").Length())
}
