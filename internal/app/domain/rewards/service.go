package rewards

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/observability/metrics"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	FetchRewards(ctx context.Context, userID int64) (models.RewardsSummary, error)
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
}

func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo}
}

// FetchRewards returns the reward history of userID with its totals.
func (s *ServiceImpl) FetchRewards(ctx context.Context, userID int64) (models.RewardsSummary, error) {
	ctx, span := otel.Tracer("RewardsService").Start(ctx, "FetchRewards", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	if userID == 0 {
		span.SetStatus(codes.Error, "user id required")
		return models.RewardsSummary{}, fmt.Errorf("fetch rewards: %w", models.ErrUserIDRequired)
	}

	entries, err := s.repo.FetchRewards(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to fetch rewards", zap.String("method", "FetchRewards"), zap.Int64("userID", userID), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		metrics.FetchFailed(ctx, "rewards")
		return models.RewardsSummary{}, fmt.Errorf("fetch rewards: %w", err)
	}

	summary := Summarize(entries)
	span.SetAttributes(attribute.Int64("rewards.total", summary.TotalPoints))
	span.SetStatus(codes.Ok, "Rewards fetched")
	return summary, nil
}

// Summarize totals the earned and redeemed points of entries.
func Summarize(entries []models.RewardEntry) models.RewardsSummary {
	s := models.RewardsSummary{History: entries}
	for _, e := range entries {
		s.TotalPointsEarned += e.PointsEarned
		s.TotalPointsRedeemed += e.PointsRedeemed
	}
	s.TotalPoints = s.TotalPointsEarned - s.TotalPointsRedeemed
	return s
}
