package history

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
	FetchHistory(ctx context.Context, userID int64) ([]models.HistoryEntry, error)
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
}

func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo}
}

func (s *ServiceImpl) FetchHistory(ctx context.Context, userID int64) ([]models.HistoryEntry, error) {
	ctx, span := otel.Tracer("HistoryService").Start(ctx, "FetchHistory", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	if userID == 0 {
		span.SetStatus(codes.Error, "user id required")
		return nil, fmt.Errorf("fetch history: %w", models.ErrUserIDRequired)
	}

	entries, err := s.repo.FetchHistory(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to fetch history", zap.String("method", "FetchHistory"), zap.Int64("userID", userID), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		metrics.FetchFailed(ctx, "history")
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	span.SetStatus(codes.Ok, "History fetched")
	return entries, nil
}
