package activity

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/observability/metrics"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	FetchActivities(ctx context.Context, userID int64, isAdmin bool) ([]models.Activity, error)
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
}

func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

// FetchActivities returns the activity log of userID, or of everyone for an
// admin, each entry carrying the submitter's name. Entries whose user has no
// profile are named "User <id>".
func (s *ServiceImpl) FetchActivities(ctx context.Context, userID int64, isAdmin bool) ([]models.Activity, error) {
	ctx, span := otel.Tracer("ActivityService").Start(ctx, "FetchActivities", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Bool("user.admin", isAdmin),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "FetchActivities"), zap.Int64("userID", userID), zap.Bool("isAdmin", isAdmin))

	if !isAdmin && userID == 0 {
		span.SetStatus(codes.Error, "user id required")
		return nil, fmt.Errorf("fetch activities: %w", models.ErrUserIDRequired)
	}

	var (
		activities []models.Activity
		names      map[int64]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		activities, err = s.repo.FetchActivities(gctx, userID, isAdmin)
		return err
	})
	g.Go(func() error {
		var err error
		names, err = s.repo.FetchProfileNames(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		l.Error("Failed to fetch activities", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		metrics.FetchFailed(ctx, "activity")
		return nil, fmt.Errorf("fetch activities: %w", err)
	}

	for i := range activities {
		if name, ok := names[activities[i].UserID]; ok {
			activities[i].UserName = name
		} else {
			activities[i].UserName = fmt.Sprintf("User %d", activities[i].UserID)
		}
	}

	l.Debug("Activities fetched", zap.Int("count", len(activities)))
	span.SetStatus(codes.Ok, "Activities fetched")
	return activities, nil
}
