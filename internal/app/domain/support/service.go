package support

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
	FetchTickets(ctx context.Context, userID int64, isAdmin bool) ([]models.Ticket, error)
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
}

func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo}
}

// FetchTickets returns the tickets of userID, or every ticket for an admin.
// Tickets of users without a profile are named "User <id>".
func (s *ServiceImpl) FetchTickets(ctx context.Context, userID int64, isAdmin bool) ([]models.Ticket, error) {
	ctx, span := otel.Tracer("SupportService").Start(ctx, "FetchTickets", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Bool("user.admin", isAdmin),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "FetchTickets"), zap.Int64("userID", userID), zap.Bool("isAdmin", isAdmin))

	if !isAdmin && userID == 0 {
		span.SetStatus(codes.Error, "user id required")
		return nil, fmt.Errorf("fetch tickets: %w", models.ErrUserIDRequired)
	}

	tickets, err := s.repo.FetchTickets(ctx, userID, isAdmin)
	if err != nil {
		l.Error("Failed to fetch tickets", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		metrics.FetchFailed(ctx, "support")
		return nil, fmt.Errorf("fetch tickets: %w", err)
	}

	for i := range tickets {
		if tickets[i].UserName == "" {
			tickets[i].UserName = fmt.Sprintf("User %d", tickets[i].UserID)
		}
	}

	span.SetStatus(codes.Ok, "Tickets fetched")
	return tickets, nil
}
