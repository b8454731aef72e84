package rewards

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/observability/metrics"
	database "github.com/FACorreiaa/greengrove-accounts/internal/db"
)

var _ Repository = (*RepositoryImpl)(nil)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Repository interface {
	FetchRewards(ctx context.Context, userID int64) ([]models.RewardEntry, error)
}

type RepositoryImpl struct {
	logger *zap.Logger
	db     database.Querier
}

func NewRepositoryImpl(db database.Querier, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, db: db}
}

func (r *RepositoryImpl) FetchRewards(ctx context.Context, userID int64) ([]models.RewardEntry, error) {
	ctx, span := otel.Tracer("RewardsRepo").Start(ctx, "FetchRewards", trace.WithAttributes(
		semconv.DBSystemNamePostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "rewards"),
		attribute.Int64("user.id", userID),
	))
	defer span.End()
	defer metrics.ObserveQuery(ctx, "rewards", time.Now())

	query, args, err := psql.Select(
		"reward_id", "user_id", "COALESCE(reward_description, '')",
		"COALESCE(points_earned, 0)", "COALESCE(points_redeemed, 0)", "created_at",
	).From("rewards").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building rewards query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query rewards", zap.String("method", "FetchRewards"), zap.Int64("userID", userID), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching rewards: %w", err)
	}
	defer rows.Close()

	entries := []models.RewardEntry{}
	for rows.Next() {
		var e models.RewardEntry
		if err := rows.Scan(&e.RewardID, &e.UserID, &e.Description, &e.PointsEarned, &e.PointsRedeemed, &e.CreatedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning reward: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error reading rewards: %w", err)
	}

	span.SetStatus(codes.Ok, "Rewards fetched")
	return entries, nil
}
