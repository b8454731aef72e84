package history

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
	FetchHistory(ctx context.Context, userID int64) ([]models.HistoryEntry, error)
}

type RepositoryImpl struct {
	logger *zap.Logger
	db     database.Querier
}

func NewRepositoryImpl(db database.Querier, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, db: db}
}

// FetchHistory returns the purchase and interaction history of userID,
// newest first. A missing purchase cost reads as zero.
func (r *RepositoryImpl) FetchHistory(ctx context.Context, userID int64) ([]models.HistoryEntry, error) {
	ctx, span := otel.Tracer("HistoryRepo").Start(ctx, "FetchHistory", trace.WithAttributes(
		semconv.DBSystemNamePostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "history_log"),
		attribute.Int64("user.id", userID),
	))
	defer span.End()
	defer metrics.ObserveQuery(ctx, "history_log", time.Now())

	query, args, err := psql.Select(
		"history_id", "user_id", "activity_type",
		"COALESCE(activity_description, '')", "activity_date",
		"COALESCE(purchase_cost, 0)::float8",
	).From("history_log").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("activity_date DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building history query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query history", zap.String("method", "FetchHistory"), zap.Int64("userID", userID), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching history: %w", err)
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.HistoryID, &e.UserID, &e.Type, &e.Description, &e.Date, &e.PurchaseCost); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error reading history: %w", err)
	}

	span.SetStatus(codes.Ok, "History fetched")
	return entries, nil
}
