package activity

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
	// FetchActivities returns the activity log newest first, for userID
	// only unless all is set.
	FetchActivities(ctx context.Context, userID int64, all bool) ([]models.Activity, error)
	// FetchProfileNames maps user ids to "First Last".
	FetchProfileNames(ctx context.Context) (map[int64]string, error)
}

type RepositoryImpl struct {
	logger *zap.Logger
	db     database.Querier
}

func NewRepositoryImpl(db database.Querier, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		db:     db,
	}
}

func (r *RepositoryImpl) FetchActivities(ctx context.Context, userID int64, all bool) ([]models.Activity, error) {
	ctx, span := otel.Tracer("ActivityRepo").Start(ctx, "FetchActivities", trace.WithAttributes(
		semconv.DBSystemNamePostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "activity_log"),
		attribute.Int64("user.id", userID),
		attribute.Bool("all", all),
	))
	defer span.End()
	defer metrics.ObserveQuery(ctx, "activity_log", time.Now())

	l := r.logger.With(zap.String("method", "FetchActivities"), zap.Int64("userID", userID))

	q := psql.Select(
		"activity_id", "user_id", "activity_type",
		"COALESCE(activity_description, '')", "activity_date",
	).From("activity_log").OrderBy("activity_date DESC")
	if !all {
		q = q.Where(sq.Eq{"user_id": userID})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building activity query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		l.Error("Failed to query activities", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching activities: %w", err)
	}
	defer rows.Close()

	activities := []models.Activity{}
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ActivityID, &a.UserID, &a.Type, &a.Description, &a.Date); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error reading activities: %w", err)
	}

	l.Debug("Fetched activities", zap.Int("count", len(activities)))
	span.SetStatus(codes.Ok, "Activities fetched")
	return activities, nil
}

func (r *RepositoryImpl) FetchProfileNames(ctx context.Context) (map[int64]string, error) {
	ctx, span := otel.Tracer("ActivityRepo").Start(ctx, "FetchProfileNames", trace.WithAttributes(
		semconv.DBSystemNamePostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "user_profile"),
	))
	defer span.End()
	defer metrics.ObserveQuery(ctx, "user_profile", time.Now())

	query, args, err := psql.Select("user_id", "first_name", "last_name").From("user_profile").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building profile name query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query profile names", zap.String("method", "FetchProfileNames"), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching profile names: %w", err)
	}
	defer rows.Close()

	names := make(map[int64]string)
	for rows.Next() {
		var (
			userID      int64
			first, last string
		)
		if err := rows.Scan(&userID, &first, &last); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning profile name: %w", err)
		}
		names[userID] = models.UserSummary{FirstName: first, LastName: last}.Name()
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error reading profile names: %w", err)
	}

	span.SetStatus(codes.Ok, "Profile names fetched")
	return names, nil
}
