package user

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
	FetchNonAdminUsers(ctx context.Context) ([]models.UserSummary, error)
}

type RepositoryImpl struct {
	logger *zap.Logger
	db     database.Querier
}

func NewRepositoryImpl(db database.Querier, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, db: db}
}

// FetchNonAdminUsers lists every profile whose user is not an admin,
// ordered by first name.
func (r *RepositoryImpl) FetchNonAdminUsers(ctx context.Context) ([]models.UserSummary, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "FetchNonAdminUsers", trace.WithAttributes(
		semconv.DBSystemNamePostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "user_profile"),
	))
	defer span.End()
	defer metrics.ObserveQuery(ctx, "user_profile", time.Now())

	query, args, err := psql.Select("p.user_id", "p.first_name", "p.last_name", "u.role").
		From("user_profile p").
		Join("users u ON u.user_id = p.user_id").
		Where(sq.NotEq{"u.role": string(models.RoleAdmin)}).
		OrderBy("p.first_name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building user query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query non-admin users", zap.String("method", "FetchNonAdminUsers"), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching users: %w", err)
	}
	defer rows.Close()

	users := []models.UserSummary{}
	for rows.Next() {
		var (
			u    models.UserSummary
			role string
		)
		if err := rows.Scan(&u.UserID, &u.FirstName, &u.LastName, &role); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning user: %w", err)
		}
		u.Role = models.ParseRole(role)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error reading users: %w", err)
	}

	span.SetAttributes(attribute.Int("users.count", len(users)))
	span.SetStatus(codes.Ok, "Users fetched")
	return users, nil
}
