package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
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
	FetchProfile(ctx context.Context, profileID int64) (models.Profile, error)
	UpdateProfile(ctx context.Context, profileID int64, upd models.ProfileUpdate) error
	UpdatePreferences(ctx context.Context, profileID int64, prefs models.Preferences) error
	FetchAllUsers(ctx context.Context) ([]models.UserRef, error)
}

type RepositoryImpl struct {
	logger *zap.Logger
	db     database.Querier
}

func NewRepositoryImpl(db database.Querier, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, db: db}
}

func startSpan(ctx context.Context, name, op string, profileID int64) (context.Context, trace.Span) {
	return otel.Tracer("ProfileRepo").Start(ctx, name, trace.WithAttributes(
		semconv.DBSystemNamePostgreSQL,
		attribute.String("db.operation", op),
		attribute.String("db.sql.table", "user_profile"),
		attribute.Int64("profile.id", profileID),
	))
}

// FetchProfile loads one profile with the role of its user. Stored
// preferences are laid over the defaults, so missing keys keep their
// default value.
func (r *RepositoryImpl) FetchProfile(ctx context.Context, profileID int64) (models.Profile, error) {
	ctx, span := startSpan(ctx, "FetchProfile", "SELECT", profileID)
	defer span.End()
	defer metrics.ObserveQuery(ctx, "user_profile", time.Now())

	l := r.logger.With(zap.String("method", "FetchProfile"), zap.Int64("profileID", profileID))

	query, args, err := psql.Select(
		"p.profile_id", "p.user_id", "p.first_name", "p.last_name", "p.email",
		"COALESCE(p.contact_number, '')", "COALESCE(p.address, '')", "COALESCE(u.role, '')",
		"p.created_at", "p.updated_at", "p.preferences",
	).From("user_profile p").
		LeftJoin("users u ON u.user_id = p.user_id").
		Where(sq.Eq{"p.profile_id": profileID}).
		ToSql()
	if err != nil {
		return models.Profile{}, fmt.Errorf("building profile query: %w", err)
	}

	var (
		p        models.Profile
		role     string
		rawPrefs []byte
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&p.ProfileID, &p.UserID, &p.FirstName, &p.LastName, &p.Email,
		&p.Phone, &p.Address, &role, &p.DateCreated, &p.DateUpdated, &rawPrefs,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		l.Warn("Profile not found")
		span.SetStatus(codes.Error, "not found")
		return models.Profile{}, fmt.Errorf("profile %d: %w", profileID, models.ErrNotFound)
	}
	if err != nil {
		l.Error("Failed to query profile", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return models.Profile{}, fmt.Errorf("database error fetching profile: %w", err)
	}

	p.Role = models.ParseRole(role)
	p.Preferences = models.DefaultPreferences()
	if len(rawPrefs) > 0 {
		if err := json.Unmarshal(rawPrefs, &p.Preferences); err != nil {
			l.Warn("Stored preferences are not valid JSON, using defaults", zap.Error(err))
			p.Preferences = models.DefaultPreferences()
		}
	}

	span.SetStatus(codes.Ok, "Profile fetched")
	return p, nil
}

func (r *RepositoryImpl) UpdateProfile(ctx context.Context, profileID int64, upd models.ProfileUpdate) error {
	ctx, span := startSpan(ctx, "UpdateProfile", "UPDATE", profileID)
	defer span.End()
	defer metrics.ObserveQuery(ctx, "user_profile", time.Now())

	query, args, err := psql.Update("user_profile").
		Set("first_name", upd.FirstName).
		Set("last_name", upd.LastName).
		Set("email", upd.Email).
		Set("contact_number", upd.Phone).
		Set("address", upd.Address).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"profile_id": profileID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building profile update: %w", err)
	}
	return r.execOne(ctx, span, "UpdateProfile", profileID, query, args)
}

func (r *RepositoryImpl) UpdatePreferences(ctx context.Context, profileID int64, prefs models.Preferences) error {
	ctx, span := startSpan(ctx, "UpdatePreferences", "UPDATE", profileID)
	defer span.End()
	defer metrics.ObserveQuery(ctx, "user_profile", time.Now())

	doc, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	query, args, err := psql.Update("user_profile").
		Set("preferences", string(doc)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"profile_id": profileID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building preferences update: %w", err)
	}
	return r.execOne(ctx, span, "UpdatePreferences", profileID, query, args)
}

func (r *RepositoryImpl) execOne(ctx context.Context, span trace.Span, method string, profileID int64, query string, args []any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update profile", zap.String("method", method), zap.Int64("profileID", profileID), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error updating profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return fmt.Errorf("profile %d: %w", profileID, models.ErrNotFound)
	}
	span.SetStatus(codes.Ok, "Profile updated")
	return nil
}

func (r *RepositoryImpl) FetchAllUsers(ctx context.Context) ([]models.UserRef, error) {
	ctx, span := startSpan(ctx, "FetchAllUsers", "SELECT", 0)
	defer span.End()
	defer metrics.ObserveQuery(ctx, "user_profile", time.Now())

	query, args, err := psql.Select("p.profile_id", "p.user_id", "p.first_name", "p.last_name", "COALESCE(u.role, '')").
		From("user_profile p").
		LeftJoin("users u ON u.user_id = p.user_id").
		OrderBy("p.profile_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building user list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query users", zap.String("method", "FetchAllUsers"), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching users: %w", err)
	}
	defer rows.Close()

	users := []models.UserRef{}
	for rows.Next() {
		var (
			u           models.UserRef
			first, last string
			role        string
		)
		if err := rows.Scan(&u.ProfileID, &u.UserID, &first, &last, &role); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning user: %w", err)
		}
		u.Name = models.UserSummary{FirstName: first, LastName: last}.Name()
		u.Role = models.ParseRole(role)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error reading users: %w", err)
	}

	span.SetStatus(codes.Ok, "Users fetched")
	return users, nil
}
