package support

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
	// FetchTickets returns tickets newest first, for userID only unless all
	// is set. UserName is empty when the submitter has no profile.
	FetchTickets(ctx context.Context, userID int64, all bool) ([]models.Ticket, error)
}

type RepositoryImpl struct {
	logger *zap.Logger
	db     database.Querier
}

func NewRepositoryImpl(db database.Querier, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, db: db}
}

func (r *RepositoryImpl) FetchTickets(ctx context.Context, userID int64, all bool) ([]models.Ticket, error) {
	ctx, span := otel.Tracer("SupportRepo").Start(ctx, "FetchTickets", trace.WithAttributes(
		semconv.DBSystemNamePostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "support_tickets"),
		attribute.Int64("user.id", userID),
		attribute.Bool("all", all),
	))
	defer span.End()
	defer metrics.ObserveQuery(ctx, "support_tickets", time.Now())

	l := r.logger.With(zap.String("method", "FetchTickets"), zap.Int64("userID", userID))

	q := psql.Select(
		"t.ticket_id", "t.user_id", "t.subject", "t.status", "t.priority", "t.created_at",
		"COALESCE(p.first_name, '')", "COALESCE(p.last_name, '')",
	).From("support_tickets t").
		LeftJoin("user_profile p ON p.user_id = t.user_id").
		OrderBy("t.created_at DESC")
	if !all {
		q = q.Where(sq.Eq{"t.user_id": userID})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building ticket query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		l.Error("Failed to query tickets", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching tickets: %w", err)
	}
	defer rows.Close()

	tickets := []models.Ticket{}
	for rows.Next() {
		var (
			t           models.Ticket
			first, last string
		)
		if err := rows.Scan(&t.TicketID, &t.UserID, &t.Subject, &t.Status, &t.Priority, &t.CreatedAt, &first, &last); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning ticket: %w", err)
		}
		t.UserName = models.UserSummary{FirstName: first, LastName: last}.Name()
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error reading tickets: %w", err)
	}

	l.Debug("Fetched tickets", zap.Int("count", len(tickets)))
	span.SetStatus(codes.Ok, "Tickets fetched")
	return tickets, nil
}
