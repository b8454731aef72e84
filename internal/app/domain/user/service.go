package user

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/observability/metrics"
)

var _ Service = (*ServiceImpl)(nil)

// Directory lists every user regardless of role.
type Directory interface {
	FetchAllUsers(ctx context.Context) ([]models.UserRef, error)
}

// Choice is one entry of the user selector.
type Choice struct {
	UserID int64
	Label  string
	Role   models.Role
}

type Service interface {
	FetchNonAdminUsers(ctx context.Context) ([]models.UserSummary, error)
	Choices(ctx context.Context) ([]Choice, error)
	Lookup(ctx context.Context, userID int64) (models.Selection, error)
}

type ServiceImpl struct {
	logger    *zap.Logger
	repo      Repository
	directory Directory
}

func NewService(repo Repository, directory Directory, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo, directory: directory}
}

func (s *ServiceImpl) FetchNonAdminUsers(ctx context.Context) ([]models.UserSummary, error) {
	users, err := s.repo.FetchNonAdminUsers(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch non-admin users", zap.String("method", "FetchNonAdminUsers"), zap.Error(err))
		metrics.FetchFailed(ctx, "users")
		return nil, fmt.Errorf("fetch non-admin users: %w", err)
	}
	return users, nil
}

// Choices builds the selector entries: non-admin users by first name, then
// the admin accounts.
func (s *ServiceImpl) Choices(ctx context.Context) ([]Choice, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "Choices")
	defer span.End()

	var (
		customers []models.UserSummary
		everyone  []models.UserRef
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customers, err = s.FetchNonAdminUsers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		everyone, err = s.directory.FetchAllUsers(gctx)
		if err != nil {
			return fmt.Errorf("fetch all users: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}

	title := cases.Title(language.English)
	out := make([]Choice, 0, len(everyone))
	for _, u := range customers {
		out = append(out, Choice{
			UserID: u.UserID,
			Label:  fmt.Sprintf("%s (%s)", u.Name(), title.String(u.Role.String())),
			Role:   u.Role,
		})
	}
	for _, u := range everyone {
		if !u.Role.IsAdmin() {
			continue
		}
		out = append(out, Choice{
			UserID: u.UserID,
			Label:  fmt.Sprintf("%s (%s)", u.Name, title.String(u.Role.String())),
			Role:   u.Role,
		})
	}
	span.SetStatus(codes.Ok, "Choices built")
	return out, nil
}

// Lookup resolves a user id to the selection it stands for.
func (s *ServiceImpl) Lookup(ctx context.Context, userID int64) (models.Selection, error) {
	users, err := s.directory.FetchAllUsers(ctx)
	if err != nil {
		metrics.FetchFailed(ctx, "users")
		return models.Selection{}, fmt.Errorf("lookup user %d: %w", userID, err)
	}
	for _, u := range users {
		if u.UserID == userID {
			return models.Selection{UserID: u.UserID, Role: u.Role}, nil
		}
	}
	return models.Selection{}, fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
}
