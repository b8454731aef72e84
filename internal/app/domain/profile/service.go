package profile

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
	"github.com/FACorreiaa/greengrove-accounts/internal/app/validators"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	FetchProfile(ctx context.Context, profileID int64) (models.Profile, error)
	UpdateProfile(ctx context.Context, profileID int64, upd models.ProfileUpdate) error
	UpdatePreferences(ctx context.Context, profileID int64, prefs models.Preferences) error
	FetchAllUsers(ctx context.Context) ([]models.UserRef, error)
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
}

func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo}
}

func (s *ServiceImpl) FetchProfile(ctx context.Context, profileID int64) (models.Profile, error) {
	ctx, span := otel.Tracer("ProfileService").Start(ctx, "FetchProfile", trace.WithAttributes(
		attribute.Int64("profile.id", profileID),
	))
	defer span.End()

	if profileID == 0 {
		return models.Profile{}, fmt.Errorf("fetch profile: %w", models.ErrUserIDRequired)
	}

	p, err := s.repo.FetchProfile(ctx, profileID)
	if err != nil {
		s.logger.Error("Failed to fetch profile", zap.String("method", "FetchProfile"), zap.Int64("profileID", profileID), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		metrics.FetchFailed(ctx, "profile")
		return models.Profile{}, fmt.Errorf("fetch profile: %w", err)
	}
	span.SetStatus(codes.Ok, "Profile fetched")
	return p, nil
}

// UpdateProfile checks the email and phone shape before writing anything.
func (s *ServiceImpl) UpdateProfile(ctx context.Context, profileID int64, upd models.ProfileUpdate) error {
	ctx, span := otel.Tracer("ProfileService").Start(ctx, "UpdateProfile", trace.WithAttributes(
		attribute.Int64("profile.id", profileID),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "UpdateProfile"), zap.Int64("profileID", profileID))

	if profileID == 0 {
		return fmt.Errorf("update profile: %w", models.ErrUserIDRequired)
	}
	if !validators.ValidateEmail(upd.Email) {
		span.SetStatus(codes.Error, "invalid email")
		return fmt.Errorf("update profile: email: %w", models.ErrValidation)
	}
	if !validators.ValidatePhone(upd.Phone) {
		span.SetStatus(codes.Error, "invalid phone")
		return fmt.Errorf("update profile: phone: %w", models.ErrValidation)
	}

	if err := s.repo.UpdateProfile(ctx, profileID, upd); err != nil {
		l.Error("Failed to update profile", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		metrics.FetchFailed(ctx, "profile")
		return fmt.Errorf("update profile: %w", err)
	}

	l.Info("Profile updated")
	span.SetStatus(codes.Ok, "Profile updated")
	return nil
}

func (s *ServiceImpl) UpdatePreferences(ctx context.Context, profileID int64, prefs models.Preferences) error {
	ctx, span := otel.Tracer("ProfileService").Start(ctx, "UpdatePreferences", trace.WithAttributes(
		attribute.Int64("profile.id", profileID),
	))
	defer span.End()

	if profileID == 0 {
		return fmt.Errorf("update preferences: %w", models.ErrUserIDRequired)
	}
	if err := s.repo.UpdatePreferences(ctx, profileID, prefs); err != nil {
		s.logger.Error("Failed to update preferences", zap.String("method", "UpdatePreferences"), zap.Int64("profileID", profileID), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		metrics.FetchFailed(ctx, "profile")
		return fmt.Errorf("update preferences: %w", err)
	}
	span.SetStatus(codes.Ok, "Preferences updated")
	return nil
}

func (s *ServiceImpl) FetchAllUsers(ctx context.Context) ([]models.UserRef, error) {
	ctx, span := otel.Tracer("ProfileService").Start(ctx, "FetchAllUsers")
	defer span.End()

	users, err := s.repo.FetchAllUsers(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch users", zap.String("method", "FetchAllUsers"), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		metrics.FetchFailed(ctx, "profile")
		return nil, fmt.Errorf("fetch all users: %w", err)
	}
	span.SetStatus(codes.Ok, "Users fetched")
	return users, nil
}
