package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apierrors "ctedash/internal/errors"
	"ctedash/internal/feeds"
	"ctedash/internal/infrastructure"
	"ctedash/pkg/contracts/domain"
)

// CredentialSource supplies the access list. Satisfied by *feeds.Loader.
type CredentialSource interface {
	LoadCredentials(ctx context.Context) ([]feeds.Credential, error)
}

// AuthService checks logins against the access feed. Credentials live in a
// hand-maintained sheet and travel in clear text; this gates the dashboard,
// it is not a security boundary.
type AuthService struct {
	source  CredentialSource
	logger  *slog.Logger
	metrics *infrastructure.AppMetrics
}

// NewAuthService creates an auth service over the credential source.
func NewAuthService(source CredentialSource, logger *slog.Logger, metrics *infrastructure.AppMetrics) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		source:  source,
		logger:  logger.With(slog.String("component", "auth_service")),
		metrics: metrics,
	}
}

// Login validates the credentials. Usernames match case-insensitively,
// passwords exactly. The access feed is fetched per attempt so a revoked
// row takes effect immediately.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.User, error) {
	if s.metrics != nil {
		s.metrics.LoginAttempts.Add(ctx, 1)
	}

	creds, err := s.source.LoadCredentials(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "credential feed fetch failed", slog.String("error", err.Error()))
		return domain.User{}, fmt.Errorf("login: %w", err)
	}

	wanted := strings.ToLower(strings.TrimSpace(username))
	for _, c := range creds {
		if strings.ToLower(c.Username) != wanted {
			continue
		}
		if c.Password != password {
			break
		}
		s.logger.InfoContext(ctx, "login succeeded",
			slog.String("username", c.Username),
			slog.Bool("manager", c.Unit == ""))
		return domain.User{Username: c.Username, Unit: c.Unit}, nil
	}

	s.logger.WarnContext(ctx, "login rejected", slog.String("username", username))
	return domain.User{}, apierrors.ErrInvalidCredentials
}
