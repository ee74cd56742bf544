// Package auth implements account registration and sign-in, issuing JWT
// bearer tokens for the REST API.
package auth

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/leblango/leblango-backend/internal/auth"
	"github.com/leblango/leblango-backend/internal/config"
	"github.com/leblango/leblango-backend/internal/domain"
)

type userRepo interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type jwtManager interface {
	GenerateAccessToken(id auth.Identity) (string, error)
	ValidateAccessToken(token string) (auth.Identity, error)
}

// Service provides authentication operations.
type Service struct {
	users userRepo
	jwt   jwtManager
	cfg   config.AuthConfig
	log   *slog.Logger
}

// NewService creates a new auth service.
func NewService(log *slog.Logger, users userRepo, jwt jwtManager, cfg config.AuthConfig) *Service {
	return &Service{
		users: users,
		jwt:   jwt,
		cfg:   cfg,
		log:   log.With("service", "auth"),
	}
}

// AuthResult is the outcome of a successful sign-up or sign-in.
type AuthResult struct {
	Token string
	User  *domain.User
}
