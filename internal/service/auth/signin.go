package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/leblango/leblango-backend/internal/auth"
	"github.com/leblango/leblango-backend/internal/domain"
	"github.com/leblango/leblango-backend/pkg/ctxutil"
)

// SignInInput holds account credentials.
type SignInInput struct {
	Username string
	Password string
}

// SignIn verifies the credentials and returns a signed access token. Wrong
// username and wrong password are indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, in SignInInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}

	user, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}

	token, err := s.jwt.GenerateAccessToken(auth.Identity{
		UserID:  user.ID,
		Role:    user.Role.String(),
		IsStaff: user.IsStaff,
	})
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.log.Info("user signed in", "user_id", user.ID)

	return &AuthResult{Token: token, User: user}, nil
}

// ValidateToken checks the token signature and expiry and returns the
// principal it carries. Used by the authentication middleware.
func (s *Service) ValidateToken(ctx context.Context, token string) (ctxutil.Principal, error) {
	id, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return ctxutil.Principal{}, fmt.Errorf("%w: %s", domain.ErrUnauthorized, err)
	}
	return ctxutil.Principal{
		UserID:  id.UserID,
		Role:    id.Role,
		IsStaff: id.IsStaff,
	}, nil
}
