package auth

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/leblango/leblango-backend/internal/auth"
	"github.com/leblango/leblango-backend/internal/domain"
)

// SignUpInput holds the data for registering a new account.
type SignUpInput struct {
	Username string
	Email    string
	Password string
}

// Validate checks the input and returns a ValidationError listing every
// problem found.
func (in *SignUpInput) Validate() error {
	var fields []domain.FieldError

	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		fields = append(fields, domain.FieldError{Field: "username", Message: "must not be empty"})
	} else if len(in.Username) > 150 {
		fields = append(fields, domain.FieldError{Field: "username", Message: "must be at most 150 characters"})
	}

	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" {
		fields = append(fields, domain.FieldError{Field: "email", Message: "must not be empty"})
	} else if _, err := mail.ParseAddress(in.Email); err != nil {
		fields = append(fields, domain.FieldError{Field: "email", Message: "must be a valid email address"})
	}

	if len(in.Password) < 8 {
		fields = append(fields, domain.FieldError{Field: "password", Message: "must be at least 8 characters"})
	}

	if len(fields) > 0 {
		return domain.NewValidationErrors(fields)
	}
	return nil
}

// SignUp registers a new account and returns a signed access token for it.
// New accounts always start with the member role.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.PasswordHashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleMember,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwt.GenerateAccessToken(auth.Identity{
		UserID:  user.ID,
		Role:    user.Role.String(),
		IsStaff: user.IsStaff,
	})
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.log.Info("user signed up", "user_id", user.ID, "username", user.Username)

	return &AuthResult{Token: token, User: user}, nil
}
