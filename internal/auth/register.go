package auth

import (
	"context"
	"strings"

	"github.com/foodgo/foodgo-backend/internal/users"
	"github.com/foodgo/foodgo-backend/pkg/db"
	"github.com/foodgo/foodgo-backend/pkg/enums"
	pkgerrors "github.com/foodgo/foodgo-backend/pkg/errors"
	"github.com/foodgo/foodgo-backend/pkg/security"
)

// Register creates the account and emails a signup verification code.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(req.Password) < s.pwCfg.MinLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password too short")
	}

	passwordHash, err := security.HashPassword(req.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     req.Name,
		Phone:        req.Phone,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "users_email_lower_unique") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	if err := s.otp.Issue(ctx, user.ID, user.Email, enums.OTPPurposeSignup); err != nil {
		return nil, err
	}

	return &RegisterResponse{User: users.FromModel(user)}, nil
}
