package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgo/foodgo-backend/pkg/config"
	"github.com/foodgo/foodgo-backend/pkg/db/models"
	"github.com/foodgo/foodgo-backend/pkg/enums"
	pkgerrors "github.com/foodgo/foodgo-backend/pkg/errors"
	"github.com/foodgo/foodgo-backend/pkg/logger"
	"github.com/foodgo/foodgo-backend/pkg/mail"
	"github.com/foodgo/foodgo-backend/pkg/security"
)

const codeDigits = 4

// Service issues and redeems one-time verification codes.
type Service interface {
	// Issue creates a new code and emails it. Older unsent codes for
	// the same purpose are superseded by the newest-unused lookup, not
	// deleted.
	Issue(ctx context.Context, userID uuid.UUID, email string, purpose enums.OTPPurpose) error
	// Verify checks and consumes the newest unused code.
	Verify(ctx context.Context, userID uuid.UUID, purpose enums.OTPPurpose, code string) error
	// Peek checks the code without consuming it, for the two-step
	// password-reset flow.
	Peek(ctx context.Context, userID uuid.UUID, purpose enums.OTPPurpose, code string) error
}

type repository interface {
	Create(ctx context.Context, code *models.OTPCode) (*models.OTPCode, error)
	FindNewestUnused(ctx context.Context, userID uuid.UUID, purpose enums.OTPPurpose) (*models.OTPCode, error)
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
	MarkUsed(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   repository
	sender mail.Sender
	cfg    config.OTPConfig
	logg   *logger.Logger
	now    func() time.Time
}

// ServiceParams bundles the dependencies required to build an OTP service.
type ServiceParams struct {
	Repo   repository
	Sender mail.Sender
	Config config.OTPConfig
	Logger *logger.Logger
	Now    func() time.Time
}

// NewService constructs an OTP service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("otp repository is required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("mail sender is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:   params.Repo,
		sender: params.Sender,
		cfg:    params.Config,
		logg:   params.Logger,
		now:    now,
	}, nil
}

// Issue generates a fresh code, persists it, and emails it to the
// user. Delivery failure does not roll back the issued row; the
// sender chain already tried every channel, so the failure is only
// logged.
func (s *service) Issue(ctx context.Context, userID uuid.UUID, email string, purpose enums.OTPPurpose) error {
	if !purpose.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid otp purpose %q", purpose))
	}

	raw, err := security.GenerateOTPCode(codeDigits)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
	}

	code := &models.OTPCode{
		UserID:    userID,
		Code:      raw,
		Purpose:   purpose,
		ExpiresAt: s.now().Add(s.cfg.Validity()),
	}
	if _, err := s.repo.Create(ctx, code); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store otp")
	}

	if err := s.sender.Send(ctx, mail.OTPEmail(email, raw, s.cfg.ValidityMinutes)); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithEmail(ctx, email), "sending otp email failed", err)
	}
	return nil
}

func (s *service) Verify(ctx context.Context, userID uuid.UUID, purpose enums.OTPPurpose, code string) error {
	record, err := s.check(ctx, userID, purpose, code)
	if err != nil {
		return err
	}
	if err := s.repo.MarkUsed(ctx, record.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "consume otp")
	}
	return nil
}

func (s *service) Peek(ctx context.Context, userID uuid.UUID, purpose enums.OTPPurpose, code string) error {
	_, err := s.check(ctx, userID, purpose, code)
	return err
}

// check finds the newest unused code and validates the submission.
// Both the expiry/attempt-cap rejection and a mismatch burn an attempt.
func (s *service) check(ctx context.Context, userID uuid.UUID, purpose enums.OTPPurpose, code string) (*models.OTPCode, error) {
	record, err := s.repo.FindNewestUnused(ctx, userID, purpose)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no pending code")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup otp")
	}

	if !record.Redeemable(s.now(), s.cfg.MaxAttempts) {
		if err := s.repo.IncrementAttempts(ctx, record.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record failed attempt")
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "code expired or too many attempts")
	}

	if record.Code != code {
		if err := s.repo.IncrementAttempts(ctx, record.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record failed attempt")
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "incorrect code")
	}

	return record, nil
}
