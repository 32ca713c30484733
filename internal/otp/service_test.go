package otp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgo/foodgo-backend/pkg/config"
	"github.com/foodgo/foodgo-backend/pkg/db/models"
	"github.com/foodgo/foodgo-backend/pkg/enums"
	pkgerrors "github.com/foodgo/foodgo-backend/pkg/errors"
	"github.com/foodgo/foodgo-backend/pkg/mail"
)

func buildOTPService(t *testing.T, repo *stubOTPRepo, sender mail.Sender, now time.Time) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Sender: sender,
		Config: config.OTPConfig{ValidityMinutes: 10, MaxAttempts: 5},
		Now:    func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("build otp service: %v", err)
	}
	return svc
}

func TestIssueStoresCodeAndSendsEmail(t *testing.T) {
	now := time.Now().UTC()
	repo := &stubOTPRepo{}
	sender := &captureSender{}
	svc := buildOTPService(t, repo, sender, now)

	userID := uuid.New()
	if err := svc.Issue(context.Background(), userID, "eater@example.com", enums.OTPPurposeSignup); err != nil {
		t.Fatalf("issue: %v", err)
	}

	if repo.created == nil {
		t.Fatal("expected code to be persisted")
	}
	if repo.created.UserID != userID {
		t.Fatalf("unexpected user id %s", repo.created.UserID)
	}
	if len(repo.created.Code) != 4 {
		t.Fatalf("expected 4-digit code, got %q", repo.created.Code)
	}
	wantExpiry := now.Add(10 * time.Minute)
	if !repo.created.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expected expiry %v, got %v", wantExpiry, repo.created.ExpiresAt)
	}
	if sender.sent == nil {
		t.Fatal("expected email to be sent")
	}
	if sender.sent.To != "eater@example.com" {
		t.Fatalf("unexpected recipient %q", sender.sent.To)
	}
}

func TestIssueSendFailureDoesNotFail(t *testing.T) {
	repo := &stubOTPRepo{}
	svc := buildOTPService(t, repo, &captureSender{err: errors.New("smtp down")}, time.Now().UTC())

	if err := svc.Issue(context.Background(), uuid.New(), "eater@example.com", enums.OTPPurposeSignup); err != nil {
		t.Fatalf("expected issue to succeed despite send failure, got %v", err)
	}
	if repo.created == nil {
		t.Fatal("expected code to be persisted")
	}
}

func TestIssueRejectsUnknownPurpose(t *testing.T) {
	svc := buildOTPService(t, &stubOTPRepo{}, &captureSender{}, time.Now().UTC())

	err := svc.Issue(context.Background(), uuid.New(), "eater@example.com", enums.OTPPurpose("bogus"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestVerifyConsumesMatchingCode(t *testing.T) {
	now := time.Now().UTC()
	record := &models.OTPCode{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Code:      "1234",
		Purpose:   enums.OTPPurposeSignup,
		ExpiresAt: now.Add(5 * time.Minute),
	}
	repo := &stubOTPRepo{newest: record}
	svc := buildOTPService(t, repo, &captureSender{}, now)

	if err := svc.Verify(context.Background(), record.UserID, enums.OTPPurposeSignup, "1234"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !repo.marked {
		t.Fatal("expected code to be marked used")
	}
}

func TestVerifyWrongCodeBurnsAttempt(t *testing.T) {
	now := time.Now().UTC()
	record := &models.OTPCode{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Code:      "1234",
		Purpose:   enums.OTPPurposeSignup,
		ExpiresAt: now.Add(5 * time.Minute),
	}
	repo := &stubOTPRepo{newest: record}
	svc := buildOTPService(t, repo, &captureSender{}, now)

	err := svc.Verify(context.Background(), record.UserID, enums.OTPPurposeSignup, "9999")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.attempts != 1 {
		t.Fatalf("expected one recorded attempt, got %d", repo.attempts)
	}
	if repo.marked {
		t.Fatal("wrong code must not consume the record")
	}
}

func TestVerifyExpiredCodeConflicts(t *testing.T) {
	now := time.Now().UTC()
	record := &models.OTPCode{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Code:      "1234",
		Purpose:   enums.OTPPurposeSignup,
		ExpiresAt: now.Add(-time.Minute),
	}
	repo := &stubOTPRepo{newest: record}
	svc := buildOTPService(t, repo, &captureSender{}, now)

	err := svc.Verify(context.Background(), record.UserID, enums.OTPPurposeSignup, "1234")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestVerifyAttemptCapConflicts(t *testing.T) {
	now := time.Now().UTC()
	record := &models.OTPCode{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Code:      "1234",
		Purpose:   enums.OTPPurposeSignup,
		Attempts:  5,
		ExpiresAt: now.Add(5 * time.Minute),
	}
	repo := &stubOTPRepo{newest: record}
	svc := buildOTPService(t, repo, &captureSender{}, now)

	err := svc.Verify(context.Background(), record.UserID, enums.OTPPurposeSignup, "1234")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestVerifyNoPendingCode(t *testing.T) {
	repo := &stubOTPRepo{newestErr: gorm.ErrRecordNotFound}
	svc := buildOTPService(t, repo, &captureSender{}, time.Now().UTC())

	err := svc.Verify(context.Background(), uuid.New(), enums.OTPPurposeSignup, "1234")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	now := time.Now().UTC()
	record := &models.OTPCode{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Code:      "1234",
		Purpose:   enums.OTPPurposePasswordReset,
		ExpiresAt: now.Add(5 * time.Minute),
	}
	repo := &stubOTPRepo{newest: record}
	svc := buildOTPService(t, repo, &captureSender{}, now)

	if err := svc.Peek(context.Background(), record.UserID, enums.OTPPurposePasswordReset, "1234"); err != nil {
		t.Fatalf("peek: %v", err)
	}
	if repo.marked {
		t.Fatal("peek must not consume the code")
	}

	// The same code still verifies afterwards.
	if err := svc.Verify(context.Background(), record.UserID, enums.OTPPurposePasswordReset, "1234"); err != nil {
		t.Fatalf("verify after peek: %v", err)
	}
	if !repo.marked {
		t.Fatal("expected verify to consume the code")
	}
}

type stubOTPRepo struct {
	created   *models.OTPCode
	newest    *models.OTPCode
	newestErr error
	attempts  int
	marked    bool
}

func (s *stubOTPRepo) Create(ctx context.Context, code *models.OTPCode) (*models.OTPCode, error) {
	code.ID = uuid.New()
	s.created = code
	return code, nil
}

func (s *stubOTPRepo) FindNewestUnused(ctx context.Context, userID uuid.UUID, purpose enums.OTPPurpose) (*models.OTPCode, error) {
	if s.newestErr != nil {
		return nil, s.newestErr
	}
	if s.newest == nil || s.newest.UserID != userID || s.newest.Purpose != purpose {
		return nil, gorm.ErrRecordNotFound
	}
	return s.newest, nil
}

func (s *stubOTPRepo) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	s.attempts++
	if s.newest != nil && s.newest.ID == id {
		s.newest.Attempts++
	}
	return nil
}

func (s *stubOTPRepo) MarkUsed(ctx context.Context, id uuid.UUID) error {
	s.marked = true
	if s.newest != nil && s.newest.ID == id {
		s.newest.IsUsed = true
	}
	return nil
}

type captureSender struct {
	sent *mail.Message
	err  error
}

func (c *captureSender) Send(ctx context.Context, msg mail.Message) error {
	if c.err != nil {
		return c.err
	}
	c.sent = &msg
	return nil
}
