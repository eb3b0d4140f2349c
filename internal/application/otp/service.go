package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/voyago-api/internal/domain"
	"github.com/voyago-api/internal/pkg/clock"
)

type IssueRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// Store is the persistence the OTP flow needs: upsert-by-email plus an
// atomic compare-and-delete.
type Store interface {
	Put(ctx context.Context, rec *domain.OTPRecord) error
	ConsumeIfMatch(ctx context.Context, email, code string) (*domain.OTPRecord, error)
}

// Mailer delivers the code to the address being proven.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type Service interface {
	Issue(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) error
}

type ServiceDeps struct {
	OTPRepo Store
	Mailer  Mailer
	Clock   clock.Clock
	TTL     time.Duration
}

type service struct {
	otpRepo Store
	mailer  Mailer
	clock   clock.Clock
	ttl     time.Duration
}

func NewService(deps ServiceDeps) Service {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	return &service{
		otpRepo: deps.OTPRepo,
		mailer:  deps.Mailer,
		clock:   deps.Clock,
		ttl:     deps.TTL,
	}
}

// Issue generates a fresh 6-digit code for the email, stores it (replacing
// any outstanding one) and mails it. A delivery failure is reported as an
// upstream error but the stored code stays valid, so the client can simply
// request a re-send.
func (s *service) Issue(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	code, err := generateCode()
	if err != nil {
		return err
	}

	rec := &domain.OTPRecord{
		Email:     email,
		Code:      code,
		ExpiresAt: s.clock.Now().Add(s.ttl).Unix(),
	}
	if err := s.otpRepo.Put(ctx, rec); err != nil {
		return err
	}

	body := fmt.Sprintf(
		"<p>Your verification code is <strong>%s</strong>.</p><p>It expires in %d minutes.</p>",
		code, int(s.ttl.Minutes()),
	)
	if err := s.mailer.SendEmail(email, "Your verification code", body); err != nil {
		return fmt.Errorf("otp email delivery failed: %w", domain.ErrUpstream)
	}
	return nil
}

// Verify consumes the outstanding code for the email. The store's
// compare-and-delete guarantees a given code verifies at most once even
// under concurrent attempts. A mismatched code leaves the record intact;
// a matching but expired code is purged and reported as expired.
func (s *service) Verify(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)

	rec, err := s.otpRepo.ConsumeIfMatch(ctx, email, code)
	if err != nil {
		return err
	}
	if rec.ExpiresAt < s.clock.Now().Unix() {
		return fmt.Errorf("code expired: %w", domain.ErrExpired)
	}
	return nil
}

// generateCode draws a code uniformly from [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
