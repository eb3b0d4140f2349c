package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/voyago-api/internal/domain"
	"github.com/voyago-api/internal/infrastructure/google"
	"github.com/voyago-api/internal/pkg/clock"
	"github.com/voyago-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleSignInRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// UserStore is the account persistence the registrar needs.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, email string, updates map[string]interface{}) error
}

// Mailer delivers password-reset links and welcome mail.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// TokenProvider signs session tokens and single-purpose reset tokens.
type TokenProvider interface {
	Sign(userID, role string) (string, error)
	SignPasswordReset(userID string) (string, error)
	VerifyPasswordReset(token string) (string, error)
}

// GoogleVerifier validates Google ID tokens for federated sign-in.
type GoogleVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

type Service interface {
	Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, string, error)
	Login(ctx context.Context, req LoginRequest) (*domain.User, string, error)
	GoogleSignIn(ctx context.Context, req GoogleSignInRequest) (*domain.User, string, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type ServiceDeps struct {
	UserRepo       UserStore
	Mailer         Mailer
	Tokens         TokenProvider
	GoogleVerifier GoogleVerifier
	Clock          clock.Clock
	ResetTokenTTL  time.Duration
	PublicBaseURL  string
	AdminEmails    []string
}

type service struct {
	userRepo       UserStore
	mailer         Mailer
	tokens         TokenProvider
	googleVerifier GoogleVerifier
	clock          clock.Clock
	resetTokenTTL  time.Duration
	publicBaseURL  string
	adminEmails    map[string]struct{}
}

func NewService(deps ServiceDeps) Service {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	admins := make(map[string]struct{}, len(deps.AdminEmails))
	for _, e := range deps.AdminEmails {
		admins[normalizeEmail(e)] = struct{}{}
	}
	return &service{
		userRepo:       deps.UserRepo,
		mailer:         deps.Mailer,
		tokens:         deps.Tokens,
		googleVerifier: deps.GoogleVerifier,
		clock:          deps.Clock,
		resetTokenTTL:  deps.ResetTokenTTL,
		publicBaseURL:  deps.PublicBaseURL,
		adminEmails:    admins,
	}
}

// Signup finalizes account creation. The email has already proven
// reachable through the verify-otp gate, so the account starts out
// verified. Returns the created user and a session token.
func (s *service) Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, string, error) {
	email := normalizeEmail(req.Email)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	now := s.clock.Now().UTC()
	u := &domain.User{
		Email:        email,
		UserID:       id.New(),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		Role:         s.roleFor(email),
		Verified:     true,
		AuthProvider: "local",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Sign(u.UserID, u.Role)
	if err != nil {
		return nil, "", err
	}

	// Best effort; the account exists regardless.
	welcome := fmt.Sprintf("<p>Hi %s,</p><p>Your account is ready. Happy travels!</p>", u.Name)
	if err := s.mailer.SendEmail(u.Email, "Welcome aboard", welcome); err != nil {
		slog.Warn("welcome email failed", "email", u.Email, "err", err)
	}

	return u, token, nil
}

// Login checks credentials and issues a session token. Unknown emails and
// wrong passwords produce the same error so the endpoint does not leak
// which addresses have accounts.
func (s *service) Login(ctx context.Context, req LoginRequest) (*domain.User, string, error) {
	email := normalizeEmail(req.Email)

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("invalid email or password: %w", domain.ErrMismatch)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", fmt.Errorf("invalid email or password: %w", domain.ErrMismatch)
	}

	token, err := s.tokens.Sign(u.UserID, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// GoogleSignIn validates a Google ID token and signs the user in,
// provisioning an account on first sight. Google already vouches for the
// address, so no OTP gate applies here.
func (s *service) GoogleSignIn(ctx context.Context, req GoogleSignInRequest) (*domain.User, string, error) {
	payload, err := s.googleVerifier.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, "", err
	}
	if !payload.EmailVerified {
		return nil, "", fmt.Errorf("google account email not verified: %w", domain.ErrMismatch)
	}
	email := normalizeEmail(payload.Email)

	u, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		// Existing account; remember the Google subject on first federated login.
		if u.GoogleSub == "" {
			updates := map[string]interface{}{
				"google_sub":    payload.Sub,
				"auth_provider": "google",
			}
			if err := s.userRepo.Update(ctx, email, updates); err != nil {
				return nil, "", err
			}
			u.GoogleSub = payload.Sub
			u.AuthProvider = "google"
		}
	case !errors.Is(err, domain.ErrNotFound):
		// A store failure is not an absent account; don't try to provision.
		return nil, "", err
	default:
		now := s.clock.Now().UTC()
		u = &domain.User{
			Email:        email,
			UserID:       id.New(),
			Name:         payload.Name,
			Role:         s.roleFor(email),
			Verified:     true,
			AuthProvider: "google",
			GoogleSub:    payload.Sub,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.userRepo.Create(ctx, u); err != nil {
			return nil, "", err
		}
	}

	token, err := s.tokens.Sign(u.UserID, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// ForgotPassword issues a signed reset token, stores it with its expiry on
// the account and mails a reset link. Storing the token means a later
// password change (or a second forgot-password call) invalidates any link
// issued before it.
func (s *service) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}

	token, err := s.tokens.SignPasswordReset(u.UserID)
	if err != nil {
		return err
	}
	expiresAt := s.clock.Now().Add(s.resetTokenTTL).Unix()
	updates := map[string]interface{}{
		"reset_token":      token,
		"reset_expires_at": expiresAt,
	}
	if err := s.userRepo.Update(ctx, email, updates); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/v1/auth/reset-password/%s", strings.TrimRight(s.publicBaseURL, "/"), token)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Reset your password using <a href=%q>this link</a>. It expires in %d minutes.</p>",
		u.Name, link, int(s.resetTokenTTL.Minutes()),
	)
	if err := s.mailer.SendEmail(u.Email, "Reset your password", body); err != nil {
		return fmt.Errorf("reset email delivery failed: %w", domain.ErrUpstream)
	}
	return nil
}

// ResetPassword consumes a reset token: the token must verify
// cryptographically, match the one stored on the account, and still be
// inside its stored expiry window. On success the password is rehashed
// and the pending reset is cleared, so the token cannot be replayed.
func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := s.tokens.VerifyPasswordReset(token)
	if err != nil {
		return fmt.Errorf("invalid or expired reset token: %w", domain.ErrExpired)
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("invalid or expired reset token: %w", domain.ErrExpired)
	}
	if u.ResetToken == "" || u.ResetToken != token {
		return fmt.Errorf("invalid or expired reset token: %w", domain.ErrExpired)
	}
	if u.ResetExpiresAt < s.clock.Now().Unix() {
		return fmt.Errorf("invalid or expired reset token: %w", domain.ErrExpired)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	updates := map[string]interface{}{
		"password_hash":    string(hash),
		"reset_token":      "",
		"reset_expires_at": int64(0),
	}
	return s.userRepo.Update(ctx, u.Email, updates)
}

func (s *service) roleFor(email string) string {
	if _, ok := s.adminEmails[email]; ok {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
