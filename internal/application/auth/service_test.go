package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/voyago-api/internal/domain"
	"github.com/voyago-api/internal/infrastructure/google"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, email string, updates map[string]interface{}) error {
	return m.Called(ctx, email, updates).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) Sign(userID, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}
func (m *mockTokens) SignPasswordReset(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}
func (m *mockTokens) VerifyPasswordReset(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

type mockGoogleVerifier struct{ mock.Mock }

func (m *mockGoogleVerifier) Verify(ctx context.Context, token string) (*google.Payload, error) {
	args := m.Called(ctx, token)
	if p, _ := args.Get(0).(*google.Payload); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

// --- builder ---

func newService(us *mockUserStore, ml *mockMailer, tk *mockTokens, gv *mockGoogleVerifier, now time.Time, admins ...string) Service {
	return NewService(ServiceDeps{
		UserRepo:       us,
		Mailer:         ml,
		Tokens:         tk,
		GoogleVerifier: gv,
		Clock:          fixedClock{t: now},
		ResetTokenTTL:  15 * time.Minute,
		PublicBaseURL:  "https://api.example.com",
		AdminEmails:    admins,
	})
}

// --- Signup ---

func TestSignup_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	tk := &mockTokens{}

	var created *domain.User
	us.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.User) }).
		Return(nil)
	tk.On("Sign", mock.Anything, domain.RoleUser).Return("session-token", nil)
	ml.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).Return(nil)

	svc := newService(us, ml, tk, nil, time.Now())
	u, token, err := svc.Signup(context.Background(), domain.SignupRequest{
		Name: "Alice", Email: "A@B.com", Password: "hunter2hunter2",
	})

	require.NoError(t, err)
	assert.Equal(t, "session-token", token)
	require.NotNil(t, created)
	assert.Equal(t, "a@b.com", created.Email)
	assert.Equal(t, domain.RoleUser, created.Role)
	assert.True(t, created.Verified)
	assert.Equal(t, "local", created.AuthProvider)
	assert.NotEmpty(t, created.UserID)
	assert.Equal(t, u.UserID, created.UserID)
	// Stored hash is a real bcrypt digest of the plaintext, never the plaintext.
	assert.NotEqual(t, "hunter2hunter2", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("hunter2hunter2")))
}

func TestSignup_DuplicateEmail_ReturnsConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("Create", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	svc := newService(us, nil, nil, nil, time.Now())
	_, _, err := svc.Signup(context.Background(), domain.SignupRequest{
		Name: "Alice", Email: "a@b.com", Password: "hunter2hunter2",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestSignup_AdminEmailGetsAdminRole(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	tk := &mockTokens{}

	us.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Role == domain.RoleAdmin
	})).Return(nil)
	tk.On("Sign", mock.Anything, domain.RoleAdmin).Return("t", nil)
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newService(us, ml, tk, nil, time.Now(), "Root@Example.com")
	_, _, err := svc.Signup(context.Background(), domain.SignupRequest{
		Name: "Root", Email: "root@example.com", Password: "hunter2hunter2",
	})

	require.NoError(t, err)
	us.AssertExpectations(t)
}

func TestSignup_WelcomeEmailFailure_DoesNotFailSignup(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	tk := &mockTokens{}

	us.On("Create", mock.Anything, mock.Anything).Return(nil)
	tk.On("Sign", mock.Anything, mock.Anything).Return("session-token", nil)
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := newService(us, ml, tk, nil, time.Now())
	_, token, err := svc.Signup(context.Background(), domain.SignupRequest{
		Name: "Alice", Email: "a@b.com", Password: "hunter2hunter2",
	})

	require.NoError(t, err)
	assert.Equal(t, "session-token", token)
}

// --- Login ---

func TestLogin_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", Email: "a@b.com", PasswordHash: string(hash), Role: domain.RoleUser,
	}, nil)
	tk.On("Sign", "u1", domain.RoleUser).Return("session-token", nil)

	svc := newService(us, nil, tk, nil, time.Now())
	u, token, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "correct-horse"})

	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
	assert.Equal(t, "session-token", token)
}

func TestLogin_UnknownEmail_ReturnsMismatch(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "nobody@b.com").Return(nil, domain.ErrNotFound)

	svc := newService(us, nil, nil, nil, time.Now())
	_, _, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@b.com", Password: "whatever1"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMismatch))
}

func TestLogin_WrongPassword_ReturnsMismatch(t *testing.T) {
	us := &mockUserStore{}
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", Email: "a@b.com", PasswordHash: string(hash),
	}, nil)

	svc := newService(us, nil, nil, nil, time.Now())
	_, _, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "wrong-horse"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMismatch))
}

// --- GoogleSignIn ---

func TestGoogleSignIn_FirstSight_ProvisionsAccount(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	gv := &mockGoogleVerifier{}

	gv.On("Verify", mock.Anything, "gtoken").Return(&google.Payload{
		Sub: "sub-1", Email: "G@B.com", EmailVerified: true, Name: "Gal",
	}, nil)
	us.On("GetByEmail", mock.Anything, "g@b.com").Return(nil, domain.ErrNotFound)
	us.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "g@b.com" && u.AuthProvider == "google" && u.GoogleSub == "sub-1" && u.Verified
	})).Return(nil)
	tk.On("Sign", mock.Anything, domain.RoleUser).Return("session-token", nil)

	svc := newService(us, nil, tk, gv, time.Now())
	u, token, err := svc.GoogleSignIn(context.Background(), GoogleSignInRequest{IDToken: "gtoken"})

	require.NoError(t, err)
	assert.Equal(t, "session-token", token)
	assert.Equal(t, "g@b.com", u.Email)
	us.AssertExpectations(t)
}

func TestGoogleSignIn_ExistingAccount_LinksSubject(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	gv := &mockGoogleVerifier{}

	gv.On("Verify", mock.Anything, "gtoken").Return(&google.Payload{
		Sub: "sub-1", Email: "a@b.com", EmailVerified: true,
	}, nil)
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", Email: "a@b.com", Role: domain.RoleUser,
	}, nil)
	us.On("Update", mock.Anything, "a@b.com", mock.MatchedBy(func(m map[string]interface{}) bool {
		return m["google_sub"] == "sub-1"
	})).Return(nil)
	tk.On("Sign", "u1", domain.RoleUser).Return("session-token", nil)

	svc := newService(us, nil, tk, gv, time.Now())
	_, _, err := svc.GoogleSignIn(context.Background(), GoogleSignInRequest{IDToken: "gtoken"})

	require.NoError(t, err)
	us.AssertExpectations(t)
}

func TestGoogleSignIn_StoreFailure_DoesNotProvision(t *testing.T) {
	us := &mockUserStore{}
	gv := &mockGoogleVerifier{}

	gv.On("Verify", mock.Anything, "gtoken").Return(&google.Payload{
		Sub: "sub-1", Email: "g@b.com", EmailVerified: true,
	}, nil)
	// A transient store failure is not an absent account.
	us.On("GetByEmail", mock.Anything, "g@b.com").Return(nil, errors.New("dynamo down"))

	svc := newService(us, nil, nil, gv, time.Now())
	_, _, err := svc.GoogleSignIn(context.Background(), GoogleSignInRequest{IDToken: "gtoken"})

	require.Error(t, err)
	assert.EqualError(t, err, "dynamo down")
	us.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGoogleSignIn_UnverifiedEmail_Rejected(t *testing.T) {
	gv := &mockGoogleVerifier{}
	gv.On("Verify", mock.Anything, "gtoken").Return(&google.Payload{
		Sub: "sub-1", Email: "a@b.com", EmailVerified: false,
	}, nil)

	svc := newService(nil, nil, nil, gv, time.Now())
	_, _, err := svc.GoogleSignIn(context.Background(), GoogleSignInRequest{IDToken: "gtoken"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMismatch))
}

// --- ForgotPassword ---

func TestForgotPassword_StoresTokenThenMailsLink(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	tk := &mockTokens{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", Email: "a@b.com", Name: "Alice",
	}, nil)
	tk.On("SignPasswordReset", "u1").Return("reset-token", nil)
	us.On("Update", mock.Anything, "a@b.com", mock.MatchedBy(func(m map[string]interface{}) bool {
		return m["reset_token"] == "reset-token" &&
			m["reset_expires_at"] == now.Add(15*time.Minute).Unix()
	})).Return(nil)
	var mailedBody string
	ml.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { mailedBody = args.String(2) }).
		Return(nil)

	svc := newService(us, ml, tk, nil, now)
	err := svc.ForgotPassword(context.Background(), "a@b.com")

	require.NoError(t, err)
	assert.Contains(t, mailedBody, "reset-token")
	us.AssertExpectations(t)
}

func TestForgotPassword_UnknownEmail_ReturnsNotFound(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "x@x.com").Return(nil, domain.ErrNotFound)

	svc := newService(us, nil, nil, nil, time.Now())
	err := svc.ForgotPassword(context.Background(), "x@x.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestForgotPassword_MailFailure_ReportsUpstream(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	tk := &mockTokens{}

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Email: "a@b.com"}, nil)
	tk.On("SignPasswordReset", "u1").Return("reset-token", nil)
	us.On("Update", mock.Anything, "a@b.com", mock.Anything).Return(nil)
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := newService(us, ml, tk, nil, time.Now())
	err := svc.ForgotPassword(context.Background(), "a@b.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	// Token was stored before the delivery attempt.
	us.AssertCalled(t, "Update", mock.Anything, "a@b.com", mock.Anything)
}

// --- ResetPassword ---

func TestResetPassword_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tk.On("VerifyPasswordReset", "reset-token").Return("u1", nil)
	us.On("GetByID", mock.Anything, "u1").Return(&domain.User{
		UserID:         "u1",
		Email:          "a@b.com",
		ResetToken:     "reset-token",
		ResetExpiresAt: now.Add(5 * time.Minute).Unix(),
	}, nil)
	us.On("Update", mock.Anything, "a@b.com", mock.MatchedBy(func(m map[string]interface{}) bool {
		hash, ok := m["password_hash"].(string)
		if !ok || !strings.HasPrefix(hash, "$2") {
			return false
		}
		return m["reset_token"] == "" && m["reset_expires_at"] == int64(0)
	})).Return(nil)

	svc := newService(us, nil, tk, nil, now)
	err := svc.ResetPassword(context.Background(), "reset-token", "new-password-1")

	require.NoError(t, err)
	us.AssertExpectations(t)
}

func TestResetPassword_CryptoInvalidToken(t *testing.T) {
	tk := &mockTokens{}
	tk.On("VerifyPasswordReset", "garbage").Return("", errors.New("bad signature"))

	svc := newService(nil, nil, tk, nil, time.Now())
	err := svc.ResetPassword(context.Background(), "garbage", "new-password-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExpired))
}

func TestResetPassword_TokenNotTheStoredOne(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	now := time.Now()

	// An older token that still verifies cryptographically but was
	// superseded by a newer forgot-password call.
	tk.On("VerifyPasswordReset", "old-token").Return("u1", nil)
	us.On("GetByID", mock.Anything, "u1").Return(&domain.User{
		UserID:         "u1",
		Email:          "a@b.com",
		ResetToken:     "newer-token",
		ResetExpiresAt: now.Add(5 * time.Minute).Unix(),
	}, nil)

	svc := newService(us, nil, tk, nil, now)
	err := svc.ResetPassword(context.Background(), "old-token", "new-password-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExpired))
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPassword_StoredExpiryPassed_PasswordUnchanged(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tk.On("VerifyPasswordReset", "reset-token").Return("u1", nil)
	us.On("GetByID", mock.Anything, "u1").Return(&domain.User{
		UserID:         "u1",
		Email:          "a@b.com",
		ResetToken:     "reset-token",
		ResetExpiresAt: now.Add(-1 * time.Minute).Unix(),
	}, nil)

	svc := newService(us, nil, tk, nil, now)
	err := svc.ResetPassword(context.Background(), "reset-token", "new-password-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExpired))
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPassword_NoResetPending(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}

	tk.On("VerifyPasswordReset", "reset-token").Return("u1", nil)
	us.On("GetByID", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", Email: "a@b.com",
	}, nil)

	svc := newService(us, nil, tk, nil, time.Now())
	err := svc.ResetPassword(context.Background(), "reset-token", "new-password-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExpired))
}
