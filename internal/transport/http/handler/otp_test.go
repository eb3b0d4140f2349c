package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/voyago-api/internal/domain"
)

type mockOTPSvc struct{ mock.Mock }

func (m *mockOTPSvc) Issue(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockOTPSvc) Verify(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

// decodeEnvelope unmarshals without consuming the buffer so callers can still
// assert on the raw body afterwards.
func decodeEnvelope(t *testing.T, body *bytes.Buffer) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(body.Bytes(), &env))
	return env
}

func TestOTPSend_OK(t *testing.T) {
	svc := new(mockOTPSvc)
	svc.On("Issue", mock.Anything, "traveler@example.com").Return(nil)
	h := NewOTPHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/send-otp", bytes.NewBufferString(`{"email":"traveler@example.com"}`))
	rr := httptest.NewRecorder()
	h.Send(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr.Body)
	assert.True(t, env.Success)
	assert.Equal(t, "OTP sent to your email", env.Message)
	svc.AssertExpectations(t)
}

func TestOTPSend_InvalidEmail(t *testing.T) {
	svc := new(mockOTPSvc)
	h := NewOTPHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/send-otp", bytes.NewBufferString(`{"email":"not-an-email"}`))
	rr := httptest.NewRecorder()
	h.Send(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.False(t, decodeEnvelope(t, rr.Body).Success)
	svc.AssertNotCalled(t, "Issue")
}

func TestOTPSend_MalformedBody(t *testing.T) {
	svc := new(mockOTPSvc)
	h := NewOTPHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/send-otp", bytes.NewBufferString(`{`))
	rr := httptest.NewRecorder()
	h.Send(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestOTPSend_DeliveryFailure(t *testing.T) {
	svc := new(mockOTPSvc)
	svc.On("Issue", mock.Anything, "traveler@example.com").
		Return(fmt.Errorf("send email: %w", domain.ErrUpstream))
	h := NewOTPHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/send-otp", bytes.NewBufferString(`{"email":"traveler@example.com"}`))
	rr := httptest.NewRecorder()
	h.Send(rr, req)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.False(t, decodeEnvelope(t, rr.Body).Success)
}

func TestOTPVerify_OK(t *testing.T) {
	svc := new(mockOTPSvc)
	svc.On("Verify", mock.Anything, "traveler@example.com", "123456").Return(nil)
	h := NewOTPHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/verify-otp", bytes.NewBufferString(`{"email":"traveler@example.com","otp":"123456"}`))
	rr := httptest.NewRecorder()
	h.Verify(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decodeEnvelope(t, rr.Body).Success)
	svc.AssertExpectations(t)
}

func TestOTPVerify_StatusPerFailure(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"no passcode on record", fmt.Errorf("no passcode requested: %w", domain.ErrNotFound), http.StatusNotFound},
		{"wrong code", fmt.Errorf("incorrect passcode: %w", domain.ErrMismatch), http.StatusUnauthorized},
		{"expired code", fmt.Errorf("passcode expired: %w", domain.ErrExpired), http.StatusGone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(mockOTPSvc)
			svc.On("Verify", mock.Anything, "traveler@example.com", "123456").Return(tc.err)
			h := NewOTPHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/auth/verify-otp", bytes.NewBufferString(`{"email":"traveler@example.com","otp":"123456"}`))
			rr := httptest.NewRecorder()
			h.Verify(rr, req)

			assert.Equal(t, tc.want, rr.Code)
			assert.False(t, decodeEnvelope(t, rr.Body).Success)
		})
	}
}

func TestOTPVerify_RejectsShortCode(t *testing.T) {
	svc := new(mockOTPSvc)
	h := NewOTPHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/verify-otp", bytes.NewBufferString(`{"email":"traveler@example.com","otp":"123"}`))
	rr := httptest.NewRecorder()
	h.Verify(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	svc.AssertNotCalled(t, "Verify")
}
