package twilio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voyago-api/internal/config"
	"github.com/voyago-api/internal/domain"
)

func newTestDialer(baseURL string) Dialer {
	return NewDialer(&config.Config{
		TwilioBaseURL:    baseURL,
		TwilioAccountSID: "AC123",
		TwilioAuthToken:  "secret",
		TwilioFromNumber: "+15550001111",
	})
}

func TestPlaceCall_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Calls.json", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "secret", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "+911234567890", r.PostForm.Get("To"))
		assert.Equal(t, "+15550001111", r.PostForm.Get("From"))
		assert.Equal(t, "https://api.example.com/v1/voice/twiml/jaipur", r.PostForm.Get("Url"))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"CA900"}`))
	}))
	defer srv.Close()

	sid, err := newTestDialer(srv.URL).PlaceCall(context.Background(), "+911234567890", "https://api.example.com/v1/voice/twiml/jaipur")
	require.NoError(t, err)
	assert.Equal(t, "CA900", sid)
}

func TestPlaceCall_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"authentication failed"}`))
	}))
	defer srv.Close()

	_, err := newTestDialer(srv.URL).PlaceCall(context.Background(), "+911234567890", "https://api.example.com/script")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestPlaceCall_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not-json`))
	}))
	defer srv.Close()

	_, err := newTestDialer(srv.URL).PlaceCall(context.Background(), "+911234567890", "https://api.example.com/script")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestPlaceCall_ServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // shut down before the call

	_, err := newTestDialer(srv.URL).PlaceCall(context.Background(), "+911234567890", "https://api.example.com/script")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
