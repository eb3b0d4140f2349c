package voice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/voyago-api/internal/domain"
)

// --- mocks ---

type mockPlaceGetter struct{ mock.Mock }

func (m *mockPlaceGetter) Get(ctx context.Context, slug string) (*domain.Place, error) {
	args := m.Called(ctx, slug)
	if p, _ := args.Get(0).(*domain.Place); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockDialer struct{ mock.Mock }

func (m *mockDialer) PlaceCall(ctx context.Context, to, twimlURL string) (string, error) {
	args := m.Called(ctx, to, twimlURL)
	return args.String(0), args.Error(1)
}

// --- builder ---

func newService(pg *mockPlaceGetter, d *mockDialer) Service {
	return NewService(ServiceDeps{
		Places:        pg,
		Dialer:        d,
		PublicBaseURL: "https://api.example.com/",
	})
}

// --- CallUser ---

func TestCallUser_PointsProviderAtScriptURL(t *testing.T) {
	pg := &mockPlaceGetter{}
	d := &mockDialer{}

	pg.On("Get", mock.Anything, "goa").Return(&domain.Place{Slug: "goa", Name: "Goa"}, nil)
	d.On("PlaceCall", mock.Anything, "+919999999999", "https://api.example.com/v1/twiml/goa").
		Return("CA123", nil)

	svc := newService(pg, d)
	sid, err := svc.CallUser(context.Background(), CallUserRequest{
		Phone: "+919999999999", Place: "goa",
	})

	require.NoError(t, err)
	assert.Equal(t, "CA123", sid)
	d.AssertExpectations(t)
}

func TestCallUser_UnknownPlace_NotFound(t *testing.T) {
	pg := &mockPlaceGetter{}
	d := &mockDialer{}
	pg.On("Get", mock.Anything, "nowhere").Return(nil, domain.ErrNotFound)

	svc := newService(pg, d)
	_, err := svc.CallUser(context.Background(), CallUserRequest{
		Phone: "+919999999999", Place: "nowhere",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	d.AssertNotCalled(t, "PlaceCall", mock.Anything, mock.Anything, mock.Anything)
}

func TestCallUser_DialerFailure_Upstream(t *testing.T) {
	pg := &mockPlaceGetter{}
	d := &mockDialer{}

	pg.On("Get", mock.Anything, "goa").Return(&domain.Place{Slug: "goa"}, nil)
	d.On("PlaceCall", mock.Anything, mock.Anything, mock.Anything).Return("", domain.ErrUpstream)

	svc := newService(pg, d)
	_, err := svc.CallUser(context.Background(), CallUserRequest{
		Phone: "+919999999999", Place: "goa",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
}

// --- Script ---

func TestScript_DescribesPlace(t *testing.T) {
	pg := &mockPlaceGetter{}
	pg.On("Get", mock.Anything, "goa").Return(&domain.Place{
		Slug: "goa", Name: "Goa", Description: "Sun, sand & sea.",
	}, nil)

	svc := newService(pg, nil)
	out, err := svc.Script(context.Background(), "goa")

	require.NoError(t, err)
	xml := string(out)
	assert.True(t, strings.HasPrefix(xml, "<?xml"))
	assert.Contains(t, xml, "<Response>")
	assert.Contains(t, xml, "Goa")
	// The ampersand must be XML-escaped or the provider rejects the document.
	assert.Contains(t, xml, "Sun, sand &amp; sea.")
	assert.Contains(t, xml, `voice="alice"`)
}

func TestScript_UnknownPlace_SpeaksFallback(t *testing.T) {
	pg := &mockPlaceGetter{}
	pg.On("Get", mock.Anything, "nowhere").Return(nil, domain.ErrNotFound)

	svc := newService(pg, nil)
	out, err := svc.Script(context.Background(), "nowhere")

	require.NoError(t, err)
	assert.Contains(t, string(out), "could not find")
}
