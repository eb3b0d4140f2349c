package voice

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/voyago-api/internal/domain"
)

type CallUserRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
	Place string `json:"place" validate:"required"`
}

// PlaceGetter resolves the place a call script will describe.
type PlaceGetter interface {
	Get(ctx context.Context, slug string) (*domain.Place, error)
}

// Dialer places the outbound call.
type Dialer interface {
	PlaceCall(ctx context.Context, to, twimlURL string) (string, error)
}

type Service interface {
	CallUser(ctx context.Context, req CallUserRequest) (string, error)
	Script(ctx context.Context, placeSlug string) ([]byte, error)
}

type ServiceDeps struct {
	Places        PlaceGetter
	Dialer        Dialer
	PublicBaseURL string
}

type service struct {
	places        PlaceGetter
	dialer        Dialer
	publicBaseURL string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		places:        deps.Places,
		dialer:        deps.Dialer,
		publicBaseURL: strings.TrimRight(deps.PublicBaseURL, "/"),
	}
}

// CallUser rings the number and points the telephony provider at our
// script endpoint for the named place. The place must exist before the
// call is placed; otherwise the callee would hear the fallback script.
func (s *service) CallUser(ctx context.Context, req CallUserRequest) (string, error) {
	p, err := s.places.Get(ctx, req.Place)
	if err != nil {
		return "", err
	}
	twimlURL := fmt.Sprintf("%s/v1/twiml/%s", s.publicBaseURL, p.Slug)
	return s.dialer.PlaceCall(ctx, req.Phone, twimlURL)
}

// response is a minimal TwiML document: a sequence of spoken sentences.
type response struct {
	XMLName xml.Name `xml:"Response"`
	Say     []say
}

type say struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr"`
	Text    string   `xml:",chardata"`
}

// Script renders the voice script for a place as TwiML. The provider
// fetches this mid-call, so an unknown place gets a spoken apology
// rather than an HTTP error that would drop the line.
func (s *service) Script(ctx context.Context, placeSlug string) ([]byte, error) {
	var sentences []string
	p, err := s.places.Get(ctx, placeSlug)
	if err != nil {
		sentences = []string{"Sorry, we could not find any information about that place. Goodbye."}
	} else {
		sentences = []string{
			fmt.Sprintf("Hello from Voyago! Here is what you should know about %s.", p.Name),
			p.Description,
			"Thank you for travelling with us. Goodbye.",
		}
	}

	doc := response{}
	for _, text := range sentences {
		doc.Say = append(doc.Say, say{Voice: "alice", Text: text})
	}
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
