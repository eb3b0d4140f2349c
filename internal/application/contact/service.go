package contact

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/voyago-api/internal/domain"
	"github.com/voyago-api/internal/pkg/clock"
	"github.com/voyago-api/internal/pkg/id"
	"github.com/voyago-api/internal/pkg/notify"
)

// ContactStore persists contact-form submissions.
type ContactStore interface {
	Put(ctx context.Context, c *domain.ContactSubmission) error
}

// GeoResolver turns the submitter's IP into a coarse location.
type GeoResolver interface {
	Lookup(ctx context.Context, ip string) (*domain.GeoLocation, error)
}

// Mailer delivers the acknowledgement and the support-team copy.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type Service interface {
	Submit(ctx context.Context, req domain.ContactRequest, ip string) (*domain.ContactSubmission, map[string]string, error)
}

type ServiceDeps struct {
	ContactRepo  ContactStore
	Geo          GeoResolver
	Mailer       Mailer
	Clock        clock.Clock
	SupportEmail string
}

type service struct {
	contactRepo  ContactStore
	geo          GeoResolver
	mailer       Mailer
	clock        clock.Clock
	supportEmail string
}

func NewService(deps ServiceDeps) Service {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	return &service{
		contactRepo:  deps.ContactRepo,
		geo:          deps.Geo,
		mailer:       deps.Mailer,
		clock:        deps.Clock,
		supportEmail: deps.SupportEmail,
	}
}

// Submit stores the submission enriched with a best-effort IP location,
// then fans out an acknowledgement to the submitter and a copy to the
// support inbox. Only the store write can fail the request.
func (s *service) Submit(ctx context.Context, req domain.ContactRequest, ip string) (*domain.ContactSubmission, map[string]string, error) {
	var loc *domain.GeoLocation
	if ip != "" {
		l, err := s.geo.Lookup(ctx, ip)
		if err != nil {
			slog.Warn("geoip lookup failed", "ip", ip, "err", err)
		} else {
			loc = l
		}
	}

	c := &domain.ContactSubmission{
		ContactID: id.New(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     req.Phone,
		Message:   req.Message,
		IP:        ip,
		Location:  loc,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.contactRepo.Put(ctx, c); err != nil {
		return nil, nil, err
	}

	outcomes := notify.Dispatch(ctx,
		notify.Job{
			Channel: "ack_email",
			Send: func(ctx context.Context) error {
				body := fmt.Sprintf(
					"<p>Hi %s,</p><p>We received your message and will get back to you soon.</p>",
					html.EscapeString(c.Name),
				)
				return s.mailer.SendEmail(c.Email, "We got your message", body)
			},
		},
		notify.Job{
			Channel: "support_email",
			Send: func(ctx context.Context) error {
				where := "unknown location"
				if c.Location != nil {
					where = fmt.Sprintf("%s, %s", c.Location.City, c.Location.Country)
				}
				body := fmt.Sprintf(
					"<p><strong>%s</strong> (%s, %s) wrote:</p><blockquote>%s</blockquote>",
					html.EscapeString(c.Name), html.EscapeString(c.Email), where,
					html.EscapeString(c.Message),
				)
				return s.mailer.SendEmail(s.supportEmail, "New contact submission", body)
			},
		},
	)

	return c, outcomes, nil
}
