package cancellation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/voyago-api/internal/domain"
	"github.com/voyago-api/internal/pkg/clock"
	"github.com/voyago-api/internal/pkg/id"
	"github.com/voyago-api/internal/pkg/notify"
)

// CancellationStore persists cancellation requests.
type CancellationStore interface {
	Put(ctx context.Context, c *domain.CancellationRequest) error
	Get(ctx context.Context, requestID string) (*domain.CancellationRequest, error)
	ListOpenByBooking(ctx context.Context, bookingID string) ([]domain.CancellationRequest, error)
	Resolve(ctx context.Context, requestID string) error
	ScanAll(ctx context.Context) ([]domain.CancellationRequest, error)
}

// BookingGetter checks that a referenced booking exists.
type BookingGetter interface {
	Get(ctx context.Context, bookingID string) (*domain.Booking, error)
}

// Mailer delivers acknowledgement and resolution mail.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type Service interface {
	Submit(ctx context.Context, req domain.CreateCancellationRequest) (*domain.CancellationRequest, map[string]string, error)
	List(ctx context.Context) ([]domain.CancellationRequest, error)
	Resolve(ctx context.Context, requestID string) error
}

type ServiceDeps struct {
	CancellationRepo CancellationStore
	BookingRepo      BookingGetter
	Mailer           Mailer
	Clock            clock.Clock
}

type service struct {
	cancellationRepo CancellationStore
	bookingRepo      BookingGetter
	mailer           Mailer
	clock            clock.Clock
}

func NewService(deps ServiceDeps) Service {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	return &service{
		cancellationRepo: deps.CancellationRepo,
		bookingRepo:      deps.BookingRepo,
		mailer:           deps.Mailer,
		clock:            deps.Clock,
	}
}

// Submit files a cancellation request. When it names a booking, the
// booking must exist and must not already have an open request. The write
// commits first; the acknowledgement email is best effort.
func (s *service) Submit(ctx context.Context, req domain.CreateCancellationRequest) (*domain.CancellationRequest, map[string]string, error) {
	if req.BookingID != nil {
		if _, err := s.bookingRepo.Get(ctx, *req.BookingID); err != nil {
			return nil, nil, err
		}
		open, err := s.cancellationRepo.ListOpenByBooking(ctx, *req.BookingID)
		if err != nil {
			return nil, nil, err
		}
		if len(open) > 0 {
			return nil, nil, fmt.Errorf("an open cancellation request already exists for this booking: %w", domain.ErrConflict)
		}
	}

	c := &domain.CancellationRequest{
		RequestID: id.New(),
		BookingID: req.BookingID,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Reason:    req.Reason,
		Status:    domain.CancellationOpen,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.cancellationRepo.Put(ctx, c); err != nil {
		return nil, nil, err
	}

	outcomes := notify.Dispatch(ctx, notify.Job{
		Channel: "email",
		Send: func(ctx context.Context) error {
			body := fmt.Sprintf(
				"<p>We received your cancellation request (<strong>%s</strong>) and will process it shortly.</p>",
				c.RequestID,
			)
			return s.mailer.SendEmail(c.Email, "Cancellation request received", body)
		},
	})

	return c, outcomes, nil
}

func (s *service) List(ctx context.Context) ([]domain.CancellationRequest, error) {
	return s.cancellationRepo.ScanAll(ctx)
}

// Resolve closes an open request and tells the requester. The status
// change is authoritative; the email is best effort.
func (s *service) Resolve(ctx context.Context, requestID string) error {
	c, err := s.cancellationRepo.Get(ctx, requestID)
	if err != nil {
		return err
	}
	if err := s.cancellationRepo.Resolve(ctx, requestID); err != nil {
		return err
	}

	body := fmt.Sprintf(
		"<p>Your cancellation request <strong>%s</strong> has been processed.</p>",
		requestID,
	)
	if err := s.mailer.SendEmail(c.Email, "Cancellation processed", body); err != nil {
		slog.Warn("cancellation resolution email failed", "request_id", requestID, "err", err)
	}
	return nil
}
