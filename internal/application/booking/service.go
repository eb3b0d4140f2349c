package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/voyago-api/internal/domain"
	"github.com/voyago-api/internal/infrastructure/razorpay"
	"github.com/voyago-api/internal/pkg/clock"
	"github.com/voyago-api/internal/pkg/id"
	"github.com/voyago-api/internal/pkg/notify"
)

// BookingStore is the persistence the booking flow needs.
type BookingStore interface {
	Put(ctx context.Context, b *domain.Booking) error
	Get(ctx context.Context, bookingID string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	TransitionStatus(ctx context.Context, bookingID, from, to string) error
}

// RefundStore records processed refunds.
type RefundStore interface {
	Put(ctx context.Context, rec *domain.RefundRecord) error
}

// Gateway processes payment refunds.
type Gateway interface {
	Refund(ctx context.Context, paymentID string, amountMinor int64, notes map[string]string) (*razorpay.RefundResult, error)
}

// Mailer delivers booking and refund confirmations.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// SMSSender delivers the SMS leg of booking confirmations.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type Service interface {
	Create(ctx context.Context, userID string, req domain.CreateBookingRequest) (*domain.Booking, map[string]string, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	Refund(ctx context.Context, req domain.RefundRequest) (*domain.RefundRecord, map[string]string, error)
}

type ServiceDeps struct {
	BookingRepo BookingStore
	RefundRepo  RefundStore
	Gateway     Gateway
	Mailer      Mailer
	SMSSender   SMSSender
	Clock       clock.Clock
}

type service struct {
	bookingRepo BookingStore
	refundRepo  RefundStore
	gateway     Gateway
	mailer      Mailer
	smsSender   SMSSender
	clock       clock.Clock
}

func NewService(deps ServiceDeps) Service {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	return &service{
		bookingRepo: deps.BookingRepo,
		refundRepo:  deps.RefundRepo,
		gateway:     deps.Gateway,
		mailer:      deps.Mailer,
		smsSender:   deps.SMSSender,
		clock:       deps.Clock,
	}
}

// Create persists the booking, then fans out confirmation notifications.
// The write is authoritative: delivery failures are reported per channel
// in the returned outcomes map and never fail the booking itself.
func (s *service) Create(ctx context.Context, userID string, req domain.CreateBookingRequest) (*domain.Booking, map[string]string, error) {
	if err := validateCategoryDetails(&req); err != nil {
		return nil, nil, err
	}

	now := s.clock.Now().UTC()
	b := &domain.Booking{
		BookingID:    id.New(),
		UserID:       userID,
		Category:     req.Category,
		Flight:       req.Flight,
		Hotel:        req.Hotel,
		Car:          req.Car,
		Train:        req.Train,
		Bus:          req.Bus,
		AmountMinor:  req.AmountMinor,
		Currency:     strings.ToUpper(req.Currency),
		PaymentID:    req.PaymentID,
		Status:       domain.BookingConfirmed,
		ContactEmail: strings.ToLower(strings.TrimSpace(req.ContactEmail)),
		ContactPhone: req.ContactPhone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.bookingRepo.Put(ctx, b); err != nil {
		return nil, nil, err
	}

	jobs := []notify.Job{{
		Channel: "email",
		Send: func(ctx context.Context) error {
			body := fmt.Sprintf(
				"<p>Your %s booking is confirmed.</p><p>Reference: <strong>%s</strong></p>",
				b.Category, b.BookingID,
			)
			return s.mailer.SendEmail(b.ContactEmail, "Booking confirmed", body)
		},
	}}
	if b.ContactPhone != nil {
		phone := *b.ContactPhone
		jobs = append(jobs, notify.Job{
			Channel: "sms",
			Send: func(ctx context.Context) error {
				if s.smsSender == nil {
					return fmt.Errorf("sms sender not configured: %w", domain.ErrUpstream)
				}
				msg := fmt.Sprintf("Your %s booking %s is confirmed.", b.Category, b.BookingID)
				return s.smsSender.SendSMS(ctx, phone, msg)
			},
		})
	}
	outcomes := notify.Dispatch(ctx, jobs...)

	return b, outcomes, nil
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.bookingRepo.ListByUser(ctx, userID)
}

// Refund reverses a payment. When the request names a booking, the
// booking's status is flipped to refunded before the gateway call; the
// conditional transition picks exactly one winner under concurrency, so
// the gateway is never asked to refund the same booking twice. A gateway
// failure rolls the status back.
func (s *service) Refund(ctx context.Context, req domain.RefundRequest) (*domain.RefundRecord, map[string]string, error) {
	var booked *domain.Booking
	if req.BookingID != nil {
		b, err := s.bookingRepo.Get(ctx, *req.BookingID)
		if err != nil {
			return nil, nil, err
		}
		if b.PaymentID != req.PaymentID {
			return nil, nil, fmt.Errorf("payment does not belong to booking: %w", domain.ErrBadRequest)
		}
		if err := s.bookingRepo.TransitionStatus(ctx, b.BookingID, domain.BookingConfirmed, domain.BookingRefunded); err != nil {
			return nil, nil, err
		}
		booked = b
	}

	res, err := s.gateway.Refund(ctx, req.PaymentID, req.AmountMinor, map[string]string{"reason": req.Reason})
	if err != nil {
		if booked != nil {
			if rbErr := s.bookingRepo.TransitionStatus(ctx, booked.BookingID, domain.BookingRefunded, domain.BookingConfirmed); rbErr != nil {
				slog.Error("refund rollback failed; booking stuck in refunded",
					"booking_id", booked.BookingID, "err", rbErr)
			}
		}
		return nil, nil, err
	}

	rec := &domain.RefundRecord{
		RefundID:        id.New(),
		PaymentID:       req.PaymentID,
		BookingID:       req.BookingID,
		AmountMinor:     req.AmountMinor,
		Currency:        strings.ToUpper(req.Currency),
		Reason:          req.Reason,
		GatewayRefundID: res.ID,
		Status:          res.Status,
		CreatedAt:       s.clock.Now().UTC(),
	}
	if err := s.refundRepo.Put(ctx, rec); err != nil {
		return nil, nil, err
	}

	outcomes := map[string]string{}
	if booked != nil {
		outcomes = notify.Dispatch(ctx, notify.Job{
			Channel: "email",
			Send: func(ctx context.Context) error {
				body := fmt.Sprintf(
					"<p>Your refund for booking <strong>%s</strong> has been processed.</p>",
					booked.BookingID,
				)
				return s.mailer.SendEmail(booked.ContactEmail, "Refund processed", body)
			},
		})
	}

	return rec, outcomes, nil
}

// validateCategoryDetails enforces the tagged union: exactly one detail
// block may be present and it must match the declared category.
func validateCategoryDetails(req *domain.CreateBookingRequest) error {
	populated := map[string]bool{
		domain.CategoryFlight: req.Flight != nil,
		domain.CategoryHotel:  req.Hotel != nil,
		domain.CategoryCar:    req.Car != nil,
		domain.CategoryTrain:  req.Train != nil,
		domain.CategoryBus:    req.Bus != nil,
	}

	count := 0
	for _, present := range populated {
		if present {
			count++
		}
	}
	if count == 0 {
		return fmt.Errorf("missing %s details: %w", req.Category, domain.ErrBadRequest)
	}
	if count > 1 {
		return fmt.Errorf("multiple category detail blocks present: %w", domain.ErrBadRequest)
	}
	if !populated[req.Category] {
		return fmt.Errorf("details do not match category %q: %w", req.Category, domain.ErrBadRequest)
	}
	return nil
}
