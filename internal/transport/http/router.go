package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/voyago-api/internal/application/auth"
	"github.com/voyago-api/internal/application/booking"
	"github.com/voyago-api/internal/application/cancellation"
	"github.com/voyago-api/internal/application/contact"
	"github.com/voyago-api/internal/application/otp"
	"github.com/voyago-api/internal/application/place"
	"github.com/voyago-api/internal/application/voice"
	"github.com/voyago-api/internal/config"
	"github.com/voyago-api/internal/domain"
	"github.com/voyago-api/internal/infrastructure/dynamo"
	"github.com/voyago-api/internal/infrastructure/geoip"
	"github.com/voyago-api/internal/infrastructure/google"
	jwtinfra "github.com/voyago-api/internal/infrastructure/jwt"
	"github.com/voyago-api/internal/infrastructure/razorpay"
	s3infra "github.com/voyago-api/internal/infrastructure/s3"
	"github.com/voyago-api/internal/infrastructure/smtp"
	"github.com/voyago-api/internal/infrastructure/sns"
	"github.com/voyago-api/internal/infrastructure/twilio"
	"github.com/voyago-api/internal/transport/http/handler"
	appmiddleware "github.com/voyago-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	OTPRepo          *dynamo.OTPRepo
	BookingRepo      *dynamo.BookingRepo
	ContactRepo      *dynamo.ContactRepo
	CancellationRepo *dynamo.CancellationRepo
	RefundRepo       *dynamo.RefundRepo
	PlaceRepo        *dynamo.PlaceRepo
	S3Store          *s3infra.Store
	Mailer           smtp.Mailer
	SMSSender        sns.SMSSender
	JWTProvider      *jwtinfra.Provider
	GoogleVerifier   *google.Verifier
	Dialer           twilio.Dialer
	Gateway          razorpay.Gateway
	Geo              geoip.Resolver
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10, applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	otpSvc := otp.NewService(otp.ServiceDeps{
		OTPRepo: deps.OTPRepo,
		Mailer:  deps.Mailer,
		TTL:     cfg.OTPTTL,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:       deps.UserRepo,
		Mailer:         deps.Mailer,
		Tokens:         deps.JWTProvider,
		GoogleVerifier: deps.GoogleVerifier,
		ResetTokenTTL:  cfg.ResetTokenTTL,
		PublicBaseURL:  cfg.PublicBaseURL,
		AdminEmails:    cfg.AdminEmails,
	})
	bookingSvc := booking.NewService(booking.ServiceDeps{
		BookingRepo: deps.BookingRepo,
		RefundRepo:  deps.RefundRepo,
		Gateway:     deps.Gateway,
		Mailer:      deps.Mailer,
		SMSSender:   deps.SMSSender,
	})
	contactSvc := contact.NewService(contact.ServiceDeps{
		ContactRepo:  deps.ContactRepo,
		Geo:          deps.Geo,
		Mailer:       deps.Mailer,
		SupportEmail: cfg.SupportEmail,
	})
	cancellationSvc := cancellation.NewService(cancellation.ServiceDeps{
		CancellationRepo: deps.CancellationRepo,
		BookingRepo:      deps.BookingRepo,
		Mailer:           deps.Mailer,
	})
	placeSvc := place.NewService(place.ServiceDeps{
		PlaceRepo: deps.PlaceRepo,
		Media:     deps.S3Store,
	})
	voiceSvc := voice.NewService(voice.ServiceDeps{
		Places:        deps.PlaceRepo,
		Dialer:        deps.Dialer,
		PublicBaseURL: cfg.PublicBaseURL,
	})

	healthH := handler.NewHealthHandler()
	otpH := handler.NewOTPHandler(otpSvc)
	authH := handler.NewAuthHandler(authSvc)
	bookingH := handler.NewBookingHandler(bookingSvc)
	contactH := handler.NewContactHandler(contactSvc)
	cancellationH := handler.NewCancellationHandler(cancellationSvc)
	placeH := handler.NewPlaceHandler(placeSvc)
	voiceH := handler.NewVoiceHandler(voiceSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health", healthH.Check)

		r.With(sensitiveRL.Limit).Post("/auth/send-otp", otpH.Send)
		r.With(sensitiveRL.Limit).Post("/auth/verify-otp", otpH.Verify)
		r.With(sensitiveRL.Limit).Post("/auth/signup", authH.Signup)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.With(sensitiveRL.Limit).Post("/auth/google", authH.GoogleSignIn)
		r.With(sensitiveRL.Limit).Post("/auth/forgot-password", authH.ForgotPassword)
		r.With(sensitiveRL.Limit).Post("/auth/reset-password/{token}", authH.ResetPassword)

		r.Post("/contact", contactH.Submit)
		r.Post("/cancellation-requests", cancellationH.Submit)

		r.Get("/places", placeH.List)
		r.Get("/places/{slug}", placeH.Get)
		r.Get("/places/{slug}/photo", placeH.Photo)

		// The telephony provider fetches this mid-call; it cannot send a token.
		r.Get("/twiml/{placeName}", voiceH.Twiml)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/auth/me", authH.Me)
			r.Post("/bookings", bookingH.Create)
			r.Get("/bookings/{userId}", bookingH.ListByUser)
			r.Post("/call-user", voiceH.CallUser)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Post("/refund", bookingH.Refund)
				r.Get("/cancellation-requests", cancellationH.List)
				r.Post("/cancellation-requests/{id}/resolve", cancellationH.Resolve)
				r.Post("/places", placeH.Create)
				r.Post("/places/{slug}/photo", placeH.UploadPhoto)
			})
		})
	})

	return r
}
