package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/voyago-api/internal/config"
	"github.com/voyago-api/internal/infrastructure/dynamo"
	"github.com/voyago-api/internal/infrastructure/geoip"
	"github.com/voyago-api/internal/infrastructure/google"
	jwtinfra "github.com/voyago-api/internal/infrastructure/jwt"
	"github.com/voyago-api/internal/infrastructure/razorpay"
	s3infra "github.com/voyago-api/internal/infrastructure/s3"
	"github.com/voyago-api/internal/infrastructure/smtp"
	"github.com/voyago-api/internal/infrastructure/sns"
	"github.com/voyago-api/internal/infrastructure/twilio"
	transporthttp "github.com/voyago-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional; auth routes degrade if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 store for place photos.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender (optional; booking SMS legs report "failed" without it).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		OTPRepo:          dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.OTPs),
		BookingRepo:      dynamo.NewBookingRepo(dynamoClient, cfg.DynamoTables.Bookings),
		ContactRepo:      dynamo.NewContactRepo(dynamoClient, cfg.DynamoTables.Contacts),
		CancellationRepo: dynamo.NewCancellationRepo(dynamoClient, cfg.DynamoTables.Cancellations),
		RefundRepo:       dynamo.NewRefundRepo(dynamoClient, cfg.DynamoTables.Refunds),
		PlaceRepo:        dynamo.NewPlaceRepo(dynamoClient, cfg.DynamoTables.Places),
		S3Store:          s3Store,
		Mailer:           mailer,
		SMSSender:        smsSender,
		JWTProvider:      jwtProvider,
		GoogleVerifier:   google.NewVerifier(cfg.GoogleClientID),
		Dialer:           twilio.NewDialer(cfg),
		Gateway:          razorpay.NewGateway(cfg),
		Geo:              geoip.NewResolver(cfg),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
