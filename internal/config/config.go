package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	// PublicBaseURL is the externally reachable origin of this API, used to
	// build password-reset links and the voice-script callback URL.
	PublicBaseURL string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	TokenTTL          time.Duration // access token lifetime (policy range 1h-7d)
	ResetTokenTTL     time.Duration // password-reset token lifetime
	OTPTTL            time.Duration // one-time passcode lifetime

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion string

	TwilioBaseURL    string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	RazorpayBaseURL   string
	RazorpayKeyID     string
	RazorpayKeySecret string

	GeoIPBaseURL string

	GoogleClientID string

	SupportEmail   string   // contact-form submissions are forwarded here
	AdminEmails    []string // accounts created with these emails get the admin role
	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	OTPs          string
	Bookings      string
	Contacts      string
	Cancellations string
	Refunds       string
	Places        string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:       getEnv("APP_PORT", "3000"),
		AppEnv:        getEnv("APP_ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			OTPs:          getEnv("DYNAMO_TABLE_OTPS", "otps"),
			Bookings:      getEnv("DYNAMO_TABLE_BOOKINGS", "bookings"),
			Contacts:      getEnv("DYNAMO_TABLE_CONTACTS", "contacts"),
			Cancellations: getEnv("DYNAMO_TABLE_CANCELLATIONS", "cancellations"),
			Refunds:       getEnv("DYNAMO_TABLE_REFUNDS", "refunds"),
			Places:        getEnv("DYNAMO_TABLE_PLACES", "places"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "voyago-media"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		TokenTTL:          time.Duration(getEnvInt("TOKEN_TTL_HOURS", 72)) * time.Hour,
		ResetTokenTTL:     time.Duration(getEnvInt("RESET_TOKEN_TTL_MINUTES", 15)) * time.Minute,
		OTPTTL:            time.Duration(getEnvInt("OTP_TTL_MINUTES", 10)) * time.Minute,

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@voyago.example"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

		TwilioBaseURL:    getEnv("TWILIO_BASE_URL", "https://api.twilio.com"),
		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),

		RazorpayBaseURL:   getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),

		GeoIPBaseURL: getEnv("GEOIP_BASE_URL", "http://ip-api.com"),

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		SupportEmail:   getEnv("SUPPORT_EMAIL", "support@voyago.example"),
		AdminEmails:    splitList(getEnv("ADMIN_EMAILS", "")),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
