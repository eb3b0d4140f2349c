package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account on the platform. Email is the partition key in the store;
// UserID is the stable identifier bound into signed tokens.
type User struct {
	Email          string    `json:"email" dynamodbav:"email"`
	UserID         string    `json:"id" dynamodbav:"user_id"`
	Name           string    `json:"name" dynamodbav:"name"`
	PasswordHash   string    `json:"-" dynamodbav:"password_hash"`
	Role           string    `json:"role" dynamodbav:"role"`
	Verified       bool      `json:"verified" dynamodbav:"verified"`
	AuthProvider   string    `json:"auth_provider,omitempty" dynamodbav:"auth_provider"` // "local" | "google"
	GoogleSub      string    `json:"-" dynamodbav:"google_sub"`
	ResetToken     string    `json:"-" dynamodbav:"reset_token"`
	ResetExpiresAt int64     `json:"-" dynamodbav:"reset_expires_at"` // Unix seconds; 0 = no reset pending
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}
