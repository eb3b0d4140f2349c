package domain

// OTPRecord is the single outstanding one-time passcode for an email address.
// PK: email. ExpiresAt is a Unix timestamp doubling as the DynamoDB TTL.
// Issuing a new code for the same email replaces the record (upsert), so at
// most one code is ever live per address.
type OTPRecord struct {
	Email     string `json:"email" dynamodbav:"email"`
	Code      string `json:"-" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}
