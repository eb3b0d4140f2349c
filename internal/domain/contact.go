package domain

import "time"

// GeoLocation is the best-effort IP geolocation attached to a contact
// submission. A nil location means the lookup failed or was skipped.
type GeoLocation struct {
	City    string  `json:"city,omitempty" dynamodbav:"city"`
	Region  string  `json:"region,omitempty" dynamodbav:"region"`
	Country string  `json:"country,omitempty" dynamodbav:"country"`
	Lat     float64 `json:"lat,omitempty" dynamodbav:"lat"`
	Lon     float64 `json:"lon,omitempty" dynamodbav:"lon"`
}

type ContactSubmission struct {
	ContactID string       `json:"id" dynamodbav:"contact_id"`
	Name      string       `json:"name" dynamodbav:"name"`
	Email     string       `json:"email" dynamodbav:"email"`
	Phone     *string      `json:"phone,omitempty" dynamodbav:"phone"`
	Message   string       `json:"message" dynamodbav:"message"`
	IP        string       `json:"-" dynamodbav:"ip"`
	Location  *GeoLocation `json:"location,omitempty" dynamodbav:"location,omitempty"`
	CreatedAt time.Time    `json:"created" dynamodbav:"created_at"`
}

type ContactRequest struct {
	Name    string  `json:"name" validate:"required,min=2,max=100"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   *string `json:"phone" validate:"omitempty,e164"`
	Message string  `json:"message" validate:"required,min=5,max=2000"`
}
