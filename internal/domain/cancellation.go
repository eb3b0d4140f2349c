package domain

import "time"

// Cancellation request statuses.
const (
	CancellationOpen     = "open"
	CancellationResolved = "resolved"
)

type CancellationRequest struct {
	RequestID string    `json:"id" dynamodbav:"request_id"`
	BookingID *string   `json:"booking_id,omitempty" dynamodbav:"booking_id,omitempty"`
	Email     string    `json:"email" dynamodbav:"email"`
	Reason    string    `json:"reason" dynamodbav:"reason"`
	Status    string    `json:"status" dynamodbav:"request_status"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}

type CreateCancellationRequest struct {
	BookingID *string `json:"booking_id"`
	Email     string  `json:"email" validate:"required,email"`
	Reason    string  `json:"reason" validate:"required,min=5,max=1000"`
}
