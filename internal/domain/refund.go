package domain

import "time"

// RefundRecord is the stored outcome of a successful gateway refund.
type RefundRecord struct {
	RefundID        string    `json:"id" dynamodbav:"refund_id"`
	PaymentID       string    `json:"payment_id" dynamodbav:"payment_id"`
	BookingID       *string   `json:"booking_id,omitempty" dynamodbav:"booking_id,omitempty"`
	AmountMinor     int64     `json:"amount_minor" dynamodbav:"amount_minor"`
	Currency        string    `json:"currency" dynamodbav:"currency"`
	Reason          string    `json:"reason" dynamodbav:"reason"`
	GatewayRefundID string    `json:"gateway_refund_id" dynamodbav:"gateway_refund_id"`
	Status          string    `json:"status" dynamodbav:"refund_status"`
	CreatedAt       time.Time `json:"created" dynamodbav:"created_at"`
}

type RefundRequest struct {
	PaymentID   string  `json:"payment_id" validate:"required"`
	BookingID   *string `json:"booking_id"`
	AmountMinor int64   `json:"amount_minor" validate:"required,gt=0"`
	Currency    string  `json:"currency" validate:"required,len=3"`
	Reason      string  `json:"reason" validate:"required,min=3,max=500"`
}
