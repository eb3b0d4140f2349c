package domain

import "time"

// Travel categories a booking can belong to.
const (
	CategoryFlight = "flight"
	CategoryHotel  = "hotel"
	CategoryCar    = "car"
	CategoryTrain  = "train"
	CategoryBus    = "bus"
)

// Booking statuses.
const (
	BookingConfirmed = "confirmed"
	BookingRefunded  = "refunded"
)

// Booking is a confirmed reservation in one travel category. Exactly one of
// the category detail pointers is populated, matching Category, so each
// variant gets its own validation rather than sharing an untyped blob.
type Booking struct {
	BookingID    string         `json:"id" dynamodbav:"booking_id"`
	UserID       string         `json:"user_id" dynamodbav:"user_id"`
	Category     string         `json:"category" dynamodbav:"category"`
	Flight       *FlightDetails `json:"flight,omitempty" dynamodbav:"flight,omitempty"`
	Hotel        *HotelDetails  `json:"hotel,omitempty" dynamodbav:"hotel,omitempty"`
	Car          *CarDetails    `json:"car,omitempty" dynamodbav:"car,omitempty"`
	Train        *TrainDetails  `json:"train,omitempty" dynamodbav:"train,omitempty"`
	Bus          *BusDetails    `json:"bus,omitempty" dynamodbav:"bus,omitempty"`
	AmountMinor  int64          `json:"amount_minor" dynamodbav:"amount_minor"`
	Currency     string         `json:"currency" dynamodbav:"currency"`
	PaymentID    string         `json:"payment_id" dynamodbav:"payment_id"`
	Status       string         `json:"status" dynamodbav:"status"`
	ContactEmail string         `json:"contact_email" dynamodbav:"contact_email"`
	ContactPhone *string        `json:"contact_phone,omitempty" dynamodbav:"contact_phone"`
	CreatedAt    time.Time      `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time      `json:"updated" dynamodbav:"updated_at"`
}

type FlightDetails struct {
	From          string `json:"from" validate:"required" dynamodbav:"from"`
	To            string `json:"to" validate:"required" dynamodbav:"to"`
	DepartureDate string `json:"departure_date" validate:"required,datetime=2006-01-02" dynamodbav:"departure_date"`
	ReturnDate    string `json:"return_date,omitempty" validate:"omitempty,datetime=2006-01-02" dynamodbav:"return_date"`
	Passengers    int    `json:"passengers" validate:"required,min=1,max=9" dynamodbav:"passengers"`
}

type HotelDetails struct {
	City     string `json:"city" validate:"required" dynamodbav:"city"`
	CheckIn  string `json:"check_in" validate:"required,datetime=2006-01-02" dynamodbav:"check_in"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02" dynamodbav:"check_out"`
	Rooms    int    `json:"rooms" validate:"required,min=1,max=10" dynamodbav:"rooms"`
	Guests   int    `json:"guests" validate:"required,min=1,max=20" dynamodbav:"guests"`
}

type CarDetails struct {
	PickupCity  string `json:"pickup_city" validate:"required" dynamodbav:"pickup_city"`
	DropoffCity string `json:"dropoff_city" validate:"required" dynamodbav:"dropoff_city"`
	PickupDate  string `json:"pickup_date" validate:"required,datetime=2006-01-02" dynamodbav:"pickup_date"`
	Days        int    `json:"days" validate:"required,min=1,max=60" dynamodbav:"days"`
}

type TrainDetails struct {
	From       string `json:"from" validate:"required" dynamodbav:"from"`
	To         string `json:"to" validate:"required" dynamodbav:"to"`
	TravelDate string `json:"travel_date" validate:"required,datetime=2006-01-02" dynamodbav:"travel_date"`
	Passengers int    `json:"passengers" validate:"required,min=1,max=9" dynamodbav:"passengers"`
}

type BusDetails struct {
	From       string `json:"from" validate:"required" dynamodbav:"from"`
	To         string `json:"to" validate:"required" dynamodbav:"to"`
	TravelDate string `json:"travel_date" validate:"required,datetime=2006-01-02" dynamodbav:"travel_date"`
	Seats      int    `json:"seats" validate:"required,min=1,max=10" dynamodbav:"seats"`
}

// CreateBookingRequest carries one populated detail variant; the service
// rejects requests where the populated variant does not match Category.
type CreateBookingRequest struct {
	Category     string         `json:"category" validate:"required,oneof=flight hotel car train bus"`
	Flight       *FlightDetails `json:"flight,omitempty"`
	Hotel        *HotelDetails  `json:"hotel,omitempty"`
	Car          *CarDetails    `json:"car,omitempty"`
	Train        *TrainDetails  `json:"train,omitempty"`
	Bus          *BusDetails    `json:"bus,omitempty"`
	AmountMinor  int64          `json:"amount_minor" validate:"required,gt=0"`
	Currency     string         `json:"currency" validate:"required,len=3"`
	PaymentID    string         `json:"payment_id" validate:"required"`
	ContactEmail string         `json:"contact_email" validate:"required,email"`
	ContactPhone *string        `json:"contact_phone" validate:"omitempty,e164"`
}
