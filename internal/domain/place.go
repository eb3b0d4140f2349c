package domain

import "time"

// Place is a destination in the catalog. Slug is the lowercased hyphenated
// name and serves both as the partition key and the /twiml/{placeName} key.
type Place struct {
	Slug        string    `json:"slug" dynamodbav:"slug"`
	Name        string    `json:"name" dynamodbav:"name"`
	Description string    `json:"description" dynamodbav:"description"`
	PhotoKey    string    `json:"-" dynamodbav:"photo_key"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreatePlaceRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"required,min=10,max=2000"`
}
