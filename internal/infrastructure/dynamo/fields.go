package dynamo

// DynamoDB attribute names used in update expressions across repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldPasswordHash   = "password_hash"
	fieldResetToken     = "reset_token"
	fieldResetExpiresAt = "reset_expires_at"
	fieldBookingStatus  = "status"
	fieldPhotoKey       = "photo_key"
	fieldUpdatedAt      = "updated_at"
)
