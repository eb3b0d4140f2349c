package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/voyago-api/internal/domain"
)

// BookingRepo provides typed DynamoDB operations for the bookings table.
// PK: booking_id. A user_id-created_at-index GSI serves per-user listings
// in reverse chronological order.
type BookingRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewBookingRepo(client *dynamodb.Client, tableName string) *BookingRepo {
	return &BookingRepo{client: client, tableName: tableName}
}

func (r *BookingRepo) Put(ctx context.Context, b *domain.Booking) error {
	item, err := attributevalue.MarshalMap(b)
	if err != nil {
		return fmt.Errorf("marshal booking: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *BookingRepo) Get(ctx context.Context, bookingID string) (*domain.Booking, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("booking_id", bookingID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("booking not found: %w", domain.ErrNotFound)
	}
	var b domain.Booking
	if err := attributevalue.UnmarshalMap(out.Item, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByUser returns the user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-created_at-index"),
		KeyConditionExpression: aws.String("user_id = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	var bookings []domain.Booking
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// TransitionStatus flips the booking's status from one value to another.
// The check and the write are a single conditional update, so concurrent
// transitions of the same booking resolve to exactly one winner. Returns
// domain.ErrConflict when the booking is not in the expected status.
func (r *BookingRepo) TransitionStatus(ctx context.Context, bookingID, from, to string) error {
	upd, err := buildUpdateExpr(map[string]interface{}{
		fieldBookingStatus: to,
		fieldUpdatedAt:     time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	upd.Names["#cond"] = fieldBookingStatus
	upd.Values[":from"] = &types.AttributeValueMemberS{Value: from}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("booking_id", bookingID),
		UpdateExpression:          aws.String(upd.Expr),
		ExpressionAttributeNames:  upd.Names,
		ExpressionAttributeValues: upd.Values,
		ConditionExpression:       aws.String("attribute_exists(booking_id) AND #cond = :from"),
	})
	if err != nil {
		var ccfe *types.ConditionalCheckFailedException
		if errors.As(err, &ccfe) {
			return fmt.Errorf("booking not in %q status: %w", from, domain.ErrConflict)
		}
	}
	return err
}
