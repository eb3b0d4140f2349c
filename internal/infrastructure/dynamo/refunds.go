package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/voyago-api/internal/domain"
)

// RefundRepo stores refund outcomes. PK: refund_id. A sparse
// booking_id-index GSI links refunds back to bookings.
type RefundRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRefundRepo(client *dynamodb.Client, tableName string) *RefundRepo {
	return &RefundRepo{client: client, tableName: tableName}
}

func (r *RefundRepo) Put(ctx context.Context, rec *domain.RefundRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal refund: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *RefundRepo) Get(ctx context.Context, refundID string) (*domain.RefundRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("refund_id", refundID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("refund not found: %w", domain.ErrNotFound)
	}
	var rec domain.RefundRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RefundRepo) ListByBooking(ctx context.Context, bookingID string) ([]domain.RefundRecord, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("booking_id-index"),
		KeyConditionExpression: aws.String("booking_id = :b"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":b": &types.AttributeValueMemberS{Value: bookingID},
		},
	})
	if err != nil {
		return nil, err
	}
	var recs []domain.RefundRecord
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
