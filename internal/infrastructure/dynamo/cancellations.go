package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/voyago-api/internal/domain"
)

// CancellationRepo stores booking cancellation requests. PK: request_id.
// A booking_id-index GSI serves the duplicate-open-request check.
type CancellationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCancellationRepo(client *dynamodb.Client, tableName string) *CancellationRepo {
	return &CancellationRepo{client: client, tableName: tableName}
}

func (r *CancellationRepo) Put(ctx context.Context, c *domain.CancellationRequest) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal cancellation: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *CancellationRepo) Get(ctx context.Context, requestID string) (*domain.CancellationRequest, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("request_id", requestID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("cancellation request not found: %w", domain.ErrNotFound)
	}
	var c domain.CancellationRequest
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListOpenByBooking returns open requests tied to the booking. Used to
// reject a second request while one is still being worked.
func (r *CancellationRepo) ListOpenByBooking(ctx context.Context, bookingID string) ([]domain.CancellationRequest, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("booking_id-index"),
		KeyConditionExpression: aws.String("booking_id = :b"),
		FilterExpression:       aws.String("request_status = :s"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":b": &types.AttributeValueMemberS{Value: bookingID},
			":s": &types.AttributeValueMemberS{Value: domain.CancellationOpen},
		},
	})
	if err != nil {
		return nil, err
	}
	var reqs []domain.CancellationRequest
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// Resolve marks an open request as resolved. Returns domain.ErrConflict
// when the request was already resolved.
func (r *CancellationRepo) Resolve(ctx context.Context, requestID string) error {
	upd, err := buildUpdateExpr(map[string]interface{}{
		"request_status": domain.CancellationResolved,
	})
	if err != nil {
		return err
	}
	upd.Names["#cond"] = "request_status"
	upd.Values[":open"] = &types.AttributeValueMemberS{Value: domain.CancellationOpen}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("request_id", requestID),
		UpdateExpression:          aws.String(upd.Expr),
		ExpressionAttributeNames:  upd.Names,
		ExpressionAttributeValues: upd.Values,
		ConditionExpression:       aws.String("attribute_exists(request_id) AND #cond = :open"),
	})
	if err != nil {
		var ccfe *types.ConditionalCheckFailedException
		if errors.As(err, &ccfe) {
			return fmt.Errorf("request already resolved: %w", domain.ErrConflict)
		}
	}
	return err
}

// ScanAll returns every cancellation request. Admin-only listing; the
// table stays small enough that a scan is acceptable.
func (r *CancellationRepo) ScanAll(ctx context.Context) ([]domain.CancellationRequest, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}
	var reqs []domain.CancellationRequest
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}
