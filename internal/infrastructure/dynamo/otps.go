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

// OTPRepo stores one-time verification codes.
// PK: email. At most one live code per address: Put overwrites any
// previous code for the same email. The table carries a DynamoDB TTL on
// expires_at as garbage collection only; TTL deletion lags, so expiry is
// always enforced by the caller on the record's timestamp.
type OTPRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOTPRepo(client *dynamodb.Client, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

// Put writes the code for an email, replacing any existing one.
func (r *OTPRepo) Put(ctx context.Context, rec *domain.OTPRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ConsumeIfMatch deletes the record for email only if its stored code
// equals the supplied one, and returns the deleted record. The compare
// and the delete are a single conditional write, so two concurrent
// verifications of the same code cannot both succeed.
//
// Errors: domain.ErrNotFound when no record exists for the email,
// domain.ErrMismatch when a record exists but the code differs (the
// record is left in place so the user may retry).
func (r *OTPRepo) ConsumeIfMatch(ctx context.Context, email, code string) (*domain.OTPRecord, error) {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("email", email),
		ConditionExpression: aws.String("attribute_exists(email) AND #c = :c"),
		ExpressionAttributeNames: map[string]string{
			"#c": "code",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: code},
		},
		ReturnValues:                        types.ReturnValueAllOld,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var ccfe *types.ConditionalCheckFailedException
		if errors.As(err, &ccfe) {
			if len(ccfe.Item) == 0 {
				return nil, fmt.Errorf("no code issued for email: %w", domain.ErrNotFound)
			}
			return nil, fmt.Errorf("code does not match: %w", domain.ErrMismatch)
		}
		return nil, err
	}
	var rec domain.OTPRecord
	if err := attributevalue.UnmarshalMap(out.Attributes, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
