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

// PlaceRepo stores destination catalog entries. PK: slug.
type PlaceRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPlaceRepo(client *dynamodb.Client, tableName string) *PlaceRepo {
	return &PlaceRepo{client: client, tableName: tableName}
}

// Create inserts a place, rejecting a duplicate slug atomically.
func (r *PlaceRepo) Create(ctx context.Context, p *domain.Place) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal place: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(slug)"),
	})
	if err != nil {
		var ccfe *types.ConditionalCheckFailedException
		if errors.As(err, &ccfe) {
			return fmt.Errorf("place already exists: %w", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *PlaceRepo) Get(ctx context.Context, slug string) (*domain.Place, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("slug", slug),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("place not found: %w", domain.ErrNotFound)
	}
	var p domain.Place
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlaceRepo) Update(ctx context.Context, slug string, updates map[string]interface{}) error {
	upd, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("slug", slug),
		UpdateExpression:          aws.String(upd.Expr),
		ExpressionAttributeNames:  upd.Names,
		ExpressionAttributeValues: upd.Values,
		ConditionExpression:       aws.String("attribute_exists(slug)"),
	})
	if err != nil {
		var ccfe *types.ConditionalCheckFailedException
		if errors.As(err, &ccfe) {
			return fmt.Errorf("place not found: %w", domain.ErrNotFound)
		}
	}
	return err
}

func (r *PlaceRepo) ScanAll(ctx context.Context) ([]domain.Place, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}
	var places []domain.Place
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &places); err != nil {
		return nil, err
	}
	return places, nil
}
