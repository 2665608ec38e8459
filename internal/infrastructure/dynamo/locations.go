package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/alerta-api/internal/domain"
)

// LocationRepo provides typed DynamoDB operations for the locations registry.
type LocationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewLocationRepo(client *dynamodb.Client, tableName string) *LocationRepo {
	return &LocationRepo{client: client, tableName: tableName}
}

// ListByType queries the type GSI ("locality" or "neighborhood").
func (r *LocationRepo) ListByType(ctx context.Context, locationType string) ([]domain.Location, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("type-index"),
		KeyConditionExpression: aws.String("#t = :t"),
		ExpressionAttributeNames: map[string]string{
			"#t": "type",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberS{Value: locationType},
		},
	})
	if err != nil {
		return nil, err
	}
	var locations []domain.Location
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *LocationRepo) Get(ctx context.Context, locationID string) (*domain.Location, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("location_id", locationID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, domain.ErrNotFound
	}
	var l domain.Location
	if err := attributevalue.UnmarshalMap(out.Item, &l); err != nil {
		return nil, err
	}
	return &l, nil
}
