package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/alerta-api/internal/domain"
)

// AlertTypeRepo provides typed DynamoDB operations for the alert_types table.
type AlertTypeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAlertTypeRepo(client *dynamodb.Client, tableName string) *AlertTypeRepo {
	return &AlertTypeRepo{client: client, tableName: tableName}
}

func (r *AlertTypeRepo) Get(ctx context.Context, alertTypeID string) (*domain.AlertType, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("alert_type_id", alertTypeID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("alert type %s: %w", alertTypeID, domain.ErrNotFound)
	}
	var t domain.AlertType
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *AlertTypeRepo) GetByCode(ctx context.Context, code string) (*domain.AlertType, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("code-index"),
		KeyConditionExpression: aws.String("code = :c"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: code},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("alert type code %s: %w", code, domain.ErrNotFound)
	}
	var t domain.AlertType
	if err := attributevalue.UnmarshalMap(out.Items[0], &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *AlertTypeRepo) Scan(ctx context.Context) ([]domain.AlertType, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}
	var list []domain.AlertType
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &list); err != nil {
		return nil, err
	}
	return list, nil
}
