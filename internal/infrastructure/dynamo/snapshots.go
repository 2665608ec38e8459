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

// SnapshotRepo provides typed DynamoDB operations for the device_snapshots
// table. Snapshots are append-only.
type SnapshotRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSnapshotRepo(client *dynamodb.Client, tableName string) *SnapshotRepo {
	return &SnapshotRepo{client: client, tableName: tableName}
}

func (r *SnapshotRepo) Put(ctx context.Context, s *domain.DeviceSnapshot) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByAlert queries the alert_id GSI.
func (r *SnapshotRepo) ListByAlert(ctx context.Context, alertID string) ([]domain.DeviceSnapshot, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("alert_id-index"),
		KeyConditionExpression: aws.String("alert_id = :aid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":aid": &types.AttributeValueMemberS{Value: alertID},
		},
	})
	if err != nil {
		return nil, err
	}
	var snapshots []domain.DeviceSnapshot
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}
