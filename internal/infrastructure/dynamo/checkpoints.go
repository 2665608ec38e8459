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

// CheckpointRepo provides typed DynamoDB operations for the checkpoints table.
// Checkpoints are append-only; there is deliberately no update operation.
type CheckpointRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCheckpointRepo(client *dynamodb.Client, tableName string) *CheckpointRepo {
	return &CheckpointRepo{client: client, tableName: tableName}
}

func (r *CheckpointRepo) Put(ctx context.Context, c *domain.Checkpoint) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByAlert queries the alert_id-created_at GSI, oldest first.
func (r *CheckpointRepo) ListByAlert(ctx context.Context, alertID string) ([]domain.Checkpoint, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("alert_id-created_at-index"),
		KeyConditionExpression: aws.String("alert_id = :aid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":aid": &types.AttributeValueMemberS{Value: alertID},
		},
		ScanIndexForward: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	var checkpoints []domain.Checkpoint
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &checkpoints); err != nil {
		return nil, err
	}
	return checkpoints, nil
}
