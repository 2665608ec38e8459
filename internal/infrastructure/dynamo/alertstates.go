package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/alerta-api/internal/domain"
)

// AlertStateRepo provides typed DynamoDB operations for the alert_states table.
type AlertStateRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAlertStateRepo(client *dynamodb.Client, tableName string) *AlertStateRepo {
	return &AlertStateRepo{client: client, tableName: tableName}
}

func (r *AlertStateRepo) Get(ctx context.Context, alertStateID string) (*domain.AlertState, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("alert_state_id", alertStateID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("alert state %s: %w", alertStateID, domain.ErrNotFound)
	}
	var s domain.AlertState
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *AlertStateRepo) Scan(ctx context.Context) ([]domain.AlertState, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}
	var list []domain.AlertState
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListVisible returns global states plus states scoped to any tenant in the set.
func (r *AlertStateRepo) ListVisible(ctx context.Context, customerIDs []string) ([]domain.AlertState, error) {
	all, err := r.Scan(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(customerIDs))
	for _, id := range customerIDs {
		set[id] = true
	}
	var visible []domain.AlertState
	for _, s := range all {
		if s.CustomerID == nil || set[*s.CustomerID] {
			visible = append(visible, s)
		}
	}
	return visible, nil
}
