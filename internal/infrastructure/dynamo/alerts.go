package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/alerta-api/internal/domain"
)

// AlertRepo provides typed DynamoDB operations for the alerts table.
type AlertRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAlertRepo(client *dynamodb.Client, tableName string) *AlertRepo {
	return &AlertRepo{client: client, tableName: tableName}
}

func (r *AlertRepo) Put(ctx context.Context, a *domain.Alert) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *AlertRepo) Get(ctx context.Context, alertID string) (*domain.Alert, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("alert_id", alertID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("alert %s: %w", alertID, domain.ErrNotFound)
	}
	var a domain.Alert
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetForCustomer returns the alert only when it is owned by (or additionally
// linked to) the given tenant.
func (r *AlertRepo) GetForCustomer(ctx context.Context, alertID, customerID string) (*domain.Alert, error) {
	a, err := r.Get(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if a.CustomerID != customerID && (a.ParentID == nil || *a.ParentID != customerID) {
		return nil, fmt.Errorf("alert %s not visible to customer %s: %w", alertID, customerID, domain.ErrNotFound)
	}
	return a, nil
}

func (r *AlertRepo) Update(ctx context.Context, alertID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("alert_id", alertID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// ListByCustomers queries the customer_id-created_at GSI for every tenant in
// the set and applies the filter client-side. DynamoDB cannot filter on the
// derived columns server-side without extra GSIs, and result sets here are
// tenant-sized, not platform-sized.
func (r *AlertRepo) ListByCustomers(ctx context.Context, customerIDs []string, filter domain.AlertFilter) ([]domain.Alert, error) {
	var alerts []domain.Alert
	for _, customerID := range customerIDs {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String("customer_id-created_at-index"),
			KeyConditionExpression: aws.String("customer_id = :cid"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":cid": &types.AttributeValueMemberS{Value: customerID},
			},
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Alert
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		for i := range page {
			if filter.Matches(&page[i]) {
				alerts = append(alerts, page[i])
			}
		}
	}
	return alerts, nil
}

// CountGrouped folds the filtered alerts of the tenant set into buckets
// produced by key. Used by the statistics aggregator; each call is one
// independent query so the four breakdowns can run concurrently.
func (r *AlertRepo) CountGrouped(ctx context.Context, customerIDs []string, filter domain.AlertFilter, key func(*domain.Alert) string) (map[string]int, error) {
	alerts, err := r.ListByCustomers(ctx, customerIDs, filter)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for i := range alerts {
		counts[key(&alerts[i])]++
	}
	return counts, nil
}
