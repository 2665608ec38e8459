package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/alerta-api/internal/domain"
)

// DeviceRepo provides typed DynamoDB operations for the devices table.
// Devices carry the push-transport registration tokens.
type DeviceRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewDeviceRepo(client *dynamodb.Client, tableName string) *DeviceRepo {
	return &DeviceRepo{client: client, tableName: tableName}
}

// ListByUser queries the user_id GSI for a user's enabled devices.
func (r *DeviceRepo) ListByUser(ctx context.Context, userID string) ([]domain.Device, error) {
	out, err := r.client.Query(ctx, devicesByUserInput(r.tableName, userID))
	if err != nil {
		return nil, err
	}
	var devices []domain.Device
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// devicesByUserInput selects the user's enabled devices. The enable
// attribute is a DynamoDB reserved word and must stay aliased.
func devicesByUserInput(table, userID string) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(table),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		FilterExpression:       aws.String("#en = :t"),
		ExpressionAttributeNames: map[string]string{
			"#en": "enable",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
			":t":   &types.AttributeValueMemberBOOL{Value: true},
		},
	}
}

// TokensForUsers collects the registered push tokens of the given users.
func (r *DeviceRepo) TokensForUsers(ctx context.Context, userIDs []string) ([]string, error) {
	var tokens []string
	for _, userID := range userIDs {
		devices, err := r.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, d := range devices {
			if d.Token != nil && *d.Token != "" {
				tokens = append(tokens, *d.Token)
			}
		}
	}
	return tokens, nil
}
