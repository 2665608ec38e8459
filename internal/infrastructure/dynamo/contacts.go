package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/alerta-api/internal/domain"
)

// ContactRepo provides typed DynamoDB operations for the contacts table.
type ContactRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewContactRepo(client *dynamodb.Client, tableName string) *ContactRepo {
	return &ContactRepo{client: client, tableName: tableName}
}

// ListByOwner returns the enabled contacts the user registered under the
// given tenant.
func (r *ContactRepo) ListByOwner(ctx context.Context, userID, customerID string) ([]domain.Contact, error) {
	out, err := r.client.Query(ctx, contactsByOwnerInput(r.tableName, userID, customerID))
	if err != nil {
		return nil, err
	}
	var contacts []domain.Contact
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// contactsByOwnerInput filters the user's contacts to one tenant. The
// enable attribute is a DynamoDB reserved word and must stay aliased.
func contactsByOwnerInput(table, userID, customerID string) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(table),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		FilterExpression:       aws.String("customer_id = :cid AND #en = :t"),
		ExpressionAttributeNames: map[string]string{
			"#en": "enable",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
			":cid": &types.AttributeValueMemberS{Value: customerID},
			":t":   &types.AttributeValueMemberBOOL{Value: true},
		},
	}
}
