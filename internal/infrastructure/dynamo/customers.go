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

// CustomerRepo provides typed DynamoDB operations for the customers table.
type CustomerRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCustomerRepo(client *dynamodb.Client, tableName string) *CustomerRepo {
	return &CustomerRepo{client: client, tableName: tableName}
}

func (r *CustomerRepo) Get(ctx context.Context, customerID string) (*domain.Customer, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("customer_id", customerID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("customer %s: %w", customerID, domain.ErrNotFound)
	}
	var c domain.Customer
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindGovernmentByDistrict looks up an active government tenant covering the
// given (district, state, country) whose alert-type allowlist contains
// alertTypeID. A miss returns ErrNotFound; callers treat that as "keep the
// original tenant", not as a failure.
func (r *CustomerRepo) FindGovernmentByDistrict(ctx context.Context, district, state, country, alertTypeID string) (*domain.Customer, error) {
	out, err := r.client.Scan(ctx, governmentByDistrictInput(r.tableName, district, state, country))
	if err != nil {
		return nil, err
	}
	var candidates []domain.Customer
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &candidates); err != nil {
		return nil, err
	}
	for i := range candidates {
		for _, id := range candidates[i].AlertTypeIDs {
			if id == alertTypeID {
				return &candidates[i], nil
			}
		}
	}
	return nil, fmt.Errorf("no government customer for district %s supporting type %s: %w", district, alertTypeID, domain.ErrNotFound)
}

// governmentByDistrictInput matches active government tenants covering the
// district. type, state and enable are DynamoDB reserved words and must
// stay aliased.
func governmentByDistrictInput(table, district, state, country string) *dynamodb.ScanInput {
	return &dynamodb.ScanInput{
		TableName: aws.String(table),
		FilterExpression: aws.String(
			"#t = :gov AND district = :d AND #s = :s AND country = :c AND #en = :true"),
		ExpressionAttributeNames: map[string]string{
			"#t":  "type",
			"#s":  "state",
			"#en": "enable",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":gov":  &types.AttributeValueMemberS{Value: domain.CustomerTypeGovernment},
			":d":    &types.AttributeValueMemberS{Value: district},
			":s":    &types.AttributeValueMemberS{Value: state},
			":c":    &types.AttributeValueMemberS{Value: country},
			":true": &types.AttributeValueMemberBOOL{Value: true},
		},
	}
}
