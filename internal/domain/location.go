package domain

import "time"

// Location registry entry types.
const (
	LocationTypeLocality     = "locality"
	LocationTypeNeighborhood = "neighborhood"
)

// Location is a registry entry used to join statistics rows against known
// localities and neighborhoods. Rows that match no entry are bucketed into
// the "Otras" row by the aggregator.
type Location struct {
	LocationID string    `json:"id" dynamodbav:"location_id"`
	Type       string    `json:"type" dynamodbav:"type"` // locality | neighborhood
	Name       string    `json:"name" dynamodbav:"name"`
	CustomerID *string   `json:"customer_id,omitempty" dynamodbav:"customer_id"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
}
