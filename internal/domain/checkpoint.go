package domain

import "time"

// Checkpoint is an immutable timestamped location sample attached to an
// alert. The first one is created automatically for tracking-type alerts.
type Checkpoint struct {
	CheckpointID string      `json:"id" dynamodbav:"checkpoint_id"`
	AlertID      string      `json:"alert_id" dynamodbav:"alert_id"`
	Geolocation  Geolocation `json:"geolocation" dynamodbav:"geolocation"`
	CreatedAt    time.Time   `json:"created" dynamodbav:"created_at"`
}

type CreateCheckpointRequest struct {
	CustomerID  string      `json:"customer_id" validate:"required"`
	Geolocation Geolocation `json:"geolocation"`
}
