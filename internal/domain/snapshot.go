package domain

import "time"

// Telemetry snapshot providers.
const (
	SnapshotProviderTraccar   = "traccar"
	SnapshotProviderFulltrack = "fulltrack"
)

// DeviceSnapshot is an append-only record of a third-party device or vehicle
// position captured at alert time. Never updated after creation.
type DeviceSnapshot struct {
	SnapshotID string            `json:"id" dynamodbav:"snapshot_id"`
	AlertID    string            `json:"alert_id" dynamodbav:"alert_id"`
	Provider   string            `json:"provider" dynamodbav:"provider"`
	DeviceID   string            `json:"device_id" dynamodbav:"device_id"`
	Name       string            `json:"name" dynamodbav:"name"`
	Category   string            `json:"category" dynamodbav:"category"`
	Latitude   float64           `json:"latitude" dynamodbav:"latitude"`
	Longitude  float64           `json:"longitude" dynamodbav:"longitude"`
	Speed      float64           `json:"speed" dynamodbav:"speed"`
	Course     float64           `json:"course" dynamodbav:"course"`
	Attributes map[string]string `json:"attributes,omitempty" dynamodbav:"attributes"`
	CreatedAt  time.Time         `json:"created" dynamodbav:"created_at"`
}
