package domain

import "time"

// Notification is the fan-out record linking an alert to the set of users it
// was addressed to. One record is created per qualifying alert event.
type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	AlertID        string    `json:"alert_id" dynamodbav:"alert_id"`
	UserIDs        []string  `json:"user_ids" dynamodbav:"user_ids"`
	Title          string    `json:"title" dynamodbav:"title"`
	Description    string    `json:"description" dynamodbav:"description"`
	Emergency      bool      `json:"emergency" dynamodbav:"emergency"`
	Image          *string   `json:"image,omitempty" dynamodbav:"image"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
}
