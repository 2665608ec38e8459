package domain

import "time"

// Device is a registered client device. Token is the push-transport
// registration (platform endpoint); devices without a token are skipped by
// the notification fan-out.
type Device struct {
	DeviceID  string    `json:"id" dynamodbav:"device_id"`
	UUID      string    `json:"uuid" dynamodbav:"device_uuid"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Token     *string   `json:"token" dynamodbav:"token"`
	Enable    bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}
