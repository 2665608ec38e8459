package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	JWTPublicKeyPath string

	SNSRegion string

	// Inbound SMS decoding: keyword prefix, shared secret and the
	// character-class pattern that defines the cipher alphabet.
	SMSKeyword string
	SMSSecret  string
	SMSPattern string

	// Bootstrap alert-state ids referenced by the creation pipeline. These
	// are configuration, not code: deployments seed their own state rows.
	IssuedStateID             string
	NeighborhoodIssuedStateID string

	// TrackingAlertTypes lists the alert type codes that require a
	// continuous checkpoint trail.
	TrackingAlertTypes []string

	NeighborhoodMaxDistanceKm float64

	GeocodeBaseURL string
	GeocodeAPIKey  string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Alerts          string
	AlertTypes      string
	AlertStates     string
	Checkpoints     string
	Customers       string
	Users           string
	Devices         string
	Contacts        string
	Locations       string
	Notifications   string
	DeviceSnapshots string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Alerts:          getEnv("DYNAMO_TABLE_ALERTS", "alerts"),
			AlertTypes:      getEnv("DYNAMO_TABLE_ALERT_TYPES", "alert_types"),
			AlertStates:     getEnv("DYNAMO_TABLE_ALERT_STATES", "alert_states"),
			Checkpoints:     getEnv("DYNAMO_TABLE_CHECKPOINTS", "checkpoints"),
			Customers:       getEnv("DYNAMO_TABLE_CUSTOMERS", "customers"),
			Users:           getEnv("DYNAMO_TABLE_USERS", "users"),
			Devices:         getEnv("DYNAMO_TABLE_DEVICES", "devices"),
			Contacts:        getEnv("DYNAMO_TABLE_CONTACTS", "contacts"),
			Locations:       getEnv("DYNAMO_TABLE_LOCATIONS", "locations"),
			Notifications:   getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			DeviceSnapshots: getEnv("DYNAMO_TABLE_DEVICE_SNAPSHOTS", "device_snapshots"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "alerta-user-images"),

		JWTPublicKeyPath: getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

		SMSKeyword: getEnv("SMS_KEYWORD", "c5f"),
		SMSSecret:  getEnv("SMS_SECRET", ""),
		SMSPattern: getEnv("SMS_PATTERN", `[a-zA-Z0-9,.\-]`),

		IssuedStateID:             getEnv("ALERT_STATE_ISSUED_ID", "issued"),
		NeighborhoodIssuedStateID: getEnv("ALERT_STATE_NEIGHBORHOOD_ISSUED_ID", "neighborhood-issued"),

		TrackingAlertTypes: strings.Split(getEnv("TRACKING_ALERT_TYPES", "panic,escort"), ","),

		NeighborhoodMaxDistanceKm: getEnvFloat("NEIGHBORHOOD_MAX_DISTANCE_KM", 2),

		GeocodeBaseURL: getEnv("GEOCODE_BASE_URL", "https://maps.googleapis.com/maps/api/geocode/json"),
		GeocodeAPIKey:  getEnv("GEOCODE_API_KEY", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
