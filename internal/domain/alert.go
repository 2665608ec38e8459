package domain

import "time"

// Geolocation is a single position fix as reported by a client device.
type Geolocation struct {
	Latitude  float64  `json:"latitude" dynamodbav:"latitude"`
	Longitude float64  `json:"longitude" dynamodbav:"longitude"`
	Timestamp int64    `json:"timestamp,omitempty" dynamodbav:"timestamp"` // unix millis
	Battery   *float64 `json:"battery,omitempty" dynamodbav:"battery"`
	Accuracy  *float64 `json:"accuracy,omitempty" dynamodbav:"accuracy"`
}

type Alert struct {
	AlertID             string     `json:"id" dynamodbav:"alert_id"`
	AlertTypeID         string     `json:"alert_type_id" dynamodbav:"alert_type_id"`
	AlertType           *AlertType `json:"alert_type,omitempty" dynamodbav:"-"`
	AlertStateID        string     `json:"alert_state_id" dynamodbav:"alert_state_id"`
	AlertStateUpdatedAt time.Time  `json:"alert_state_updated_at" dynamodbav:"alert_state_updated_at"`
	CustomerID          string     `json:"customer_id" dynamodbav:"customer_id"`
	ParentID            *string    `json:"parent_id,omitempty" dynamodbav:"parent_id"`
	NeighborhoodID      *string    `json:"neighborhood_id,omitempty" dynamodbav:"neighborhood_id"`
	NeighborhoodAlarmID *string    `json:"neighborhood_alarm_id,omitempty" dynamodbav:"neighborhood_alarm_id"`
	UserID              string     `json:"user_id" dynamodbav:"user_id"`
	User                *User      `json:"user,omitempty" dynamodbav:"-"`

	// Geolocation is the current fix; OriginalGeolocation is the first fix and
	// is never rewritten after creation. Geolocations is the trail submitted
	// with the creation request.
	Geolocation         Geolocation   `json:"geolocation" dynamodbav:"geolocation"`
	OriginalGeolocation Geolocation   `json:"original_geolocation" dynamodbav:"original_geolocation"`
	Geolocations        []Geolocation `json:"geolocations,omitempty" dynamodbav:"geolocations"`

	// Derived location fields from the reverse geocoder; null when geocoding
	// failed or no coordinates were supplied.
	ApproximateAddress *string `json:"approximate_address,omitempty" dynamodbav:"approximate_address"`
	City               *string `json:"city,omitempty" dynamodbav:"city"`
	District           *string `json:"district,omitempty" dynamodbav:"district"`
	State              *string `json:"state,omitempty" dynamodbav:"state"`
	Country            *string `json:"country,omitempty" dynamodbav:"country"`

	Manual       bool    `json:"manual" dynamodbav:"manual"`
	Dragged      bool    `json:"dragged" dynamodbav:"dragged"`
	Code         *string `json:"code,omitempty" dynamodbav:"code"`
	Observations *string `json:"observations,omitempty" dynamodbav:"observations"`
	TrialPeriod  bool    `json:"trial_period" dynamodbav:"trial_period"`

	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateAlertRequest struct {
	CustomerID          string        `json:"customer_id" validate:"required"`
	UserID              string        `json:"user_id" validate:"required"`
	AlertTypeID         string        `json:"alert_type_id" validate:"required"`
	Geolocation         Geolocation   `json:"geolocation"`
	Geolocations        []Geolocation `json:"geolocations"`
	ApproximateAddress  *string       `json:"approximate_address"`
	NeighborhoodAlarmID *string       `json:"neighborhood_alarm_id"`
	Manual              bool          `json:"manual"`
	Dragged             bool          `json:"dragged"`
	Code                *string       `json:"code"`
	Observations        *string       `json:"observations"`
}

// CreateAlertResult is the creation response: the persisted alert plus the
// contacts-only display hint computed for government tenants.
type CreateAlertResult struct {
	Alert        *Alert `json:"alert"`
	ContactsOnly *bool  `json:"contacts_only,omitempty"`
}

type ChangeAlertStateRequest struct {
	AlertStateID string  `json:"alert_state_id" validate:"required"`
	CustomerID   string  `json:"customer_id" validate:"required"`
	Observations *string `json:"observations"`
}

// AlertFilter narrows alert queries for listing and statistics.
type AlertFilter struct {
	From         *time.Time `json:"from"`
	To           *time.Time `json:"to"`
	AlertTypeID  *string    `json:"alert_type_id"`
	AlertStateID *string    `json:"alert_state_id"`
}

// Matches reports whether a matches every predicate set on f.
func (f AlertFilter) Matches(a *Alert) bool {
	if f.From != nil && a.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && a.CreatedAt.After(*f.To) {
		return false
	}
	if f.AlertTypeID != nil && a.AlertTypeID != *f.AlertTypeID {
		return false
	}
	if f.AlertStateID != nil && a.AlertStateID != *f.AlertStateID {
		return false
	}
	return true
}
