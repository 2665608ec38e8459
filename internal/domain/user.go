package domain

import "time"

// User roles.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleUser     = "user"
)

// Address is a user's registered home or work address. The neighborhood
// link is optional; resolution skips addresses without coordinates.
type Address struct {
	Street         string       `json:"street,omitempty" dynamodbav:"street"`
	Geolocation    *Geolocation `json:"geolocation,omitempty" dynamodbav:"geolocation"`
	NeighborhoodID *string      `json:"neighborhood_id,omitempty" dynamodbav:"neighborhood_id"`
}

type User struct {
	UserID       string  `json:"id" dynamodbav:"user_id"`
	Username     string  `json:"username" dynamodbav:"username"` // usernames are phone numbers
	Email        string  `json:"email,omitempty" dynamodbav:"email"`
	PasswordHash string  `json:"-" dynamodbav:"password_hash"`
	Role         string  `json:"role" dynamodbav:"role"`
	FirstName    string  `json:"first_name" dynamodbav:"first_name"`
	LastName     string  `json:"last_name" dynamodbav:"last_name"`
	CustomerID   string  `json:"customer_id" dynamodbav:"customer_id"`
	CustomerType string  `json:"customer_type" dynamodbav:"customer_type"` // denormalized from the tenant
	ImageKey     *string `json:"image_key,omitempty" dynamodbav:"image_key"`

	// MonitoredCustomerIDs is the set of tenants a monitoring-staff user may
	// act on besides their own (resolved by the external permission layer at
	// provisioning time).
	MonitoredCustomerIDs []string `json:"monitored_customer_ids,omitempty" dynamodbav:"monitored_customer_ids"`

	HomeAddress *Address `json:"home_address,omitempty" dynamodbav:"home_address"`
	WorkAddress *Address `json:"work_address,omitempty" dynamodbav:"work_address"`

	Enable    bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

// FullName joins first and last name for notification texts.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Monitors reports whether customerID is in the user's monitored set.
func (u *User) Monitors(customerID string) bool {
	for _, id := range u.MonitoredCustomerIDs {
		if id == customerID {
			return true
		}
	}
	return false
}

// Sanitized returns a copy safe to embed in responses and events: the
// password hash never leaves the service layer.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.PasswordHash = ""
	return &cp
}

// Contact links a user to another platform user who should be notified for
// the subscribed alert types, scoped to one tenant.
type Contact struct {
	ContactID     string    `json:"id" dynamodbav:"contact_id"`
	UserID        string    `json:"user_id" dynamodbav:"user_id"` // owner (the reporter)
	ContactUserID string    `json:"contact_user_id" dynamodbav:"contact_user_id"`
	CustomerID    string    `json:"customer_id" dynamodbav:"customer_id"`
	AlertTypeIDs  []string  `json:"alert_type_ids" dynamodbav:"alert_type_ids"`
	Enable        bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
}

// SubscribedTo reports whether the contact subscribed to the alert type.
func (c *Contact) SubscribedTo(alertTypeID string) bool {
	for _, id := range c.AlertTypeIDs {
		if id == alertTypeID {
			return true
		}
	}
	return false
}
