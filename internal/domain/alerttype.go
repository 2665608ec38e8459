package domain

import "time"

// Well-known alert type codes with special pipeline behavior. All other
// behavior is data-driven; these two are the only sentinels.
const (
	AlertTypeArrivedWell = "arrived-well"
)

type AlertType struct {
	AlertTypeID string    `json:"id" dynamodbav:"alert_type_id"`
	Code        string    `json:"code" dynamodbav:"code"`
	Name        string    `json:"name" dynamodbav:"name"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
}

type AlertState struct {
	AlertStateID string    `json:"id" dynamodbav:"alert_state_id"`
	Name         string    `json:"name" dynamodbav:"name"`
	CustomerID   *string   `json:"customer_id,omitempty" dynamodbav:"customer_id"` // nil = global state
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
}

// VisibleTo reports whether the state can be applied to alerts of the given
// tenant: global states (no customer scope) or states scoped to that tenant.
func (s *AlertState) VisibleTo(customerID string) bool {
	return s.CustomerID == nil || *s.CustomerID == customerID
}
