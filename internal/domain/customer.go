package domain

import "time"

// Customer tenant types.
const (
	CustomerTypeBusiness   = "business"
	CustomerTypeGovernment = "government"
)

type Customer struct {
	CustomerID   string                `json:"id" dynamodbav:"customer_id"`
	Name         string                `json:"name" dynamodbav:"name"`
	Type         string                `json:"type" dynamodbav:"type"` // business | government
	District     string                `json:"district" dynamodbav:"district"`
	State        string                `json:"state" dynamodbav:"state"`
	Country      string                `json:"country" dynamodbav:"country"`
	ParentID     *string               `json:"parent_id,omitempty" dynamodbav:"parent_id"`
	AlertTypeIDs []string              `json:"alert_type_ids" dynamodbav:"alert_type_ids"`
	Settings     *CustomerSettings     `json:"settings,omitempty" dynamodbav:"settings"`
	Integrations *CustomerIntegrations `json:"integrations,omitempty" dynamodbav:"integrations"`
	TrialPeriod  bool                  `json:"trial_period" dynamodbav:"trial_period"`
	PayingClient bool                  `json:"paying_client" dynamodbav:"paying_client"`
	Enable       bool                  `json:"enable" dynamodbav:"enable"`
	CreatedAt    time.Time             `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time             `json:"updated" dynamodbav:"updated_at"`
}

// EligibleForAlerts reports whether the tenant can own alerts: both settings
// and integrations must be populated.
func (c *Customer) EligibleForAlerts() bool {
	return c.Settings != nil && c.Integrations != nil
}

// CustomerSettings carries the monitoring-staff phone number lists. Each list
// is a comma-separated string of usernames (usernames are phone numbers).
type CustomerSettings struct {
	SecurityChiefNumbers      string `json:"security_chief_numbers,omitempty" dynamodbav:"security_chief_numbers"`
	SecurityGuardNumbers      string `json:"security_guard_numbers,omitempty" dynamodbav:"security_guard_numbers"`
	AdditionalNumbers         string `json:"additional_numbers,omitempty" dynamodbav:"additional_numbers"`
	PerimeterViolationNumbers string `json:"perimeter_violation_numbers,omitempty" dynamodbav:"perimeter_violation_numbers"`
	FireNumbers               string `json:"fire_numbers,omitempty" dynamodbav:"fire_numbers"`
	TheftNumbers              string `json:"theft_numbers,omitempty" dynamodbav:"theft_numbers"`
	MedicalNumbers            string `json:"medical_numbers,omitempty" dynamodbav:"medical_numbers"`
}

// NumbersField selects one of the per-alert-type number lists above.
// The alert-type-code → field mapping is injected at startup rather than
// being a stringly-typed lookup into settings attributes.
type NumbersField int

const (
	PerimeterViolationNumbers NumbersField = iota
	FireNumbers
	TheftNumbers
	MedicalNumbers
)

// From returns the configured list for the field, or "" when s is nil.
func (f NumbersField) From(s *CustomerSettings) string {
	if s == nil {
		return ""
	}
	switch f {
	case PerimeterViolationNumbers:
		return s.PerimeterViolationNumbers
	case FireNumbers:
		return s.FireNumbers
	case TheftNumbers:
		return s.TheftNumbers
	case MedicalNumbers:
		return s.MedicalNumbers
	}
	return ""
}

// CustomerIntegrations holds the live-tracking provider credentials. A
// provider is queried only when its block is fully configured.
type CustomerIntegrations struct {
	Traccar   *TraccarIntegration   `json:"traccar,omitempty" dynamodbav:"traccar"`
	Fulltrack *FulltrackIntegration `json:"fulltrack,omitempty" dynamodbav:"fulltrack"`
}

type TraccarIntegration struct {
	URL      string `json:"url" dynamodbav:"url"`
	Username string `json:"username" dynamodbav:"username"`
	Password string `json:"password" dynamodbav:"password"`
}

func (t *TraccarIntegration) Configured() bool {
	return t != nil && t.URL != "" && t.Username != "" && t.Password != ""
}

type FulltrackIntegration struct {
	URL      string `json:"url" dynamodbav:"url"`
	User     string `json:"user" dynamodbav:"user"`
	Password string `json:"password" dynamodbav:"password"`
}

func (f *FulltrackIntegration) Configured() bool {
	return f != nil && f.URL != "" && f.User != "" && f.Password != ""
}
