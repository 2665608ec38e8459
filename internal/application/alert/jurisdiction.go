package alert

import (
	"context"

	"github.com/alerta-api/internal/domain"
	"github.com/alerta-api/internal/infrastructure/geocode"
)

// reassignJurisdiction re-targets an alert raised inside another government
// tenant's district. It applies only when the origin tenant is government-type
// and the geocoded district differs from its configured district; it then
// looks for an active government tenant covering (district, state, country)
// whose alert-type allowlist includes the alert's type. A lookup miss keeps
// the origin tenant and is not an error.
func (s *service) reassignJurisdiction(ctx context.Context, customer *domain.Customer, resolved *geocode.Resolved, alertTypeID string) *domain.Customer {
	if customer.Type != domain.CustomerTypeGovernment {
		return customer
	}
	if resolved == nil || resolved.District == "" || resolved.District == customer.District {
		return customer
	}
	alt, err := s.customers.FindGovernmentByDistrict(ctx, resolved.District, resolved.State, resolved.Country, alertTypeID)
	if err != nil {
		return customer
	}
	return alt
}
