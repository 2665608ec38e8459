package alert

import (
	"github.com/alerta-api/internal/domain"
	"github.com/alerta-api/internal/pkg/geo"
)

// resolveNeighborhood picks the neighborhood of the reporter's home or work
// address, whichever lies nearer to the alert location, as long as that
// distance is under maxDistanceKm. Callers guard on the tenant being
// government-type. An exact distance tie selects nothing, and an address
// without a neighborhood link never wins.
func resolveNeighborhood(u *domain.User, loc domain.Geolocation, maxDistanceKm float64) *string {
	home := addressDistanceKm(u.HomeAddress, loc)
	work := addressDistanceKm(u.WorkAddress, loc)
	homeID := neighborhoodOf(u.HomeAddress)
	workID := neighborhoodOf(u.WorkAddress)

	switch {
	case home != nil && work != nil:
		if *home < *work && *home < maxDistanceKm && homeID != nil {
			return homeID
		}
		if *work < *home && *work < maxDistanceKm && workID != nil {
			return workID
		}
	case home != nil:
		if *home < maxDistanceKm && homeID != nil {
			return homeID
		}
	case work != nil:
		if *work < maxDistanceKm && workID != nil {
			return workID
		}
	}
	return nil
}

func addressDistanceKm(a *domain.Address, loc domain.Geolocation) *float64 {
	if a == nil || a.Geolocation == nil {
		return nil
	}
	d := geo.DistanceKm(a.Geolocation.Latitude, a.Geolocation.Longitude, loc.Latitude, loc.Longitude)
	return &d
}

func neighborhoodOf(a *domain.Address) *string {
	if a == nil {
		return nil
	}
	return a.NeighborhoodID
}
