package alert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alerta-api/internal/domain"
)

const maxKm = 2.0

// alertLoc is the reference alert position; address fixtures below are
// offsets from it (0.0045 deg latitude is roughly half a kilometer).
var alertLoc = domain.Geolocation{Latitude: -34.6, Longitude: -58.4}

func addressAt(latOffset float64, neighborhoodID *string) *domain.Address {
	return &domain.Address{
		Geolocation:    &domain.Geolocation{Latitude: alertLoc.Latitude + latOffset, Longitude: alertLoc.Longitude},
		NeighborhoodID: neighborhoodID,
	}
}

func strPtr(s string) *string { return &s }

func TestResolveNeighborhood_NearerAddressWins(t *testing.T) {
	u := &domain.User{
		HomeAddress: addressAt(0.0045, strPtr("nb-home")), // ~0.5 km
		WorkAddress: addressAt(0.009, strPtr("nb-work")),  // ~1 km
	}

	got := resolveNeighborhood(u, alertLoc, maxKm)

	require.NotNil(t, got)
	assert.Equal(t, "nb-home", *got)
}

func TestResolveNeighborhood_WorkNearer(t *testing.T) {
	u := &domain.User{
		HomeAddress: addressAt(0.009, strPtr("nb-home")),
		WorkAddress: addressAt(0.0045, strPtr("nb-work")),
	}

	got := resolveNeighborhood(u, alertLoc, maxKm)

	require.NotNil(t, got)
	assert.Equal(t, "nb-work", *got)
}

func TestResolveNeighborhood_ExactTieSelectsNothing(t *testing.T) {
	u := &domain.User{
		HomeAddress: addressAt(0.0045, strPtr("nb-home")),
		WorkAddress: addressAt(0.0045, strPtr("nb-work")),
	}

	assert.Nil(t, resolveNeighborhood(u, alertLoc, maxKm))
}

func TestResolveNeighborhood_BeyondThreshold(t *testing.T) {
	u := &domain.User{
		HomeAddress: addressAt(0.05, strPtr("nb-home")), // ~5.5 km
	}

	assert.Nil(t, resolveNeighborhood(u, alertLoc, maxKm))
}

func TestResolveNeighborhood_NearerWithoutLinkDoesNotWin(t *testing.T) {
	u := &domain.User{
		HomeAddress: addressAt(0.0045, nil),
		WorkAddress: addressAt(0.009, strPtr("nb-work")),
	}

	// The nearer address has no neighborhood link, so nothing is selected.
	assert.Nil(t, resolveNeighborhood(u, alertLoc, maxKm))
}

func TestResolveNeighborhood_OnlyHomeKnown(t *testing.T) {
	u := &domain.User{
		HomeAddress: addressAt(0.0045, strPtr("nb-home")),
	}

	got := resolveNeighborhood(u, alertLoc, maxKm)

	require.NotNil(t, got)
	assert.Equal(t, "nb-home", *got)
}

func TestResolveNeighborhood_OnlyWorkKnown(t *testing.T) {
	u := &domain.User{
		HomeAddress: &domain.Address{NeighborhoodID: strPtr("nb-home")}, // no coordinates
		WorkAddress: addressAt(0.0045, strPtr("nb-work")),
	}

	got := resolveNeighborhood(u, alertLoc, maxKm)

	require.NotNil(t, got)
	assert.Equal(t, "nb-work", *got)
}

func TestResolveNeighborhood_NoAddresses(t *testing.T) {
	assert.Nil(t, resolveNeighborhood(&domain.User{}, alertLoc, maxKm))
}
