package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm_SamePoint(t *testing.T) {
	assert.Zero(t, DistanceKm(-34.6037, -58.3816, -34.6037, -58.3816))
}

func TestDistanceKm_KnownDistance(t *testing.T) {
	// Buenos Aires (Obelisco) to La Plata (Plaza Moreno): ~52 km.
	d := DistanceKm(-34.6037, -58.3816, -34.9215, -57.9545)
	assert.InDelta(t, 52, d, 2)
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := DistanceKm(-34.6, -58.4, -34.7, -58.5)
	b := DistanceKm(-34.7, -58.5, -34.6, -58.4)
	assert.InDelta(t, a, b, 1e-9)
}

func TestDistanceKm_ShortDistance(t *testing.T) {
	// Roughly 111m per 0.001 degrees of latitude.
	d := DistanceKm(-34.6000, -58.4000, -34.6010, -58.4000)
	assert.InDelta(t, 0.111, d, 0.002)
}
