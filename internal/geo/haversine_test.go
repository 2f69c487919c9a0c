package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	sydney := Point{Lat: -33.8688, Lng: 151.2093}
	melbourne := Point{Lat: -37.8136, Lng: 144.9631}

	t.Run("zero distance for identical points", func(t *testing.T) {
		assert.Equal(t, 0.0, HaversineKm(sydney, sydney))
	})

	t.Run("symmetry", func(t *testing.T) {
		assert.Equal(t, HaversineKm(sydney, melbourne), HaversineKm(melbourne, sydney))
	})

	t.Run("known distance Sydney to Melbourne", func(t *testing.T) {
		d := HaversineKm(sydney, melbourne)
		assert.InDelta(t, 713, d, 5)
	})

	t.Run("antipodal points approach half circumference", func(t *testing.T) {
		a := Point{Lat: 0, Lng: 0}
		b := Point{Lat: 0, Lng: 180}
		assert.InDelta(t, math.Pi*EarthRadiusKm, HaversineKm(a, b), 0.001)
	})

	t.Run("short distances stay positive and small", func(t *testing.T) {
		near := Point{Lat: sydney.Lat + 0.001, Lng: sydney.Lng}
		d := HaversineKm(sydney, near)
		assert.Greater(t, d, 0.0)
		assert.Less(t, d, 0.2)
	})
}
