package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var hanoi = Point{Lng: 105.8342, Lat: 21.0278}

func TestDistanceMeters(t *testing.T) {
	assert.InDelta(t, 0, DistanceMeters(hanoi, hanoi), 1e-6)

	// Hanoi → Ho Chi Minh City is roughly 1,140 km
	hcmc := Point{Lng: 106.6297, Lat: 10.8231}
	assert.InDelta(t, 1_140_000, DistanceMeters(hanoi, hcmc), 15_000)

	// one degree of latitude ≈ 111.2 km
	north := Point{Lng: hanoi.Lng, Lat: hanoi.Lat + 1}
	assert.InDelta(t, 111_195, DistanceMeters(hanoi, north), 100)
}

func TestBoundingBoxContainsCircle(t *testing.T) {
	box := BoundingBox(hanoi, 30_000)
	assert.False(t, box.CrossesAntimeridian())
	assert.Less(t, box.MinLat, hanoi.Lat)
	assert.Greater(t, box.MaxLat, hanoi.Lat)

	// points right at the radius edge stay inside the box
	edgeNorth := Point{Lng: hanoi.Lng, Lat: hanoi.Lat + 0.269}
	assert.Less(t, DistanceMeters(hanoi, edgeNorth), 30_000.0)
	assert.LessOrEqual(t, edgeNorth.Lat, box.MaxLat)

	edgeEast := Point{Lng: hanoi.Lng + 0.287, Lat: hanoi.Lat}
	assert.Less(t, DistanceMeters(hanoi, edgeEast), 30_000.0)
	assert.LessOrEqual(t, edgeEast.Lng, box.MaxLng)
}

func TestBoundingBoxAntimeridian(t *testing.T) {
	box := BoundingBox(Point{Lng: 179.9, Lat: 0}, 50_000)
	assert.True(t, box.CrossesAntimeridian())
	assert.Greater(t, box.MinLng, 179.0)
	assert.Less(t, box.MaxLng, -179.0)
}

func TestBoundingBoxPole(t *testing.T) {
	box := BoundingBox(Point{Lng: 0, Lat: 89.9}, 50_000)
	assert.InDelta(t, -180.0, box.MinLng, 1e-9)
	assert.InDelta(t, 180.0, box.MaxLng, 1e-9)
	assert.InDelta(t, 90.0, box.MaxLat, 1e-9)
}

func TestKilometersLabel(t *testing.T) {
	assert.Equal(t, "0", KilometersLabel(0))
	assert.Equal(t, "0", KilometersLabel(499))
	assert.Equal(t, "1", KilometersLabel(500))
	assert.Equal(t, "12", KilometersLabel(12_345))
}
