package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Haversine(t *testing.T) {

	essen := cityCoordinates["essen"]
	duesseldorf := cityCoordinates["düsseldorf"]

	assert.Zero(t, Haversine(essen[0], essen[1], essen[0], essen[1]))

	distance := Haversine(essen[0], essen[1], duesseldorf[0], duesseldorf[1])
	assert.InDelta(t, 30.0, distance, 4.0)

	reverse := Haversine(duesseldorf[0], duesseldorf[1], essen[0], essen[1])
	assert.InDelta(t, distance, reverse, 0.0001)
}

func Test_LookupCity(t *testing.T) {

	lat, lon, ok := LookupCity("Essen, Nordrhein-Westfalen")
	assert.True(t, ok)
	assert.InDelta(t, 51.4556, lat, 0.001)
	assert.InDelta(t, 7.0116, lon, 0.001)

	// longest match wins over the embedded shorter name
	lat, _, ok = LookupCity("Mülheim an der Ruhr")
	assert.True(t, ok)
	assert.InDelta(t, 51.4267, lat, 0.001)

	_, _, ok = LookupCity("Kleinkleckersdorf")
	assert.False(t, ok)

	// partial spelling resolves through the alias table
	lat, _, ok = LookupCity("Bergisch")
	assert.True(t, ok)
	assert.InDelta(t, 50.9924, lat, 0.001)
}

func Test_Filter_Admit(t *testing.T) {

	filter := NewFilter("Essen", 50)

	tests := []struct {
		name     string
		location string
		admitted bool
	}{
		{"same city", "Essen", true},
		{"nearby city inside radius", "Düsseldorf", true},
		{"far city outside radius", "München", false},
		{"remote always passes", "Remote", true},
		{"homeoffice always passes", "100% Homeoffice möglich", true},
		{"us city rejected", "New York, NY", false},
		{"foreign country rejected", "London, United Kingdom", false},
		{"unknown city admitted", "Hintertupfingen", true},
		{"empty location admitted", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.admitted, filter.Admit(tt.location))
		})
	}
}

func Test_Filter_UnknownReferenceAdmitsEverything(t *testing.T) {
	filter := NewFilter("Atlantis", 10)
	assert.True(t, filter.Admit("München"))
}

func Test_Filter_RadiusBoundaryIsInclusive(t *testing.T) {

	essen := cityCoordinates["essen"]
	bochum := cityCoordinates["bochum"]
	distance := Haversine(essen[0], essen[1], bochum[0], bochum[1])

	filter := NewFilter("Essen", distance)
	assert.True(t, filter.Admit("Bochum"))

	tighter := NewFilter("Essen", distance-1)
	assert.False(t, tighter.Admit("Bochum"))
}
