package geo

import (
	"math"
	"strings"
)

const earthRadiusKm = 6371

// Haversine returns the great-circle distance in kilometers between two
// points given in decimal degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {

	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	lat1, lon1, lat2, lon2 = rad(lat1), rad(lon1), rad(lat2), rad(lon2)

	dLat := lat2 - lat1
	dLon := lon2 - lon1
	a := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

func normalize(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}

// containsCity matches a city name inside a location string on rough word
// boundaries, so "neukirchen" does not match "uk"-style short tokens.
func containsCity(location, city string) bool {
	idx := strings.Index(location, city)
	if idx < 0 {
		return false
	}
	beforeOk := idx == 0 || !isLetter(location[idx-1])
	afterIdx := idx + len(city)
	afterOk := afterIdx >= len(location) || !isLetter(location[afterIdx])
	return beforeOk && afterOk
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b >= 0x80
}
