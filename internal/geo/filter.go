package geo

import (
	"strings"

	log "github.com/sirupsen/logrus"
)

var nonGermanCountries = []string{
	"usa", "united states", "america", "american", "u.s.", "u.s.a.",
	"canada", "canadian",
	"united kingdom", "england", "scotland", "wales",
	"australia", "australian",
	"india", "indian",
	"china", "chinese",
	"japan", "japanese",
	"singapore",
	"hong kong",
	"belgium", "belgian",
	"netherlands", "dutch",
	"france", "french",
	"austria", "austrian",
	"switzerland", "swiss",
	"poland", "polish",
	"italy", "italian",
	"spain", "spanish",
}

var usCities = []string{
	"new york", "los angeles", "chicago", "houston", "phoenix", "philadelphia",
	"san antonio", "san diego", "dallas", "san jose", "austin", "jacksonville",
	"san francisco", "indianapolis", "seattle", "denver", "boston", "nashville",
	"detroit", "las vegas", "memphis", "baltimore", "milwaukee", "atlanta",
	"kansas city", "miami", "minneapolis", "tampa", "new orleans", "cleveland",
	"pittsburgh", "cincinnati", "orlando", "buffalo",
}

var remoteIndicators = []string{
	"remote", "home office", "homeoffice", "hybrid", "flexibel",
}

// Filter decides whether a job's location is admissible: inside the search
// radius around the reference city, or remote. Unresolvable locations are
// admitted, since a wrong rejection loses a real job while a wrong admission
// only costs the reader a glance.
type Filter struct {
	ReferenceLocation string
	RadiusKm          float64
}

func NewFilter(referenceLocation string, radiusKm float64) *Filter {
	return &Filter{ReferenceLocation: referenceLocation, RadiusKm: radiusKm}
}

// Admit reports whether jobLocation passes the geographic filter.
func (f *Filter) Admit(jobLocation string) bool {

	lowered := normalize(jobLocation)
	if lowered == "" {
		return true
	}

	for _, country := range nonGermanCountries {
		if strings.Contains(lowered, country) {
			return false
		}
	}
	for _, city := range usCities {
		if strings.Contains(lowered, city) {
			return false
		}
	}

	for _, indicator := range remoteIndicators {
		if strings.Contains(lowered, indicator) {
			return true
		}
	}

	refLat, refLon, ok := LookupCity(f.ReferenceLocation)
	if !ok {
		return true
	}

	jobLat, jobLon, ok := LookupCity(jobLocation)
	if !ok {
		return true
	}

	distance := Haversine(refLat, refLon, jobLat, jobLon)
	admitted := distance <= f.RadiusKm
	log.Debugf("location check: %q is %.1fkm from %q (max %.0fkm)",
		jobLocation, distance, f.ReferenceLocation, f.RadiusKm)
	return admitted
}
