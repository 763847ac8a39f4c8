package models

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// JobGroup clusters records of the same company posting the same role in
// several cities or on several platforms. Groups are derived on read and
// never persisted.
type JobGroup struct {
	Title     string
	Company   string
	Cities    []string
	Platforms []string
	Jobs      []JobRecord
}

var titleNoise = regexp.MustCompile(`\((?:m/w/d|w/m/d|m/f/d|f/m/d|all genders)\)|[^\p{L}\p{N} ]+`)

// NormalizeTitle lowercases a title and strips gender markers and punctuation
// so grouping ignores cosmetic differences.
func NormalizeTitle(title string) string {
	s := strings.ToLower(title)
	s = titleNoise.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// GroupRecords buckets records by company plus normalized title, preserving
// first-seen order of the groups.
func GroupRecords(records []JobRecord) []JobGroup {
	type key struct{ company, title string }

	order := make([]key, 0)
	buckets := make(map[key][]JobRecord)
	for _, rec := range records {
		k := key{strings.ToLower(rec.Company), NormalizeTitle(rec.Title)}
		if _, seen := buckets[k]; !seen {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], rec)
	}

	groups := make([]JobGroup, 0, len(order))
	for _, k := range order {
		jobs := buckets[k]
		groups = append(groups, JobGroup{
			Title:   jobs[0].Title,
			Company: jobs[0].Company,
			Cities: lo.Uniq(lo.Map(jobs, func(j JobRecord, _ int) string {
				return j.Location
			})),
			Platforms: lo.Uniq(lo.Map(jobs, func(j JobRecord, _ int) string {
				return j.Platform
			})),
			Jobs: jobs,
		})
	}
	return groups
}
