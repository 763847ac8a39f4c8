package services

import (
	"context"
	"strings"
	"time"

	"github.com/jobradar/jobradar/internal/domain/models"
	"github.com/jobradar/jobradar/internal/logger"
	log "github.com/sirupsen/logrus"
)

const (
	dedupLookbackDays    = 90
	descriptionThreshold = 0.85
	titleThreshold       = 0.85
	minDescriptionLen    = 100
	companyCandidates    = 50
)

type dedupRepository interface {
	ExistsByURL(ctx context.Context, url string) (bool, error)
	FindByTitleCompany(ctx context.Context, title, company string, since time.Time) (*models.JobRecord, error)
	RecentByCompany(ctx context.Context, company string, since time.Time, minDescriptionLen, limit int) ([]models.JobRecord, error)
}

// duplicateDetector rejects jobs already known, checking both the persisted
// store (within a lookback window) and the jobs accepted earlier in the same
// run. Storage errors are logged and treated as "not a duplicate" so a flaky
// database loses dedup precision instead of dropping jobs.
type duplicateDetector struct {
	jobs dedupRepository
}

func newDuplicateDetector(jobs dedupRepository) *duplicateDetector {
	return &duplicateDetector{jobs: jobs}
}

// IsDuplicate runs the layered checks in order of cost: exact URL, exact
// title+company, description word overlap, then title similarity within the
// same company. The returned reason labels the matching layer.
func (d *duplicateDetector) IsDuplicate(ctx context.Context, job models.JobSummary, accepted []models.JobRecord) (bool, string) {

	since := time.Now().AddDate(0, 0, -dedupLookbackDays)
	company := job.Company
	if company == "" {
		company = models.PlaceholderCompany
	}

	for _, record := range accepted {
		if record.URL == job.URL {
			return true, "url"
		}
	}
	exists, err := d.jobs.ExistsByURL(ctx, job.URL)
	if err != nil {
		d.logDbError("url lookup", err)
	} else if exists {
		return true, "url"
	}

	for _, record := range accepted {
		if strings.EqualFold(record.Title, job.Title) && strings.EqualFold(record.Company, company) {
			return true, "title_company"
		}
	}
	match, err := d.jobs.FindByTitleCompany(ctx, job.Title, company, since)
	if err != nil {
		d.logDbError("title lookup", err)
	} else if match != nil {
		return true, "title_company"
	}

	candidates := d.companyCandidates(ctx, company, since, accepted)

	if len(job.Description) > minDescriptionLen {
		words := descriptionWordSet(job.Description)
		for _, candidate := range candidates {
			if len(candidate.Description) <= minDescriptionLen {
				continue
			}
			if jaccard(words, descriptionWordSet(candidate.Description)) >= descriptionThreshold {
				return true, "description"
			}
		}
	}

	for _, candidate := range candidates {
		if titlesSimilar(job.Title, candidate.Title) {
			return true, "similar_title"
		}
	}

	return false, ""
}

func (d *duplicateDetector) companyCandidates(ctx context.Context, company string,
	since time.Time, accepted []models.JobRecord) []models.JobRecord {

	candidates, err := d.jobs.RecentByCompany(ctx, company, since, 0, companyCandidates)
	if err != nil {
		d.logDbError("company lookup", err)
	}
	for _, record := range accepted {
		if strings.EqualFold(record.Company, company) {
			candidates = append(candidates, record)
		}
	}
	return candidates
}

func (d *duplicateDetector) logDbError(operation string, err error) {
	log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
		Errorf("duplicate check %v failed: %v", operation, err)
}

var dedupStopWords = map[string]struct{}{
	"und": {}, "oder": {}, "der": {}, "die": {}, "das": {}, "den": {}, "dem": {},
	"ein": {}, "eine": {}, "einen": {}, "einem": {}, "einer": {}, "mit": {},
	"für": {}, "von": {}, "bei": {}, "auf": {}, "aus": {}, "als": {}, "wir": {},
	"sie": {}, "ihre": {}, "unsere": {}, "sind": {}, "ist": {}, "werden": {},
	"the": {}, "and": {}, "for": {}, "with": {}, "you": {}, "our": {}, "are": {},
	"will": {}, "your": {}, "this": {}, "that": {}, "have": {}, "not": {},
}

// descriptionWordSet lowercases the text and keeps the distinct words longer
// than two characters that are not function words.
func descriptionWordSet(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, field := range strings.Fields(strings.ToLower(text)) {
		field = strings.Trim(field, ".,;:!?()\"'")
		if len(field) <= 2 {
			continue
		}
		if _, stop := dedupStopWords[field]; stop {
			continue
		}
		words[field] = struct{}{}
	}
	return words
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for word := range a {
		if _, ok := b[word]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	return float64(shared) / float64(union)
}

// noiseTokens are stripped before comparing titles: seniority, work mode and
// employment type do not change which role a posting is for.
var noiseTokens = map[string]struct{}{
	"senior": {}, "junior": {}, "sr": {}, "jr": {}, "principal": {}, "staff": {},
	"remote": {}, "hybrid": {}, "homeoffice": {}, "onsite": {},
	"vollzeit": {}, "teilzeit": {}, "fulltime": {}, "parttime": {},
}

// roleSynonyms maps interchangeable role words to a shared group key.
var roleSynonyms = map[string]string{
	"developer": "developer", "engineer": "developer", "programmer": "developer",
	"entwickler": "developer",
	"admin": "admin", "administrator": "admin",
	"specialist": "specialist", "expert": "specialist", "analyst": "specialist",
	"manager": "manager", "lead": "manager", "director": "manager", "head": "manager",
}

func titleTokens(title string) []string {
	var tokens []string
	for _, field := range strings.Fields(models.NormalizeTitle(title)) {
		if _, noise := noiseTokens[field]; noise {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

// titlesSimilar reports whether two titles describe the same role once noise
// tokens are stripped: identical, near-identical by word overlap, or equal up
// to a role synonym plus at least one more shared word.
func titlesSimilar(a, b string) bool {

	tokensA, tokensB := titleTokens(a), titleTokens(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return false
	}

	if strings.Join(tokensA, " ") == strings.Join(tokensB, " ") {
		return true
	}

	setA, setB := toSet(tokensA), toSet(tokensB)
	shared := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			shared++
		}
	}
	if shared >= 2 && jaccard(setA, setB) >= titleThreshold {
		return true
	}

	return synonymMatch(setA, setB, shared)
}

// synonymMatch requires a role-synonym pair across the titles plus at least
// one literally shared non-role word.
func synonymMatch(setA, setB map[string]struct{}, shared int) bool {

	if shared < 1 {
		return false
	}

	for tokenA := range setA {
		groupA, ok := roleSynonyms[tokenA]
		if !ok {
			continue
		}
		for tokenB := range setB {
			if tokenA == tokenB {
				continue
			}
			if groupB, ok := roleSynonyms[tokenB]; ok && groupA == groupB {
				return true
			}
		}
	}
	return false
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}
