package models

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var searchValidate = validator.New()

// SearchRequest describes one aggregation run across platforms.
type SearchRequest struct {
	Keywords           []string `validate:"required,min=1,dive,required"`
	Location           string
	Platforms          []string `validate:"required,min=1"`
	MaxPages           int      `validate:"min=1,max=20"`
	EnglishOnly        bool
	DeepScrape         bool
	RelevanceThreshold int `validate:"min=0,max=10"`
	MaxWorkers         int `validate:"min=1,max=32"`
	SearchRadiusKm     float64
}

// NewSearchRequest normalizes raw inputs, filling defaults for zero values.
func NewSearchRequest(keywords []string, location string, platforms []string) SearchRequest {
	return SearchRequest{
		Keywords:           cleanList(keywords),
		Location:           strings.TrimSpace(location),
		Platforms:          cleanList(platforms),
		MaxPages:           3,
		RelevanceThreshold: 5,
		MaxWorkers:         4,
		SearchRadiusKm:     50,
	}
}

func (r SearchRequest) Validate() error {
	return searchValidate.Struct(r)
}

// KeywordString joins the keywords the way platforms expect them in queries.
func (r SearchRequest) KeywordString() string {
	return strings.Join(r.Keywords, ", ")
}

func cleanList(items []string) []string {
	trimmed := lo.Map(items, func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Filter(trimmed, func(s string, _ int) bool {
		return s != ""
	})
}
