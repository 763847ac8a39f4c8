package services

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"github.com/jobradar/jobradar/internal/domain/models"
	"github.com/jobradar/jobradar/internal/logger"
	log "github.com/sirupsen/logrus"
)

// ScoringOracle judges a single scraped job for quality and relevance.
type ScoringOracle interface {
	Assess(ctx context.Context, job models.JobSummary) (models.Assessment, error)
}

type aiClient interface {
	GenerateResponse(ctx context.Context, request string) (string, error)
}

var spamIndicators = []string{
	"schnell geld verdienen",
	"von zuhause aus geld",
	"keine erfahrung notwendig",
	"sofort bargeld",
	"network marketing",
	"mlm",
	"earn money fast",
	"no experience necessary",
	"pyramid scheme",
	"work from home opportunity",
}

// HeuristicAssessor is the deterministic fallback oracle. Quality reflects
// how complete the listing is, relevance how much of the search keyword set
// appears in the title and description.
type HeuristicAssessor struct {
	keywordTokens []string
}

func NewHeuristicAssessor(keywords string) *HeuristicAssessor {
	return &HeuristicAssessor{keywordTokens: tokenizeKeywords(keywords)}
}

func (h *HeuristicAssessor) Assess(_ context.Context, job models.JobSummary) (models.Assessment, error) {

	text := strings.ToLower(job.Title + " " + job.Description)

	if spam := matchesAny(text, spamIndicators); spam != "" {
		return models.Assessment{
			ShouldFilter: true,
			QualityScore: 1,
			Reasoning:    "spam indicator: " + spam,
			JobSnippet:   snippet(job.Description),
		}, nil
	}

	return models.Assessment{
		QualityScore:   h.qualityScore(job),
		RelevanceScore: h.relevanceScore(job),
		Reasoning:      "heuristic assessment",
		JobSnippet:     snippet(job.Description),
	}, nil
}

func (h *HeuristicAssessor) qualityScore(job models.JobSummary) int {

	score := 4
	if len(job.Description) > 200 {
		score += 3
	} else if len(job.Description) > 50 {
		score += 1
	}
	if job.Company != "" && job.Company != models.PlaceholderCompany {
		score++
	}
	if job.Location != "" {
		score++
	}
	if job.Salary != "" {
		score++
	}
	return clampScore(score)
}

func (h *HeuristicAssessor) relevanceScore(job models.JobSummary) int {

	if len(h.keywordTokens) == 0 {
		return 5
	}

	title := strings.ToLower(job.Title)
	text := title + " " + strings.ToLower(job.Description)

	var matched float64
	for _, token := range h.keywordTokens {
		if strings.Contains(title, token) {
			matched += 2
		} else if strings.Contains(text, token) {
			matched += 1
		}
	}

	score := int(math.Round(10 * matched / float64(2*len(h.keywordTokens))))
	return clampScore(score)
}

// AIAssessor asks the language model for a strict JSON verdict and falls
// back to the heuristic oracle whenever the model errors or the response
// cannot be parsed, so scoring never blocks the pipeline.
type AIAssessor struct {
	client   aiClient
	fallback *HeuristicAssessor
}

func NewAIAssessor(client aiClient, fallback *HeuristicAssessor) *AIAssessor {
	return &AIAssessor{client: client, fallback: fallback}
}

type aiVerdict struct {
	ShouldFilter   bool   `json:"should_filter"`
	QualityScore   int    `json:"quality_score"`
	RelevanceScore int    `json:"relevance_score"`
	Reasoning      string `json:"reasoning"`
}

func (a *AIAssessor) Assess(ctx context.Context, job models.JobSummary) (models.Assessment, error) {

	response, err := a.client.GenerateResponse(ctx, a.assessmentRequest(job))
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeAiApi).
			Errorf("assessment request failed for %v: %v", job.URL, err)
		return a.fallback.Assess(ctx, job)
	}

	verdict, ok := extractVerdict(response)
	if !ok {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeAiApi).
			Errorf("unparseable assessment %q for %v", response, job.URL)
		return a.fallback.Assess(ctx, job)
	}

	return models.Assessment{
		ShouldFilter:   verdict.ShouldFilter,
		QualityScore:   clampScore(verdict.QualityScore),
		RelevanceScore: clampScore(verdict.RelevanceScore),
		Reasoning:      verdict.Reasoning,
		JobSnippet:     snippet(job.Description),
	}, nil
}

func (a *AIAssessor) assessmentRequest(job models.JobSummary) string {

	var b strings.Builder
	b.WriteString("You review scraped job listings. Job title: ")
	b.WriteString(job.Title)
	b.WriteString(" Company: ")
	b.WriteString(job.Company)
	b.WriteString(" Location: ")
	b.WriteString(job.Location)
	b.WriteString(" Description: ")
	b.WriteString(snippetN(job.Description, 2000))
	b.WriteString(" Search keywords: ")
	b.WriteString(strings.Join(a.fallback.keywordTokens, ", "))
	b.WriteString(" Rate quality (completeness and legitimacy of the listing) and relevance to the keywords, each 0-10, ")
	b.WriteString("and set should_filter true only for spam or obviously fake listings. ")
	b.WriteString(`Answer with JSON only, no markdown: {"should_filter": bool, "quality_score": int, "relevance_score": int, "reasoning": "short string"}`)
	return b.String()
}

// extractVerdict pulls the first JSON object out of the response, tolerating
// markdown fences and chatter around it.
func extractVerdict(response string) (aiVerdict, bool) {

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return aiVerdict{}, false
	}

	var verdict aiVerdict
	if err := json.Unmarshal([]byte(response[start:end+1]), &verdict); err != nil {
		return aiVerdict{}, false
	}
	return verdict, true
}

func tokenizeKeywords(keywords string) []string {

	var tokens []string
	seen := make(map[string]struct{})
	for _, field := range strings.FieldsFunc(strings.ToLower(keywords), func(r rune) bool {
		return r == ',' || r == ' '
	}) {
		if len(field) < 2 {
			continue
		}
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		tokens = append(tokens, field)
	}
	return tokens
}

func matchesAny(text string, indicators []string) string {
	for _, indicator := range indicators {
		if strings.Contains(text, indicator) {
			return indicator
		}
	}
	return ""
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

func snippet(text string) string {
	return snippetN(text, 160)
}

func snippetN(text string, maxLen int) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= maxLen {
		return string(runes)
	}
	return string(runes[:maxLen])
}
