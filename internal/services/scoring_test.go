package services

import (
	"context"
	"testing"

	"github.com/jobradar/jobradar/internal/domain/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAiClient struct {
	mock.Mock
}

func (m *mockAiClient) GenerateResponse(ctx context.Context, request string) (string, error) {
	args := m.Called(ctx, request)
	return args.String(0), args.Error(1)
}

func completeJob() models.JobSummary {
	return models.JobSummary{
		Title:    "Python Developer",
		Company:  "Acme GmbH",
		Location: "Essen",
		Salary:   "65.000 €",
		URL:      "https://example.com/job",
		Description: "We are looking for a Python developer to build data pipelines " +
			"with Airflow and PostgreSQL. You bring three years of backend experience " +
			"and enjoy working in a small team in our Essen office.",
	}
}

func Test_HeuristicAssessor_IsDeterministic(t *testing.T) {

	assessor := NewHeuristicAssessor("python developer, data engineer")
	job := completeJob()

	first, err := assessor.Assess(context.Background(), job)
	require.NoError(t, err)
	second, err := assessor.Assess(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.False(t, first.ShouldFilter)
	assert.GreaterOrEqual(t, first.QualityScore, 7)
	assert.GreaterOrEqual(t, first.RelevanceScore, 5)
}

func Test_HeuristicAssessor_SparseListingScoresLow(t *testing.T) {

	assessor := NewHeuristicAssessor("python developer")
	sparse := models.JobSummary{Title: "Mitarbeiter gesucht", URL: "https://example.com/sparse"}

	assessment, err := assessor.Assess(context.Background(), sparse)
	require.NoError(t, err)
	assert.LessOrEqual(t, assessment.QualityScore, 5)
	assert.Zero(t, assessment.RelevanceScore)
}

func Test_HeuristicAssessor_FlagsSpam(t *testing.T) {

	assessor := NewHeuristicAssessor("python developer")
	spam := completeJob()
	spam.Description = "Schnell Geld verdienen von zuhause, keine Erfahrung notwendig!"

	assessment, err := assessor.Assess(context.Background(), spam)
	require.NoError(t, err)
	assert.True(t, assessment.ShouldFilter)
	assert.Contains(t, assessment.Reasoning, "spam")
}

func Test_AIAssessor_ParsesVerdictWithFences(t *testing.T) {

	client := &mockAiClient{}
	client.On("GenerateResponse", mock.Anything, mock.Anything).
		Return("```json\n{\"should_filter\": false, \"quality_score\": 8, \"relevance_score\": 9, \"reasoning\": \"strong match\"}\n```", nil)

	assessor := NewAIAssessor(client, NewHeuristicAssessor("python developer"))
	assessment, err := assessor.Assess(context.Background(), completeJob())

	require.NoError(t, err)
	assert.False(t, assessment.ShouldFilter)
	assert.Equal(t, 8, assessment.QualityScore)
	assert.Equal(t, 9, assessment.RelevanceScore)
	assert.Equal(t, "strong match", assessment.Reasoning)
	assert.NotEmpty(t, assessment.JobSnippet)
}

func Test_AIAssessor_ClampsOutOfRangeScores(t *testing.T) {

	client := &mockAiClient{}
	client.On("GenerateResponse", mock.Anything, mock.Anything).
		Return(`{"should_filter": false, "quality_score": 42, "relevance_score": -3, "reasoning": "odd"}`, nil)

	assessor := NewAIAssessor(client, NewHeuristicAssessor("python developer"))
	assessment, err := assessor.Assess(context.Background(), completeJob())

	require.NoError(t, err)
	assert.Equal(t, 10, assessment.QualityScore)
	assert.Equal(t, 0, assessment.RelevanceScore)
}

func Test_AIAssessor_FallsBackOnMalformedResponse(t *testing.T) {

	client := &mockAiClient{}
	client.On("GenerateResponse", mock.Anything, mock.Anything).Return("probably a good job, yes", nil)

	fallback := NewHeuristicAssessor("python developer")
	assessor := NewAIAssessor(client, fallback)

	assessment, err := assessor.Assess(context.Background(), completeJob())
	require.NoError(t, err)

	expected, _ := fallback.Assess(context.Background(), completeJob())
	assert.Equal(t, expected, assessment)
}

func Test_AIAssessor_FallsBackOnClientError(t *testing.T) {

	client := &mockAiClient{}
	client.On("GenerateResponse", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))

	assessor := NewAIAssessor(client, NewHeuristicAssessor("python developer"))
	assessment, err := assessor.Assess(context.Background(), completeJob())

	require.NoError(t, err)
	assert.False(t, assessment.ShouldFilter)
	assert.Positive(t, assessment.QualityScore)
}

func Test_ExtractVerdict(t *testing.T) {

	verdict, ok := extractVerdict(`Sure! Here it is: {"should_filter": true, "quality_score": 2, "relevance_score": 1, "reasoning": "spam"} Hope that helps.`)
	require.True(t, ok)
	assert.True(t, verdict.ShouldFilter)

	_, ok = extractVerdict("no json here")
	assert.False(t, ok)

	_, ok = extractVerdict("{broken json}")
	assert.False(t, ok)
}
