package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/qsights/analytics-service/internal/events"
	"github.com/qsights/analytics-service/internal/models"
	"github.com/qsights/analytics-service/internal/repositories"
)

// memInsightRepo is an in-memory InsightRepository. The cache-hit and expiry
// tests need real row state across calls, which mock.Mock cannot express well.
type memInsightRepo struct {
	nextID uint
	rows   []*models.AIInsightCache
}

func (m *memInsightRepo) Create(_ context.Context, insight *models.AIInsightCache) error {
	m.nextID++
	insight.ID = m.nextID
	stored := *insight
	m.rows = append(m.rows, &stored)
	return nil
}

func (m *memInsightRepo) ListValidByActivity(_ context.Context, activityID uint, now time.Time) ([]*models.AIInsightCache, error) {
	var valid []*models.AIInsightCache
	for _, row := range m.rows {
		if row.ActivityID == activityID && row.Valid(now) {
			valid = append(valid, row)
		}
	}
	return valid, nil
}

func (m *memInsightRepo) List(_ context.Context, activityID uint, _ repositories.InsightFilters) ([]*models.AIInsightCache, int64, error) {
	var rows []*models.AIInsightCache
	for _, row := range m.rows {
		if row.ActivityID == activityID {
			rows = append(rows, row)
		}
	}
	return rows, int64(len(rows)), nil
}

func (m *memInsightRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var kept []*models.AIInsightCache
	var deleted int64
	for _, row := range m.rows {
		if row.ExpiresAt != nil && row.ExpiresAt.Before(now) {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	m.rows = kept
	return deleted, nil
}

type insightTestRepo struct {
	activity *MockActivityRepository
	response *MockResponseRepository
	insight  *memInsightRepo
}

func newInsightTestRepo() *insightTestRepo {
	return &insightTestRepo{
		activity: new(MockActivityRepository),
		response: new(MockResponseRepository),
		insight:  new(memInsightRepo),
	}
}

func (r *insightTestRepo) Activity() repositories.ActivityRepository { return r.activity }
func (r *insightTestRepo) Response() repositories.ResponseRepository { return r.response }
func (r *insightTestRepo) Insight() repositories.InsightRepository   { return r.insight }

func newTestInsightsService(repo repositories.Repository, publisher events.EventPublisher, now time.Time) *aiInsightsService {
	return &aiInsightsService{
		repo:      repo,
		publisher: publisher,
		logger:    discardLogger(),
		lexicon:   DefaultLexicon(),
		ttl:       defaultInsightTTL,
		now:       func() time.Time { return now },
	}
}

func responsesAt(start uint, count int, createdAt time.Time) []*models.Response {
	responses := make([]*models.Response, 0, count)
	for i := 0; i < count; i++ {
		responses = append(responses, &models.Response{
			ID:         start + uint(i),
			ActivityID: 1,
			Status:     models.ResponseSubmitted,
			CreatedAt:  createdAt,
		})
	}
	return responses
}

// ===== GENERATE =====

func TestGenerateInsightsSummaryOnly(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newInsightTestRepo()
	publisher := events.NewMockEventPublisher(discardLogger())
	service := newTestInsightsService(repo, publisher, now)

	// Ten submitted responses, no timed durations, no prior-week traffic and
	// no text questions: only the summary generator fires.
	var responses []*models.Response
	for i := 0; i < 10; i++ {
		responses = append(responses, &models.Response{
			ID:                   uint(i + 1),
			ActivityID:           1,
			Status:               models.ResponseSubmitted,
			CompletionPercentage: 100,
			CreatedAt:            now.Add(-time.Hour),
		})
	}

	repo.activity.On("GetByIDWithQuestionnaire", mock.Anything, uint(1)).Return(surveyActivity(), nil)
	repo.response.On("ListByActivity", mock.Anything, uint(1), repositories.ResponseFilters{}).Return(responses, nil)

	insights, err := service.GenerateInsightsForActivity(context.Background(), 1, true)

	require.NoError(t, err)
	require.Len(t, insights, 1)

	summary := insights[0]
	assert.Equal(t, models.InsightSummary, summary.Type)
	assert.Equal(t, models.PriorityHigh, summary.Priority)
	assert.Equal(t, 95.0, summary.ConfidenceScore)
	assert.Equal(t, now, summary.ComputedAt)

	var data SummaryData
	require.NoError(t, json.Unmarshal(summary.Data, &data))
	assert.Equal(t, 10, data.TotalResponses)
	assert.Equal(t, 10, data.SubmittedResponses)
	assert.Equal(t, 100.0, data.CompletionRate)
	assert.Equal(t, "excellent", data.Status)

	// Persisted with the configured TTL.
	require.Len(t, repo.insight.rows, 1)
	row := repo.insight.rows[0]
	assert.Equal(t, 10, row.ResponseCountAtComputation)
	require.NotNil(t, row.ExpiresAt)
	assert.Equal(t, now.Add(defaultInsightTTL), *row.ExpiresAt)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventInsightsGenerated, published[0].Type)
}

func TestGenerateInsightsCacheHit(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newInsightTestRepo()
	publisher := events.NewMockEventPublisher(discardLogger())
	service := newTestInsightsService(repo, publisher, now)

	repo.activity.On("GetByIDWithQuestionnaire", mock.Anything, uint(1)).Return(surveyActivity(), nil)
	repo.response.On("ListByActivity", mock.Anything, uint(1), repositories.ResponseFilters{}).
		Return(responsesAt(1, 4, now.Add(-time.Hour)), nil)

	first, err := service.GenerateInsightsForActivity(context.Background(), 1, true)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := service.GenerateInsightsForActivity(context.Background(), 1, true)
	require.NoError(t, err)
	require.Len(t, second, len(first))

	// The second call is served from the cache: same ids, nothing new stored.
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Type, second[i].Type)
	}
	assert.Len(t, repo.insight.rows, len(first))
	repo.response.AssertNumberOfCalls(t, "ListByActivity", 1)
}

func TestGenerateInsightsCacheBypass(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newInsightTestRepo()
	service := newTestInsightsService(repo, events.NewMockEventPublisher(discardLogger()), now)

	repo.activity.On("GetByIDWithQuestionnaire", mock.Anything, uint(1)).Return(surveyActivity(), nil)
	repo.response.On("ListByActivity", mock.Anything, uint(1), repositories.ResponseFilters{}).
		Return(responsesAt(1, 4, now.Add(-time.Hour)), nil)

	first, err := service.GenerateInsightsForActivity(context.Background(), 1, false)
	require.NoError(t, err)

	second, err := service.GenerateInsightsForActivity(context.Background(), 1, false)
	require.NoError(t, err)

	assert.NotEqual(t, first[0].ID, second[0].ID)
	assert.Len(t, repo.insight.rows, len(first)+len(second))
}

// ===== TREND =====

func TestGenerateTrendInsightThresholds(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	service := newTestInsightsService(newInsightTestRepo(), nil, now)

	lastWindow := now.AddDate(0, 0, -1)
	prevWindow := now.AddDate(0, 0, -10)

	cases := []struct {
		name     string
		last     int
		want     int
		priority models.InsightPriority
	}{
		{name: "below threshold", last: 119, want: 0},
		{name: "just above threshold", last: 121, want: 1, priority: models.PriorityMedium},
		{name: "high priority", last: 151, want: 1, priority: models.PriorityHigh},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			responses := responsesAt(1, 100, prevWindow)
			responses = append(responses, responsesAt(101, c.last, lastWindow)...)

			insights := service.generateTrendInsight(responses, now)

			require.Len(t, insights, c.want)
			if c.want == 1 {
				assert.Equal(t, models.InsightTrend, insights[0].Type)
				assert.Equal(t, c.priority, insights[0].Priority)
				assert.Equal(t, 85.0, insights[0].Confidence)

				data := insights[0].Data.(TrendData)
				assert.Equal(t, c.last, data.Last7Days)
				assert.Equal(t, 100, data.Previous7Days)
				assert.Equal(t, "increased", data.Direction)
			}
		})
	}
}

func TestGenerateTrendInsightDecrease(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	service := newTestInsightsService(newInsightTestRepo(), nil, now)

	responses := responsesAt(1, 100, now.AddDate(0, 0, -10))
	responses = append(responses, responsesAt(101, 50, now.AddDate(0, 0, -1))...)

	insights := service.generateTrendInsight(responses, now)

	require.Len(t, insights, 1)
	data := insights[0].Data.(TrendData)
	assert.Equal(t, "decreased", data.Direction)
	assert.Equal(t, -50.0, data.PercentChange)
	assert.Equal(t, models.PriorityMedium, insights[0].Priority)
}

func TestGenerateTrendInsightNoBaseline(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	service := newTestInsightsService(newInsightTestRepo(), nil, now)

	// All traffic in the trailing window; nothing to compare against.
	insights := service.generateTrendInsight(responsesAt(1, 50, now.AddDate(0, 0, -1)), now)
	assert.Empty(t, insights)
}

// ===== SENTIMENT =====

func TestGenerateSentimentInsights(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newInsightTestRepo()
	service := newTestInsightsService(repo, nil, now)

	question := &models.Question{ID: 20, Title: "Any comments?", Type: models.QuestionTextarea}
	answers := []*models.Answer{
		{Value: "Terrible and slow checkout"},
		{Value: "Awful experience, very disappointing"},
		{Value: "The product is bad"},
		{Value: "Poor delivery, broken box"},
		{Value: "Great support"},
		{Value: "It arrived on a Tuesday"},
	}
	repo.response.On("ListAnswers", mock.Anything, uint(1), uint(20), repositories.ResponseFilters{}).Return(answers, nil)

	insights, err := service.generateSentimentInsights(context.Background(), 1, []*models.Question{question})

	require.NoError(t, err)
	require.Len(t, insights, 1)

	insight := insights[0]
	assert.Equal(t, models.InsightSentiment, insight.Type)
	require.NotNil(t, insight.QuestionID)
	assert.Equal(t, uint(20), *insight.QuestionID)

	data := insight.Data.(SentimentData)
	assert.Equal(t, 4, data.Negative)
	assert.Equal(t, 1, data.Positive)
	assert.Equal(t, 1, data.Neutral)
	assert.Equal(t, 6, data.TotalAnalyzed)

	// Negative share above 40% escalates the priority.
	assert.Greater(t, data.NegativePct, sentimentHighNegative)
	assert.Equal(t, models.PriorityHigh, insight.Priority)
}

func TestGenerateSentimentInsightsTooFewAnswers(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newInsightTestRepo()
	service := newTestInsightsService(repo, nil, now)

	question := &models.Question{ID: 20, Title: "Any comments?", Type: models.QuestionText}
	answers := []*models.Answer{
		{Value: "great"}, {Value: "bad"}, {Value: "fine"}, {Value: "ok"}, {Value: "  "},
	}
	repo.response.On("ListAnswers", mock.Anything, uint(1), uint(20), repositories.ResponseFilters{}).Return(answers, nil)

	insights, err := service.generateSentimentInsights(context.Background(), 1, []*models.Question{question})

	require.NoError(t, err)
	assert.Empty(t, insights)
}

func TestClassifySentiment(t *testing.T) {
	positive := wordSet(DefaultLexicon().PositiveWords)
	negative := wordSet(DefaultLexicon().NegativeWords)

	assert.Equal(t, 1, classifySentiment("great product, love it", positive, negative))
	assert.Equal(t, -1, classifySentiment("terrible, hate the checkout", positive, negative))
	assert.Equal(t, 0, classifySentiment("good price but bad delivery", positive, negative))
	assert.Equal(t, 0, classifySentiment("arrived on a Tuesday", positive, negative))
}

// ===== ANOMALY =====

func timedResponse(id uint, start time.Time, minutes int) *models.Response {
	end := start.Add(time.Duration(minutes) * time.Minute)
	return &models.Response{
		ID:          id,
		ActivityID:  1,
		Status:      models.ResponseSubmitted,
		StartedAt:   &start,
		SubmittedAt: &end,
		CreatedAt:   start,
	}
}

func TestGenerateAnomalyInsight(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	service := newTestInsightsService(newInsightTestRepo(), nil, now)
	start := now.Add(-6 * time.Hour)

	// Ten ten-minute responses and two extreme outliers.
	var responses []*models.Response
	for i := 0; i < 10; i++ {
		responses = append(responses, timedResponse(uint(i+1), start, 10))
	}
	responses = append(responses, timedResponse(11, start, 200), timedResponse(12, start, 200))

	insights := service.generateAnomalyInsight(responses)

	require.Len(t, insights, 1)
	assert.Equal(t, models.InsightAnomaly, insights[0].Type)
	assert.Equal(t, models.PriorityMedium, insights[0].Priority)
	assert.Equal(t, 70.0, insights[0].Confidence)

	data := insights[0].Data.(AnomalyData)
	assert.Equal(t, 2, data.OutlierCount)
	assert.Equal(t, 12, data.QualifyingCount)
	assert.Greater(t, data.OutlierPct, anomalyOutlierShare)
}

func TestGenerateAnomalyInsightUniformDurations(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	service := newTestInsightsService(newInsightTestRepo(), nil, now)
	start := now.Add(-6 * time.Hour)

	var responses []*models.Response
	for i := 0; i < 15; i++ {
		responses = append(responses, timedResponse(uint(i+1), start, 10))
	}

	assert.Empty(t, service.generateAnomalyInsight(responses))
}

func TestGenerateAnomalyInsightTooFewTimed(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	service := newTestInsightsService(newInsightTestRepo(), nil, now)
	start := now.Add(-6 * time.Hour)

	responses := []*models.Response{
		timedResponse(1, start, 1),
		timedResponse(2, start, 500),
	}

	assert.Empty(t, service.generateAnomalyInsight(responses))
}

// ===== DROP-OFF =====

func TestGenerateDropOffInsight(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newInsightTestRepo()
	service := newTestInsightsService(repo, nil, now)

	questions := []*models.Question{
		{ID: 1, Title: "First"},
		{ID: 2, Title: "Second"},
		{ID: 3, Title: "Third"},
	}
	noFilters := repositories.ResponseFilters{}
	repo.response.On("CountAnswers", mock.Anything, uint(1), uint(1), noFilters).Return(int64(10), nil)
	repo.response.On("CountAnswers", mock.Anything, uint(1), uint(2), noFilters).Return(int64(7), nil)
	repo.response.On("CountAnswers", mock.Anything, uint(1), uint(3), noFilters).Return(int64(2), nil)

	insights, err := service.generateDropOffInsight(context.Background(), 1, questions, 10)

	require.NoError(t, err)
	require.Len(t, insights, 1, "only the first qualifying drop is reported")

	data := insights[0].Data.(CompletionPatternData)
	assert.Equal(t, uint(1), data.FromQuestionID)
	assert.Equal(t, uint(2), data.ToQuestionID)
	assert.Equal(t, 100.0, data.FromRate)
	assert.Equal(t, 70.0, data.ToRate)
	assert.Equal(t, 30.0, data.Drop)
	assert.Equal(t, models.PriorityMedium, insights[0].Priority)
}

func TestGenerateDropOffInsightHighPriority(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newInsightTestRepo()
	service := newTestInsightsService(repo, nil, now)

	questions := []*models.Question{
		{ID: 1, Title: "First"},
		{ID: 2, Title: "Second"},
	}
	noFilters := repositories.ResponseFilters{}
	repo.response.On("CountAnswers", mock.Anything, uint(1), uint(1), noFilters).Return(int64(10), nil)
	repo.response.On("CountAnswers", mock.Anything, uint(1), uint(2), noFilters).Return(int64(5), nil)

	insights, err := service.generateDropOffInsight(context.Background(), 1, questions, 10)

	require.NoError(t, err)
	require.Len(t, insights, 1)
	assert.Equal(t, models.PriorityHigh, insights[0].Priority)
}

func TestGenerateDropOffInsightTooFewResponses(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newInsightTestRepo()
	service := newTestInsightsService(repo, nil, now)

	insights, err := service.generateDropOffInsight(context.Background(), 1, []*models.Question{{ID: 1}}, 4)

	require.NoError(t, err)
	assert.Empty(t, insights)
	repo.response.AssertNotCalled(t, "CountAnswers")
}

// ===== SUMMARY =====

func TestGenerateSummaryInsightStatuses(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	service := newTestInsightsService(newInsightTestRepo(), nil, now)

	build := func(submitted, inProgress int) []*models.Response {
		var responses []*models.Response
		for i := 0; i < submitted; i++ {
			responses = append(responses, &models.Response{Status: models.ResponseSubmitted})
		}
		for i := 0; i < inProgress; i++ {
			responses = append(responses, &models.Response{Status: models.ResponseInProgress})
		}
		return responses
	}

	cases := []struct {
		submitted  int
		inProgress int
		status     string
	}{
		{8, 2, "excellent"},
		{6, 4, "good"},
		{4, 6, "fair"},
		{1, 9, "needs improvement"},
	}
	for _, c := range cases {
		insights := service.generateSummaryInsight(build(c.submitted, c.inProgress))
		require.Len(t, insights, 1)
		assert.Equal(t, c.status, insights[0].Data.(SummaryData).Status)
	}

	assert.Empty(t, service.generateSummaryInsight(nil))
}

// ===== EXPIRY =====

func TestClearExpiredInsights(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newInsightTestRepo()
	publisher := events.NewMockEventPublisher(discardLogger())
	service := newTestInsightsService(repo, publisher, now)

	expired := now.Add(-time.Hour)
	valid := now.Add(time.Hour)
	repo.insight.rows = []*models.AIInsightCache{
		{ID: 1, ActivityID: 1, ExpiresAt: &expired},
		{ID: 2, ActivityID: 2, ExpiresAt: &expired},
		{ID: 3, ActivityID: 1, ExpiresAt: &valid},
	}

	deleted, err := service.ClearExpiredInsights(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Len(t, repo.insight.rows, 1)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventInsightsCacheSwept, published[0].Type)
}

func TestClearExpiredInsightsNothingToDelete(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newInsightTestRepo()
	publisher := events.NewMockEventPublisher(discardLogger())
	service := newTestInsightsService(repo, publisher, now)

	deleted, err := service.ClearExpiredInsights(context.Background())

	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Empty(t, publisher.GetPublishedEvents())
}

func TestNewAIInsightsServiceDefaultTTL(t *testing.T) {
	service := NewAIInsightsService(newInsightTestRepo(), nil, discardLogger(), 0)

	impl, ok := service.(*aiInsightsService)
	require.True(t, ok)
	assert.Equal(t, defaultInsightTTL, impl.ttl)
}
