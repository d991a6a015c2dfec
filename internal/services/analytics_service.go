package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/qsights/analytics-service/internal/cache"
	"github.com/qsights/analytics-service/internal/models"
	"github.com/qsights/analytics-service/internal/repositories"
)

const (
	participationWindowDays = 30
	analyticsViewCacheTTL   = 5 * time.Minute
)

// AnalyticsService aggregates raw response and answer records of an activity
// into statistical summaries. All operations are pure reads; the one shared
// filter predicate is applied to the Response base set of every sub-metric.
type AnalyticsService interface {
	GetActivityAnalytics(ctx context.Context, activityID uint, filters repositories.ResponseFilters) (*ActivityAnalytics, error)
	GetQuestionAnalytics(ctx context.Context, activityID, questionID uint, filters repositories.ResponseFilters) (*QuestionAnalytics, error)
}

type analyticsService struct {
	repo      repositories.Repository
	viewCache cache.CacheService
	logger    *slog.Logger
	lexicon   InsightLexicon
	now       func() time.Time
}

func NewAnalyticsService(repo repositories.Repository, viewCache cache.CacheService, logger *slog.Logger) AnalyticsService {
	return &analyticsService{
		repo:      repo,
		viewCache: viewCache,
		logger:    logger,
		lexicon:   DefaultLexicon(),
		now:       time.Now,
	}
}

// ===== DATA STRUCTURES =====

type ActivityAnalytics struct {
	ActivityID        uint                   `json:"activity_id"`
	Title             string                 `json:"title"`
	Overview          Overview               `json:"overview"`
	Participation     Participation          `json:"participation"`
	Completion        CompletionDistribution `json:"completion"`
	TimeAnalysis      TimeAnalysis           `json:"time_analysis"`
	QuestionBreakdown []QuestionAnalytics    `json:"question_breakdown"`
	GeneratedAt       time.Time              `json:"generated_at"`
}

type Overview struct {
	TotalResponses      int     `json:"total_responses"`
	SubmittedResponses  int     `json:"submitted_responses"`
	InProgressResponses int     `json:"in_progress_responses"`
	CompletionRate      float64 `json:"completion_rate"`
	AverageCompletion   float64 `json:"average_completion_percentage"`
}

type DailyCount struct {
	Date           string `json:"date"` // YYYY-MM-DD
	Count          int    `json:"count"`
	SubmittedCount int    `json:"submitted_count"`
}

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type Participation struct {
	Daily  []DailyCount `json:"daily"`
	ByHour []HourCount  `json:"by_hour"`
}

type CompletionBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

type CompletionDistribution struct {
	Buckets []CompletionBucket `json:"buckets"`
	Total   int                `json:"total"`
}

type TimeAnalysis struct {
	AverageMinutes float64 `json:"average_minutes"`
	MedianMinutes  float64 `json:"median_minutes"`
	MinMinutes     int     `json:"min_minutes"`
	MaxMinutes     int     `json:"max_minutes"`
	ResponseCount  int     `json:"response_count"`
}

type QuestionAnalytics struct {
	QuestionID         uint                `json:"question_id"`
	Title              string              `json:"title"`
	Type               models.QuestionType `json:"type"`
	AnswerCount        int                 `json:"answer_count"`
	ResponseRate       float64             `json:"response_rate"`
	SuggestedChartType string              `json:"suggested_chart_type"`
	ChartData          any                 `json:"chart_data"`
	GeneratedAt        time.Time           `json:"generated_at"`
}

// ===== ACTIVITY ANALYTICS =====

func (s *analyticsService) GetActivityAnalytics(ctx context.Context, activityID uint, filters repositories.ResponseFilters) (*ActivityAnalytics, error) {
	cacheKey := analyticsCacheKey(activityID, filters)
	if s.viewCache != nil {
		var cached ActivityAnalytics
		if err := s.viewCache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	activity, err := s.repo.Activity().GetByIDWithQuestionnaire(ctx, activityID)
	if err != nil {
		return nil, wrapNotFound(err, ErrActivityNotFound)
	}

	responses, err := s.repo.Response().ListByActivity(ctx, activityID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	analytics := &ActivityAnalytics{
		ActivityID:    activityID,
		Title:         activity.Title,
		Overview:      s.buildOverview(responses),
		Participation: s.buildParticipation(responses),
		Completion:    buildCompletionDistribution(responses),
		TimeAnalysis:  buildTimeAnalysis(responses),
		GeneratedAt:   s.now(),
	}

	questions := flattenQuestions(activity)
	for _, question := range questions {
		qa, err := s.buildQuestionAnalytics(ctx, activityID, question, filters, len(responses))
		if err != nil {
			return nil, err
		}
		analytics.QuestionBreakdown = append(analytics.QuestionBreakdown, *qa)
	}

	if s.viewCache != nil {
		if err := s.viewCache.Set(ctx, cacheKey, analytics, analyticsViewCacheTTL); err != nil {
			s.logger.Warn("failed to cache activity analytics", "activity_id", activityID, "error", err)
		}
	}

	return analytics, nil
}

func (s *analyticsService) GetQuestionAnalytics(ctx context.Context, activityID, questionID uint, filters repositories.ResponseFilters) (*QuestionAnalytics, error) {
	question, err := s.repo.Activity().GetQuestion(ctx, activityID, questionID)
	if err != nil {
		return nil, wrapNotFound(err, ErrQuestionNotFound)
	}

	total, err := s.repo.Response().CountByActivity(ctx, activityID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to count responses: %w", err)
	}

	return s.buildQuestionAnalytics(ctx, activityID, question, filters, int(total))
}

// ===== SUB-METRIC BUILDERS =====

func (s *analyticsService) buildOverview(responses []*models.Response) Overview {
	overview := Overview{TotalResponses: len(responses)}

	var completions []float64
	for _, r := range responses {
		switch r.Status {
		case models.ResponseSubmitted:
			overview.SubmittedResponses++
		case models.ResponseInProgress:
			overview.InProgressResponses++
		}
		completions = append(completions, r.CompletionPercentage)
	}

	overview.CompletionRate = percentage(float64(overview.SubmittedResponses), float64(overview.TotalResponses))
	if len(completions) > 0 {
		overview.AverageCompletion = round2(mean(completions))
	}
	return overview
}

func (s *analyticsService) buildParticipation(responses []*models.Response) Participation {
	now := s.now()
	windowStart := now.AddDate(0, 0, -(participationWindowDays - 1))

	type dayTally struct {
		count     int
		submitted int
	}
	days := make(map[string]dayTally)
	hours := make(map[int]int)

	for _, r := range responses {
		hours[r.CreatedAt.Hour()]++

		if r.CreatedAt.Before(windowStart.Truncate(24 * time.Hour)) {
			continue
		}
		key := r.CreatedAt.Format("2006-01-02")
		tally := days[key]
		tally.count++
		if r.Status == models.ResponseSubmitted {
			tally.submitted++
		}
		days[key] = tally
	}

	participation := Participation{}
	for i := 0; i < participationWindowDays; i++ {
		date := windowStart.AddDate(0, 0, i).Format("2006-01-02")
		tally := days[date]
		participation.Daily = append(participation.Daily, DailyCount{
			Date:           date,
			Count:          tally.count,
			SubmittedCount: tally.submitted,
		})
	}
	for hour := 0; hour < 24; hour++ {
		if hours[hour] == 0 {
			continue
		}
		participation.ByHour = append(participation.ByHour, HourCount{Hour: hour, Count: hours[hour]})
	}
	return participation
}

var completionBucketRanges = []string{"0%", "1-25%", "26-50%", "51-75%", "76-99%", "100%"}

// completionBucketIndex places a completion percentage into one of the six
// fixed ranges. Upper edges are inclusive; the first bucket is exactly zero.
func completionBucketIndex(p float64) int {
	switch {
	case p == 0:
		return 0
	case p <= 25:
		return 1
	case p <= 50:
		return 2
	case p <= 75:
		return 3
	case p < 100:
		return 4
	default:
		return 5
	}
}

func buildCompletionDistribution(responses []*models.Response) CompletionDistribution {
	counts := make([]int, len(completionBucketRanges))
	for _, r := range responses {
		counts[completionBucketIndex(r.CompletionPercentage)]++
	}

	dist := CompletionDistribution{Total: len(responses)}
	for i, label := range completionBucketRanges {
		dist.Buckets = append(dist.Buckets, CompletionBucket{Range: label, Count: counts[i]})
	}
	return dist
}

// buildTimeAnalysis reports completion durations in whole minutes for
// responses that have both started_at and submitted_at. All-zero when no
// response qualifies.
func buildTimeAnalysis(responses []*models.Response) TimeAnalysis {
	durations := completionDurations(responses)
	if len(durations) == 0 {
		return TimeAnalysis{}
	}

	min, max := minMax(durations)
	return TimeAnalysis{
		AverageMinutes: round2(mean(durations)),
		MedianMinutes:  median(durations),
		MinMinutes:     int(min),
		MaxMinutes:     int(max),
		ResponseCount:  len(durations),
	}
}

// completionDurations extracts whole-minute durations for responses that
// carry both timestamps.
func completionDurations(responses []*models.Response) []float64 {
	var durations []float64
	for _, r := range responses {
		if r.StartedAt == nil || r.SubmittedAt == nil {
			continue
		}
		minutes := r.SubmittedAt.Sub(*r.StartedAt).Minutes()
		if minutes < 0 {
			continue
		}
		durations = append(durations, float64(int(minutes)))
	}
	return durations
}

func (s *analyticsService) buildQuestionAnalytics(ctx context.Context, activityID uint, question *models.Question, filters repositories.ResponseFilters, totalResponses int) (*QuestionAnalytics, error) {
	answers, err := s.repo.Response().ListAnswers(ctx, activityID, question.ID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers for question %d: %w", question.ID, err)
	}

	values := make([]string, 0, len(answers))
	for _, a := range answers {
		values = append(values, a.Value)
	}

	return &QuestionAnalytics{
		QuestionID:         question.ID,
		Title:              question.Title,
		Type:               question.Type,
		AnswerCount:        len(answers),
		ResponseRate:       percentage(float64(len(answers)), float64(totalResponses)),
		SuggestedChartType: suggestedChartType(question.Type),
		ChartData:          buildChartData(question, values, s.lexicon),
		GeneratedAt:        s.now(),
	}, nil
}

// ===== HELPERS =====

// flattenQuestions returns the questionnaire's questions across all sections,
// order preserved.
func flattenQuestions(activity *models.Activity) []*models.Question {
	var questions []*models.Question
	for i := range activity.Questionnaire.Sections {
		section := &activity.Questionnaire.Sections[i]
		for j := range section.Questions {
			questions = append(questions, &section.Questions[j])
		}
	}
	return questions
}

func analyticsCacheKey(activityID uint, filters repositories.ResponseFilters) string {
	key := fmt.Sprintf("analytics:activity:%d", activityID)
	if filters.DateFrom != nil {
		key += ":from=" + filters.DateFrom.Format(time.RFC3339)
	}
	if filters.DateTo != nil {
		key += ":to=" + filters.DateTo.Format(time.RFC3339)
	}
	if filters.Status != nil {
		key += ":status=" + string(*filters.Status)
	}
	if filters.ParticipantID != nil {
		key += fmt.Sprintf(":participant=%d", *filters.ParticipantID)
	}
	return key
}
