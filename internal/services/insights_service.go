package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/qsights/analytics-service/internal/events"
	"github.com/qsights/analytics-service/internal/models"
	"github.com/qsights/analytics-service/internal/repositories"
	"gorm.io/datatypes"
)

const (
	defaultInsightTTL = 24 * time.Hour

	trendWindowDays      = 7
	trendChangeThreshold = 20.0
	trendHighThreshold   = 50.0

	sentimentMinAnswers    = 5
	sentimentHighNegative  = 40.0
	anomalyStdDevFactor    = 2.0
	anomalyOutlierShare    = 10.0
	anomalyMinQualifying   = 10
	dropOffMinResponses    = 5
	dropOffRateThreshold   = 20.0
	dropOffHighThreshold   = 40.0
	summaryMinResponses    = 1

	confidenceTrend             = 85.0
	confidenceSentiment         = 70.0
	confidenceAnomaly           = 70.0
	confidenceCompletionPattern = 80.0
	confidenceSummary           = 95.0
)

// AIInsightsService runs the heuristic insight generators over an activity's
// response set and maintains the insight cache. Caching is all-or-nothing per
// activity: any valid cached insight short-circuits regeneration.
type AIInsightsService interface {
	GenerateInsightsForActivity(ctx context.Context, activityID uint, useCache bool) ([]Insight, error)
	ClearExpiredInsights(ctx context.Context) (int64, error)
}

type aiInsightsService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	lexicon   InsightLexicon
	ttl       time.Duration
	now       func() time.Time
}

func NewAIInsightsService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, ttl time.Duration) AIInsightsService {
	if ttl <= 0 {
		ttl = defaultInsightTTL
	}
	return &aiInsightsService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		lexicon:   DefaultLexicon(),
		ttl:       ttl,
		now:       time.Now,
	}
}

// ===== DATA STRUCTURES =====

// Insight is the caller-facing view of a cached insight, stripped of internal
// bookkeeping columns.
type Insight struct {
	ID              uint                   `json:"id"`
	Type            models.InsightType     `json:"insight_type"`
	Priority        models.InsightPriority `json:"priority"`
	ConfidenceScore float64                `json:"confidence_score"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Data            json.RawMessage        `json:"data"`
	QuestionID      *uint                  `json:"question_id,omitempty"`
	ComputedAt      time.Time              `json:"computed_at"`
}

// Per-type data payloads. One variant per generator; the insight_type column
// tells callers which shape the data column holds.

type TrendData struct {
	Last7Days     int     `json:"last_7_days"`
	Previous7Days int     `json:"previous_7_days"`
	PercentChange float64 `json:"percent_change"`
	Direction     string  `json:"direction"`
}

type SentimentData struct {
	QuestionID    uint    `json:"question_id"`
	QuestionTitle string  `json:"question_title"`
	Positive      int     `json:"positive"`
	Negative      int     `json:"negative"`
	Neutral       int     `json:"neutral"`
	PositivePct   float64 `json:"positive_percentage"`
	NegativePct   float64 `json:"negative_percentage"`
	NeutralPct    float64 `json:"neutral_percentage"`
	TotalAnalyzed int     `json:"total_analyzed"`
}

type AnomalyData struct {
	MeanMinutes     float64 `json:"mean_minutes"`
	StdDevMinutes   float64 `json:"stddev_minutes"`
	OutlierCount    int     `json:"outlier_count"`
	QualifyingCount int     `json:"qualifying_count"`
	OutlierPct      float64 `json:"outlier_percentage"`
}

type CompletionPatternData struct {
	FromQuestionID uint    `json:"from_question_id"`
	ToQuestionID   uint    `json:"to_question_id"`
	FromTitle      string  `json:"from_title"`
	ToTitle        string  `json:"to_title"`
	FromRate       float64 `json:"from_rate"`
	ToRate         float64 `json:"to_rate"`
	Drop           float64 `json:"drop"`
	Position       int     `json:"position"`
}

type SummaryData struct {
	TotalResponses     int     `json:"total_responses"`
	SubmittedResponses int     `json:"submitted_responses"`
	CompletionRate     float64 `json:"completion_rate"`
	Status             string  `json:"status"`
}

// generatedInsight is the internal form produced by a generator before
// persistence assigns an id.
type generatedInsight struct {
	Type        models.InsightType
	QuestionID  *uint
	Title       string
	Description string
	Data        any
	Priority    models.InsightPriority
	Confidence  float64
}

// ===== PUBLIC OPERATIONS =====

func (s *aiInsightsService) GenerateInsightsForActivity(ctx context.Context, activityID uint, useCache bool) ([]Insight, error) {
	activity, err := s.repo.Activity().GetByIDWithQuestionnaire(ctx, activityID)
	if err != nil {
		return nil, wrapNotFound(err, ErrActivityNotFound)
	}

	now := s.now()

	if useCache {
		cached, err := s.repo.Insight().ListValidByActivity(ctx, activityID, now)
		if err != nil {
			s.logger.Warn("insight cache read failed, regenerating", "activity_id", activityID, "error", err)
		} else if len(cached) > 0 {
			return formatInsights(cached), nil
		}
	}

	responses, err := s.repo.Response().ListByActivity(ctx, activityID, repositories.ResponseFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	questions := flattenQuestions(activity)

	var generated []generatedInsight
	generated = append(generated, s.generateTrendInsight(responses, now)...)

	sentiment, err := s.generateSentimentInsights(ctx, activityID, questions)
	if err != nil {
		return nil, err
	}
	generated = append(generated, sentiment...)

	generated = append(generated, s.generateAnomalyInsight(responses)...)

	dropOff, err := s.generateDropOffInsight(ctx, activityID, questions, len(responses))
	if err != nil {
		return nil, err
	}
	generated = append(generated, dropOff...)

	generated = append(generated, s.generateSummaryInsight(responses)...)

	insights := s.persistInsights(ctx, activityID, generated, len(responses), now)

	s.publishGenerated(ctx, activityID, insights, len(responses), now)

	return insights, nil
}

func (s *aiInsightsService) ClearExpiredInsights(ctx context.Context) (int64, error) {
	now := s.now()
	deleted, err := s.repo.Insight().DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired insights: %w", err)
	}

	if s.publisher != nil && deleted > 0 {
		event := events.NewEvent(events.EventInsightsCacheSwept, events.InsightsCacheSweptEvent{
			DeletedCount: deleted,
			SweptAt:      now,
		})
		if err := s.publisher.PublishInsightEvent(ctx, event); err != nil {
			s.logger.Warn("failed to publish cache sweep event", "error", err)
		}
	}

	s.logger.Info("cleared expired insights", "deleted", deleted)
	return deleted, nil
}

// ===== INSIGHT GENERATORS =====

// generateTrendInsight compares the trailing seven days of responses against
// the seven days before them. No insight unless the earlier window has data
// and the change exceeds the threshold.
func (s *aiInsightsService) generateTrendInsight(responses []*models.Response, now time.Time) []generatedInsight {
	windowStart := now.AddDate(0, 0, -trendWindowDays)
	previousStart := now.AddDate(0, 0, -2*trendWindowDays)

	var last, previous int
	for _, r := range responses {
		switch {
		case r.CreatedAt.After(windowStart):
			last++
		case r.CreatedAt.After(previousStart):
			previous++
		}
	}

	if previous == 0 {
		return nil
	}

	change := round2(float64(last-previous) / float64(previous) * 100)
	magnitude := change
	if magnitude < 0 {
		magnitude = -magnitude
	}
	if magnitude <= trendChangeThreshold {
		return nil
	}

	direction := "increased"
	if change < 0 {
		direction = "decreased"
	}

	priority := models.PriorityMedium
	if magnitude > trendHighThreshold {
		priority = models.PriorityHigh
	}

	return []generatedInsight{{
		Type:  models.InsightTrend,
		Title: "Response volume " + direction,
		Description: fmt.Sprintf("Responses %s by %.2f%% over the last %d days (%d vs %d in the prior period).",
			direction, magnitude, trendWindowDays, last, previous),
		Data: TrendData{
			Last7Days:     last,
			Previous7Days: previous,
			PercentChange: change,
			Direction:     direction,
		},
		Priority:   priority,
		Confidence: confidenceTrend,
	}}
}

// generateSentimentInsights classifies free-text answers with the fixed
// lexicon; one insight per text question with more than five answers.
func (s *aiInsightsService) generateSentimentInsights(ctx context.Context, activityID uint, questions []*models.Question) ([]generatedInsight, error) {
	positive := wordSet(s.lexicon.PositiveWords)
	negative := wordSet(s.lexicon.NegativeWords)

	var insights []generatedInsight
	for _, question := range questions {
		if question.Type != models.QuestionText && question.Type != models.QuestionTextarea {
			continue
		}

		answers, err := s.repo.Response().ListAnswers(ctx, activityID, question.ID, repositories.ResponseFilters{})
		if err != nil {
			return nil, fmt.Errorf("failed to list answers for question %d: %w", question.ID, err)
		}

		var texts []string
		for _, a := range answers {
			if strings.TrimSpace(a.Value) != "" {
				texts = append(texts, a.Value)
			}
		}
		if len(texts) <= sentimentMinAnswers {
			continue
		}

		var pos, neg, neu int
		for _, text := range texts {
			switch classifySentiment(text, positive, negative) {
			case 1:
				pos++
			case -1:
				neg++
			default:
				neu++
			}
		}

		total := len(texts)
		data := SentimentData{
			QuestionID:    question.ID,
			QuestionTitle: question.Title,
			Positive:      pos,
			Negative:      neg,
			Neutral:       neu,
			PositivePct:   percentage(float64(pos), float64(total)),
			NegativePct:   percentage(float64(neg), float64(total)),
			NeutralPct:    percentage(float64(neu), float64(total)),
			TotalAnalyzed: total,
		}

		priority := models.PriorityMedium
		if data.NegativePct > sentimentHighNegative {
			priority = models.PriorityHigh
		}

		questionID := question.ID
		insights = append(insights, generatedInsight{
			Type:       models.InsightSentiment,
			QuestionID: &questionID,
			Title:      "Sentiment for \"" + question.Title + "\"",
			Description: fmt.Sprintf("Of %d text answers, %.2f%% read positive, %.2f%% negative and %.2f%% neutral.",
				total, data.PositivePct, data.NegativePct, data.NeutralPct),
			Data:       data,
			Priority:   priority,
			Confidence: confidenceSentiment,
		})
	}
	return insights, nil
}

// classifySentiment counts lexicon hits per answer; more positive hits than
// negative means positive, the reverse negative, ties are neutral.
func classifySentiment(text string, positive, negative map[string]struct{}) int {
	var pos, neg int
	for _, word := range tokenize(text) {
		if _, ok := positive[word]; ok {
			pos++
		}
		if _, ok := negative[word]; ok {
			neg++
		}
	}
	switch {
	case pos > neg:
		return 1
	case neg > pos:
		return -1
	default:
		return 0
	}
}

// generateAnomalyInsight flags completion durations further than two standard
// deviations from the mean when outliers exceed a tenth of the qualifying set
// and the set itself is large enough to trust.
func (s *aiInsightsService) generateAnomalyInsight(responses []*models.Response) []generatedInsight {
	durations := completionDurations(responses)
	if len(durations) <= anomalyMinQualifying {
		return nil
	}

	avg := mean(durations)
	sd := stddev(durations, avg)

	var outliers int
	for _, d := range durations {
		diff := d - avg
		if diff < 0 {
			diff = -diff
		}
		if sd > 0 && diff > anomalyStdDevFactor*sd {
			outliers++
		}
	}

	outlierPct := percentage(float64(outliers), float64(len(durations)))
	if outlierPct <= anomalyOutlierShare {
		return nil
	}

	return []generatedInsight{{
		Type:  models.InsightAnomaly,
		Title: "Unusual completion times detected",
		Description: fmt.Sprintf("%d of %d timed responses (%.2f%%) deviate more than two standard deviations from the mean completion time of %.2f minutes.",
			outliers, len(durations), outlierPct, round2(avg)),
		Data: AnomalyData{
			MeanMinutes:     round2(avg),
			StdDevMinutes:   round2(sd),
			OutlierCount:    outliers,
			QualifyingCount: len(durations),
			OutlierPct:      outlierPct,
		},
		Priority:   models.PriorityMedium,
		Confidence: confidenceAnomaly,
	}}
}

// generateDropOffInsight scans consecutive questions for the first response
// rate drop above the threshold; at most one insight is ever produced.
func (s *aiInsightsService) generateDropOffInsight(ctx context.Context, activityID uint, questions []*models.Question, totalResponses int) ([]generatedInsight, error) {
	if totalResponses < dropOffMinResponses {
		return nil, nil
	}

	rates := make([]float64, len(questions))
	for i, question := range questions {
		count, err := s.repo.Response().CountAnswers(ctx, activityID, question.ID, repositories.ResponseFilters{})
		if err != nil {
			return nil, fmt.Errorf("failed to count answers for question %d: %w", question.ID, err)
		}
		rates[i] = percentage(float64(count), float64(totalResponses))
	}

	for i := 0; i+1 < len(questions); i++ {
		drop := round2(rates[i] - rates[i+1])
		if drop <= dropOffRateThreshold {
			continue
		}

		priority := models.PriorityMedium
		if drop > dropOffHighThreshold {
			priority = models.PriorityHigh
		}

		return []generatedInsight{{
			Type:  models.InsightCompletionPattern,
			Title: "Participants drop off at question " + fmt.Sprint(i+2),
			Description: fmt.Sprintf("Response rate falls from %.2f%% to %.2f%% (a %.2f point drop) between \"%s\" and \"%s\".",
				rates[i], rates[i+1], drop, questions[i].Title, questions[i+1].Title),
			Data: CompletionPatternData{
				FromQuestionID: questions[i].ID,
				ToQuestionID:   questions[i+1].ID,
				FromTitle:      questions[i].Title,
				ToTitle:        questions[i+1].Title,
				FromRate:       rates[i],
				ToRate:         rates[i+1],
				Drop:           drop,
				Position:       i + 1,
			},
			Priority:   priority,
			Confidence: confidenceCompletionPattern,
		}}, nil
	}
	return nil, nil
}

// generateSummaryInsight always emits exactly one insight when the activity
// has any responses at all.
func (s *aiInsightsService) generateSummaryInsight(responses []*models.Response) []generatedInsight {
	if len(responses) < summaryMinResponses {
		return nil
	}

	var submitted int
	for _, r := range responses {
		if r.Status == models.ResponseSubmitted {
			submitted++
		}
	}

	rate := percentage(float64(submitted), float64(len(responses)))
	status := "needs improvement"
	switch {
	case rate >= 80:
		status = "excellent"
	case rate >= 60:
		status = "good"
	case rate >= 40:
		status = "fair"
	}

	return []generatedInsight{{
		Type:  models.InsightSummary,
		Title: "Activity performance summary",
		Description: fmt.Sprintf("%d of %d responses submitted (%.2f%% completion rate) - %s.",
			submitted, len(responses), rate, status),
		Data: SummaryData{
			TotalResponses:     len(responses),
			SubmittedResponses: submitted,
			CompletionRate:     rate,
			Status:             status,
		},
		Priority:   models.PriorityHigh,
		Confidence: confidenceSummary,
	}}
}

// ===== PERSISTENCE & FORMATTING =====

// persistInsights writes each generated insight to the cache. Cache writes
// are best-effort: a failed insert is logged and the computed insight is
// still returned to the caller.
func (s *aiInsightsService) persistInsights(ctx context.Context, activityID uint, generated []generatedInsight, responseCount int, now time.Time) []Insight {
	expiresAt := now.Add(s.ttl)

	insights := make([]Insight, 0, len(generated))
	for _, g := range generated {
		payload, err := json.Marshal(g.Data)
		if err != nil {
			s.logger.Error("failed to marshal insight data", "insight_type", g.Type, "error", err)
			continue
		}

		row := &models.AIInsightCache{
			ActivityID:                 activityID,
			QuestionID:                 g.QuestionID,
			Type:                       g.Type,
			Title:                      g.Title,
			Description:                g.Description,
			Data:                       datatypes.JSON(payload),
			Priority:                   g.Priority,
			ConfidenceScore:            g.Confidence,
			ComputedAt:                 now,
			ExpiresAt:                  &expiresAt,
			ResponseCountAtComputation: responseCount,
		}

		if err := s.repo.Insight().Create(ctx, row); err != nil {
			s.logger.Error("failed to cache insight, returning uncached result",
				"activity_id", activityID,
				"insight_type", g.Type,
				"error", err)
		}

		insights = append(insights, Insight{
			ID:              row.ID,
			Type:            row.Type,
			Priority:        row.Priority,
			ConfidenceScore: row.ConfidenceScore,
			Title:           row.Title,
			Description:     row.Description,
			Data:            json.RawMessage(payload),
			QuestionID:      row.QuestionID,
			ComputedAt:      row.ComputedAt,
		})
	}
	return insights
}

func (s *aiInsightsService) publishGenerated(ctx context.Context, activityID uint, insights []Insight, responseCount int, now time.Time) {
	if s.publisher == nil || len(insights) == 0 {
		return
	}

	types := make([]models.InsightType, 0, len(insights))
	for _, i := range insights {
		types = append(types, i.Type)
	}

	event := events.NewEvent(events.EventInsightsGenerated, events.InsightsGeneratedEvent{
		ActivityID:    activityID,
		InsightCount:  len(insights),
		InsightTypes:  types,
		ResponseCount: responseCount,
		GeneratedAt:   now,
	})
	if err := s.publisher.PublishInsightEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish insights generated event", "activity_id", activityID, "error", err)
	}
}

// formatInsights strips cache bookkeeping from stored rows.
func formatInsights(rows []*models.AIInsightCache) []Insight {
	insights := make([]Insight, 0, len(rows))
	for _, row := range rows {
		insights = append(insights, Insight{
			ID:              row.ID,
			Type:            row.Type,
			Priority:        row.Priority,
			ConfidenceScore: row.ConfidenceScore,
			Title:           row.Title,
			Description:     row.Description,
			Data:            json.RawMessage(row.Data),
			QuestionID:      row.QuestionID,
			ComputedAt:      row.ComputedAt,
		})
	}
	return insights
}
