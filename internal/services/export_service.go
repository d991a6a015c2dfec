package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/qsights/analytics-service/internal/events"
	"github.com/qsights/analytics-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// ReportExportService renders an activity's aggregate analytics into an Excel
// workbook for download.
type ReportExportService interface {
	ExportActivityAnalytics(ctx context.Context, activityID uint, filters repositories.ResponseFilters) ([]byte, error)
}

type reportExportService struct {
	analytics AnalyticsService
	publisher events.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewReportExportService(analytics AnalyticsService, publisher events.EventPublisher, logger *slog.Logger) ReportExportService {
	return &reportExportService{
		analytics: analytics,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *reportExportService) ExportActivityAnalytics(ctx context.Context, activityID uint, filters repositories.ResponseFilters) ([]byte, error) {
	analytics, err := s.analytics.GetActivityAnalytics(ctx, activityID, filters)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()

	if err := s.writeOverviewSheet(f, analytics); err != nil {
		return nil, err
	}
	if err := s.writeQuestionSheet(f, analytics); err != nil {
		return nil, err
	}

	// Drop the default sheet created by excelize.
	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	if s.publisher != nil {
		event := events.NewEvent(events.EventAnalyticsExported, events.AnalyticsExportedEvent{
			ActivityID: activityID,
			Format:     "xlsx",
			ExportedAt: s.now(),
		})
		if err := s.publisher.PublishInsightEvent(ctx, event); err != nil {
			s.logger.Warn("failed to publish export event", "activity_id", activityID, "error", err)
		}
	}

	return buf.Bytes(), nil
}

func (s *reportExportService) writeOverviewSheet(f *excelize.File, analytics *ActivityAnalytics) error {
	sheetName := "Overview"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	rows := [][]interface{}{
		{"Activity", analytics.Title},
		{"Generated At", analytics.GeneratedAt.Format("2006-01-02 15:04:05")},
		{},
		{"Total Responses", analytics.Overview.TotalResponses},
		{"Submitted", analytics.Overview.SubmittedResponses},
		{"In Progress", analytics.Overview.InProgressResponses},
		{"Completion Rate (%)", analytics.Overview.CompletionRate},
		{"Avg Completion (%)", analytics.Overview.AverageCompletion},
		{},
		{"Avg Duration (min)", analytics.TimeAnalysis.AverageMinutes},
		{"Median Duration (min)", analytics.TimeAnalysis.MedianMinutes},
		{"Min Duration (min)", analytics.TimeAnalysis.MinMinutes},
		{"Max Duration (min)", analytics.TimeAnalysis.MaxMinutes},
		{},
		{"Completion Distribution", ""},
	}
	for _, bucket := range analytics.Completion.Buckets {
		rows = append(rows, []interface{}{bucket.Range, bucket.Count})
	}

	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+1)
			f.SetCellValue(sheetName, cell, value)
		}
	}
	return nil
}

func (s *reportExportService) writeQuestionSheet(f *excelize.File, analytics *ActivityAnalytics) error {
	sheetName := "Questions"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []string{"Question ID", "Title", "Type", "Answer Count", "Response Rate (%)", "Suggested Chart"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, qa := range analytics.QuestionBreakdown {
		row := []interface{}{
			qa.QuestionID,
			qa.Title,
			string(qa.Type),
			qa.AnswerCount,
			qa.ResponseRate,
			qa.SuggestedChartType,
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}
	return nil
}
