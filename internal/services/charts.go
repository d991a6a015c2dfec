package services

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/qsights/analytics-service/internal/models"
)

// ===== CHART-DATA GENERATORS =====
//
// One generator per question-type family; each turns the raw answer values of
// a single question into a structured distribution for the frontend chart
// components.

const (
	maxWordCloudWords = 50
	maxTextSamples    = 5
)

type OptionCount struct {
	Label      string  `json:"label"`
	Value      string  `json:"value"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ChoiceChartData covers single-choice and multiple-choice questions.
// Unmatched answer values are excluded from the per-option counts but still
// contribute to TotalAnswers.
type ChoiceChartData struct {
	Options         []OptionCount `json:"options"`
	TotalAnswers    int           `json:"total_answers"`
	TotalSelections int           `json:"total_selections,omitempty"`
}

type ValueCount struct {
	Value      float64 `json:"value"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type ScaleStatistics struct {
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

type ScaleChartData struct {
	Distribution []ValueCount    `json:"distribution"`
	Statistics   ScaleStatistics `json:"statistics"`
	TotalAnswers int             `json:"total_answers"`
}

type NPSBucket struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type NPSChartData struct {
	Detractors   NPSBucket `json:"detractors"`
	Passives     NPSBucket `json:"passives"`
	Promoters    NPSBucket `json:"promoters"`
	NPSScore     float64   `json:"nps_score"`
	TotalAnswers int       `json:"total_answers"`
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
	Size  int    `json:"size"`
}

type WordCloudChartData struct {
	Words        []WordCount `json:"words"`
	Samples      []string    `json:"samples"`
	TotalAnswers int         `json:"total_answers"`
}

// suggestedChartType maps a question type to the chart the frontend should
// render by default.
func suggestedChartType(t models.QuestionType) string {
	switch t {
	case models.QuestionRadio, models.QuestionSelect, models.QuestionYesNo:
		return "pie"
	case models.QuestionCheckbox, models.QuestionMultiSelect:
		return "bar"
	case models.QuestionRating, models.QuestionScale, models.QuestionSliderScale:
		return "bar"
	case models.QuestionNPS:
		return "gauge"
	case models.QuestionText, models.QuestionTextarea:
		return "wordcloud"
	case models.QuestionMatrix:
		return "heatmap"
	default:
		return "bar"
	}
}

// buildChartData dispatches to the generator for the question's type family.
// Unrecognized types yield nil chart data.
func buildChartData(question *models.Question, answers []string, lexicon InsightLexicon) any {
	switch question.Type {
	case models.QuestionRadio, models.QuestionSelect, models.QuestionYesNo:
		return buildChoiceChartData(question.Options, answers)
	case models.QuestionCheckbox, models.QuestionMultiSelect:
		return buildMultiChoiceChartData(question.Options, answers)
	case models.QuestionRating, models.QuestionScale, models.QuestionSliderScale:
		return buildScaleChartData(answers)
	case models.QuestionNPS:
		return buildNPSChartData(answers)
	case models.QuestionText, models.QuestionTextarea:
		return buildWordCloudChartData(answers, wordSet(lexicon.StopWords))
	default:
		return nil
	}
}

func buildChoiceChartData(options []models.QuestionOption, answers []string) *ChoiceChartData {
	counts := make(map[string]int, len(options))
	for _, answer := range answers {
		counts[answer]++
	}

	data := &ChoiceChartData{TotalAnswers: len(answers)}
	for _, opt := range options {
		count := counts[opt.Value]
		data.Options = append(data.Options, OptionCount{
			Label:      opt.Label,
			Value:      opt.Value,
			Count:      count,
			Percentage: percentage(float64(count), float64(len(answers))),
		})
	}
	return data
}

func buildMultiChoiceChartData(options []models.QuestionOption, answers []string) *ChoiceChartData {
	var selections []string
	for _, answer := range answers {
		selections = append(selections, decodeSelections(answer)...)
	}

	counts := make(map[string]int, len(options))
	for _, sel := range selections {
		counts[sel]++
	}

	data := &ChoiceChartData{
		TotalAnswers:    len(answers),
		TotalSelections: len(selections),
	}
	for _, opt := range options {
		count := counts[opt.Value]
		data.Options = append(data.Options, OptionCount{
			Label:      opt.Label,
			Value:      opt.Value,
			Count:      count,
			Percentage: percentage(float64(count), float64(len(selections))),
		})
	}
	return data
}

// decodeSelections interprets a stored multi-select value. JSON arrays are
// flattened; anything that is not valid JSON is a legacy plain-string answer
// and counts as a single selection.
func decodeSelections(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	var list []any
	if err := json.Unmarshal([]byte(trimmed), &list); err == nil {
		selections := make([]string, 0, len(list))
		for _, item := range list {
			switch v := item.(type) {
			case string:
				selections = append(selections, v)
			case float64:
				selections = append(selections, strconv.FormatFloat(v, 'f', -1, 64))
			case bool:
				selections = append(selections, strconv.FormatBool(v))
			}
		}
		return selections
	}

	return []string{trimmed}
}

func buildScaleChartData(answers []string) *ScaleChartData {
	var values []float64
	for _, answer := range answers {
		if v, err := strconv.ParseFloat(strings.TrimSpace(answer), 64); err == nil {
			values = append(values, v)
		}
	}

	counts := make(map[float64]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	distinct := make([]float64, 0, len(counts))
	for v := range counts {
		distinct = append(distinct, v)
	}
	sort.Float64s(distinct)

	data := &ScaleChartData{TotalAnswers: len(values)}
	for _, v := range distinct {
		data.Distribution = append(data.Distribution, ValueCount{
			Value:      v,
			Count:      counts[v],
			Percentage: percentage(float64(counts[v]), float64(len(values))),
		})
	}

	if len(values) > 0 {
		avg := mean(values)
		min, max := minMax(values)
		data.Statistics = ScaleStatistics{
			Average: round2(avg),
			Median:  median(values),
			Min:     min,
			Max:     max,
		}
	}
	return data
}

func buildNPSChartData(answers []string) *NPSChartData {
	var detractors, passives, promoters int
	for _, answer := range answers {
		score, err := strconv.Atoi(strings.TrimSpace(answer))
		if err != nil || score < 0 || score > 10 {
			continue
		}
		switch {
		case score <= 6:
			detractors++
		case score <= 8:
			passives++
		default:
			promoters++
		}
	}

	total := detractors + passives + promoters
	data := &NPSChartData{
		Detractors:   NPSBucket{Label: "detractors", Count: detractors, Percentage: percentage(float64(detractors), float64(total))},
		Passives:     NPSBucket{Label: "passives", Count: passives, Percentage: percentage(float64(passives), float64(total))},
		Promoters:    NPSBucket{Label: "promoters", Count: promoters, Percentage: percentage(float64(promoters), float64(total))},
		TotalAnswers: total,
	}
	if total > 0 {
		data.NPSScore = round2(float64(promoters-detractors) / float64(total) * 100)
	}
	return data
}

func buildWordCloudChartData(answers []string, stopWords map[string]struct{}) *WordCloudChartData {
	counts := make(map[string]int)
	for _, answer := range answers {
		for _, word := range tokenize(answer) {
			if len(word) <= 3 {
				continue
			}
			if _, skip := stopWords[word]; skip {
				continue
			}
			counts[word]++
		}
	}

	words := make([]WordCount, 0, len(counts))
	for word, count := range counts {
		words = append(words, WordCount{Word: word, Count: count, Size: wordCloudSize(count)})
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Word < words[j].Word
	})
	if len(words) > maxWordCloudWords {
		words = words[:maxWordCloudWords]
	}

	data := &WordCloudChartData{
		Words:        words,
		TotalAnswers: len(answers),
	}
	for _, answer := range answers {
		if strings.TrimSpace(answer) == "" {
			continue
		}
		data.Samples = append(data.Samples, answer)
		if len(data.Samples) == maxTextSamples {
			break
		}
	}
	return data
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// wordCloudSize scales a frequency count into a 10-100 font size.
func wordCloudSize(count int) int {
	size := count * 5
	if size < 10 {
		return 10
	}
	if size > 100 {
		return 100
	}
	return size
}
