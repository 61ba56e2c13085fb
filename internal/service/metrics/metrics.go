// Package metrics aggregates generation history into period summaries.
package metrics

import (
	"bytes"
	"context"
	"sort"
	"time"

	"ai-config-console/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogStore reads generation history.
type LogStore interface {
	GetByTimeRange(ctx context.Context, start, end time.Time) ([]models.GenerationLog, error)
}

// Service rolls up generation logs. It is read-only.
type Service struct {
	logs   LogStore
	logger *zap.Logger
}

// NewService creates a new metrics service.
func NewService(logs LogStore, logger *zap.Logger) *Service {
	return &Service{
		logs:   logs,
		logger: logger,
	}
}

// Summary represents aggregated generation data for a period.
type Summary struct {
	TotalGenerations int64   `json:"total_generations"`
	TotalTokens      int64   `json:"total_tokens"`
	TotalCost        float64 `json:"total_cost"`
	AvgLatencyMs     float64 `json:"avg_latency_ms"`
	SuccessRate      float64 `json:"success_rate"`
	FailureCount     int64   `json:"failure_count"`
}

// GetSummary returns aggregated generation metrics for a time range.
func (s *Service) GetSummary(ctx context.Context, start, end time.Time) (*Summary, error) {
	logs, err := s.logs.GetByTimeRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	var totalLatency int64
	var successCount int64

	for _, log := range logs {
		summary.TotalGenerations++
		summary.TotalTokens += int64(log.TotalTokens)
		summary.TotalCost += log.Cost
		totalLatency += log.LatencyMs

		if log.Success {
			successCount++
		} else {
			summary.FailureCount++
		}
	}

	if summary.TotalGenerations > 0 {
		summary.AvgLatencyMs = float64(totalLatency) / float64(summary.TotalGenerations)
		summary.SuccessRate = float64(successCount) / float64(summary.TotalGenerations) * 100
	}

	return summary, nil
}

// DailyUsage represents generation volume for one day.
type DailyUsage struct {
	Date        string  `json:"date"`
	Generations int64   `json:"generations"`
	Tokens      int64   `json:"tokens"`
	Cost        float64 `json:"cost"`
}

// GetDailyUsage returns per-day generation statistics for the last n days.
func (s *Service) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	logs, err := s.logs.GetByTimeRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	dailyMap := make(map[string]*DailyUsage)

	for _, log := range logs {
		date := log.CreatedAt.Format("2006-01-02")
		if _, ok := dailyMap[date]; !ok {
			dailyMap[date] = &DailyUsage{Date: date}
		}
		dailyMap[date].Generations++
		dailyMap[date].Tokens += int64(log.TotalTokens)
		dailyMap[date].Cost += log.Cost
	}

	result := make([]DailyUsage, 0, len(dailyMap))
	for _, usage := range dailyMap {
		result = append(result, *usage)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})

	return result, nil
}

// ModelUsage represents generation volume per model.
type ModelUsage struct {
	ModelID     uuid.UUID `json:"model_id"`
	Generations int64     `json:"generations"`
	Tokens      int64     `json:"tokens"`
	Cost        float64   `json:"cost"`
}

// GetUsageByModel returns generation statistics grouped by model.
func (s *Service) GetUsageByModel(ctx context.Context, start, end time.Time) ([]ModelUsage, error) {
	logs, err := s.logs.GetByTimeRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	modelMap := make(map[uuid.UUID]*ModelUsage)

	for _, log := range logs {
		if _, ok := modelMap[log.ModelID]; !ok {
			modelMap[log.ModelID] = &ModelUsage{ModelID: log.ModelID}
		}
		modelMap[log.ModelID].Generations++
		modelMap[log.ModelID].Tokens += int64(log.TotalTokens)
		modelMap[log.ModelID].Cost += log.Cost
	}

	result := make([]ModelUsage, 0, len(modelMap))
	for _, usage := range modelMap {
		result = append(result, *usage)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Generations != result[j].Generations {
			return result[i].Generations > result[j].Generations
		}
		return bytes.Compare(result[i].ModelID[:], result[j].ModelID[:]) < 0
	})

	return result, nil
}
