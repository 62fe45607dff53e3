package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/growmate/growmate-backend/internal/models"
)

// StatsService derives health scores, growth rates, and aggregate statistics
// from measurement history.
type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// HealthScore starts at 100 and subtracts 10 for each present reading that
// falls strictly outside the stage's target range, clamped at 0. A nil stage
// or missing readings contribute no penalty.
func (s *StatsService) HealthScore(data *models.GrowthData, stage *models.GrowthStage) int {
	score := 100
	if stage == nil {
		return score
	}

	if data.Temperature != nil {
		if *data.Temperature < stage.IdealTempLow || *data.Temperature > stage.IdealTempHigh {
			score -= 10
		}
	}
	if data.Humidity != nil {
		if *data.Humidity < stage.IdealHumidityLow || *data.Humidity > stage.IdealHumidityHigh {
			score -= 10
		}
	}
	if data.PHLevel != nil {
		if *data.PHLevel < stage.IdealPHLow || *data.PHLevel > stage.IdealPHHigh {
			score -= 10
		}
	}

	if score < 0 {
		score = 0
	}
	return score
}

// GrowthRate returns (new height - prior height) / elapsed whole days against
// the most recent earlier measurement with a height, or nil when no such
// measurement exists, the new measurement has no height, or the whole-day
// delta is zero. Nil is distinct from a zero rate.
func (s *StatsService) GrowthRate(data *models.GrowthData) (*float64, error) {
	if data.Height == nil {
		return nil, nil
	}

	var prior models.GrowthData
	err := s.db.Where("plant_id = ? AND timestamp < ? AND height IS NOT NULL", data.PlantID, data.Timestamp).
		Order("timestamp DESC").
		First(&prior).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load prior measurement: %w", err)
	}

	days := int(data.Timestamp.Sub(prior.Timestamp).Hours() / 24)
	if days <= 0 {
		return nil, nil
	}

	rate := (*data.Height - *prior.Height) / float64(days)
	return &rate, nil
}

// MetricSummary is average and observed range for one environmental metric.
type MetricSummary struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// HealthSummary is the health score view over a measurement window.
type HealthSummary struct {
	Current int     `json:"current"`
	Average float64 `json:"average"`
	Lowest  int     `json:"lowest"`
}

// PlantStatistics is the aggregate view over a measurement collection.
type PlantStatistics struct {
	Measurements  int            `json:"measurements"`
	InitialHeight *float64       `json:"initial_height,omitempty"`
	CurrentHeight *float64       `json:"current_height,omitempty"`
	GrowthRate    *float64       `json:"growth_rate,omitempty"` // cm/day over the window
	Temperature   *MetricSummary `json:"temperature,omitempty"`
	Humidity      *MetricSummary `json:"humidity,omitempty"`
	Health        *HealthSummary `json:"health,omitempty"`
}

// Aggregate computes the statistics view over a newest-first measurement
// collection. The window growth rate is (newest height - oldest height)
// divided by the number of height readings; this is deliberately a different
// computation from the single-step GrowthRate and must stay separate.
func (s *StatsService) Aggregate(data []models.GrowthData) PlantStatistics {
	stats := PlantStatistics{Measurements: len(data)}
	if len(data) == 0 {
		return stats
	}

	var heights, temps, humidities []float64
	var healthScores []int
	for _, d := range data {
		if d.Height != nil {
			heights = append(heights, *d.Height)
		}
		if d.Temperature != nil {
			temps = append(temps, *d.Temperature)
		}
		if d.Humidity != nil {
			humidities = append(humidities, *d.Humidity)
		}
		if d.HealthScore != nil {
			healthScores = append(healthScores, *d.HealthScore)
		}
	}

	if len(heights) > 0 {
		newest := heights[0]
		oldest := heights[len(heights)-1]
		rate := (newest - oldest) / float64(len(heights))
		stats.CurrentHeight = &newest
		stats.InitialHeight = &oldest
		stats.GrowthRate = &rate
	}
	if len(temps) > 0 {
		stats.Temperature = summarize(temps)
	}
	if len(humidities) > 0 {
		stats.Humidity = summarize(humidities)
	}
	if len(healthScores) > 0 {
		sum := 0
		lowest := healthScores[0]
		for _, h := range healthScores {
			sum += h
			if h < lowest {
				lowest = h
			}
		}
		stats.Health = &HealthSummary{
			Current: healthScores[0],
			Average: float64(sum) / float64(len(healthScores)),
			Lowest:  lowest,
		}
	}

	return stats
}

// MeasurementsByPlant returns up to limit measurements for a plant, newest
// first. limit <= 0 means no limit.
func (s *StatsService) MeasurementsByPlant(plantID uint, limit int) ([]models.GrowthData, error) {
	var data []models.GrowthData
	q := s.db.Where("plant_id = ?", plantID).Order("timestamp DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&data).Error; err != nil {
		return nil, fmt.Errorf("failed to load measurements: %w", err)
	}
	return data, nil
}

// LatestMeasurement returns the newest measurement for a plant, or nil.
func (s *StatsService) LatestMeasurement(plantID uint) (*models.GrowthData, error) {
	var data models.GrowthData
	err := s.db.Where("plant_id = ?", plantID).Order("timestamp DESC").First(&data).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest measurement: %w", err)
	}
	return &data, nil
}

func summarize(values []float64) *MetricSummary {
	sum := values[0]
	min := values[0]
	max := values[0]
	for _, v := range values[1:] {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return &MetricSummary{
		Average: sum / float64(len(values)),
		Min:     min,
		Max:     max,
	}
}
