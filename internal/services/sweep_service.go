package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/growmate/growmate-backend/internal/clock"
	"github.com/growmate/growmate-backend/internal/gateway"
	"github.com/growmate/growmate-backend/internal/models"
)

// SweepService runs the periodic background checks: stage duration expiry
// and stale watering reminders. Notifications go out through Signal and are
// best effort; a failure for one plant never stops the sweep.
type SweepService struct {
	db     *gorm.DB
	sender gateway.Sender
	clock  clock.Clock
	stages *StageService
	logger *slog.Logger
	stale  time.Duration
}

func NewSweepService(
	db *gorm.DB,
	sender gateway.Sender,
	clk clock.Clock,
	stages *StageService,
	staleAfter time.Duration,
) *SweepService {
	return &SweepService{
		db:     db,
		sender: sender,
		clock:  clk,
		stages: stages,
		logger: slog.Default().With("component", "sweep"),
		stale:  staleAfter,
	}
}

// Start launches the sweep tickers. Both goroutines stop when done closes.
func (s *SweepService) Start(stageInterval, wateringInterval time.Duration, done <-chan struct{}) {
	go s.loop("stage check", stageInterval, s.CheckGrowthStages, done)
	go s.loop("watering check", wateringInterval, s.CheckWateringSchedule, done)
}

func (s *SweepService) loop(name string, interval time.Duration, fn func() error, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := fn(); err != nil {
				s.logger.Error("sweep failed", "sweep", name, "error", err)
			}
		case <-done:
			return
		}
	}
}

// CheckGrowthStages flags active plants whose current stage has run past its
// typical duration. Stages with no configured duration are never flagged.
// Advancing remains the grower's call; the sweep only notifies.
func (s *SweepService) CheckGrowthStages() error {
	var plants []models.Plant
	err := s.db.Preload("Owner").
		Where("is_archived = ? AND current_stage_id IS NOT NULL", false).
		Find(&plants).Error
	if err != nil {
		return fmt.Errorf("failed to load plants for stage check: %w", err)
	}

	now := s.clock.Now()
	for i := range plants {
		plant := &plants[i]

		stage, err := s.stages.CurrentStage(plant)
		if err != nil {
			s.logger.Error("stage check skipped plant", "plant_id", plant.ID, "error", err)
			continue
		}
		if stage == nil {
			continue
		}

		targets, ok := s.stages.Targets(stage.StageName)
		if !ok || targets.DurationDays <= 0 {
			continue
		}
		daysIn := wholeDays(now.Sub(stage.StartDate))
		if daysIn <= targets.DurationDays {
			continue
		}

		next := s.stages.NextStageName(stage.StageName)
		if next == "" {
			continue
		}
		s.notifyOwner(plant, fmt.Sprintf(
			"🌱 %s has been in the %s stage for %d days and may be ready to advance.\nSend 'stage %s %s' to update it.",
			plant.Name, stage.StageName, daysIn, plant.Name, next))
	}
	return nil
}

// CheckWateringSchedule reminds owners about active plants not watered within
// the stale window. Plants with no waterings at all are measured from their
// start date.
func (s *SweepService) CheckWateringSchedule() error {
	var plants []models.Plant
	err := s.db.Preload("Owner").Where("is_archived = ?", false).Find(&plants).Error
	if err != nil {
		return fmt.Errorf("failed to load plants for watering check: %w", err)
	}

	now := s.clock.Now()
	for i := range plants {
		plant := &plants[i]

		since := plant.StartDate
		var last models.Watering
		err := s.db.Where("plant_id = ?", plant.ID).Order("timestamp DESC").First(&last).Error
		if err == nil {
			since = last.Timestamp
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("watering check skipped plant", "plant_id", plant.ID, "error", err)
			continue
		}

		if now.Sub(since) <= s.stale {
			continue
		}
		s.notifyOwner(plant, fmt.Sprintf(
			"💧 %s hasn't been watered in %d days!\nSend 'water %s' after watering.",
			plant.Name, wholeDays(now.Sub(since)), plant.Name))
	}
	return nil
}

func (s *SweepService) notifyOwner(plant *models.Plant, message string) {
	owner := plant.Owner
	if !owner.SignalVerified || owner.PhoneNumber == nil {
		return
	}
	if !owner.NotificationsEnabled("watering") {
		return
	}
	if err := s.sender.Send(*owner.PhoneNumber, message); err != nil {
		s.logger.Error("notification failed", "plant_id", plant.ID, "user_id", owner.ID, "error", err)
	}
}
