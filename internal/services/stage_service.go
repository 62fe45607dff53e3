package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/growmate/growmate-backend/internal/clock"
	"github.com/growmate/growmate-backend/internal/models"
)

var ErrInvalidStageName = errors.New("invalid growth stage name")

// StageTargets holds the environmental targets applied to a stage at creation
// time. DurationDays is the typical length of the stage; zero means the
// expiry sweep never flags it.
type StageTargets struct {
	TempLow       float64
	TempHigh      float64
	HumidityLow   float64
	HumidityHigh  float64
	PHLow         float64
	PHHigh        float64
	LightSchedule string
	DurationDays  int
}

// StageOrder lists stage names in their advisory progression order. The
// machine never enforces this order; it only drives the expiry sweep's
// "ready to advance" suggestion.
var StageOrder = []string{
	models.StageGermination,
	models.StageSeedling,
	models.StageVegetative,
	models.StageFlowering,
	models.StageLateFlowering,
}

// DefaultStageTargets is the canonical target table, loaded once at startup
// and shared read-only by the stage machine and the recommendation path.
func DefaultStageTargets() map[string]StageTargets {
	return map[string]StageTargets{
		models.StageGermination: {
			TempLow: 20, TempHigh: 25,
			HumidityLow: 70, HumidityHigh: 90,
			PHLow: 6.0, PHHigh: 7.0,
		},
		models.StageSeedling: {
			TempLow: 22, TempHigh: 28,
			HumidityLow: 60, HumidityHigh: 80,
			PHLow: 6.0, PHHigh: 7.0,
			LightSchedule: "18/6", DurationDays: 14,
		},
		models.StageVegetative: {
			TempLow: 24, TempHigh: 30,
			HumidityLow: 50, HumidityHigh: 70,
			PHLow: 6.0, PHHigh: 7.0,
			LightSchedule: "18/6", DurationDays: 28,
		},
		models.StageFlowering: {
			TempLow: 26, TempHigh: 32,
			HumidityLow: 40, HumidityHigh: 60,
			PHLow: 6.0, PHHigh: 7.0,
			LightSchedule: "12/12", DurationDays: 56,
		},
		models.StageLateFlowering: {
			TempLow: 18, TempHigh: 24,
			HumidityLow: 35, HumidityHigh: 45,
			PHLow: 6.0, PHHigh: 6.2,
			LightSchedule: "12/12", DurationDays: 14,
		},
	}
}

// floweringToHarvest is the window applied when a plant first enters
// flowering. Later transitions leave the harvest date untouched.
const floweringToHarvest = 70 * 24 * time.Hour

// StageService owns growth stage transitions and the stage target table.
type StageService struct {
	db      *gorm.DB
	clock   clock.Clock
	targets map[string]StageTargets
}

func NewStageService(db *gorm.DB, clk clock.Clock, targets map[string]StageTargets) *StageService {
	if targets == nil {
		targets = DefaultStageTargets()
	}
	return &StageService{db: db, clock: clk, targets: targets}
}

// Targets returns the target table entry for a stage name.
func (s *StageService) Targets(stageName string) (StageTargets, bool) {
	t, ok := s.targets[stageName]
	return t, ok
}

// ValidStageNames returns the stage names in progression order.
func (s *StageService) ValidStageNames() []string {
	names := make([]string, 0, len(StageOrder))
	for _, n := range StageOrder {
		if _, ok := s.targets[n]; ok {
			names = append(names, n)
		}
	}
	return names
}

// NextStageName returns the advisory successor of a stage, or "" for the last.
func (s *StageService) NextStageName(stageName string) string {
	for i, n := range StageOrder {
		if n == stageName && i+1 < len(StageOrder) {
			return StageOrder[i+1]
		}
	}
	return ""
}

// CurrentStage returns the plant's active stage, or nil when the plant has
// never been staged.
func (s *StageService) CurrentStage(plant *models.Plant) (*models.GrowthStage, error) {
	if plant.CurrentStageID == nil {
		return nil, nil
	}
	var stage models.GrowthStage
	if err := s.db.First(&stage, *plant.CurrentStageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load current stage: %w", err)
	}
	return &stage, nil
}

// Advance closes the plant's active stage (if any) and opens a new one with
// targets from the stage table. Transitions are not validated against the
// progression order; any valid stage name succeeds from any state. Entering
// flowering sets the target harvest date to now+70d; entering any other stage
// leaves a previously set harvest date alone.
func (s *StageService) Advance(plant *models.Plant, stageName, notes string) (*models.GrowthStage, error) {
	stageName = strings.ToLower(strings.TrimSpace(stageName))
	targets, ok := s.targets[stageName]
	if !ok {
		return nil, ErrInvalidStageName
	}

	now := s.clock.Now()
	newStage := models.GrowthStage{
		PlantID:           plant.ID,
		StageName:         stageName,
		StartDate:         now,
		Notes:             notes,
		IdealTempLow:      targets.TempLow,
		IdealTempHigh:     targets.TempHigh,
		IdealHumidityLow:  targets.HumidityLow,
		IdealHumidityHigh: targets.HumidityHigh,
		IdealPHLow:        targets.PHLow,
		IdealPHHigh:       targets.PHHigh,
		LightSchedule:     targets.LightSchedule,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if plant.CurrentStageID != nil {
			if err := tx.Model(&models.GrowthStage{}).
				Where("id = ? AND end_date IS NULL", *plant.CurrentStageID).
				Update("end_date", now).Error; err != nil {
				return fmt.Errorf("failed to close current stage: %w", err)
			}
		}

		if err := tx.Create(&newStage).Error; err != nil {
			return fmt.Errorf("failed to create stage: %w", err)
		}

		updates := map[string]interface{}{
			"current_stage_id":   newStage.ID,
			"last_growth_update": now,
		}
		if stageName == models.StageFlowering {
			updates["target_harvest_date"] = now.Add(floweringToHarvest)
		}
		if err := tx.Model(&models.Plant{}).Where("id = ?", plant.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update plant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	plant.CurrentStageID = &newStage.ID
	plant.LastGrowthUpdate = &now
	if stageName == models.StageFlowering {
		harvest := now.Add(floweringToHarvest)
		plant.TargetHarvestDate = &harvest
	}
	return &newStage, nil
}
