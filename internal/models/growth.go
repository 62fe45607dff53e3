package models

import "time"

// The fixed stage name enumeration. Stage targets and tip tags both draw
// from this set.
const (
	StageGermination   = "germination"
	StageSeedling      = "seedling"
	StageVegetative    = "vegetative"
	StageFlowering     = "flowering"
	StageLateFlowering = "late_flowering"
)

// GrowthStage is one period in a plant's lifecycle. The active stage is the
// one with EndDate unset; its target ranges come from the stage table at
// creation time and are not user-overridable.
type GrowthStage struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	PlantID   uint       `gorm:"not null;index" json:"plant_id"`
	StageName string     `gorm:"size:64;not null" json:"stage_name"`
	StartDate time.Time  `gorm:"not null" json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Notes     string     `gorm:"type:text" json:"notes,omitempty"`

	IdealTempLow      float64 `json:"ideal_temp_low"`
	IdealTempHigh     float64 `json:"ideal_temp_high"`
	IdealHumidityLow  float64 `json:"ideal_humidity_low"`
	IdealHumidityHigh float64 `json:"ideal_humidity_high"`
	IdealPHLow        float64 `json:"ideal_ph_low"`
	IdealPHHigh       float64 `json:"ideal_ph_high"`
	LightSchedule     string  `gorm:"size:20" json:"light_schedule,omitempty"` // e.g. "18/6", "12/12"
}

// GrowthData is one environmental/physical measurement snapshot for a plant.
// All readings are optional. HealthScore and GrowthRate are derived when the
// row is recorded, never user-supplied; GrowthRate stays nil when no valid
// prior height measurement exists (nil and zero are distinct outcomes).
type GrowthData struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PlantID   uint      `gorm:"not null;index" json:"plant_id"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`

	Temperature *float64 `json:"temperature,omitempty"` // Celsius
	Humidity    *float64 `json:"humidity,omitempty"`    // percent
	PHLevel     *float64 `json:"ph_level,omitempty"`
	Height      *float64 `json:"height,omitempty"` // cm

	HealthScore *int     `json:"health_score,omitempty"` // 0-100
	GrowthRate  *float64 `json:"growth_rate,omitempty"`  // cm per day
}
