package models

import (
	"time"

	"gorm.io/gorm"
)

// Archive reasons. A plant leaves the active rotation exactly once.
const (
	ArchiveReasonHarvested = "harvested"
	ArchiveReasonDied      = "died"
)

// Plant is a single tracked grow. At most one of its growth stages is active
// (end date unset) at any time; CurrentStageID points at it.
type Plant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64;not null;index:idx_plants_owner_name" json:"name"`
	Strain    string    `gorm:"size:64" json:"strain"`
	OwnerID   uint      `gorm:"not null;index:idx_plants_owner_name" json:"owner_id"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	IsPublic  bool      `gorm:"default:false" json:"is_public"`

	IsArchived    bool       `gorm:"default:false;index" json:"is_archived"`
	ArchiveDate   *time.Time `json:"archive_date,omitempty"`
	ArchiveReason string     `gorm:"size:20" json:"archive_reason,omitempty"`
	ArchiveNotes  string     `gorm:"type:text" json:"archive_notes,omitempty"`

	CurrentStageID    *uint      `json:"current_stage_id,omitempty"`
	LastGrowthUpdate  *time.Time `json:"last_growth_update,omitempty"`
	TargetHarvestDate *time.Time `json:"target_harvest_date,omitempty"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Watering is one recorded watering event for a plant.
type Watering struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PlantID   uint      `gorm:"not null;index" json:"plant_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	Amount    *float64  `json:"amount,omitempty"` // liters
	Nutrients string    `gorm:"type:text" json:"nutrients,omitempty"`
}

// Note is a free-text observation attached to a plant.
type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PlantID   uint      `gorm:"not null;index" json:"plant_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}

// PlantFollower marks a user following someone else's public plant.
type PlantFollower struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_follow_user_plant" json:"user_id"`
	PlantID    uint      `gorm:"not null;uniqueIndex:idx_follow_user_plant" json:"plant_id"`
	FollowedAt time.Time `json:"followed_at"`

	Plant Plant `gorm:"foreignKey:PlantID" json:"-"`
}

// PlantPermission grants a non-owner limited rights on a plant.
type PlantPermission struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	PlantID     uint `gorm:"not null;uniqueIndex:idx_perm_plant_user" json:"plant_id"`
	UserID      uint `gorm:"not null;uniqueIndex:idx_perm_plant_user" json:"user_id"`
	CanEdit     bool `gorm:"default:false" json:"can_edit"`
	CanWater    bool `gorm:"default:true" json:"can_water"`
	CanAddNotes bool `gorm:"default:true" json:"can_add_notes"`
}
