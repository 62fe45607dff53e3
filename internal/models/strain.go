package models

import "time"

// Strain is a global catalog entry. The community fields (Rating,
// TotalRatings, TotalGrows, SuccessRate) are derived from completed plants
// and ratings referencing the strain by name, recomputed on archive/rate.
type Strain struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Name          string `gorm:"size:64;not null;uniqueIndex" json:"name"`
	Type          string `gorm:"size:20" json:"type"` // indica, sativa, hybrid
	Description   string `gorm:"type:text" json:"description,omitempty"`
	FloweringTime int    `json:"flowering_time"` // typical days
	Difficulty    int    `json:"difficulty"`     // 1-5

	IdealTempLow      float64 `json:"ideal_temp_low"`
	IdealTempHigh     float64 `json:"ideal_temp_high"`
	IdealHumidityLow  float64 `json:"ideal_humidity_low"`
	IdealHumidityHigh float64 `json:"ideal_humidity_high"`
	HeightLow         float64 `json:"height_low"` // typical cm
	HeightHigh        float64 `json:"height_high"`

	Rating       float64 `json:"rating"` // average of StrainRating
	TotalRatings int     `gorm:"default:0" json:"total_ratings"`
	TotalGrows   int     `gorm:"default:0" json:"total_grows"`
	SuccessRate  float64 `json:"success_rate"` // percent of archived grows harvested

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StrainRating is one user's rating of a strain; at most one per (user, strain).
type StrainRating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StrainID  uint      `gorm:"not null;uniqueIndex:idx_rating_user_strain" json:"strain_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_rating_user_strain" json:"user_id"`
	Rating    int       `gorm:"not null" json:"rating"` // 1-5
	Review    string    `gorm:"type:text" json:"review,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GrowingTip is community advice for a strain, tagged with the stage it
// applies to (a name from the stage table).
type GrowingTip struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StrainID    uint      `gorm:"not null;index" json:"strain_id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	GrowthStage string    `gorm:"size:64;not null" json:"growth_stage"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Upvotes     int       `gorm:"default:0" json:"upvotes"`
	CreatedAt   time.Time `json:"created_at"`

	Author User `gorm:"foreignKey:UserID" json:"-"`
}
