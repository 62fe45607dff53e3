package models

import "time"

// Requirement types understood by the achievement evaluator.
const (
	RequirementPlantsHarvested = "plants_harvested"
	RequirementSuccessRate     = "success_rate"
	RequirementUniqueStrains   = "unique_strains"
	RequirementUpvotedTips     = "upvoted_tips"
)

// Achievement is a rule definition: earn it when the metric named by
// RequirementType reaches RequirementValue.
type Achievement struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:64;not null;uniqueIndex" json:"name"`
	Description      string    `gorm:"type:text;not null" json:"description"`
	Icon             string    `gorm:"size:64" json:"icon"`
	RequirementType  string    `gorm:"size:32;not null" json:"requirement_type"`
	RequirementValue int       `gorm:"not null" json:"requirement_value"`
	CreatedAt        time.Time `json:"created_at"`
}

// UserAchievement is a write-once grant; never revoked, unique per
// (user, achievement).
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	EarnedAt      time.Time `gorm:"not null" json:"earned_at"`

	Achievement Achievement `gorm:"foreignKey:AchievementID" json:"achievement"`
}

// DefaultAchievements is the fixed rule set seeded at startup.
func DefaultAchievements() []Achievement {
	return []Achievement{
		{
			Name:             "First Harvest",
			Description:      "Successfully complete your first grow",
			Icon:             "🌱",
			RequirementType:  RequirementPlantsHarvested,
			RequirementValue: 1,
		},
		{
			Name:             "Master Grower",
			Description:      "Achieve a 90% success rate with 10+ grows",
			Icon:             "🏆",
			RequirementType:  RequirementSuccessRate,
			RequirementValue: 90,
		},
		{
			Name:             "Strain Expert",
			Description:      "Successfully grow 5 different strains",
			Icon:             "🧬",
			RequirementType:  RequirementUniqueStrains,
			RequirementValue: 5,
		},
		{
			Name:             "Community Leader",
			Description:      "Have 10 growing tips with 50+ upvotes each",
			Icon:             "👑",
			RequirementType:  RequirementUpvotedTips,
			RequirementValue: 10,
		},
	}
}
