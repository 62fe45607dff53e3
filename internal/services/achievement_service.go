package services

import (
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/growmate/growmate-backend/internal/clock"
	"github.com/growmate/growmate-backend/internal/gateway"
	"github.com/growmate/growmate-backend/internal/models"
)

// upvoteThreshold is the minimum upvote count for a tip to count toward the
// upvoted_tips requirement.
const upvoteThreshold = 50

// successRateVolumeGate: success_rate achievements additionally require this
// many archived grows, regardless of the stated percentage threshold.
const successRateVolumeGate = 10

// AchievementService evaluates a user's cultivation history against the
// achievement rule set and persists newly earned grants.
type AchievementService struct {
	db      *gorm.DB
	gateway gateway.Sender
	clock   clock.Clock
}

func NewAchievementService(db *gorm.DB, sender gateway.Sender, clk clock.Clock) *AchievementService {
	return &AchievementService{db: db, gateway: sender, clock: clk}
}

// SeedDefaults inserts the fixed achievement definitions, skipping any that
// already exist by name.
func (s *AchievementService) SeedDefaults() error {
	for _, def := range models.DefaultAchievements() {
		var existing models.Achievement
		err := s.db.Where("name = ?", def.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check achievement %q: %w", def.Name, err)
		}
		if err := s.db.Create(&def).Error; err != nil {
			return fmt.Errorf("failed to seed achievement %q: %w", def.Name, err)
		}
	}
	return nil
}

// growStats is the per-user history summary the rules evaluate against.
type growStats struct {
	totalGrows      int
	successfulGrows int
	successRate     float64
	uniqueStrains   int
	upvotedTips     int
}

func (s *AchievementService) collectStats(userID uint) (growStats, error) {
	var st growStats

	var archived []models.Plant
	if err := s.db.Where("owner_id = ? AND is_archived = ?", userID, true).Find(&archived).Error; err != nil {
		return st, fmt.Errorf("failed to load archived plants: %w", err)
	}

	st.totalGrows = len(archived)
	strains := make(map[string]struct{})
	for _, p := range archived {
		if p.ArchiveReason == models.ArchiveReasonHarvested {
			st.successfulGrows++
			strains[p.Strain] = struct{}{}
		}
	}
	st.uniqueStrains = len(strains)
	if st.totalGrows > 0 {
		st.successRate = float64(st.successfulGrows) / float64(st.totalGrows) * 100
	}

	var tipCount int64
	if err := s.db.Model(&models.GrowingTip{}).
		Where("user_id = ? AND upvotes >= ?", userID, upvoteThreshold).
		Count(&tipCount).Error; err != nil {
		return st, fmt.Errorf("failed to count upvoted tips: %w", err)
	}
	st.upvotedTips = int(tipCount)

	return st, nil
}

// Evaluate scans all achievement rules not yet granted to the user, persists
// any newly earned grants, and returns them. It is idempotent: a second call
// with no new qualifying activity grants nothing. Earned achievements trigger
// a best-effort Signal notification when the user has them enabled.
func (s *AchievementService) Evaluate(user *models.User) ([]models.Achievement, error) {
	stats, err := s.collectStats(user.ID)
	if err != nil {
		return nil, err
	}

	var rules []models.Achievement
	if err := s.db.Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}

	var earned []models.Achievement
	for _, rule := range rules {
		var existing models.UserAchievement
		err := s.db.Where("user_id = ? AND achievement_id = ?", user.ID, rule.ID).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return earned, fmt.Errorf("failed to check existing grant: %w", err)
		}

		if !s.meetsRequirement(rule, stats) {
			continue
		}

		grant := models.UserAchievement{
			UserID:        user.ID,
			AchievementID: rule.ID,
			EarnedAt:      s.clock.Now(),
		}
		if err := s.db.Create(&grant).Error; err != nil {
			return earned, fmt.Errorf("failed to persist grant: %w", err)
		}
		earned = append(earned, rule)

		s.notify(user, rule)
	}

	return earned, nil
}

func (s *AchievementService) meetsRequirement(rule models.Achievement, stats growStats) bool {
	switch rule.RequirementType {
	case models.RequirementPlantsHarvested:
		return stats.successfulGrows >= rule.RequirementValue
	case models.RequirementSuccessRate:
		return stats.successRate >= float64(rule.RequirementValue) &&
			stats.totalGrows >= successRateVolumeGate
	case models.RequirementUniqueStrains:
		return stats.uniqueStrains >= rule.RequirementValue
	case models.RequirementUpvotedTips:
		return stats.upvotedTips >= rule.RequirementValue
	default:
		return false
	}
}

// notify sends the unlock message; dispatch failures never fail the grant.
func (s *AchievementService) notify(user *models.User, rule models.Achievement) {
	if !user.SignalVerified || user.PhoneNumber == nil || !user.NotificationsEnabled("achievements") {
		return
	}
	msg := fmt.Sprintf("🎉 Achievement Unlocked: %s %s\n%s", rule.Icon, rule.Name, rule.Description)
	if err := s.gateway.Send(*user.PhoneNumber, msg); err != nil {
		slog.Error("achievement notification failed",
			"user_id", user.ID, "achievement", rule.Name, "error", err)
	}
}
