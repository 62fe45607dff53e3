package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/growmate/growmate-backend/internal/clock"
	"github.com/growmate/growmate-backend/internal/models"
)

var (
	ErrStrainNotFound = errors.New("strain not found")
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	// ErrNotEligible: rating requires having grown the strain; tipping
	// requires having harvested it.
	ErrNotEligible = errors.New("not eligible for this strain action")
)

// StrainService owns the strain catalog, community ratings, growing tips,
// and the aggregate statistics derived from completed grows.
type StrainService struct {
	db    *gorm.DB
	clock clock.Clock
}

func NewStrainService(db *gorm.DB, clk clock.Clock) *StrainService {
	return &StrainService{db: db, clock: clk}
}

// ByName looks a strain up case-insensitively.
func (s *StrainService) ByName(name string) (*models.Strain, error) {
	var strain models.Strain
	err := s.db.Where("LOWER(name) = LOWER(?)", name).First(&strain).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStrainNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load strain: %w", err)
	}
	return &strain, nil
}

func (s *StrainService) List() ([]models.Strain, error) {
	var strains []models.Strain
	if err := s.db.Order("name ASC").Find(&strains).Error; err != nil {
		return nil, fmt.Errorf("failed to list strains: %w", err)
	}
	return strains, nil
}

func (s *StrainService) Create(strain *models.Strain) error {
	if err := s.db.Create(strain).Error; err != nil {
		return fmt.Errorf("failed to create strain: %w", err)
	}
	return nil
}

// hasGrown reports whether the user has an archived plant of this strain,
// optionally restricted to harvested ones.
func (s *StrainService) hasGrown(userID uint, strainName string, harvestedOnly bool) (bool, error) {
	q := s.db.Model(&models.Plant{}).
		Where("owner_id = ? AND strain = ? AND is_archived = ?", userID, strainName, true)
	if harvestedOnly {
		q = q.Where("archive_reason = ?", models.ArchiveReasonHarvested)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check grow history: %w", err)
	}
	return count > 0, nil
}

// Rate records or replaces the user's rating for a strain and refreshes the
// strain's aggregate rating fields. Only users who have grown the strain to
// completion may rate it.
func (s *StrainService) Rate(userID uint, strainName string, rating int, review string) (*models.Strain, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	strain, err := s.ByName(strainName)
	if err != nil {
		return nil, err
	}

	grown, err := s.hasGrown(userID, strain.Name, false)
	if err != nil {
		return nil, err
	}
	if !grown {
		return nil, ErrNotEligible
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.StrainRating
		err := tx.Where("user_id = ? AND strain_id = ?", userID, strain.ID).First(&existing).Error
		switch {
		case err == nil:
			existing.Rating = rating
			existing.Review = review
			if err := tx.Save(&existing).Error; err != nil {
				return fmt.Errorf("failed to update rating: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			record := models.StrainRating{
				UserID:   userID,
				StrainID: strain.ID,
				Rating:   rating,
				Review:   review,
			}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to create rating: %w", err)
			}
		default:
			return fmt.Errorf("failed to check existing rating: %w", err)
		}

		var avg float64
		var total int64
		if err := tx.Model(&models.StrainRating{}).Where("strain_id = ?", strain.ID).Count(&total).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.StrainRating{}).
			Where("strain_id = ?", strain.ID).
			Select("AVG(rating)").Scan(&avg).Error; err != nil {
			return err
		}
		strain.Rating = avg
		strain.TotalRatings = int(total)
		return tx.Model(&models.Strain{}).Where("id = ?", strain.ID).
			Updates(map[string]interface{}{"rating": avg, "total_ratings": total}).Error
	})
	if err != nil {
		return nil, err
	}
	return strain, nil
}

// AddTip records a growing tip tagged with a stage name. Only users who have
// harvested the strain may contribute.
func (s *StrainService) AddTip(userID uint, strainName, stageName, content string) (*models.GrowingTip, error) {
	strain, err := s.ByName(strainName)
	if err != nil {
		return nil, err
	}

	grown, err := s.hasGrown(userID, strain.Name, true)
	if err != nil {
		return nil, err
	}
	if !grown {
		return nil, ErrNotEligible
	}

	tip := models.GrowingTip{
		StrainID:    strain.ID,
		UserID:      userID,
		GrowthStage: stageName,
		Content:     content,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.db.Create(&tip).Error; err != nil {
		return nil, fmt.Errorf("failed to create tip: %w", err)
	}
	return &tip, nil
}

// Tips returns the top tips for a strain by upvotes, optionally filtered by
// stage name.
func (s *StrainService) Tips(strainID uint, stageName string, limit int) ([]models.GrowingTip, error) {
	q := s.db.Preload("Author").Where("strain_id = ?", strainID)
	if stageName != "" {
		q = q.Where("growth_stage = ?", stageName)
	}
	var tips []models.GrowingTip
	if err := q.Order("upvotes DESC").Limit(limit).Find(&tips).Error; err != nil {
		return nil, fmt.Errorf("failed to load tips: %w", err)
	}
	return tips, nil
}

// TopTip returns the single most upvoted tip for a strain, or nil.
func (s *StrainService) TopTip(strainID uint) (*models.GrowingTip, error) {
	tips, err := s.Tips(strainID, "", 1)
	if err != nil {
		return nil, err
	}
	if len(tips) == 0 {
		return nil, nil
	}
	return &tips[0], nil
}

// UpdateStatistics recomputes a strain's grow counters from completed plants
// referencing it by name. Called when a plant of the strain is archived.
func (s *StrainService) UpdateStatistics(strain *models.Strain) error {
	var completed []models.Plant
	if err := s.db.Where("strain = ? AND is_archived = ?", strain.Name, true).Find(&completed).Error; err != nil {
		return fmt.Errorf("failed to load completed grows: %w", err)
	}
	if len(completed) == 0 {
		return nil
	}

	successful := 0
	for _, p := range completed {
		if p.ArchiveReason == models.ArchiveReasonHarvested {
			successful++
		}
	}

	strain.TotalGrows = len(completed)
	strain.SuccessRate = float64(successful) / float64(len(completed)) * 100

	return s.db.Model(&models.Strain{}).Where("id = ?", strain.ID).
		Updates(map[string]interface{}{
			"total_grows":  strain.TotalGrows,
			"success_rate": strain.SuccessRate,
		}).Error
}
