package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/growmate/growmate-backend/internal/clock"
	"github.com/growmate/growmate-backend/internal/models"
)

var (
	ErrPlantNotFound        = errors.New("plant not found")
	ErrPlantAccessDenied    = errors.New("you do not have access to this plant")
	ErrPlantAlreadyArchived = errors.New("plant is already archived")
	ErrInvalidArchiveReason = errors.New("archive reason must be harvested or died")
)

// PlantService owns the plant lifecycle for the web API. The Signal command
// path shares the same tables but goes through CommandService.
type PlantService struct {
	db           *gorm.DB
	clock        clock.Clock
	stages       *StageService
	strains      *StrainService
	achievements *AchievementService
}

func NewPlantService(
	db *gorm.DB,
	clk clock.Clock,
	stages *StageService,
	strains *StrainService,
	achievements *AchievementService,
) *PlantService {
	return &PlantService{
		db:           db,
		clock:        clk,
		stages:       stages,
		strains:      strains,
		achievements: achievements,
	}
}

type CreatePlantInput struct {
	Name         string
	Strain       string
	IsPublic     bool
	InitialStage string
}

func (s *PlantService) Create(owner *models.User, input CreatePlantInput) (*models.Plant, error) {
	plant := &models.Plant{
		Name:      input.Name,
		Strain:    input.Strain,
		OwnerID:   owner.ID,
		StartDate: s.clock.Now(),
		IsPublic:  input.IsPublic,
	}
	if err := s.db.Create(plant).Error; err != nil {
		return nil, fmt.Errorf("failed to create plant: %w", err)
	}

	if input.InitialStage != "" {
		if _, err := s.stages.Advance(plant, input.InitialStage, ""); err != nil {
			return nil, err
		}
	}
	return plant, nil
}

// List returns the owner's plants, active first.
func (s *PlantService) List(ownerID uint, includeArchived bool) ([]models.Plant, error) {
	query := s.db.Where("owner_id = ?", ownerID)
	if !includeArchived {
		query = query.Where("is_archived = ?", false)
	}

	var plants []models.Plant
	if err := query.Order("is_archived ASC, created_at DESC").Find(&plants).Error; err != nil {
		return nil, fmt.Errorf("failed to list plants: %w", err)
	}
	return plants, nil
}

// Get loads a plant the user may see: their own, a public one, or one shared
// with them through a permission.
func (s *PlantService) Get(userID, plantID uint) (*models.Plant, error) {
	var plant models.Plant
	err := s.db.Preload("Owner").First(&plant, plantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plant: %w", err)
	}

	if plant.OwnerID == userID || plant.IsPublic {
		return &plant, nil
	}

	var count int64
	err = s.db.Model(&models.PlantPermission{}).
		Where("plant_id = ? AND user_id = ?", plantID, userID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check permission: %w", err)
	}
	if count == 0 {
		return nil, ErrPlantAccessDenied
	}
	return &plant, nil
}

func (s *PlantService) owned(userID, plantID uint) (*models.Plant, error) {
	var plant models.Plant
	err := s.db.First(&plant, plantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plant: %w", err)
	}
	if plant.OwnerID != userID {
		return nil, ErrPlantAccessDenied
	}
	return &plant, nil
}

type UpdatePlantInput struct {
	Name     *string
	Strain   *string
	IsPublic *bool
}

func (s *PlantService) Update(userID, plantID uint, input UpdatePlantInput) (*models.Plant, error) {
	plant, err := s.owned(userID, plantID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Strain != nil {
		updates["strain"] = *input.Strain
	}
	if input.IsPublic != nil {
		updates["is_public"] = *input.IsPublic
	}
	if len(updates) == 0 {
		return plant, nil
	}

	if err := s.db.Model(plant).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update plant: %w", err)
	}
	return plant, nil
}

// Archive retires a plant with its final outcome. An archive cascades into
// the community layer: the strain's grow statistics are recomputed and the
// owner's achievements re-evaluated. The returned achievements are those the
// archive just earned.
func (s *PlantService) Archive(user *models.User, plantID uint, reason, notes string) (*models.Plant, []models.Achievement, error) {
	if reason != models.ArchiveReasonHarvested && reason != models.ArchiveReasonDied {
		return nil, nil, ErrInvalidArchiveReason
	}

	plant, err := s.owned(user.ID, plantID)
	if err != nil {
		return nil, nil, err
	}
	if plant.IsArchived {
		return nil, nil, ErrPlantAlreadyArchived
	}

	now := s.clock.Now()
	updates := map[string]any{
		"is_archived":    true,
		"archive_date":   now,
		"archive_reason": reason,
		"archive_notes":  notes,
	}
	if err := s.db.Model(plant).Updates(updates).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to archive plant: %w", err)
	}

	if plant.Strain != "" {
		strain, err := s.strains.ByName(plant.Strain)
		if err == nil {
			if err := s.strains.UpdateStatistics(strain); err != nil {
				return nil, nil, err
			}
		} else if !errors.Is(err, ErrStrainNotFound) {
			return nil, nil, err
		}
	}

	earned, err := s.achievements.Evaluate(user)
	if err != nil {
		return nil, nil, err
	}
	return plant, earned, nil
}

// Delete removes a plant entirely. Soft delete, same as the rest of the API.
func (s *PlantService) Delete(userID, plantID uint) error {
	plant, err := s.owned(userID, plantID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(plant).Error; err != nil {
		return fmt.Errorf("failed to delete plant: %w", err)
	}
	return nil
}

type PermissionInput struct {
	UserID      uint
	CanEdit     bool
	CanWater    bool
	CanAddNotes bool
}

// SetPermission grants or updates another user's access to an owned plant.
func (s *PlantService) SetPermission(ownerID, plantID uint, input PermissionInput) (*models.PlantPermission, error) {
	plant, err := s.owned(ownerID, plantID)
	if err != nil {
		return nil, err
	}

	var perm models.PlantPermission
	err = s.db.Where("plant_id = ? AND user_id = ?", plant.ID, input.UserID).First(&perm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		perm = models.PlantPermission{
			PlantID:     plant.ID,
			UserID:      input.UserID,
			CanEdit:     input.CanEdit,
			CanWater:    input.CanWater,
			CanAddNotes: input.CanAddNotes,
		}
		if err := s.db.Create(&perm).Error; err != nil {
			return nil, fmt.Errorf("failed to grant permission: %w", err)
		}
		return &perm, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load permission: %w", err)
	}

	perm.CanEdit = input.CanEdit
	perm.CanWater = input.CanWater
	perm.CanAddNotes = input.CanAddNotes
	if err := s.db.Save(&perm).Error; err != nil {
		return nil, fmt.Errorf("failed to update permission: %w", err)
	}
	return &perm, nil
}

func (s *PlantService) RemovePermission(ownerID, plantID, userID uint) error {
	plant, err := s.owned(ownerID, plantID)
	if err != nil {
		return err
	}
	result := s.db.Where("plant_id = ? AND user_id = ?", plant.ID, userID).Delete(&models.PlantPermission{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove permission: %w", result.Error)
	}
	return nil
}
