package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/growmate/growmate-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Plant{},
		&models.Watering{},
		&models.Note{},
		&models.PlantFollower{},
		&models.PlantPermission{},
		&models.GrowthStage{},
		&models.GrowthData{},
		&models.Strain{},
		&models.StrainRating{},
		&models.GrowingTip{},
		&models.Achievement{},
		&models.UserAchievement{},
	))
	return db
}

var userSeq int

func createUser(t *testing.T, db *gorm.DB, phone string) *models.User {
	t.Helper()
	userSeq++
	user := &models.User{
		Username: fmt.Sprintf("grower%d", userSeq),
		Email:    fmt.Sprintf("grower%d@example.com", userSeq),
		Password: "hashed",
		Role:     "user",
	}
	if phone != "" {
		user.PhoneNumber = &phone
		user.SignalVerified = true
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createPlant(t *testing.T, db *gorm.DB, owner *models.User, name, strain string, start time.Time) *models.Plant {
	t.Helper()
	plant := &models.Plant{
		Name:      name,
		Strain:    strain,
		OwnerID:   owner.ID,
		StartDate: start,
	}
	require.NoError(t, db.Create(plant).Error)
	return plant
}

func archivePlant(t *testing.T, db *gorm.DB, plant *models.Plant, reason string, at time.Time) {
	t.Helper()
	require.NoError(t, db.Model(plant).Updates(map[string]any{
		"is_archived":    true,
		"archive_date":   at,
		"archive_reason": reason,
	}).Error)
}

func floatPtr(v float64) *float64 { return &v }
