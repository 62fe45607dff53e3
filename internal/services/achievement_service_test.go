package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growmate/growmate-backend/internal/clock"
	"github.com/growmate/growmate-backend/internal/gateway"
	"github.com/growmate/growmate-backend/internal/models"
)

func newAchievementService(t *testing.T) (*AchievementService, *gateway.Recorder, *clock.Fake) {
	t.Helper()
	db := newTestDB(t)
	recorder := gateway.NewRecorder()
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := NewAchievementService(db, recorder, clk)
	require.NoError(t, svc.SeedDefaults())
	return svc, recorder, clk
}

func TestSeedDefaultsIdempotent(t *testing.T) {
	svc, _, _ := newAchievementService(t)
	require.NoError(t, svc.SeedDefaults())

	var count int64
	require.NoError(t, svc.db.Model(&models.Achievement{}).Count(&count).Error)
	assert.EqualValues(t, 4, count)
}

func TestEvaluateFirstHarvest(t *testing.T) {
	svc, recorder, clk := newAchievementService(t)
	user := createUser(t, svc.db, "+4915551234567")

	plant := createPlant(t, svc.db, user, "myplant", "gelato", clk.Now())
	archivePlant(t, svc.db, plant, models.ArchiveReasonHarvested, clk.Now())

	earned, err := svc.Evaluate(user)
	require.NoError(t, err)
	require.Len(t, earned, 1)
	assert.Equal(t, "First Harvest", earned[0].Name)

	msgs := recorder.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "+4915551234567", msgs[0].Recipient)
	assert.Contains(t, msgs[0].Message, "Achievement Unlocked")
	assert.Contains(t, msgs[0].Message, "First Harvest")

	// Second evaluation grants nothing new.
	earned, err = svc.Evaluate(user)
	require.NoError(t, err)
	assert.Empty(t, earned)
	assert.Len(t, recorder.Messages(), 1)
}

func TestEvaluateDiedPlantDoesNotCount(t *testing.T) {
	svc, _, clk := newAchievementService(t)
	user := createUser(t, svc.db, "")

	plant := createPlant(t, svc.db, user, "myplant", "gelato", clk.Now())
	archivePlant(t, svc.db, plant, models.ArchiveReasonDied, clk.Now())

	earned, err := svc.Evaluate(user)
	require.NoError(t, err)
	assert.Empty(t, earned)
}

func TestEvaluateSuccessRateVolumeGate(t *testing.T) {
	svc, _, clk := newAchievementService(t)
	user := createUser(t, svc.db, "")

	// 5 harvested out of 5: 100% success, but under the 10-grow volume gate.
	for i := 0; i < 5; i++ {
		p := createPlant(t, svc.db, user, fmt.Sprintf("plant%d", i), "gelato", clk.Now())
		archivePlant(t, svc.db, p, models.ArchiveReasonHarvested, clk.Now())
	}
	earned, err := svc.Evaluate(user)
	require.NoError(t, err)
	for _, a := range earned {
		assert.NotEqual(t, "Master Grower", a.Name)
	}

	// 5 more harvested: 10 grows at 100%, gate satisfied.
	for i := 5; i < 10; i++ {
		p := createPlant(t, svc.db, user, fmt.Sprintf("plant%d", i), "gelato", clk.Now())
		archivePlant(t, svc.db, p, models.ArchiveReasonHarvested, clk.Now())
	}
	earned, err = svc.Evaluate(user)
	require.NoError(t, err)
	names := make([]string, 0, len(earned))
	for _, a := range earned {
		names = append(names, a.Name)
	}
	assert.Contains(t, names, "Master Grower")
}

func TestEvaluateUniqueStrains(t *testing.T) {
	svc, _, clk := newAchievementService(t)
	user := createUser(t, svc.db, "")

	// 5 distinct strains harvested, plus one dead plant of a 6th strain that
	// must not count.
	for i := 0; i < 5; i++ {
		p := createPlant(t, svc.db, user, fmt.Sprintf("plant%d", i), fmt.Sprintf("strain%d", i), clk.Now())
		archivePlant(t, svc.db, p, models.ArchiveReasonHarvested, clk.Now())
	}
	dead := createPlant(t, svc.db, user, "deadone", "strain99", clk.Now())
	archivePlant(t, svc.db, dead, models.ArchiveReasonDied, clk.Now())

	earned, err := svc.Evaluate(user)
	require.NoError(t, err)
	names := make([]string, 0, len(earned))
	for _, a := range earned {
		names = append(names, a.Name)
	}
	assert.Contains(t, names, "Strain Expert")
}

func TestNotifyFailureDoesNotFailGrant(t *testing.T) {
	svc, recorder, clk := newAchievementService(t)
	recorder.Err = errors.New("relay down")

	user := createUser(t, svc.db, "+4915550000001")
	plant := createPlant(t, svc.db, user, "myplant", "gelato", clk.Now())
	archivePlant(t, svc.db, plant, models.ArchiveReasonHarvested, clk.Now())

	earned, err := svc.Evaluate(user)
	require.NoError(t, err)
	require.Len(t, earned, 1)

	var grants int64
	require.NoError(t, svc.db.Model(&models.UserAchievement{}).Where("user_id = ?", user.ID).Count(&grants).Error)
	assert.EqualValues(t, 1, grants)
}

func TestNotifyRespectsPreferences(t *testing.T) {
	svc, recorder, clk := newAchievementService(t)

	user := createUser(t, svc.db, "+4915550000002")
	user.NotificationPrefs = map[string]interface{}{"achievements": false}
	require.NoError(t, svc.db.Save(user).Error)

	plant := createPlant(t, svc.db, user, "myplant", "gelato", clk.Now())
	archivePlant(t, svc.db, plant, models.ArchiveReasonHarvested, clk.Now())

	earned, err := svc.Evaluate(user)
	require.NoError(t, err)
	require.Len(t, earned, 1)
	assert.Empty(t, recorder.Messages())
}
