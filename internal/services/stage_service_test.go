package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growmate/growmate-backend/internal/clock"
	"github.com/growmate/growmate-backend/internal/models"
)

func TestAdvanceClosesPreviousStage(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := NewStageService(db, clk, nil)

	user := createUser(t, db, "")
	plant := createPlant(t, db, user, "myplant", "gelato", clk.Now())

	first, err := svc.Advance(plant, "seedling", "")
	require.NoError(t, err)
	assert.Equal(t, models.StageSeedling, first.StageName)
	assert.Nil(t, first.EndDate)
	require.NotNil(t, plant.CurrentStageID)
	assert.Equal(t, first.ID, *plant.CurrentStageID)

	clk.Advance(10 * 24 * time.Hour)
	second, err := svc.Advance(plant, "vegetative", "stretching fast")
	require.NoError(t, err)

	var closed models.GrowthStage
	require.NoError(t, db.First(&closed, first.ID).Error)
	require.NotNil(t, closed.EndDate)
	assert.Equal(t, clk.Now(), closed.EndDate.UTC())

	assert.Equal(t, second.ID, *plant.CurrentStageID)
	assert.Equal(t, "stretching fast", second.Notes)

	// Targets are snapshotted from the table.
	assert.Equal(t, 24.0, second.IdealTempLow)
	assert.Equal(t, 30.0, second.IdealTempHigh)
	assert.Equal(t, "18/6", second.LightSchedule)
}

func TestAdvanceInvalidStageName(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := NewStageService(db, clk, nil)

	user := createUser(t, db, "")
	plant := createPlant(t, db, user, "myplant", "", clk.Now())

	_, err := svc.Advance(plant, "budding", "")
	assert.ErrorIs(t, err, ErrInvalidStageName)
	assert.Nil(t, plant.CurrentStageID)
}

func TestAdvanceSetsHarvestDateOnFloweringOnly(t *testing.T) {
	db := newTestDB(t)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFake(start)
	svc := NewStageService(db, clk, nil)

	user := createUser(t, db, "")
	plant := createPlant(t, db, user, "myplant", "", clk.Now())

	_, err := svc.Advance(plant, "vegetative", "")
	require.NoError(t, err)
	assert.Nil(t, plant.TargetHarvestDate)

	clk.Advance(24 * time.Hour)
	_, err = svc.Advance(plant, "flowering", "")
	require.NoError(t, err)
	require.NotNil(t, plant.TargetHarvestDate)
	assert.Equal(t, clk.Now().Add(70*24*time.Hour), plant.TargetHarvestDate.UTC())

	// Moving on keeps the date from the flowering transition.
	harvestDate := *plant.TargetHarvestDate
	clk.Advance(24 * time.Hour)
	_, err = svc.Advance(plant, "late_flowering", "")
	require.NoError(t, err)

	var stored models.Plant
	require.NoError(t, db.First(&stored, plant.ID).Error)
	require.NotNil(t, stored.TargetHarvestDate)
	assert.Equal(t, harvestDate.UTC(), stored.TargetHarvestDate.UTC())
}

func TestAdvanceAllowsAnyOrder(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := NewStageService(db, clk, nil)

	user := createUser(t, db, "")
	plant := createPlant(t, db, user, "myplant", "", clk.Now())

	_, err := svc.Advance(plant, "flowering", "")
	require.NoError(t, err)

	// Backwards transition is allowed; the order is advisory.
	_, err = svc.Advance(plant, "germination", "")
	require.NoError(t, err)

	stage, err := svc.CurrentStage(plant)
	require.NoError(t, err)
	require.NotNil(t, stage)
	assert.Equal(t, models.StageGermination, stage.StageName)
}

func TestNextStageName(t *testing.T) {
	svc := NewStageService(nil, clock.System{}, nil)

	assert.Equal(t, models.StageSeedling, svc.NextStageName(models.StageGermination))
	assert.Equal(t, models.StageLateFlowering, svc.NextStageName(models.StageFlowering))
	assert.Equal(t, "", svc.NextStageName(models.StageLateFlowering))
	assert.Equal(t, "", svc.NextStageName("bogus"))
}

func TestCurrentStageNilWhenUnstaged(t *testing.T) {
	db := newTestDB(t)
	svc := NewStageService(db, clock.System{}, nil)

	user := createUser(t, db, "")
	plant := createPlant(t, db, user, "myplant", "", time.Now())

	stage, err := svc.CurrentStage(plant)
	require.NoError(t, err)
	assert.Nil(t, stage)
}
