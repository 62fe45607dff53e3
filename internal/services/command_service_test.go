package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/growmate/growmate-backend/internal/clock"
	"github.com/growmate/growmate-backend/internal/models"
)

type commandFixture struct {
	db  *gorm.DB
	clk *clock.Fake
	svc *CommandService
}

func newCommandFixture(t *testing.T) *commandFixture {
	t.Helper()
	db := newTestDB(t)
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	stages := NewStageService(db, clk, nil)
	svc := NewCommandService(db, clk, stages,
		NewRecommendService(), NewStatsService(db), NewStrainService(db, clk))
	return &commandFixture{db: db, clk: clk, svc: svc}
}

func (f *commandFixture) verifiedUser(t *testing.T, phone string) *models.User {
	t.Helper()
	return createUser(t, f.db, phone)
}

func TestHandleCommandUnregisteredSender(t *testing.T) {
	f := newCommandFixture(t)

	reply, err := f.svc.HandleCommand("+490000000000", "status")
	require.NoError(t, err)
	assert.Contains(t, reply, "not registered")
}

func TestHandleCommandVerificationFlow(t *testing.T) {
	f := newCommandFixture(t)

	phone := "+4915551110000"
	user := createUser(t, f.db, "")
	require.NoError(t, f.db.Model(user).Updates(map[string]any{
		"phone_number":             phone,
		"signal_verified":          false,
		"signal_verification_code": "123456",
	}).Error)

	// Commands are gated until verification.
	reply, err := f.svc.HandleCommand(phone, "status")
	require.NoError(t, err)
	assert.Contains(t, reply, "not verified")

	// Wrong code.
	reply, err = f.svc.HandleCommand(phone, "654321")
	require.NoError(t, err)
	assert.Contains(t, reply, "Invalid verification code")

	// Correct bare 6-digit code verifies.
	reply, err = f.svc.HandleCommand(phone, "123456")
	require.NoError(t, err)
	assert.Contains(t, reply, "verified")

	var stored models.User
	require.NoError(t, f.db.First(&stored, user.ID).Error)
	assert.True(t, stored.SignalVerified)

	// Commands now dispatch.
	reply, err = f.svc.HandleCommand(phone, "status")
	require.NoError(t, err)
	assert.Equal(t, "You have no active plants.", reply)
}

func TestHandleCommandUnknown(t *testing.T) {
	f := newCommandFixture(t)
	user := f.verifiedUser(t, "+4915551110001")
	_ = user

	reply, err := f.svc.HandleCommand("+4915551110001", "make me a sandwich")
	require.NoError(t, err)
	assert.Contains(t, reply, "Unknown command")
}

func TestHandleStatusNoPlants(t *testing.T) {
	f := newCommandFixture(t)
	f.verifiedUser(t, "+4915551110002")

	reply, err := f.svc.HandleCommand("+4915551110002", "status")
	require.NoError(t, err)
	assert.Equal(t, "You have no active plants.", reply)
}

func TestHandleStatusUnknownPlant(t *testing.T) {
	f := newCommandFixture(t)
	f.verifiedUser(t, "+4915551110003")

	reply, err := f.svc.HandleCommand("+4915551110003", "status ghostplant")
	require.NoError(t, err)
	assert.Contains(t, reply, "'ghostplant' not found")
}

func TestHandleWaterRecordsEvent(t *testing.T) {
	f := newCommandFixture(t)
	user := f.verifiedUser(t, "+4915551110004")
	plant := createPlant(t, f.db, user, "myplant", "gelato", f.clk.Now())

	reply, err := f.svc.HandleCommand("+4915551110004", "water myplant")
	require.NoError(t, err)
	assert.Contains(t, reply, "Recorded watering")

	var count int64
	require.NoError(t, f.db.Model(&models.Watering{}).Where("plant_id = ?", plant.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestHandleWaterWithoutPermission(t *testing.T) {
	f := newCommandFixture(t)
	owner := f.verifiedUser(t, "+4915551110005")
	stranger := f.verifiedUser(t, "+4915551110006")
	plant := createPlant(t, f.db, owner, "sharedplant", "gelato", f.clk.Now())

	reply, err := f.svc.HandleCommand("+4915551110006", "water sharedplant")
	require.NoError(t, err)
	assert.Contains(t, reply, "don't have permission")

	// Granting can_water flips the outcome.
	require.NoError(t, f.db.Create(&models.PlantPermission{
		PlantID: plant.ID, UserID: stranger.ID, CanWater: true,
	}).Error)
	reply, err = f.svc.HandleCommand("+4915551110006", "water sharedplant")
	require.NoError(t, err)
	assert.Contains(t, reply, "Recorded watering")
}

func TestHandleNote(t *testing.T) {
	f := newCommandFixture(t)
	user := f.verifiedUser(t, "+4915551110007")
	plant := createPlant(t, f.db, user, "myplant", "gelato", f.clk.Now())

	reply, err := f.svc.HandleCommand("+4915551110007", "note myplant: leaves curling slightly")
	require.NoError(t, err)
	assert.Contains(t, reply, "Added note")

	var note models.Note
	require.NoError(t, f.db.Where("plant_id = ?", plant.ID).First(&note).Error)
	assert.Equal(t, "leaves curling slightly", note.Content)
}

func TestHandleDataCreatesOneMeasurement(t *testing.T) {
	f := newCommandFixture(t)
	user := f.verifiedUser(t, "+4915551110008")
	plant := createPlant(t, f.db, user, "myplant", "gelato", f.clk.Now())

	reply, err := f.svc.HandleCommand("+4915551110008", "data myplant temp=25,humidity=60,ph=6.5,height=30")
	require.NoError(t, err)
	assert.Contains(t, reply, "Updated growth data")
	assert.Contains(t, reply, "Health Score: 100%")

	var data []models.GrowthData
	require.NoError(t, f.db.Where("plant_id = ?", plant.ID).Find(&data).Error)
	require.Len(t, data, 1)
	assert.Equal(t, 25.0, *data[0].Temperature)
	assert.Equal(t, 60.0, *data[0].Humidity)
	assert.Equal(t, 6.5, *data[0].PHLevel)
	assert.Equal(t, 30.0, *data[0].Height)
	require.NotNil(t, data[0].HealthScore)
	assert.Nil(t, data[0].GrowthRate) // first measurement has no prior height
}

func TestHandleDataMalformedInsertsNothing(t *testing.T) {
	f := newCommandFixture(t)
	user := f.verifiedUser(t, "+4915551110009")
	plant := createPlant(t, f.db, user, "myplant", "gelato", f.clk.Now())

	for _, input := range []string{
		"data myplant temp=25,humidity",
		"data myplant temp=hot",
		"data myplant color=green",
	} {
		reply, err := f.svc.HandleCommand("+4915551110009", input)
		require.NoError(t, err)
		assert.Contains(t, reply, "Invalid data format", "input: %s", input)
	}

	var count int64
	require.NoError(t, f.db.Model(&models.GrowthData{}).Where("plant_id = ?", plant.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestHandleDataHealthScoreAgainstStage(t *testing.T) {
	f := newCommandFixture(t)
	user := f.verifiedUser(t, "+4915551110010")
	plant := createPlant(t, f.db, user, "myplant", "gelato", f.clk.Now())

	_, err := f.svc.HandleCommand("+4915551110010", "stage myplant vegetative")
	require.NoError(t, err)

	// Temperature out of the vegetative range, rest in range.
	reply, err := f.svc.HandleCommand("+4915551110010", "data myplant temp=35,humidity=60,ph=6.5")
	require.NoError(t, err)
	assert.Contains(t, reply, "Health Score: 90%")
	_ = plant
}

func TestHandleStageCommand(t *testing.T) {
	f := newCommandFixture(t)
	user := f.verifiedUser(t, "+4915551110011")
	plant := createPlant(t, f.db, user, "myplant", "gelato", f.clk.Now())

	reply, err := f.svc.HandleCommand("+4915551110011", "stage myplant flowering")
	require.NoError(t, err)
	assert.Contains(t, reply, "Updated myplant to flowering stage")

	var stored models.Plant
	require.NoError(t, f.db.First(&stored, plant.ID).Error)
	require.NotNil(t, stored.CurrentStageID)
	require.NotNil(t, stored.TargetHarvestDate)

	reply, err = f.svc.HandleCommand("+4915551110011", "stage myplant budding")
	require.NoError(t, err)
	assert.Contains(t, reply, "Invalid stage")
	_ = user
}

func TestHandleRecommendWithoutStage(t *testing.T) {
	f := newCommandFixture(t)
	user := f.verifiedUser(t, "+4915551110012")
	createPlant(t, f.db, user, "myplant", "gelato", f.clk.Now())

	reply, err := f.svc.HandleCommand("+4915551110012", "recommend myplant")
	require.NoError(t, err)
	assert.Contains(t, reply, "No growth stage set")
}

func TestHandleRecommendOptimalAndAdvisory(t *testing.T) {
	f := newCommandFixture(t)
	user := f.verifiedUser(t, "+4915551110013")
	createPlant(t, f.db, user, "myplant", "gelato", f.clk.Now())

	_, err := f.svc.HandleCommand("+4915551110013", "stage myplant vegetative")
	require.NoError(t, err)

	_, err = f.svc.HandleCommand("+4915551110013", "data myplant temp=26,humidity=60,ph=6.5")
	require.NoError(t, err)
	reply, err := f.svc.HandleCommand("+4915551110013", "recommend myplant")
	require.NoError(t, err)
	assert.Contains(t, reply, "conditions are optimal")

	f.clk.Advance(time.Hour)
	_, err = f.svc.HandleCommand("+4915551110013", "data myplant temp=35,humidity=60,ph=6.5")
	require.NoError(t, err)
	reply, err = f.svc.HandleCommand("+4915551110013", "recommend myplant")
	require.NoError(t, err)
	assert.Contains(t, reply, "Temperature is high")
	_ = user
}

func TestHandleFollowLifecycle(t *testing.T) {
	f := newCommandFixture(t)
	owner := f.verifiedUser(t, "+4915551110014")
	f.verifiedUser(t, "+4915551110015")

	plant := createPlant(t, f.db, owner, "showplant", "gelato", f.clk.Now())
	require.NoError(t, f.db.Model(plant).Update("is_public", true).Error)

	reply, err := f.svc.HandleCommand("+4915551110015", "public")
	require.NoError(t, err)
	assert.Contains(t, reply, "showplant")

	reply, err = f.svc.HandleCommand("+4915551110015", "follow 99")
	require.NoError(t, err)
	assert.Contains(t, reply, "Plant not found")

	reply, err = f.svc.HandleCommand("+4915551110014", "follow 1")
	require.NoError(t, err)
	assert.Contains(t, reply, "your own plant")

	reply, err = f.svc.HandleCommand("+4915551110015", "follow 1")
	require.NoError(t, err)
	assert.Contains(t, reply, "Now following showplant")

	reply, err = f.svc.HandleCommand("+4915551110015", "follow 1")
	require.NoError(t, err)
	assert.Contains(t, reply, "already following")

	reply, err = f.svc.HandleCommand("+4915551110015", "following")
	require.NoError(t, err)
	assert.Contains(t, reply, "showplant")

	reply, err = f.svc.HandleCommand("+4915551110015", "unfollow 1")
	require.NoError(t, err)
	assert.Contains(t, reply, "Unfollowed")

	reply, err = f.svc.HandleCommand("+4915551110015", "unfollow 1")
	require.NoError(t, err)
	assert.Contains(t, reply, "not following")
}

func TestHandleFollowPrivatePlant(t *testing.T) {
	f := newCommandFixture(t)
	owner := f.verifiedUser(t, "+4915551110016")
	follower := f.verifiedUser(t, "+4915551110017")
	plant := createPlant(t, f.db, owner, "hiddenplant", "gelato", f.clk.Now())

	reply, err := f.svc.HandleCommand("+4915551110017", "follow 1")
	require.NoError(t, err)
	assert.Contains(t, reply, "not public")
	_, _, _ = owner, follower, plant
}

func TestHandleStatsOverall(t *testing.T) {
	f := newCommandFixture(t)
	user := f.verifiedUser(t, "+4915551110018")

	p1 := createPlant(t, f.db, user, "p1", "gelato", f.clk.Now())
	archivePlant(t, f.db, p1, models.ArchiveReasonHarvested, f.clk.Now())
	p2 := createPlant(t, f.db, user, "p2", "zkittlez", f.clk.Now())
	archivePlant(t, f.db, p2, models.ArchiveReasonDied, f.clk.Now())

	reply, err := f.svc.HandleCommand("+4915551110018", "stats")
	require.NoError(t, err)
	assert.Contains(t, reply, "Total Grows: 2")
	assert.Contains(t, reply, "Successful Harvests: 1")
	assert.Contains(t, reply, "Success Rate: 50.0%")
}

func TestHandleAchievementsEmpty(t *testing.T) {
	f := newCommandFixture(t)
	f.verifiedUser(t, "+4915551110019")

	reply, err := f.svc.HandleCommand("+4915551110019", "achievements")
	require.NoError(t, err)
	assert.Contains(t, reply, "haven't earned any achievements")
}

func TestHandleListAndHelpShowPlants(t *testing.T) {
	f := newCommandFixture(t)
	user := f.verifiedUser(t, "+4915551110020")
	createPlant(t, f.db, user, "myplant", "gelato", f.clk.Now())

	reply, err := f.svc.HandleCommand("+4915551110020", "list")
	require.NoError(t, err)
	assert.Contains(t, reply, "myplant")
	assert.Contains(t, reply, "No stage set")

	reply, err = f.svc.HandleCommand("+4915551110020", "help")
	require.NoError(t, err)
	assert.Contains(t, reply, "Available Commands")
	assert.Contains(t, reply, "myplant")
}
