package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/growmate/growmate-backend/internal/clock"
	"github.com/growmate/growmate-backend/internal/config"
	"github.com/growmate/growmate-backend/internal/dto"
	"github.com/growmate/growmate-backend/internal/models"
	"github.com/growmate/growmate-backend/internal/services"
)

func newWebhookApp(t *testing.T, secret string) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Plant{}, &models.Watering{}, &models.Note{},
		&models.PlantFollower{}, &models.PlantPermission{},
		&models.GrowthStage{}, &models.GrowthData{},
		&models.Strain{}, &models.StrainRating{}, &models.GrowingTip{},
		&models.Achievement{}, &models.UserAchievement{},
	))

	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	stages := services.NewStageService(db, clk, nil)
	commands := services.NewCommandService(db, clk, stages,
		services.NewRecommendService(), services.NewStatsService(db), services.NewStrainService(db, clk))

	cfg := &config.Config{SignalWebhookSecret: secret}
	handler := NewWebhookHandler(commands, cfg)

	app := fiber.New()
	app.Post("/api/webhooks/signal", handler.HandleSignal)
	return app, db
}

func postWebhook(t *testing.T, app *fiber.App, body []byte, sign func(*http.Request)) (*http.Response, dto.WebhookResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/signal", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sign != nil {
		sign(req)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	var parsed dto.WebhookResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

func TestHandleSignalUnregisteredSender(t *testing.T) {
	app, _ := newWebhookApp(t, "")

	body, _ := json.Marshal(dto.WebhookRequest{Sender: "+490000000000", Message: "status"})
	resp, parsed := postWebhook(t, app, body, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, parsed.Success)
	assert.Contains(t, parsed.Message, "not registered")
}

func TestHandleSignalValidatesPayload(t *testing.T) {
	app, _ := newWebhookApp(t, "")

	_, parsed := postWebhook(t, app, []byte(`{"sender": "+491234"}`), nil)
	assert.False(t, parsed.Success)
	assert.Contains(t, parsed.Error, "required")

	_, parsed = postWebhook(t, app, []byte(`not json`), nil)
	assert.False(t, parsed.Success)
}

func TestHandleSignalDispatchesCommand(t *testing.T) {
	app, db := newWebhookApp(t, "")

	phone := "+4915556660000"
	user := models.User{
		Username: "grower", Email: "grower@example.com", Password: "x",
		PhoneNumber: &phone, SignalVerified: true,
	}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.Plant{
		Name: "myplant", OwnerID: user.ID, StartDate: time.Now(),
	}).Error)

	body, _ := json.Marshal(dto.WebhookRequest{Sender: phone, Message: "water myplant"})
	resp, parsed := postWebhook(t, app, body, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, parsed.Success)
	assert.Contains(t, parsed.Message, "Recorded watering")

	var count int64
	require.NoError(t, db.Model(&models.Watering{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestHandleSignalHMAC(t *testing.T) {
	secret := "relay-secret"
	app, _ := newWebhookApp(t, secret)

	body, _ := json.Marshal(dto.WebhookRequest{Sender: "+490000000000", Message: "status"})

	// Missing signature.
	resp, parsed := postWebhook(t, app, body, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, parsed.Success)

	// Wrong signature.
	resp, _ = postWebhook(t, app, body, func(r *http.Request) {
		r.Header.Set("X-Signature", "deadbeef")
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Correct signature.
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	sig := hex.EncodeToString(mac.Sum(nil))
	resp, parsed = postWebhook(t, app, body, func(r *http.Request) {
		r.Header.Set("X-Signature", sig)
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, parsed.Success)
}
