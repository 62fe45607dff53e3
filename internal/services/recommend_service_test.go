package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growmate/growmate-backend/internal/models"
)

func TestRecommendationsAllInRange(t *testing.T) {
	svc := NewRecommendService()
	data := &models.GrowthData{
		Temperature: floatPtr(26), Humidity: floatPtr(60), PHLevel: floatPtr(6.5),
	}
	assert.Empty(t, svc.Recommendations(testStage(), data))
}

func TestRecommendationsOrderAndContent(t *testing.T) {
	svc := NewRecommendService()
	data := &models.GrowthData{
		Temperature: floatPtr(20), Humidity: floatPtr(80), PHLevel: floatPtr(5.5),
	}

	recs := svc.Recommendations(testStage(), data)
	require.Len(t, recs, 3)
	assert.Equal(t, "🌡️ Temperature is low (20°C). Increase to 24-30°C", recs[0])
	assert.Equal(t, "💧 Humidity is high (80%). Decrease to 50-70%", recs[1])
	assert.Equal(t, "⚗️ pH is low (5.5). Adjust to 6-7", recs[2])
}

func TestRecommendationsSkipMissingReadings(t *testing.T) {
	svc := NewRecommendService()
	data := &models.GrowthData{PHLevel: floatPtr(8.0)}

	recs := svc.Recommendations(testStage(), data)
	require.Len(t, recs, 1)
	assert.Equal(t, "⚗️ pH is high (8). Adjust to 6-7", recs[0])
}

func TestRecommendationsBoundaryIsOptimal(t *testing.T) {
	svc := NewRecommendService()
	data := &models.GrowthData{
		Temperature: floatPtr(30), Humidity: floatPtr(50), PHLevel: floatPtr(7.0),
	}
	assert.Empty(t, svc.Recommendations(testStage(), data))
}

func TestRecommendationsNilInputs(t *testing.T) {
	svc := NewRecommendService()
	assert.Nil(t, svc.Recommendations(nil, &models.GrowthData{Temperature: floatPtr(5)}))
	assert.Nil(t, svc.Recommendations(testStage(), nil))
}
