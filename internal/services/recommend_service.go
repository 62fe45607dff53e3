package services

import (
	"fmt"

	"github.com/growmate/growmate-backend/internal/models"
)

// RecommendService compares a measurement snapshot against the active stage's
// targets and produces ordered advisories.
type RecommendService struct{}

func NewRecommendService() *RecommendService {
	return &RecommendService{}
}

// Recommendations returns at most one advisory per metric, always in the
// order temperature, humidity, pH. Missing readings are skipped; a reading
// inside the inclusive target range produces nothing. A nil stage or nil
// measurement yields an empty list.
func (r *RecommendService) Recommendations(stage *models.GrowthStage, data *models.GrowthData) []string {
	if stage == nil || data == nil {
		return nil
	}

	var recs []string

	if data.Temperature != nil {
		if *data.Temperature < stage.IdealTempLow {
			recs = append(recs, fmt.Sprintf(
				"🌡️ Temperature is low (%g°C). Increase to %g-%g°C",
				*data.Temperature, stage.IdealTempLow, stage.IdealTempHigh))
		} else if *data.Temperature > stage.IdealTempHigh {
			recs = append(recs, fmt.Sprintf(
				"🌡️ Temperature is high (%g°C). Decrease to %g-%g°C",
				*data.Temperature, stage.IdealTempLow, stage.IdealTempHigh))
		}
	}

	if data.Humidity != nil {
		if *data.Humidity < stage.IdealHumidityLow {
			recs = append(recs, fmt.Sprintf(
				"💧 Humidity is low (%g%%). Increase to %g-%g%%",
				*data.Humidity, stage.IdealHumidityLow, stage.IdealHumidityHigh))
		} else if *data.Humidity > stage.IdealHumidityHigh {
			recs = append(recs, fmt.Sprintf(
				"💧 Humidity is high (%g%%). Decrease to %g-%g%%",
				*data.Humidity, stage.IdealHumidityLow, stage.IdealHumidityHigh))
		}
	}

	if data.PHLevel != nil {
		if *data.PHLevel < stage.IdealPHLow {
			recs = append(recs, fmt.Sprintf(
				"⚗️ pH is low (%g). Adjust to %g-%g",
				*data.PHLevel, stage.IdealPHLow, stage.IdealPHHigh))
		} else if *data.PHLevel > stage.IdealPHHigh {
			recs = append(recs, fmt.Sprintf(
				"⚗️ pH is high (%g). Adjust to %g-%g",
				*data.PHLevel, stage.IdealPHLow, stage.IdealPHHigh))
		}
	}

	return recs
}
