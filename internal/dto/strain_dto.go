package dto

type CreateStrainRequest struct {
	Name              string  `json:"name"`
	Type              string  `json:"type"`
	Description       string  `json:"description,omitempty"`
	FloweringTime     int     `json:"flowering_time"`
	Difficulty        int     `json:"difficulty"`
	IdealTempLow      float64 `json:"ideal_temp_low"`
	IdealTempHigh     float64 `json:"ideal_temp_high"`
	IdealHumidityLow  float64 `json:"ideal_humidity_low"`
	IdealHumidityHigh float64 `json:"ideal_humidity_high"`
	HeightLow         float64 `json:"height_low"`
	HeightHigh        float64 `json:"height_high"`
}

type RateStrainRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review,omitempty"`
}
