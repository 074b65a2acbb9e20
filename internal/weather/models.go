package weather

import (
	"errors"
	"time"
)

const (
	// ForecastSamples is the size of the forecast buffer: 5 days at 3-hour resolution.
	ForecastSamples = 40
	// SamplesPerDay is the number of 3-hour samples in a full day.
	SamplesPerDay = 8
	// DaySummaries is the number of daily summaries shown on screen.
	DaySummaries = 4
	// AnchorHour is the local hour used to pick a day's representative condition.
	AnchorHour = 12
)

// DefaultForecastHoursUTC are the sample hours requested from the provider.
// All eight are needed to compute daily min/max temperatures.
var DefaultForecastHoursUTC = []int{0, 3, 6, 9, 12, 15, 18, 21}

var (
	// ErrNetwork is returned when a time sync, link check or fetch did not complete.
	ErrNetwork = errors.New("network failure")
	// ErrPartialData is returned when a fetch succeeded with fewer samples than expected.
	ErrPartialData = errors.New("partial forecast data")
	// ErrEmptyForecast is returned alongside ErrPartialData when nothing was stored.
	ErrEmptyForecast = errors.New("empty forecast")
	// ErrUnknownCondition marks a condition code no icon rule matched.
	ErrUnknownCondition = errors.New("unknown condition code")
)

// CurrentWeather is the latest observation for the configured location.
type CurrentWeather struct {
	ObservedAt  time.Time `json:"observedAt"`
	Sunrise     time.Time `json:"sunrise"`
	Sunset      time.Time `json:"sunset"`
	Code        int       `json:"code"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feelsLike"`
	TempMin     float64   `json:"tempMin"`
	TempMax     float64   `json:"tempMax"`
	Humidity    int       `json:"humidity"`
	Pressure    int       `json:"pressure"`
	WindSpeed   float64   `json:"windSpeed"`
	WindDeg     float64   `json:"windDeg"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	City        string    `json:"city"`
	Description string    `json:"description"`
}

// IsZero reports whether the record was never populated.
func (c CurrentWeather) IsZero() bool {
	return c.ObservedAt.IsZero()
}

// ForecastSample is a single 3-hour forecast point.
type ForecastSample struct {
	Time        time.Time `json:"time"`
	Code        int       `json:"code"`
	Temperature float64   `json:"temperature"`
}

// DaySummary condenses one calendar day of forecast samples.
type DaySummary struct {
	Date    time.Time    `json:"date"`
	Weekday time.Weekday `json:"weekday"`
	MinTemp float64      `json:"minTemp"`
	MaxTemp float64      `json:"maxTemp"`
	Code    int          `json:"code"`
	Hour    int          `json:"hour"`
	Samples int          `json:"samples"`
}

// Snapshot is a consistent copy of the sample store.
type Snapshot struct {
	Current     CurrentWeather                  `json:"current"`
	Forecasts   [ForecastSamples]ForecastSample `json:"forecasts"`
	CurrentAt   time.Time                       `json:"currentAt"`
	ForecastsAt time.Time                       `json:"forecastsAt"`
}

// ForecastSlice returns the populated forecast slots in buffer order.
func (s Snapshot) ForecastSlice() []ForecastSample {
	out := make([]ForecastSample, 0, ForecastSamples)
	for _, f := range s.Forecasts {
		if f.Time.IsZero() {
			continue
		}
		out = append(out, f)
	}
	return out
}
