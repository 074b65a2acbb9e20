package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/i474232898/weather-station/internal/weather"
)

// FetchForecast fetches the 5 day / 3 hour forecast and keeps samples whose
// UTC hour is in allowedHours, up to weather.ForecastSamples entries.
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, locationID string, allowedHours []int) ([]weather.ForecastSample, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	extra := url.Values{}
	extra.Set("cnt", strconv.Itoa(weather.ForecastSamples))

	resp, err := p.client.get(ctx, p.endpoint("forecast", locationID, extra))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp float64 `json:"temp"`
			} `json:"main"`
			Weather []owmCondition `json:"weather"`
		} `json:"list"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}

	allowed := make(map[int]bool, len(allowedHours))
	for _, h := range allowedHours {
		allowed[h] = true
	}

	samples := make([]weather.ForecastSample, 0, weather.ForecastSamples)
	for _, item := range payload.List {
		if len(samples) >= weather.ForecastSamples {
			break
		}
		ts := unixUTC(item.Dt)
		if ts.IsZero() {
			continue
		}
		if len(allowed) > 0 && !allowed[ts.Hour()] {
			continue
		}

		s := weather.ForecastSample{
			Time:        ts,
			Temperature: item.Main.Temp,
		}
		if len(item.Weather) > 0 {
			s.Code = item.Weather[0].ID
		}
		samples = append(samples, s)
	}

	return samples, nil
}
