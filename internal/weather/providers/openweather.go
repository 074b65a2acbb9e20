package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/weather-station/internal/weather"
)

const defaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherOptions configures the OpenWeatherMap client.
type OpenWeatherOptions struct {
	APIKey   string
	Language string
	Metric   bool
	// RequestsPerSecond throttles calls, <= 0 disables throttling.
	RequestsPerSecond float64
	// BaseURL overrides the API root, mainly for tests.
	BaseURL string
}

// OpenWeatherProvider implements weather.CurrentWeatherClient and
// weather.ForecastClient for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	lang    string
	units   string
	baseURL string
	client  *resilientClient
}

var (
	_ weather.CurrentWeatherClient = (*OpenWeatherProvider)(nil)
	_ weather.ForecastClient       = (*OpenWeatherProvider)(nil)
)

// NewOpenWeatherProvider creates an OpenWeatherMap client on top of client.
func NewOpenWeatherProvider(client *http.Client, opts OpenWeatherOptions) *OpenWeatherProvider {
	units := "imperial"
	if opts.Metric {
		units = "metric"
	}
	lang := opts.Language
	if lang == "" {
		lang = "en"
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenWeatherBaseURL
	}

	backoff := BackoffConfig{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  opts.APIKey,
		lang:    lang,
		units:   units,
		baseURL: baseURL,
		client:  newResilientClient("openweather", client, backoff, opts.RequestsPerSecond),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) endpoint(path, locationID string, extra url.Values) string {
	values := url.Values{}
	values.Set("id", locationID)
	values.Set("appid", p.apiKey)
	values.Set("units", p.units)
	values.Set("lang", p.lang)
	for k, v := range extra {
		values[k] = v
	}
	return fmt.Sprintf("%s/%s?%s", p.baseURL, path, values.Encode())
}

type owmCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
}

// FetchCurrent fetches the current observation for an OpenWeatherMap city id.
func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, locationID string) (weather.CurrentWeather, error) {
	if p.apiKey == "" {
		return weather.CurrentWeather{}, fmt.Errorf("openweather api key is not configured")
	}

	resp, err := p.client.get(ctx, p.endpoint("weather", locationID, nil))
	if err != nil {
		return weather.CurrentWeather{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Dt    int64  `json:"dt"`
		Name  string `json:"name"`
		Coord struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			TempMin   float64 `json:"temp_min"`
			TempMax   float64 `json:"temp_max"`
			Humidity  int     `json:"humidity"`
			Pressure  int     `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   float64 `json:"deg"`
		} `json:"wind"`
		Sys struct {
			Sunrise int64 `json:"sunrise"`
			Sunset  int64 `json:"sunset"`
		} `json:"sys"`
		Weather []owmCondition `json:"weather"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.CurrentWeather{}, fmt.Errorf("decode current weather: %w", err)
	}

	rec := weather.CurrentWeather{
		ObservedAt:  unixUTC(payload.Dt),
		Sunrise:     unixUTC(payload.Sys.Sunrise),
		Sunset:      unixUTC(payload.Sys.Sunset),
		Temperature: payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		TempMin:     payload.Main.TempMin,
		TempMax:     payload.Main.TempMax,
		Humidity:    payload.Main.Humidity,
		Pressure:    payload.Main.Pressure,
		WindSpeed:   payload.Wind.Speed,
		WindDeg:     payload.Wind.Deg,
		Lat:         payload.Coord.Lat,
		Lon:         payload.Coord.Lon,
		City:        payload.Name,
	}
	if len(payload.Weather) > 0 {
		rec.Code = payload.Weather[0].ID
		rec.Description = payload.Weather[0].Description
	}
	if rec.ObservedAt.IsZero() {
		rec.ObservedAt = time.Now().UTC()
	}

	return rec, nil
}

func unixUTC(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
