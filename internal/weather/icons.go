package weather

import "math"

// Icon names a weather bitmap.
type Icon string

const (
	IconThunderstorm      Icon = "thunderstorm"
	IconDrizzle           Icon = "drizzle"
	IconLightRain         Icon = "light-rain"
	IconExtremeRain       Icon = "extrem-rain"
	IconSleet             Icon = "sleet"
	IconRain              Icon = "rain"
	IconSnow              Icon = "snow"
	IconFog               Icon = "fog"
	IconClearDay          Icon = "clear-day"
	IconPartlyCloudyDay   Icon = "partly-cloudy-day"
	IconCloudy            Icon = "cloudy"
	IconClearNight        Icon = "clear-night"
	IconPartlyCloudyNight Icon = "partly-cloudy-night"
	IconUnknown           Icon = "unknown"
)

// Condition is a provider condition code plus whether the night variant applies.
type Condition struct {
	Code  int  `json:"code"`
	Night bool `json:"night"`
}

// Condition returns the icon condition for the current observation. Only the
// clear/cloud group (8xx) has night variants, used when the observation lies
// outside [Sunrise, Sunset].
func (c CurrentWeather) Condition() Condition {
	cond := Condition{Code: c.Code}
	if c.Code/100 == 8 && (c.ObservedAt.Before(c.Sunrise) || c.ObservedAt.After(c.Sunset)) {
		cond.Night = true
	}
	return cond
}

// ForecastCondition returns the icon condition for a forecast code.
// Forecasts always use day icons.
func ForecastCondition(code int) Condition {
	return Condition{Code: code}
}

type iconRule struct {
	match func(code int) bool
	icon  Icon
}

func exact(code int) func(int) bool {
	return func(c int) bool { return c == code }
}

func between(lo, hi int) func(int) bool {
	return func(c int) bool { return c >= lo && c <= hi }
}

func group(hundreds int) func(int) bool {
	return func(c int) bool { return c/100 == hundreds }
}

// Rules are evaluated in order; exact codes sit before their group fallback.
var (
	dayRules = []iconRule{
		{group(2), IconThunderstorm},
		{group(3), IconDrizzle},
		{exact(500), IconLightRain},
		{exact(504), IconExtremeRain},
		{exact(511), IconSleet},
		{group(5), IconRain},
		{between(611, 616), IconSleet},
		{group(6), IconSnow},
		{group(7), IconFog},
		{exact(800), IconClearDay},
		{between(801, 803), IconPartlyCloudyDay},
		{group(8), IconCloudy},
	}

	nightRules = []iconRule{
		{exact(800), IconClearNight},
		{exact(801), IconPartlyCloudyNight},
	}
)

// ResolveIcon maps a condition to an icon. Codes matching no rule resolve to
// IconUnknown.
func ResolveIcon(c Condition) Icon {
	if c.Night {
		for _, r := range nightRules {
			if r.match(c.Code) {
				return r.icon
			}
		}
		return IconCloudy
	}

	for _, r := range dayRules {
		if r.match(c.Code) {
			return r.icon
		}
	}
	return IconUnknown
}

var windDirections = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// WindDirection maps a bearing in degrees to one of eight compass names.
func WindDirection(deg float64) string {
	idx := int(math.Round(deg * 8 / 360))
	if idx < 0 || idx > 7 {
		idx = 0
	}
	return windDirections[idx]
}
